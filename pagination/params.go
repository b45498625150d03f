package pagination

import (
	"net/url"
	"strconv"
	"time"
)

// DateTimeLayout is the format of date range filters sent to the API.
const DateTimeLayout = "2006-01-02T15:04:05"

var DefaultPageSizes = []int{10, 20, 50, 100}

const DefaultPageSize = 10

// Request is what a page container asks the API for.
type Request struct {
	Page int
	Size int
	Sort Sort
}

func (r Request) Values() url.Values {
	values := url.Values{}
	r.Encode(values)
	return values
}

// Encode writes page, size and sort into values.
func (r Request) Encode(values url.Values) {
	values.Set("page", strconv.Itoa(r.Page))
	values.Set("size", strconv.Itoa(r.Size))
	if r.Sort.IsSet() {
		values.Set("sort", r.Sort.String())
	} else {
		values.Del("sort")
	}
}

// ParseRequest reads page, size and sort from a query string, falling back to
// defaults for missing or invalid values.
func ParseRequest(query url.Values, defaults Request) Request {
	req := defaults
	if page, err := strconv.Atoi(query.Get("page")); err == nil && page >= 0 {
		req.Page = page
	}
	if size, err := strconv.Atoi(query.Get("size")); err == nil && size > 0 {
		req.Size = size
	}
	if sort, ok := ParseSort(query.Get("sort")); ok {
		req.Sort = sort
	}
	if req.Size <= 0 {
		req.Size = DefaultPageSize
	}
	return req
}

// FormatDateTimeParam normalises a datetime-local input to DateTimeLayout.
// Minute precision inputs ("2006-01-02T15:04") get ":00" appended. Empty
// input stays empty.
func FormatDateTimeParam(input string) string {
	if len(input) == 16 {
		return input + ":00"
	}
	return input
}

func FormatTime(t time.Time) string {
	return t.Format(DateTimeLayout)
}

// SetNonEmpty copies only the non empty filter values into values.
func SetNonEmpty(values url.Values, filters map[string]string) {
	for key, value := range filters {
		if value == "" {
			continue
		}
		values.Set(key, value)
	}
}
