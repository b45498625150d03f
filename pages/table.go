package pages

import (
	"net/url"

	"github.com/deltegui/bankconsole"
	"github.com/deltegui/bankconsole/datatable"
	"github.com/deltegui/bankconsole/localizer"
	"github.com/deltegui/bankconsole/pagination"
	qc "github.com/deltegui/bankconsole/querycache"
)

// Query parameters owned by one table. Tables sharing a page are told apart
// by a prefix on every one of them.
var tableParams = []string{"page", "size", "sort", datatable.ParamEvent, datatable.ParamTo, datatable.ParamField}

// tableQuery is the page request of one table read from the URL, plus the
// request the table asks for after an event.
type tableQuery struct {
	path   string
	prefix string
	all    url.Values
	Req    pagination.Request
	next   pagination.Request
}

func readTable(ctx *bankconsole.Context, path, prefix string, defaults pagination.Request) *tableQuery {
	all := ctx.Req.URL.Query()
	req := pagination.ParseRequest(unprefix(all, prefix), defaults)
	return &tableQuery{
		path:   path,
		prefix: prefix,
		all:    all,
		Req:    req,
		next:   req,
	}
}

func unprefix(all url.Values, prefix string) url.Values {
	own := url.Values{}
	for _, name := range tableParams {
		if v, ok := all[prefix+name]; ok {
			own[name] = v
		}
	}
	return own
}

// with replaces the table parameters of the current URL with own.
func (q *tableQuery) with(own url.Values) url.Values {
	out := url.Values{}
	for key, vals := range q.all {
		out[key] = append([]string(nil), vals...)
	}
	for _, name := range tableParams {
		out.Del(q.prefix + name)
	}
	for name, vals := range own {
		out[q.prefix+name] = vals
	}
	return out
}

func (q *tableQuery) link(e datatable.Event) string {
	own := q.Req.Values()
	e.Encode(own)
	return q.path + "?" + q.with(own).Encode()
}

// NextURL is where the browser goes after an event was dispatched.
func (q *tableQuery) NextURL() string {
	return q.path + "?" + q.with(q.next.Values()).Encode()
}

// Dispatch applies the event in the URL, if any, through table.
func (q *tableQuery) Dispatch(table interface{ DispatchQuery(url.Values) bool }) bool {
	own := unprefix(q.all, q.prefix)
	if own.Get(datatable.ParamEvent) == "" {
		return false
	}
	return table.DispatchQuery(own)
}

// Filters returns the parameters of the URL not owned by this table.
func (q *tableQuery) Filters() url.Values {
	out := url.Values{}
	for key, vals := range q.all {
		out[key] = vals
	}
	for _, name := range tableParams {
		out.Del(q.prefix + name)
	}
	return out
}

// newTable wires a cached page result to a datatable driven by q.
func newTable[T any](
	q *tableQuery,
	loc localizer.Localizer,
	res qc.Typed[pagination.Page[T]],
	columns []datatable.Column[T],
	rowID func(T, int) string,
) (*datatable.Table[T], error) {
	state := pagination.State{PageIndex: q.Req.Page, PageSize: q.Req.Size}
	var rows []T
	if res.HasData {
		state = res.Data.State()
		rows = res.Data.Content
	}
	return datatable.New(datatable.Config[T]{
		Columns: columns,
		Rows:    rows,
		Loading: res.IsLoading && !res.HasData,
		Err:     res.Err,
		Page:    state,
		Sort:    q.Req.Sort,
		OnPageChange: func(page int) {
			q.next.Page = page
		},
		OnPageSizeChange: func(size int) {
			q.next.Size = size
			q.next.Page = 0
		},
		OnSortChange: func(sort pagination.Sort) {
			q.next.Sort = sort
			q.next.Page = 0
		},
		RowID: rowID,
		Link:  q.link,
		Texts: datatable.Localized(loc),
	})
}
