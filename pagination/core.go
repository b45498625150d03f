// Package pagination holds the page and sort state shared by the page
// containers, the banking client and the data table.
package pagination

import (
	"fmt"
	"strings"
)

type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

func (d Direction) Toggle() Direction {
	if d == Ascending {
		return Descending
	}
	return Ascending
}

func ParseDirection(raw string) (Direction, bool) {
	switch Direction(strings.ToLower(strings.TrimSpace(raw))) {
	case Ascending:
		return Ascending, true
	case Descending:
		return Descending, true
	default:
		return "", false
	}
}

// Sort is a single column sort. The zero value means unsorted.
type Sort struct {
	Field     string
	Direction Direction
}

func (s Sort) IsSet() bool {
	return s.Field != ""
}

// String renders the sort parameter accepted by the banking API.
func (s Sort) String() string {
	if !s.IsSet() {
		return ""
	}
	dir := s.Direction
	if dir == "" {
		dir = Ascending
	}
	return fmt.Sprintf("%s,%s", s.Field, dir)
}

// ParseSort reads "<field>,<asc|desc>". A missing direction means ascending.
func ParseSort(raw string) (Sort, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Sort{}, false
	}
	field, dirRaw, found := strings.Cut(raw, ",")
	field = strings.TrimSpace(field)
	if field == "" {
		return Sort{}, false
	}
	if !found {
		return Sort{Field: field, Direction: Ascending}, true
	}
	dir, ok := ParseDirection(dirRaw)
	if !ok {
		return Sort{}, false
	}
	return Sort{Field: field, Direction: dir}, true
}

// State is the page position of a server paginated collection. PageIndex is
// 0-based, TotalElements is the authoritative count reported by the server.
type State struct {
	PageIndex     int
	PageSize      int
	TotalElements int
}

// SafePageSize floors the page size to 1 so page math never divides by zero.
func (s State) SafePageSize() int {
	if s.PageSize < 1 {
		return 1
	}
	return s.PageSize
}

func (s State) TotalPages() int {
	if s.TotalElements <= 0 {
		return 0
	}
	size := s.SafePageSize()
	return (s.TotalElements + size - 1) / size
}

func (s State) IsFirst() bool {
	return s.PageIndex <= 0
}

func (s State) IsLast() bool {
	return s.PageIndex >= s.TotalPages()-1
}

// FirstElement is the 1-based position of the first row of the page.
func (s State) FirstElement() int {
	return s.PageIndex*s.SafePageSize() + 1
}

// LastElement is the 1-based position of the last row of the page.
func (s State) LastElement() int {
	last := (s.PageIndex + 1) * s.SafePageSize()
	if last > s.TotalElements {
		return s.TotalElements
	}
	return last
}

func (s State) Contains(page int) bool {
	return page >= 0 && page < s.TotalPages()
}

// Page is the paged envelope returned by the banking API.
type Page[T any] struct {
	Content          []T  `json:"content"`
	Number           int  `json:"number"`
	Size             int  `json:"size"`
	TotalElements    int  `json:"totalElements"`
	TotalPages       int  `json:"totalPages"`
	NumberOfElements int  `json:"numberOfElements"`
	First            bool `json:"first"`
	Last             bool `json:"last"`
	Empty            bool `json:"empty"`
}

func (p Page[T]) State() State {
	return State{
		PageIndex:     p.Number,
		PageSize:      p.Size,
		TotalElements: p.TotalElements,
	}
}
