// Package datatable renders one page of a server paginated collection as a
// table, with an equivalent card list for narrow screens, page navigation,
// page size selection and single column sorting. It owns no data: every
// change is reported to the owner through callbacks.
package datatable

import (
	"errors"
	"net/url"

	"github.com/deltegui/bankconsole/pagination"
)

var (
	ErrMissingRowID          = errors.New("datatable: RowID is required")
	ErrMissingPageChange     = errors.New("datatable: OnPageChange is required")
	ErrMissingPageSizeChange = errors.New("datatable: OnPageSizeChange is required")
)

type Config[T any] struct {
	Columns []Column[T]

	// Rows of the current page only. They are never sliced or sorted here.
	Rows []T

	Loading bool
	Err     error

	Page      pagination.State
	PageSizes []int
	Sort      pagination.Sort

	OnPageChange     func(page int)
	OnPageSizeChange func(size int)

	// OnSortChange is optional. Without it the headers are not clickable.
	OnSortChange func(sort pagination.Sort)

	// RowID returns a stable identity for row.
	RowID func(row T, index int) string

	// Link turns an event into the href of the control raising it.
	Link func(Event) string

	Texts Texts
}

type Table[T any] struct {
	cfg Config[T]
}

func New[T any](cfg Config[T]) (*Table[T], error) {
	if cfg.RowID == nil {
		return nil, ErrMissingRowID
	}
	if cfg.OnPageChange == nil {
		return nil, ErrMissingPageChange
	}
	if cfg.OnPageSizeChange == nil {
		return nil, ErrMissingPageSizeChange
	}
	if len(cfg.PageSizes) == 0 {
		cfg.PageSizes = pagination.DefaultPageSizes
	}
	if cfg.Link == nil {
		cfg.Link = func(e Event) string { return "?" + e.Query() }
	}
	// A sort without direction is ascending, as the API reads it.
	if cfg.Sort.IsSet() && cfg.Sort.Direction == "" {
		cfg.Sort.Direction = pagination.Ascending
	}
	cfg.Texts = cfg.Texts.withDefaults()
	return &Table[T]{cfg: cfg}, nil
}

func (t *Table[T]) TotalPages() int {
	return t.cfg.Page.TotalPages()
}

// GoToPage reports page changes to a page inside the range that is not the
// current one. Everything else is ignored.
func (t *Table[T]) GoToPage(page int) bool {
	if !t.cfg.Page.Contains(page) || page == t.cfg.Page.PageIndex {
		return false
	}
	t.cfg.OnPageChange(page)
	return true
}

func (t *Table[T]) PreviousPage() bool {
	return t.GoToPage(t.cfg.Page.PageIndex - 1)
}

func (t *Table[T]) NextPage() bool {
	return t.GoToPage(t.cfg.Page.PageIndex + 1)
}

func (t *Table[T]) ChangePageSize(size int) bool {
	if size <= 0 {
		return false
	}
	t.cfg.OnPageSizeChange(size)
	return true
}

// ToggleSort sorts by the column with the given sort key. A new column
// starts ascending, the current one flips direction.
func (t *Table[T]) ToggleSort(field string) bool {
	if t.cfg.OnSortChange == nil {
		return false
	}
	if _, ok := t.sortableColumn(field); !ok {
		return false
	}
	next := pagination.Sort{Field: field, Direction: pagination.Ascending}
	if t.cfg.Sort.Field == field {
		next.Direction = t.cfg.Sort.Direction.Toggle()
	}
	t.cfg.OnSortChange(next)
	return true
}

func (t *Table[T]) sortableColumn(field string) (Column[T], bool) {
	for _, col := range t.cfg.Columns {
		if col.canSort() && col.sortField() == field {
			return col, true
		}
	}
	return Column[T]{}, false
}

// Dispatch routes a decoded event to the matching control.
func (t *Table[T]) Dispatch(e Event) bool {
	switch e.Kind {
	case EventPage:
		return t.GoToPage(e.Value)
	case EventSize:
		return t.ChangePageSize(e.Value)
	case EventSort:
		return t.ToggleSort(e.Field)
	default:
		return false
	}
}

// DispatchQuery decodes and dispatches the event found in values, if any.
func (t *Table[T]) DispatchQuery(values url.Values) bool {
	e, ok := DecodeEvent(values)
	if !ok {
		return false
	}
	return t.Dispatch(e)
}
