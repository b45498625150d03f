package datatable

import (
	"fmt"
	"html/template"
	"strconv"

	"github.com/deltegui/bankconsole/core"
	"github.com/deltegui/bankconsole/pagination"
)

type Status string

const (
	StatusLoading Status = "loading"
	StatusError   Status = "error"
	StatusEmpty   Status = "empty"
	StatusTable   Status = "table"
)

type SortIcon string

const (
	// SortNone is shown on columns that cannot be sorted right now.
	SortNone     SortIcon = "none"
	SortUnsorted SortIcon = "unsorted"
	SortAsc      SortIcon = "asc"
	SortDesc     SortIcon = "desc"
)

// View is the presentation model of a table. It is all the template needs
// and also what list pages return as JSON.
type View struct {
	Status     Status   `json:"status"`
	Message    string   `json:"message,omitempty"`
	Headers    []Header `json:"headers,omitempty"`
	Rows       []Row    `json:"rows,omitempty"`
	Pagination *Pager   `json:"pagination,omitempty"`
	Texts      Texts    `json:"-"`
}

type Header struct {
	Key       string   `json:"key"`
	Label     string   `json:"label"`
	Class     string   `json:"class,omitempty"`
	Clickable bool     `json:"clickable"`
	Icon      SortIcon `json:"icon"`
	Href      string   `json:"href,omitempty"`
}

type Row struct {
	ID    string `json:"id"`
	Cells []Cell `json:"cells"`
}

// Cell is shared by the table and the card view.
type Cell struct {
	Key     string        `json:"key"`
	Label   string        `json:"label"`
	Content template.HTML `json:"content"`
	Class   string        `json:"class,omitempty"`
}

type Pager struct {
	PageIndex     int          `json:"pageIndex"`
	PageSize      int          `json:"pageSize"`
	TotalPages    int          `json:"totalPages"`
	TotalElements int          `json:"totalElements"`
	From          int          `json:"from"`
	To            int          `json:"to"`
	Summary       string       `json:"summary"`
	MobileSummary string       `json:"mobileSummary"`
	Sizes         []SizeOption `json:"sizes"`
	ShowStrip     bool         `json:"showStrip"`
	Previous      NavButton    `json:"previous"`
	Next          NavButton    `json:"next"`
	Strip         []PageButton `json:"strip,omitempty"`
}

type SizeOption struct {
	Size     int    `json:"size"`
	Selected bool   `json:"selected"`
	Href     string `json:"href"`
}

// NavButton has no href when disabled.
type NavButton struct {
	Disabled bool   `json:"disabled"`
	Href     string `json:"href,omitempty"`
}

type PageButton struct {
	Page     int    `json:"page"`
	Label    string `json:"label,omitempty"`
	Current  bool   `json:"current,omitempty"`
	Ellipsis bool   `json:"ellipsis,omitempty"`
	Href     string `json:"href,omitempty"`
}

// View builds the presentation model. Loading wins over error, error over
// empty, empty over the table.
func (t *Table[T]) View() View {
	texts := t.cfg.Texts
	switch {
	case t.cfg.Loading:
		return View{Status: StatusLoading, Message: texts.Loading, Texts: texts}
	case t.cfg.Err != nil:
		return View{Status: StatusError, Message: t.errorMessage(), Texts: texts}
	case len(t.cfg.Rows) == 0 || t.cfg.Page.TotalElements <= 0:
		return View{Status: StatusEmpty, Message: texts.Empty, Texts: texts}
	}
	return View{
		Status:     StatusTable,
		Headers:    t.headers(),
		Rows:       t.rows(),
		Pagination: t.pager(),
		Texts:      texts,
	}
}

func (t *Table[T]) errorMessage() string {
	msg := t.cfg.Texts.Error
	if status, ok := core.StatusOf(t.cfg.Err); ok {
		msg += fmt.Sprintf(t.cfg.Texts.ErrorStatus, status)
	}
	return msg
}

func (t *Table[T]) headers() []Header {
	headers := make([]Header, 0, len(t.cfg.Columns))
	for _, col := range t.cfg.Columns {
		h := Header{
			Key:   col.Header,
			Label: col.Header,
			Class: col.Class,
			Icon:  SortNone,
		}
		if t.cfg.OnSortChange != nil && col.canSort() {
			field := col.sortField()
			h.Clickable = true
			h.Href = t.cfg.Link(SortEvent(field))
			h.Icon = SortUnsorted
			if t.cfg.Sort.Field == field {
				h.Icon = SortAsc
				if t.cfg.Sort.Direction == pagination.Descending {
					h.Icon = SortDesc
				}
			}
		}
		headers = append(headers, h)
	}
	return headers
}

func (t *Table[T]) rows() []Row {
	rows := make([]Row, 0, len(t.cfg.Rows))
	for i, data := range t.cfg.Rows {
		row := Row{
			ID:    t.cfg.RowID(data, i),
			Cells: make([]Cell, 0, len(t.cfg.Columns)),
		}
		for _, col := range t.cfg.Columns {
			row.Cells = append(row.Cells, Cell{
				Key:     row.ID + "-" + col.Header,
				Label:   col.Header,
				Content: col.content(data),
				Class:   col.cellClass(data),
			})
		}
		rows = append(rows, row)
	}
	return rows
}

func (t *Table[T]) pager() *Pager {
	state := t.cfg.Page
	if state.TotalElements <= 0 {
		return nil
	}
	texts := t.cfg.Texts
	totalPages := state.TotalPages()
	p := &Pager{
		PageIndex:     state.PageIndex,
		PageSize:      state.SafePageSize(),
		TotalPages:    totalPages,
		TotalElements: state.TotalElements,
		From:          state.FirstElement(),
		To:            state.LastElement(),
		ShowStrip:     totalPages > 1,
	}
	p.Summary = fmt.Sprintf(texts.Summary, p.From, p.To, p.TotalElements)
	p.MobileSummary = fmt.Sprintf(texts.MobileResults, p.TotalElements)
	if totalPages > 1 {
		p.MobileSummary = fmt.Sprintf(texts.MobilePage, state.PageIndex+1, totalPages) + " " + p.MobileSummary
	}

	for _, size := range t.cfg.PageSizes {
		p.Sizes = append(p.Sizes, SizeOption{
			Size:     size,
			Selected: size == p.PageSize,
			Href:     t.cfg.Link(SizeEvent(size)),
		})
	}

	if !p.ShowStrip {
		return p
	}
	p.Previous = t.navButton(state.PageIndex - 1)
	p.Next = t.navButton(state.PageIndex + 1)
	for _, item := range pagination.Window(state.PageIndex, totalPages) {
		if item.Ellipsis {
			p.Strip = append(p.Strip, PageButton{Ellipsis: true})
			continue
		}
		btn := PageButton{
			Page:    item.Page,
			Label:   strconv.Itoa(item.Page + 1),
			Current: item.Page == state.PageIndex,
		}
		if !btn.Current {
			btn.Href = t.cfg.Link(PageEvent(item.Page))
		}
		p.Strip = append(p.Strip, btn)
	}
	return p
}

func (t *Table[T]) navButton(target int) NavButton {
	if !t.cfg.Page.Contains(target) {
		return NavButton{Disabled: true}
	}
	return NavButton{Href: t.cfg.Link(PageEvent(target))}
}
