package datatable_test

import (
	"errors"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deltegui/bankconsole/core"
	"github.com/deltegui/bankconsole/datatable"
	"github.com/deltegui/bankconsole/pagination"
)

type merchant struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Status string
}

type recorder struct {
	pages []int
	sizes []int
	sorts []pagination.Sort
}

func (r *recorder) calls() int {
	return len(r.pages) + len(r.sizes) + len(r.sorts)
}

func config(rec *recorder, rows []merchant, page pagination.State) datatable.Config[merchant] {
	return datatable.Config[merchant]{
		Columns: []datatable.Column[merchant]{
			{Header: "ID", Accessor: "id", Sortable: true},
			{Header: "Name", Accessor: "name", Sortable: true},
			{Header: "Status", Accessor: "Status"},
		},
		Rows:             rows,
		Page:             page,
		OnPageChange:     func(p int) { rec.pages = append(rec.pages, p) },
		OnPageSizeChange: func(s int) { rec.sizes = append(rec.sizes, s) },
		OnSortChange:     func(s pagination.Sort) { rec.sorts = append(rec.sorts, s) },
		RowID:            func(m merchant, _ int) string { return fmt.Sprint(m.ID) },
		Link:             datatable.QueryLink("/admin/merchants", url.Values{"size": {"10"}}),
	}
}

func newTable(t *testing.T, cfg datatable.Config[merchant]) *datatable.Table[merchant] {
	t.Helper()
	table, err := datatable.New(cfg)
	require.NoError(t, err)
	return table
}

func someMerchants(n int) []merchant {
	rows := make([]merchant, n)
	for i := range rows {
		rows[i] = merchant{ID: int64(i + 1), Name: fmt.Sprintf("M%d", i+1), Status: "ACTIVE"}
	}
	return rows
}

func TestNewRequiresCallbacksAndRowID(t *testing.T) {
	rec := &recorder{}
	cfg := config(rec, nil, pagination.State{})
	cfg.RowID = nil
	_, err := datatable.New(cfg)
	assert.ErrorIs(t, err, datatable.ErrMissingRowID)

	cfg = config(rec, nil, pagination.State{})
	cfg.OnPageChange = nil
	_, err = datatable.New(cfg)
	assert.ErrorIs(t, err, datatable.ErrMissingPageChange)

	cfg = config(rec, nil, pagination.State{})
	cfg.OnPageSizeChange = nil
	_, err = datatable.New(cfg)
	assert.ErrorIs(t, err, datatable.ErrMissingPageSizeChange)

	cfg = config(rec, nil, pagination.State{})
	cfg.OnSortChange = nil
	_, err = datatable.New(cfg)
	assert.NoError(t, err)
}

func TestNoTotalRendersEmptyWithoutPagination(t *testing.T) {
	rec := &recorder{}
	view := newTable(t, config(rec, nil, pagination.State{PageSize: 10})).View()
	assert.Equal(t, datatable.StatusEmpty, view.Status)
	assert.Equal(t, "No data found.", view.Message)
	assert.Nil(t, view.Pagination)
	assert.Empty(t, view.Rows)

	view = newTable(t, config(rec, someMerchants(2), pagination.State{PageSize: 10})).View()
	assert.Equal(t, datatable.StatusEmpty, view.Status)
	assert.Nil(t, view.Pagination)
}

func TestPreviousNextDisabledAtEdges(t *testing.T) {
	for _, total := range []int{1, 9, 10, 11, 47, 100} {
		for _, size := range []int{0, 1, 10, 20} {
			state := pagination.State{PageSize: size, TotalElements: total}
			totalPages := state.TotalPages()
			for page := 0; page < totalPages; page++ {
				state.PageIndex = page
				rec := &recorder{}
				view := newTable(t, config(rec, someMerchants(1), state)).View()
				require.NotNil(t, view.Pagination)
				p := view.Pagination
				maxSize := size
				if maxSize < 1 {
					maxSize = 1
				}
				assert.Equal(t, (total+maxSize-1)/maxSize, p.TotalPages)
				if totalPages == 1 {
					assert.False(t, p.ShowStrip)
					continue
				}
				assert.Equal(t, page >= totalPages-1, p.Next.Disabled, "next total=%d size=%d page=%d", total, size, page)
				assert.Equal(t, page == 0, p.Previous.Disabled, "previous total=%d size=%d page=%d", total, size, page)
			}
		}
	}
}

func TestPageButtonCallsOnlyOnPageChange(t *testing.T) {
	rec := &recorder{}
	table := newTable(t, config(rec, someMerchants(10), pagination.State{PageIndex: 2, PageSize: 10, TotalElements: 95}))

	assert.True(t, table.GoToPage(7))
	assert.Equal(t, []int{7}, rec.pages)
	assert.Equal(t, 1, rec.calls())

	assert.False(t, table.GoToPage(2), "current page")
	assert.False(t, table.GoToPage(10), "past the end")
	assert.False(t, table.GoToPage(-1))
	assert.Equal(t, 1, rec.calls())

	assert.True(t, table.PreviousPage())
	assert.True(t, table.NextPage())
	assert.Equal(t, []int{7, 1, 3}, rec.pages)
}

func TestPreviousNextNeverLeaveRange(t *testing.T) {
	rec := &recorder{}
	first := newTable(t, config(rec, someMerchants(10), pagination.State{PageIndex: 0, PageSize: 10, TotalElements: 30}))
	assert.False(t, first.PreviousPage())
	last := newTable(t, config(rec, someMerchants(10), pagination.State{PageIndex: 2, PageSize: 10, TotalElements: 30}))
	assert.False(t, last.NextPage())
	assert.Zero(t, rec.calls())
}

func TestSortToggle(t *testing.T) {
	rec := &recorder{}
	cfg := config(rec, someMerchants(3), pagination.State{PageSize: 10, TotalElements: 3})

	assert.True(t, newTable(t, cfg).ToggleSort("name"))
	require.Len(t, rec.sorts, 1)
	assert.Equal(t, pagination.Sort{Field: "name", Direction: pagination.Ascending}, rec.sorts[0])

	cfg.Sort = rec.sorts[0]
	assert.True(t, newTable(t, cfg).ToggleSort("name"))
	assert.Equal(t, pagination.Sort{Field: "name", Direction: pagination.Descending}, rec.sorts[1])

	cfg.Sort = rec.sorts[1]
	assert.True(t, newTable(t, cfg).ToggleSort("id"))
	assert.Equal(t, pagination.Sort{Field: "id", Direction: pagination.Ascending}, rec.sorts[2])

	assert.False(t, newTable(t, cfg).ToggleSort("Status"), "not sortable")
	assert.False(t, newTable(t, cfg).ToggleSort("unknown"))
	assert.Len(t, rec.sorts, 3)
}

func TestSortIsInertWithoutCallback(t *testing.T) {
	rec := &recorder{}
	cfg := config(rec, someMerchants(3), pagination.State{PageSize: 10, TotalElements: 3})
	cfg.OnSortChange = nil
	cfg.Sort = pagination.Sort{Field: "name", Direction: pagination.Ascending}
	table := newTable(t, cfg)
	assert.False(t, table.ToggleSort("name"))
	for _, h := range table.View().Headers {
		assert.False(t, h.Clickable)
		assert.Equal(t, datatable.SortNone, h.Icon)
		assert.Empty(t, h.Href)
	}
}

func TestSortableWithoutKeyIsNotSortable(t *testing.T) {
	rec := &recorder{}
	cfg := config(rec, someMerchants(1), pagination.State{PageSize: 10, TotalElements: 1})
	cfg.Columns = append(cfg.Columns, datatable.Column[merchant]{
		Header:   "Actions",
		Sortable: true,
		Render:   func(m merchant) template.HTML { return datatable.Link("/x", "Edit") },
	})
	view := newTable(t, cfg).View()
	actions := view.Headers[len(view.Headers)-1]
	assert.False(t, actions.Clickable)
	assert.Equal(t, datatable.SortNone, actions.Icon)
}

func TestHeaderIcons(t *testing.T) {
	rec := &recorder{}
	cfg := config(rec, someMerchants(1), pagination.State{PageSize: 10, TotalElements: 1})
	cfg.Sort = pagination.Sort{Field: "name", Direction: pagination.Descending}
	view := newTable(t, cfg).View()
	icons := make([]datatable.SortIcon, 0, len(view.Headers))
	for _, h := range view.Headers {
		icons = append(icons, h.Icon)
	}
	assert.Equal(t, []datatable.SortIcon{datatable.SortUnsorted, datatable.SortDesc, datatable.SortNone}, icons)
	assert.Equal(t, "/admin/merchants?ev=sort&field=name&size=10", view.Headers[1].Href)
}

func TestSortWithoutDirectionIsAscending(t *testing.T) {
	rec := &recorder{}
	cfg := config(rec, someMerchants(1), pagination.State{PageSize: 10, TotalElements: 1})
	cfg.Sort = pagination.Sort{Field: "name"}
	table := newTable(t, cfg)

	assert.Equal(t, datatable.SortAsc, table.View().Headers[1].Icon)
	assert.True(t, table.ToggleSort("name"))
	assert.Equal(t, pagination.Sort{Field: "name", Direction: pagination.Descending}, rec.sorts[0])
}

func stripPages(p *datatable.Pager) []int {
	out := []int{}
	for _, b := range p.Strip {
		if b.Ellipsis {
			out = append(out, -1)
			continue
		}
		out = append(out, b.Page)
	}
	return out
}

func TestPageStripWindow(t *testing.T) {
	cases := map[int][]int{
		0: {0, 1, 2, 3, 4, -1, 9},
		9: {0, -1, 5, 6, 7, 8, 9},
		5: {0, -1, 3, 4, 5, 6, 7, -1, 9},
	}
	for page, want := range cases {
		rec := &recorder{}
		view := newTable(t, config(rec, someMerchants(10), pagination.State{PageIndex: page, PageSize: 10, TotalElements: 100})).View()
		assert.Equal(t, want, stripPages(view.Pagination), "page %d", page)
		for _, b := range view.Pagination.Strip {
			if b.Current {
				assert.Equal(t, page, b.Page)
				assert.Empty(t, b.Href)
			}
		}
	}
}

func TestLoadingTakesPrecedenceOverError(t *testing.T) {
	rec := &recorder{}
	cfg := config(rec, someMerchants(2), pagination.State{PageSize: 10, TotalElements: 2})
	cfg.Loading = true
	cfg.Err = errors.New("boom")
	view := newTable(t, cfg).View()
	assert.Equal(t, datatable.StatusLoading, view.Status)
	assert.Equal(t, "Loading data...", view.Message)
	assert.Nil(t, view.Pagination)
	assert.Empty(t, view.Rows)
}

func TestErrorLine(t *testing.T) {
	rec := &recorder{}
	cfg := config(rec, someMerchants(2), pagination.State{PageSize: 10, TotalElements: 2})

	cfg.Err = errors.New("opaque")
	view := newTable(t, cfg).View()
	assert.Equal(t, datatable.StatusError, view.Status)
	assert.Equal(t, "Error loading data. Please try again.", view.Message)

	cfg.Err = fmt.Errorf("list merchants: %w", &core.Failure{Kind: core.FailureHTTP, Code: 503})
	assert.Equal(t, "Error loading data. Please try again. (Status: 503)", newTable(t, cfg).View().Message)

	cfg.Err = &core.Failure{Kind: core.FailureNetwork, Detail: "connection refused"}
	assert.Equal(t, "Error loading data. Please try again. (Status: FETCH_ERROR)", newTable(t, cfg).View().Message)
}

func TestTwoRowsOnePage(t *testing.T) {
	table := newTable(t, datatable.Config[merchant]{
		Columns:          []datatable.Column[merchant]{{Header: "Name", Accessor: "name"}},
		Rows:             []merchant{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}},
		Page:             pagination.State{PageIndex: 0, PageSize: 10, TotalElements: 2},
		OnPageChange:     func(int) {},
		OnPageSizeChange: func(int) {},
		RowID:            func(m merchant, _ int) string { return fmt.Sprint(m.ID) },
		Link:             datatable.QueryLink("/m", nil),
	})
	view := table.View()

	wantRows := []datatable.Row{
		{ID: "1", Cells: []datatable.Cell{{Key: "1-Name", Label: "Name", Content: "A"}}},
		{ID: "2", Cells: []datatable.Cell{{Key: "2-Name", Label: "Name", Content: "B"}}},
	}
	if diff := cmp.Diff(wantRows, view.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	require.NotNil(t, view.Pagination)
	assert.False(t, view.Pagination.ShowStrip)
	assert.Empty(t, view.Pagination.Strip)
	assert.Equal(t, "Showing 1 to 2 of 2 results", view.Pagination.Summary)
	assert.Equal(t, "(2 results)", view.Pagination.MobileSummary)
}

func TestColumnWithoutAccessorOrRenderIsNA(t *testing.T) {
	rec := &recorder{}
	cfg := config(rec, someMerchants(3), pagination.State{PageSize: 10, TotalElements: 3})
	cfg.Columns = []datatable.Column[merchant]{
		{Header: "Nothing"},
		{Header: "Typo", Accessor: "doesNotExist"},
	}
	for _, row := range newTable(t, cfg).View().Rows {
		for _, cell := range row.Cells {
			assert.Equal(t, template.HTML(datatable.NotAvailable), cell.Content)
		}
	}
}

func TestSummaryAndMobileLine(t *testing.T) {
	rec := &recorder{}
	view := newTable(t, config(rec, someMerchants(7), pagination.State{PageIndex: 4, PageSize: 10, TotalElements: 47})).View()
	assert.Equal(t, 41, view.Pagination.From)
	assert.Equal(t, 47, view.Pagination.To)
	assert.Equal(t, "Showing 41 to 47 of 47 results", view.Pagination.Summary)
	assert.Equal(t, "Page 5 of 5 (47 results)", view.Pagination.MobileSummary)
}

func TestCellClassesAndRender(t *testing.T) {
	rec := &recorder{}
	cfg := config(rec, []merchant{{ID: 1, Name: "<b>x</b>", Status: "BLOCKED"}}, pagination.State{PageSize: 10, TotalElements: 1})
	cfg.Columns[1].CellClass = "font-bold"
	cfg.Columns[2].CellClassFunc = func(m merchant) string {
		if m.Status == "BLOCKED" {
			return "text-red-600"
		}
		return "text-green-600"
	}
	cells := newTable(t, cfg).View().Rows[0].Cells
	assert.Equal(t, template.HTML("&lt;b&gt;x&lt;/b&gt;"), cells[1].Content)
	assert.Equal(t, "font-bold", cells[1].Class)
	assert.Equal(t, "text-red-600", cells[2].Class)
}

func TestPageSizeOptions(t *testing.T) {
	rec := &recorder{}
	table := newTable(t, config(rec, someMerchants(10), pagination.State{PageIndex: 1, PageSize: 20, TotalElements: 95}))
	view := table.View()
	sizes := []int{}
	for _, o := range view.Pagination.Sizes {
		sizes = append(sizes, o.Size)
		assert.Equal(t, o.Size == 20, o.Selected)
	}
	assert.Equal(t, []int{10, 20, 50, 100}, sizes)

	assert.True(t, table.ChangePageSize(50))
	assert.False(t, table.ChangePageSize(0))
	assert.Equal(t, []int{50}, rec.sizes)
}

func TestDispatchQuery(t *testing.T) {
	rec := &recorder{}
	table := newTable(t, config(rec, someMerchants(10), pagination.State{PageIndex: 0, PageSize: 10, TotalElements: 95}))

	assert.True(t, table.DispatchQuery(url.Values{"ev": {"page"}, "to": {"3"}}))
	assert.True(t, table.DispatchQuery(url.Values{"ev": {"size"}, "to": {"20"}}))
	assert.True(t, table.DispatchQuery(url.Values{"ev": {"sort"}, "field": {"id"}}))
	assert.False(t, table.DispatchQuery(url.Values{"ev": {"page"}, "to": {"x"}}))
	assert.False(t, table.DispatchQuery(url.Values{}))

	assert.Equal(t, []int{3}, rec.pages)
	assert.Equal(t, []int{20}, rec.sizes)
	assert.Equal(t, []pagination.Sort{{Field: "id", Direction: pagination.Ascending}}, rec.sorts)
}

func TestEventRoundTrip(t *testing.T) {
	for _, e := range []datatable.Event{datatable.PageEvent(4), datatable.SizeEvent(50), datatable.SortEvent("timestamp")} {
		values, err := url.ParseQuery(e.Query())
		require.NoError(t, err)
		got, ok := datatable.DecodeEvent(values)
		require.True(t, ok)
		assert.Equal(t, e, got)
	}
}

func TestQueryLinkKeepsBaseAndReplacesEvent(t *testing.T) {
	base := url.Values{"type": {"PAYIN"}, "ev": {"page"}, "to": {"1"}}
	link := datatable.QueryLink("/admin/transactions", base)
	assert.Equal(t, "/admin/transactions?ev=sort&field=amount&type=PAYIN", link(datatable.SortEvent("amount")))
	assert.Equal(t, "1", base.Get("to"), "base is not modified")
}

func TestLookup(t *testing.T) {
	name := "ptr"
	row := struct {
		Amount float64 `json:"amount"`
		Name   *string `json:"name,omitempty"`
		Empty  *string
		hidden string
	}{Amount: 12.5, Name: &name, hidden: "x"}

	v, ok := datatable.Lookup(row, "amount")
	assert.True(t, ok)
	assert.Equal(t, "12.5", v)
	v, ok = datatable.Lookup(&row, "Name")
	assert.True(t, ok)
	assert.Equal(t, "ptr", v)
	_, ok = datatable.Lookup(row, "Empty")
	assert.False(t, ok)
	_, ok = datatable.Lookup(row, "hidden")
	assert.False(t, ok)
	_, ok = datatable.Lookup(nil, "x")
	assert.False(t, ok)

	v, ok = datatable.Lookup(map[string]any{"type": "PAYIN"}, "type")
	assert.True(t, ok)
	assert.Equal(t, "PAYIN", v)
}

func TestRenderHTML(t *testing.T) {
	rec := &recorder{}
	view := newTable(t, config(rec, someMerchants(10), pagination.State{PageIndex: 5, PageSize: 10, TotalElements: 100})).View()
	html, err := view.HTML()
	require.NoError(t, err)
	out := string(html)
	assert.Contains(t, out, `id="row-1"`)
	assert.Contains(t, out, `id="card-1"`)
	assert.Contains(t, out, "Showing 51 to 60 of 100 results")
	assert.Contains(t, out, `aria-current="page"`)
	assert.Equal(t, 2, strings.Count(out, ">...</span>"))

	empty, err := newTable(t, config(rec, nil, pagination.State{PageSize: 10})).View().HTML()
	require.NoError(t, err)
	assert.Contains(t, string(empty), "No data found.")
	assert.NotContains(t, string(empty), "<table")
}

func TestLocalizedTexts(t *testing.T) {
	texts := datatable.Localized(map[string]string{"DataTableEmpty": "Nenhum dado encontrado."})
	assert.Equal(t, "Nenhum dado encontrado.", texts.Empty)
	assert.Equal(t, "Loading data...", texts.Loading)
}
