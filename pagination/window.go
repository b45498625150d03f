package pagination

// MaxVisiblePageButtons is the width of the sliding window of numbered page
// buttons. First and last page are always reachable outside of it.
const MaxVisiblePageButtons = 5

// StripItem is either a page number or a gap marker.
type StripItem struct {
	Page     int
	Ellipsis bool
}

// Window computes the page-number strip for the current page. It returns nil
// when there is a single page or none.
func Window(pageIndex, totalPages int) []StripItem {
	if totalPages <= 1 {
		return nil
	}
	half := (MaxVisiblePageButtons + 1) / 2
	start := pageIndex - half + 1
	end := pageIndex + half - 1
	switch {
	case totalPages <= MaxVisiblePageButtons:
		start, end = 0, totalPages-1
	case pageIndex < half:
		start, end = 0, MaxVisiblePageButtons-1
	case pageIndex >= totalPages-half:
		start, end = totalPages-MaxVisiblePageButtons, totalPages-1
	}

	items := make([]StripItem, 0, MaxVisiblePageButtons+4)
	if start > 0 {
		items = append(items, StripItem{Page: 0})
		if start > 1 {
			items = append(items, StripItem{Ellipsis: true})
		}
	}
	for i := start; i <= end; i++ {
		if i >= 0 && i < totalPages {
			items = append(items, StripItem{Page: i})
		}
	}
	if end < totalPages-1 {
		if end < totalPages-2 {
			items = append(items, StripItem{Ellipsis: true})
		}
		items = append(items, StripItem{Page: totalPages - 1})
	}
	return items
}
