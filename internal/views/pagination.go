package views

import (
	"fmt"
	"io"
	"strings"
)

// PageItem is one entry of the pagination bar. Page is 0 for an ellipsis.
type PageItem struct {
	Page   int
	Active bool
}

// Ellipsis reports whether the item is a gap marker.
func (i PageItem) Ellipsis() bool { return i.Page == 0 }

// PageItems lays out the bar: the first page, a gap when current > 3, the
// pages from current-1 to current+2 strictly between first and last, a gap
// when current < total-2, then the last page. One page yields no items.
func PageItems(current, total int) []PageItem {
	if total <= 1 {
		return nil
	}
	items := []PageItem{{Page: 1, Active: current == 1}}
	if current > 3 {
		items = append(items, PageItem{})
	}
	for p := current - 1; p <= current+2; p++ {
		if p > 1 && p < total {
			items = append(items, PageItem{Page: p, Active: p == current})
		}
	}
	if current < total-2 {
		items = append(items, PageItem{})
	}
	return append(items, PageItem{Page: total, Active: current == total})
}

// RenderPagination writes the bar as text, e.g. "‹ 1 … 4 [5] 6 7 … 10 ›".
func RenderPagination(w io.Writer, current, total int) error {
	items := PageItems(current, total)
	if len(items) == 0 {
		return nil
	}
	parts := make([]string, 0, len(items)+2)
	parts = append(parts, edge("‹", current == 1))
	for _, it := range items {
		switch {
		case it.Ellipsis():
			parts = append(parts, "…")
		case it.Active:
			parts = append(parts, fmt.Sprintf("[%d]", it.Page))
		default:
			parts = append(parts, fmt.Sprintf("%d", it.Page))
		}
	}
	parts = append(parts, edge("›", current == total))
	_, err := fmt.Fprintln(w, strings.Join(parts, " "))
	return err
}

func edge(mark string, disabled bool) string {
	if disabled {
		return " "
	}
	return mark
}
