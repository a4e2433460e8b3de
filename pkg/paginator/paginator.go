// Package paginator slices ordered collections into fixed-size pages.
//
// Page numbers are 1-based. Out-of-range page numbers clamp to the nearest
// valid page instead of erroring, so a stale link to page 99 of a shrunken
// listing still resolves to the last page.
package paginator

// Page describes one page of an ordered result set.
type Page struct {
	Number      int  `json:"number"`
	Size        int  `json:"size"`
	TotalItems  int  `json:"total_items"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// New computes page metadata for a collection of total items.
// An empty collection still has one (empty) page.
func New(total, size, number int) Page {
	if size < 1 {
		size = 1
	}
	totalPages := (total + size - 1) / size
	if totalPages < 1 {
		totalPages = 1
	}
	if number < 1 {
		number = 1
	}
	if number > totalPages {
		number = totalPages
	}
	return Page{
		Number:      number,
		Size:        size,
		TotalItems:  total,
		TotalPages:  totalPages,
		HasNext:     number < totalPages,
		HasPrevious: number > 1,
	}
}

// Offset returns the index of the first item on the page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Limit returns the maximum number of items on the page.
func (p Page) Limit() int {
	return p.Size
}
