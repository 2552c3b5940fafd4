// Package pagination holds the page state of one list screen.
package pagination

import "orderdesk/internal/listview"

// Marker is one slot of the rendered page window: either a page or a gap.
type Marker struct {
	Page     int  `json:"page"`
	Ellipsis bool `json:"ellipsis,omitempty"`
	Current  bool `json:"current,omitempty"`
}

// State is a read-only copy of a controller.
type State struct {
	CurrentPage int `json:"currentPage"`
	PageSize    int `json:"pageSize"`
	TotalPages  int `json:"totalPages"`
}

// Controller is not safe for concurrent use; callers guard it.
type Controller struct {
	currentPage int
	pageSize    int
	totalPages  int
}

func New(pageSize int) *Controller {
	if pageSize <= 0 {
		pageSize = listview.DefaultPageSize
	}
	return &Controller{pageSize: pageSize}
}

func (c *Controller) State() State {
	return State{CurrentPage: c.currentPage, PageSize: c.pageSize, TotalPages: c.totalPages}
}

// Restore puts back a state taken with State.
func (c *Controller) Restore(s State) {
	c.currentPage = s.CurrentPage
	c.pageSize = s.PageSize
	c.totalPages = s.TotalPages
	if c.pageSize <= 0 {
		c.pageSize = listview.DefaultPageSize
	}
}

func (c *Controller) CurrentPage() int { return c.currentPage }
func (c *Controller) PageSize() int    { return c.pageSize }
func (c *Controller) TotalPages() int  { return c.totalPages }

// SetPageSize changes the page size and returns to the first page.
func (c *Controller) SetPageSize(n int) {
	if n <= 0 {
		n = listview.DefaultPageSize
	}
	c.pageSize = n
	c.currentPage = 0
}

// SetFilter is called whenever the query or a server filter changes.
func (c *Controller) SetFilter() {
	c.currentPage = 0
}

// GoToPage clamps p into the known range. Without pages it does nothing.
func (c *Controller) GoToPage(p int) {
	if c.totalPages == 0 {
		return
	}
	c.currentPage = max(0, min(p, c.totalPages-1))
}

// Sync recomputes the page count for filteredCount items.
func (c *Controller) Sync(filteredCount int) {
	c.totalPages = listview.TotalPages(filteredCount, c.pageSize)
	if c.currentPage >= c.totalPages || c.currentPage < 0 {
		c.currentPage = 0
	}
}

// Visible reports whether pagination controls should be rendered.
func (c *Controller) Visible() bool {
	return c.totalPages > 0
}

// Window lists the first and last page, the current page and its
// neighbours. Skipped runs collapse into one ellipsis marker.
func (c *Controller) Window() []Marker {
	return Window(c.currentPage, c.totalPages)
}

func Window(current, total int) []Marker {
	if total <= 0 {
		return nil
	}
	markers := make([]Marker, 0, 7)
	last := -1
	for p := 0; p < total; p++ {
		if p != 0 && p != total-1 && (p < current-1 || p > current+1) {
			continue
		}
		if last >= 0 && p-last > 1 {
			markers = append(markers, Marker{Page: last + 1, Ellipsis: true})
		}
		markers = append(markers, Marker{Page: p, Current: p == current})
		last = p
	}
	return markers
}
