package leads

import (
	"errors"
	"fmt"
)

// ErrPageOutOfRange is returned for a page outside 1..TotalPages.
var ErrPageOutOfRange = errors.New("page out of range")

// Pagination is the server's view of the current page.
type Pagination struct {
	Page       int
	Limit      int
	Total      int
	TotalPages int
}

// Browser tracks the list view's filters and pagination. It never talks
// to the network: each action returns the Query to fetch, and Apply
// records what the server sent back.
type Browser struct {
	pagination Pagination
	filters    Filters
	rows       []Lead
	loaded     bool
}

// NewBrowser returns a browser on page 1 with no filters.
func NewBrowser(limit int) *Browser {
	if limit < 1 {
		limit = DefaultLimit
	}
	return &Browser{
		pagination: Pagination{Page: 1, Limit: limit},
		filters:    Filters{},
	}
}

func (b *Browser) query(page int) Query {
	return Query{Page: page, Limit: b.pagination.Limit, Filters: b.filters.Clone()}
}

// InitialQuery is the first fetch when the list mounts.
func (b *Browser) InitialQuery() Query {
	return b.query(1)
}

// Search commits the email filter for term and returns page 1.
func (b *Browser) Search(term string) Query {
	b.filters = EmailContains(term)
	return b.query(1)
}

// PageQuery returns the fetch for page n with the active filters.
func (b *Browser) PageQuery(n int) (Query, error) {
	if n < 1 || (b.loaded && n > max(b.pagination.TotalPages, 1)) {
		return Query{}, fmt.Errorf("%w: %d (1..%d)", ErrPageOutOfRange, n, b.pagination.TotalPages)
	}
	return b.query(n), nil
}

// NextQuery and PrevQuery step one page.
func (b *Browser) NextQuery() (Query, error) { return b.PageQuery(b.pagination.Page + 1) }
func (b *Browser) PrevQuery() (Query, error) { return b.PageQuery(b.pagination.Page - 1) }

// RefreshQuery re-fetches page 1 with the active filters.
func (b *Browser) RefreshQuery() Query {
	return b.query(1)
}

// CurrentQuery re-fetches the current page with the active filters.
func (b *Browser) CurrentQuery() Query {
	return b.query(max(b.pagination.Page, 1))
}

// SetLimit changes the page size and returns the page-1 fetch.
func (b *Browser) SetLimit(limit int) Query {
	if limit > 0 {
		b.pagination.Limit = limit
	}
	return b.query(1)
}

// Apply records a page returned for q.
func (b *Browser) Apply(q Query, p Page) {
	b.rows = p.Data
	b.loaded = true

	b.pagination.Page = p.Page
	if b.pagination.Page < 1 {
		b.pagination.Page = max(q.Page, 1)
	}
	if p.Limit > 0 {
		b.pagination.Limit = p.Limit
	}
	b.pagination.Total = p.Total
	b.pagination.TotalPages = p.TotalPages
}

// Rows returns the leads on the current page.
func (b *Browser) Rows() []Lead { return b.rows }

// Loaded reports whether any page has been applied.
func (b *Browser) Loaded() bool { return b.loaded }

// Pagination returns the current pagination.
func (b *Browser) Pagination() Pagination { return b.pagination }

// Filters returns a copy of the active filters.
func (b *Browser) Filters() Filters { return b.filters.Clone() }

// SearchTerm returns the active email search, or "".
func (b *Browser) SearchTerm() string {
	return b.filters["email"].Value
}

// HasPrev and HasNext report whether paging is possible.
func (b *Browser) HasPrev() bool { return b.pagination.Page > 1 }
func (b *Browser) HasNext() bool { return b.pagination.Page < b.pagination.TotalPages }

// ShowPager reports whether there is more than one page.
func (b *Browser) ShowPager() bool { return b.pagination.TotalPages > 1 }

// Showing returns "Showing X to Y of Z results".
func (b *Browser) Showing() string {
	p := b.pagination
	if p.Total == 0 {
		return "Showing 0 to 0 of 0 results"
	}
	from := (p.Page-1)*p.Limit + 1
	to := min(p.Page*p.Limit, p.Total)
	return fmt.Sprintf("Showing %d to %d of %d results", from, to, p.Total)
}

// PageText returns "Page N of M".
func (b *Browser) PageText() string {
	return fmt.Sprintf("Page %d of %d", b.pagination.Page, max(b.pagination.TotalPages, 1))
}

// Stats are the summary cards above the grid. Total comes from the
// server; the rest count the current page only.
type Stats struct {
	Total     int
	New       int
	Qualified int
	Value     float64
}

// Stats computes the summary cards.
func (b *Browser) Stats() Stats {
	s := Stats{Total: b.pagination.Total}
	for _, l := range b.rows {
		if l.Status == StatusNew {
			s.New++
		}
		if l.IsQualified {
			s.Qualified++
		}
		s.Value += l.Value()
	}
	return s
}
