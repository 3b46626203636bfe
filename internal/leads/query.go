package leads

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
)

// DefaultLimit is the page size used when none is configured.
const DefaultLimit = 20

// Operator is a filter comparison.
type Operator string

const (
	OpContains Operator = "contains"
	OpEquals   Operator = "equals"
)

// Predicate is one field filter.
type Predicate struct {
	Operator Operator `json:"operator"`
	Value    string   `json:"value"`
}

// Filters maps a lead field to its predicate.
type Filters map[string]Predicate

// EmailContains builds the search filter for term. A blank term yields
// no filters.
func EmailContains(term string) Filters {
	term = strings.TrimSpace(term)
	if term == "" {
		return Filters{}
	}
	return Filters{"email": {Operator: OpContains, Value: term}}
}

// Clone returns an independent copy.
func (f Filters) Clone() Filters {
	out := make(Filters, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Encode returns the JSON form sent in the filters query parameter.
func (f Filters) Encode() (string, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Query is one list request.
type Query struct {
	Page    int
	Limit   int
	Filters Filters
}

// Values returns the URL query. filters is omitted when empty.
func (q Query) Values() (url.Values, error) {
	v := url.Values{}
	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	v.Set("page", strconv.Itoa(page))
	v.Set("limit", strconv.Itoa(limit))
	if len(q.Filters) > 0 {
		enc, err := q.Filters.Encode()
		if err != nil {
			return nil, err
		}
		v.Set("filters", enc)
	}
	return v, nil
}

// Page is one page of results.
type Page struct {
	Data       []Lead `json:"data"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	Total      int    `json:"total"`
	TotalPages int    `json:"totalPages"`
}
