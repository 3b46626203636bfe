package leads

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(n int) *int           { return &n }
func floatp(f float64) *float64 { return &f }

func TestID_DecodesStringOrNumber(t *testing.T) {
	var v struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"abc-1","b":42,"c":null}`), &v))
	assert.Equal(t, ID("abc-1"), v.A)
	assert.Equal(t, ID("42"), v.B)
	assert.Equal(t, ID(""), v.C)

	assert.Error(t, json.Unmarshal([]byte(`{"a":true}`), &v))
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "Facebook Ads", SourceFacebookAds.Label())
	assert.Equal(t, "tradeshow", Source("tradeshow").Label())
	assert.Equal(t, "Contacted", StatusContacted.Label())
	assert.Equal(t, "Archived", Status("archived").Label())
	assert.Equal(t, StatusNew, Status("archived").Style())
	assert.Equal(t, StatusWon, StatusWon.Style())
}

func TestBandFor(t *testing.T) {
	assert.Equal(t, ScoreHigh, BandFor(70))
	assert.Equal(t, ScoreMedium, BandFor(69))
	assert.Equal(t, ScoreMedium, BandFor(40))
	assert.Equal(t, ScoreLow, BandFor(39))
	assert.Equal(t, ScoreLow, BandFor(0))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "$0", FormatValue(0))
	assert.Equal(t, "$999", FormatValue(999))
	assert.Equal(t, "$1,000", FormatValue(1000))
	assert.Equal(t, "$1,234,567.5", FormatValue(1234567.5))
	assert.Equal(t, "-$12.25", FormatValue(-12.25))
}

// =============================================================================
// QUERY
// =============================================================================

func TestEmailContains(t *testing.T) {
	assert.Empty(t, EmailContains("   "))
	f := EmailContains("  acme.com ")
	assert.Equal(t, Filters{"email": {Operator: OpContains, Value: "acme.com"}}, f)

	enc, err := f.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"email":{"operator":"contains","value":"acme.com"}}`, enc)
}

func TestQueryValues(t *testing.T) {
	v, err := Query{Page: 2, Limit: 20}.Values()
	require.NoError(t, err)
	assert.Equal(t, "2", v.Get("page"))
	assert.Equal(t, "20", v.Get("limit"))
	assert.False(t, v.Has("filters"), "empty filters must be omitted")

	v, err = Query{Filters: EmailContains("x")}.Values()
	require.NoError(t, err)
	assert.Equal(t, "1", v.Get("page"))
	assert.Equal(t, "20", v.Get("limit"))
	assert.JSONEq(t, `{"email":{"operator":"contains","value":"x"}}`, v.Get("filters"))
}

// =============================================================================
// BROWSER
// =============================================================================

func page(n, total, pages int, rows ...Lead) Page {
	return Page{Data: rows, Page: n, Limit: 20, Total: total, TotalPages: pages}
}

func TestBrowser_SearchResetsToFirstPage(t *testing.T) {
	b := NewBrowser(20)
	q := b.InitialQuery()
	b.Apply(q, page(1, 100, 5))

	q, err := b.PageQuery(3)
	require.NoError(t, err)
	b.Apply(q, page(3, 100, 5))

	q = b.Search(" ada ")
	want := Query{Page: 1, Limit: 20, Filters: Filters{"email": {Operator: OpContains, Value: "ada"}}}
	if diff := cmp.Diff(want, q); diff != "" {
		t.Errorf("Search query mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "ada", b.SearchTerm())
}

func TestBrowser_PageChangeKeepsFilter(t *testing.T) {
	b := NewBrowser(20)
	q := b.Search("acme")
	b.Apply(q, page(1, 45, 3))

	q, err := b.PageQuery(2)
	require.NoError(t, err)
	assert.Equal(t, 2, q.Page)
	assert.Equal(t, EmailContains("acme"), q.Filters)
}

func TestBrowser_PageOutOfRange(t *testing.T) {
	b := NewBrowser(20)
	b.Apply(b.InitialQuery(), page(1, 45, 3))

	_, err := b.PageQuery(0)
	assert.True(t, errors.Is(err, ErrPageOutOfRange))
	_, err = b.PageQuery(4)
	assert.True(t, errors.Is(err, ErrPageOutOfRange))
	_, err = b.PrevQuery()
	assert.True(t, errors.Is(err, ErrPageOutOfRange))

	q, err := b.NextQuery()
	require.NoError(t, err)
	assert.Equal(t, 2, q.Page)
}

func TestBrowser_CurrentAndRefresh(t *testing.T) {
	b := NewBrowser(20)
	q := b.Search("acme")
	b.Apply(q, page(1, 45, 3))
	q, _ = b.PageQuery(3)
	b.Apply(q, page(3, 45, 3))

	cur := b.CurrentQuery()
	assert.Equal(t, 3, cur.Page)
	assert.Equal(t, EmailContains("acme"), cur.Filters)

	ref := b.RefreshQuery()
	assert.Equal(t, 1, ref.Page)
	assert.Equal(t, EmailContains("acme"), ref.Filters)
}

func TestBrowser_QueryFiltersAreIndependent(t *testing.T) {
	b := NewBrowser(20)
	q := b.Search("acme")
	q.Filters["email"] = Predicate{Operator: OpEquals, Value: "mutated"}
	assert.Equal(t, "acme", b.SearchTerm())
}

func TestBrowser_ShowingAndStats(t *testing.T) {
	b := NewBrowser(20)
	assert.Equal(t, "Showing 0 to 0 of 0 results", b.Showing())
	assert.False(t, b.ShowPager())

	rows := []Lead{
		{Status: StatusNew, LeadValue: floatp(1000)},
		{Status: StatusNew, IsQualified: true},
		{Status: StatusWon, IsQualified: true, LeadValue: floatp(250.5)},
	}
	q, _ := b.PageQuery(3)
	b.Apply(q, Page{Data: rows, Page: 3, Limit: 20, Total: 43, TotalPages: 3})

	assert.Equal(t, "Showing 41 to 43 of 43 results", b.Showing())
	assert.Equal(t, "Page 3 of 3", b.PageText())
	assert.True(t, b.ShowPager())
	assert.True(t, b.HasPrev())
	assert.False(t, b.HasNext())

	assert.Equal(t, Stats{Total: 43, New: 2, Qualified: 2, Value: 1250.5}, b.Stats())
}

func TestBrowser_ApplyFallsBackToQueryPage(t *testing.T) {
	b := NewBrowser(0)
	assert.Equal(t, DefaultLimit, b.Pagination().Limit)
	b.Apply(Query{Page: 2}, Page{Total: 30, TotalPages: 2})
	assert.Equal(t, 2, b.Pagination().Page)
	assert.Equal(t, DefaultLimit, b.Pagination().Limit)
}

// =============================================================================
// FORM
// =============================================================================

func validForm() Form {
	f := NewForm()
	f.FirstName = "Ada"
	f.LastName = "Lovelace"
	f.Email = "ada@example.com"
	f.Source = SourceReferral
	return f
}

func TestForm_Valid(t *testing.T) {
	f := validForm()
	f.Score = "85"
	f.LeadValue = "1500.50"
	f.IsQualified = true

	in, err := f.Validate()
	require.NoError(t, err)
	want := Input{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
		Source: SourceReferral, Status: StatusNew,
		Score: intp(85), LeadValue: floatp(1500.5), IsQualified: true,
	}
	if diff := cmp.Diff(want, in); diff != "" {
		t.Errorf("input mismatch (-want +got):\n%s", diff)
	}
}

func TestForm_BoundaryNumbers(t *testing.T) {
	f := validForm()
	f.Score = "0"
	f.LeadValue = "0"
	_, err := f.Validate()
	assert.NoError(t, err)

	f.Score = "100"
	_, err = f.Validate()
	assert.NoError(t, err)
}

func TestForm_Messages(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Form)
		want   []string
	}{
		{"missing first name", func(f *Form) { f.FirstName = "" }, []string{"First name is required"}},
		{"blank last name", func(f *Form) { f.LastName = "   " }, []string{"Last name is required"}},
		{"missing email", func(f *Form) { f.Email = "" }, []string{"Email is required"}},
		{"bad email", func(f *Form) { f.Email = "ada@nowhere" }, []string{"Invalid email address"}},
		{"missing source", func(f *Form) { f.Source = "" }, []string{"Source is required"}},
		{"unknown source", func(f *Form) { f.Source = "tv" }, []string{"Invalid source"}},
		{"score low", func(f *Form) { f.Score = "-1" }, []string{"Score must be at least 0"}},
		{"score high", func(f *Form) { f.Score = "101" }, []string{"Score must be at most 100"}},
		{"score text", func(f *Form) { f.Score = "high" }, []string{"Score must be a number"}},
		{"value negative", func(f *Form) { f.LeadValue = "-5" }, []string{"Lead value must be positive"}},
		{"value text", func(f *Form) { f.LeadValue = "lots" }, []string{"Lead value must be a number"}},
		{"value inf", func(f *Form) { f.LeadValue = "Inf" }, []string{"Lead value must be a number"}},
		{"value +inf", func(f *Form) { f.LeadValue = "+Inf" }, []string{"Lead value must be a number"}},
		{"value nan", func(f *Form) { f.LeadValue = "NaN" }, []string{"Lead value must be a number"}},
		{"everything", func(f *Form) {
			*f = Form{Score: "x", LeadValue: "-1"}
		}, []string{
			"First name is required", "Last name is required", "Email is required",
			"Source is required", "Score must be a number", "Lead value must be positive",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.mutate(&f)
			_, err := f.Validate()
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.want, verr.Messages())
		})
	}
}

func TestFormFromLead(t *testing.T) {
	l := Lead{
		ID: "7", UserID: "u1", FirstName: "Grace", LastName: "Hopper", Email: "grace@navy.mil",
		Company: "USN", Source: SourceEvents, Status: StatusQualified,
		Score: intp(90), LeadValue: floatp(12000), IsQualified: true,
	}
	f := FormFromLead(l)
	assert.True(t, f.Editing())
	assert.Equal(t, "90", f.Score)
	assert.Equal(t, "12000", f.LeadValue)
	assert.False(t, NewForm().Editing())

	in, err := f.Validate()
	require.NoError(t, err)
	body, err := json.Marshal(in)
	require.NoError(t, err)
	for _, audit := range []string{`"id"`, `"user_id"`, `"created_at"`, `"updated_at"`} {
		assert.NotContains(t, string(body), audit)
	}
}

func TestForm_EditSendsClearedFields(t *testing.T) {
	l := Lead{
		ID: "7", FirstName: "Grace", LastName: "Hopper", Email: "grace@navy.mil",
		Phone: "555-0100", Company: "USN", City: "Arlington", State: "VA",
		Source: SourceEvents, Status: StatusQualified,
		Score: intp(90), LeadValue: floatp(12000),
	}
	f := FormFromLead(l)
	f.Phone = ""
	f.Company = "  "
	f.Score = ""
	f.LeadValue = ""

	in, err := f.Validate()
	require.NoError(t, err)
	body, err := json.Marshal(in)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &got))
	want := map[string]interface{}{
		"first_name":   "Grace",
		"last_name":    "Hopper",
		"email":        "grace@navy.mil",
		"phone":        "",
		"company":      "",
		"city":         "Arlington",
		"state":        "VA",
		"source":       "events",
		"status":       "qualified",
		"score":        nil,
		"lead_value":   nil,
		"is_qualified": false,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
}
