package leads

import (
	"math"
	"strconv"
	"strings"

	"leaddesk/internal/validate"
)

// ValidationError lists the form's failing fields in display order.
type ValidationError = validate.ValidationError

var formMessages = validate.Messages{
	"first_name.required": "First name is required",
	"last_name.required":  "Last name is required",
	"email.required":      "Email is required",
	"email.leademail":     "Invalid email address",
	"source.required":     "Source is required",
	"source.oneof":        "Invalid source",
	"status.oneof":        "Invalid status",
	"score.min":           "Score must be at least 0",
	"score.max":           "Score must be at most 100",
	"lead_value.min":      "Lead value must be positive",
}

var fieldOrder = []string{
	"first_name", "last_name", "email", "phone", "company", "city", "state",
	"source", "status", "score", "lead_value", "is_qualified",
}

// Form is the editable state of the lead form. Numbers are kept as typed
// text so bad input can be reported rather than silently dropped.
type Form struct {
	ID          ID
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	Company     string
	City        string
	State       string
	Source      Source
	Status      Status
	Score       string
	LeadValue   string
	IsQualified bool
}

// NewForm returns an empty create form.
func NewForm() Form {
	return Form{Status: StatusNew}
}

// FormFromLead prefills an edit form from l. Identity and audit fields
// are not copied except the ID that marks the form as editing.
func FormFromLead(l Lead) Form {
	f := Form{
		ID:          l.ID,
		FirstName:   l.FirstName,
		LastName:    l.LastName,
		Email:       l.Email,
		Phone:       l.Phone,
		Company:     l.Company,
		City:        l.City,
		State:       l.State,
		Source:      l.Source,
		Status:      l.Status,
		IsQualified: l.IsQualified,
	}
	if l.Score != nil {
		f.Score = strconv.Itoa(*l.Score)
	}
	if l.LeadValue != nil {
		f.LeadValue = strconv.FormatFloat(*l.LeadValue, 'f', -1, 64)
	}
	return f
}

// Editing reports whether the form targets an existing lead.
func (f Form) Editing() bool { return f.ID != "" }

// Validate checks the form and returns the body to submit. On failure the
// error is a *ValidationError and the Input must not be sent.
func (f Form) Validate() (Input, error) {
	in := Input{
		FirstName:   strings.TrimSpace(f.FirstName),
		LastName:    strings.TrimSpace(f.LastName),
		Email:       strings.TrimSpace(f.Email),
		Phone:       strings.TrimSpace(f.Phone),
		Company:     strings.TrimSpace(f.Company),
		City:        strings.TrimSpace(f.City),
		State:       strings.TrimSpace(f.State),
		Source:      f.Source,
		Status:      f.Status,
		IsQualified: f.IsQualified,
	}

	parseErrs := map[string]string{}
	if s := strings.TrimSpace(f.Score); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			parseErrs["score"] = "Score must be a number"
		} else {
			in.Score = &n
		}
	}
	if s := strings.TrimSpace(f.LeadValue); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
			parseErrs["lead_value"] = "Lead value must be a number"
		} else {
			in.LeadValue = &v
		}
	}

	var structErrs *ValidationError
	if err := validate.Default().Struct(in, formMessages); err != nil {
		var ok bool
		if structErrs, ok = err.(*ValidationError); !ok {
			return Input{}, err
		}
	}

	if len(parseErrs) == 0 && structErrs.Empty() {
		return in, nil
	}

	out := &ValidationError{}
	for _, field := range fieldOrder {
		if msg, ok := parseErrs[field]; ok {
			out.Add(field, msg)
		} else if msg := structErrs.Message(field); msg != "" {
			out.Add(field, msg)
		}
	}
	return Input{}, out
}
