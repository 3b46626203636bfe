// Package leads holds the client-side lead model: the record as the API
// returns it, list filters and pagination state, and the edit form.
package leads

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ID is a server-assigned identifier. The API is not consistent about
// sending ids as strings or numbers, so both decode.
type ID string

// UnmarshalJSON accepts a JSON string or number.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Source is where a lead came from.
type Source string

const (
	SourceWebsite     Source = "website"
	SourceFacebookAds Source = "facebook_ads"
	SourceGoogleAds   Source = "google_ads"
	SourceReferral    Source = "referral"
	SourceEvents      Source = "events"
	SourceOther       Source = "other"
)

// Sources lists every source in display order.
var Sources = []Source{SourceWebsite, SourceFacebookAds, SourceGoogleAds, SourceReferral, SourceEvents, SourceOther}

var sourceLabels = map[Source]string{
	SourceWebsite:     "Website",
	SourceFacebookAds: "Facebook Ads",
	SourceGoogleAds:   "Google Ads",
	SourceReferral:    "Referral",
	SourceEvents:      "Events",
	SourceOther:       "Other",
}

// Label returns the display label. Unknown values are shown raw.
func (s Source) Label() string {
	if l, ok := sourceLabels[s]; ok {
		return l
	}
	return string(s)
}

// Status is the lead's pipeline stage.
type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusQualified Status = "qualified"
	StatusLost      Status = "lost"
	StatusWon       Status = "won"
)

// Statuses lists every status in pipeline order.
var Statuses = []Status{StatusNew, StatusContacted, StatusQualified, StatusLost, StatusWon}

// Label capitalises the status.
func (s Status) Label() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// Style returns the status used to pick a badge style. Unknown statuses
// are styled as new.
func (s Status) Style() Status {
	for _, known := range Statuses {
		if s == known {
			return s
		}
	}
	return StatusNew
}

// Lead is a lead record as returned by the API.
type Lead struct {
	ID          ID         `json:"id"`
	UserID      ID         `json:"user_id,omitempty"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone,omitempty"`
	Company     string     `json:"company,omitempty"`
	City        string     `json:"city,omitempty"`
	State       string     `json:"state,omitempty"`
	Source      Source     `json:"source"`
	Status      Status     `json:"status,omitempty"`
	Score       *int       `json:"score,omitempty"`
	LeadValue   *float64   `json:"lead_value,omitempty"`
	IsQualified bool       `json:"is_qualified"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// FullName returns "first last".
func (l Lead) FullName() string {
	return strings.TrimSpace(l.FirstName + " " + l.LastName)
}

// ScoreValue returns the score, or 0 when unset.
func (l Lead) ScoreValue() int {
	if l.Score == nil {
		return 0
	}
	return *l.Score
}

// Value returns the lead value, or 0 when unset.
func (l Lead) Value() float64 {
	if l.LeadValue == nil {
		return 0
	}
	return *l.LeadValue
}

// ScoreBand classifies a score for coloring.
type ScoreBand int

const (
	ScoreLow ScoreBand = iota
	ScoreMedium
	ScoreHigh
)

// BandFor returns the band for score: >= 70 high, >= 40 medium, else low.
func BandFor(score int) ScoreBand {
	switch {
	case score >= 70:
		return ScoreHigh
	case score >= 40:
		return ScoreMedium
	default:
		return ScoreLow
	}
}

// FormatValue renders a lead value as currency with thousands separators.
func FormatValue(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	whole := strconv.FormatFloat(v, 'f', 2, 64)
	intPart, frac, _ := strings.Cut(whole, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := "$" + b.String()
	if frac != "00" {
		out += "." + strings.TrimRight(frac, "0")
	}
	if neg {
		out = "-" + out
	}
	return out
}

// Input is the body sent on create and update. Audit fields and the
// identity are never submitted. Every editable field is always present so
// an update can clear it: blank strings go as "", unset numbers as null.
type Input struct {
	FirstName   string   `json:"first_name" validate:"required"`
	LastName    string   `json:"last_name" validate:"required"`
	Email       string   `json:"email" validate:"required,leademail"`
	Phone       string   `json:"phone"`
	Company     string   `json:"company"`
	City        string   `json:"city"`
	State       string   `json:"state"`
	Source      Source   `json:"source" validate:"required,oneof=website facebook_ads google_ads referral events other"`
	Status      Status   `json:"status,omitempty" validate:"omitempty,oneof=new contacted qualified lost won"`
	Score       *int     `json:"score" validate:"omitempty,min=0,max=100"`
	LeadValue   *float64 `json:"lead_value" validate:"omitempty,min=0"`
	IsQualified bool     `json:"is_qualified"`
}
