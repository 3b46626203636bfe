package ui

import (
	"strings"
	"testing"
	"time"

	"leaddesk/internal/leads"
	"leaddesk/internal/notify"
)

func TestThemeFor(t *testing.T) {
	if ThemeFor("light").IsDark {
		t.Error("light theme should not be dark")
	}
	if !ThemeFor("dark").IsDark {
		t.Error("dark theme should be dark")
	}

	t.Setenv("COLORFGBG", "0;15")
	if ThemeFor("auto").IsDark {
		t.Error("expected light theme for a white background")
	}
	t.Setenv("COLORFGBG", "15;0")
	if !ThemeFor("auto").IsDark {
		t.Error("expected dark theme for a black background")
	}
}

func TestSettingsTable(t *testing.T) {
	table := NewSettingsTable("Settings")
	if table.View(DefaultStyles(), 0) != "" {
		t.Error("empty table should render nothing")
	}
	table.Add("api.base_url", "https://example.com")
	table.Add("api.timeout", "30s")
	table.Add("ui.theme", "")
	table.Add("verbose", "true")

	if table.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", table.Len())
	}

	view := table.View(DefaultStyles(), 0)
	for _, want := range []string{"Settings", "api", "base_url", "https://example.com", "timeout", "ui", "general", "verbose"} {
		if !strings.Contains(view, want) {
			t.Errorf("View missing %q", want)
		}
	}
	if strings.Index(view, "api") > strings.Index(view, "ui") {
		t.Error("sections should keep insertion order")
	}

	cut := table.View(DefaultStyles(), 8)
	if strings.Contains(cut, "https://example.com") {
		t.Error("long value should be truncated")
	}
	if !strings.Contains(cut, "https:/…") {
		t.Errorf("expected truncated value, got:\n%s", cut)
	}
}

func TestCards(t *testing.T) {
	out := Cards(DefaultStyles(), []string{"Total Leads", "New"}, []string{"42", "3"})
	for _, want := range []string{"Total Leads", "42", "New", "3"} {
		if !strings.Contains(out, want) {
			t.Errorf("cards missing %q", want)
		}
	}
}

func TestBadgesAndScore(t *testing.T) {
	s := NewStyles(LightTheme())
	if !strings.Contains(s.StatusBadge(leads.Status("archived")), "Archived") {
		t.Error("unknown status keeps its label")
	}
	if s.Score(nil) != "" {
		t.Error("unset score renders blank")
	}
	n := 85
	if !strings.Contains(s.Score(&n), "85") {
		t.Error("score text missing")
	}
	if !strings.Contains(s.Notice(notify.Notice{Level: notify.LevelError, Text: "Failed to fetch leads"}), "Failed to fetch leads") {
		t.Error("notice text missing")
	}
}

func TestLeadMarkdown(t *testing.T) {
	score := 72
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	md := LeadMarkdown(leads.Lead{
		ID: "7", FirstName: "Grace", LastName: "Hopper", Email: "grace@navy.mil",
		City: "Arlington", Source: leads.SourceEvents, Status: leads.StatusWon,
		Score: &score, IsQualified: true, CreatedAt: &created, Company: "A|B",
	})

	for _, want := range []string{"# Grace Hopper", "**Won** · Events", "| Email | grace@navy.mil |", "72 (high)", "| Location | Arlington |", `A\|B`, "| Qualified | Yes |"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestMarkdownRenderer(t *testing.T) {
	var r MarkdownRenderer
	out := r.Render("# Hello\n\nworld", 40, true)
	if !strings.Contains(out, "Hello") || !strings.Contains(out, "world") {
		t.Errorf("rendered output missing content: %q", out)
	}
	if r.renderer == nil {
		t.Fatal("renderer should be cached")
	}
	first := r.renderer
	r.Render("again", 40, true)
	if r.renderer != first {
		t.Error("renderer should be reused for the same width and theme")
	}
}

func TestLayout(t *testing.T) {
	l := NewLayoutConfig(90, 30)
	if !l.IsCompact {
		t.Error("90 columns should be compact")
	}
	if l.DetailWidth() != l.ContentWidth() {
		t.Error("compact detail pane should use the full width")
	}
	if NewLayoutConfig(80, 3).TableHeight() != 5 {
		t.Error("table height should floor at 5")
	}
}
