package report

import (
	"strings"
	"testing"
)

func TestCollectorSeverityOrdering(t *testing.T) {
	c := NewCollector("02_outline")
	c.AddInfo("progress", "outline parsed")
	c.AddWarning("validation", "only 3 sections (need 4-8)", WithContentType("lecture"))
	c.AddError("generation", "failed to generate outline", WithContext("outline"))
	c.AddWarning("validation", "no safety warnings found", WithContentType("lab"))

	all := c.AllIssues()
	if len(all) != 4 {
		t.Fatalf("issues = %d, want 4", len(all))
	}
	wantOrder := []Severity{SeverityCritical, SeverityWarning, SeverityWarning, SeverityInfo}
	for i, want := range wantOrder {
		if all[i].Severity != want {
			t.Fatalf("position %d severity = %s, want %s", i, all[i].Severity, want)
		}
	}
	// stable within a severity
	if all[1].Message != "only 3 sections (need 4-8)" {
		t.Fatalf("warning order not preserved: %s", all[1].Message)
	}
}

func TestCollectorQueries(t *testing.T) {
	c := NewCollector("03_primary")
	c.AddError("validation", "no questions detected", WithContentType("questions"), WithSession(2, 3))
	c.AddWarning("validation", "only 8 questions (require 10)", WithContentType("questions"))
	c.AddWarning("validation", "no examples found", WithContentType("lecture"), WithContext("module_02"))

	if got := len(c.ByContentType("questions")); got != 2 {
		t.Fatalf("questions issues = %d, want 2", got)
	}
	if got := len(c.ByType("validation")); got != 3 {
		t.Fatalf("validation issues = %d, want 3", got)
	}
	if got := len(c.ByContext("module_02")); got != 1 {
		t.Fatalf("context issues = %d, want 1", got)
	}
	if !c.HasCritical() {
		t.Fatal("expected critical issues")
	}

	s := c.Summary()
	if s.BySeverity["CRITICAL"] != 1 || s.BySeverity["WARNING"] != 2 {
		t.Fatalf("summary = %+v", s.BySeverity)
	}
	if s.ByContentType["questions"] != 2 {
		t.Fatalf("content type counts = %+v", s.ByContentType)
	}

	c.Clear()
	if len(c.AllIssues()) != 0 {
		t.Fatal("clear left issues behind")
	}
}

func TestAnalyzeErrorPatterns(t *testing.T) {
	c := NewCollector("03_primary")
	for i := 0; i < 3; i++ {
		c.AddWarning("validation", "no examples found", WithContentType("lecture"), WithContext("session"))
	}
	c.AddWarning("validation", "one-off message", WithContentType("lab"))

	patterns := c.AnalyzeErrorPatterns()
	if len(patterns) != 1 {
		t.Fatalf("patterns = %d, want 1 (singletons excluded)", len(patterns))
	}
	if patterns[0].Count != 3 || patterns[0].Message != "no examples found" {
		t.Fatalf("pattern = %+v", patterns[0])
	}
}

func TestSuggestRecovery(t *testing.T) {
	c := NewCollector("x")
	if s := c.SuggestRecovery("llm_timeout", "lecture"); !strings.Contains(s, "timeout") {
		t.Fatalf("timeout suggestion = %q", s)
	}
	if s := c.SuggestRecovery("outline_parse", "outline"); !strings.Contains(s, "simplified prompt") {
		t.Fatalf("parse suggestion = %q", s)
	}
}

func TestAssessQualityImpact(t *testing.T) {
	c := NewCollector("x")
	q := c.AssessQualityImpact()
	if q.Score != 100 {
		t.Fatalf("empty collector score = %.0f, want 100", q.Score)
	}
	for i := 0; i < 4; i++ {
		c.AddError("validation", "failed to generate content")
	}
	q = c.AssessQualityImpact()
	if q.Score != 40 {
		t.Fatalf("score = %.0f, want 40", q.Score)
	}
	if !strings.Contains(q.Verdict, "rework") {
		t.Fatalf("verdict = %q", q.Verdict)
	}
}

func TestIsCriticalWarning(t *testing.T) {
	tests := []struct {
		warning string
		minimum int
		want    bool
	}{
		{"no questions detected", 0, true},
		{"no applications found", 0, true},
		{"invalid syntax: no recognized mermaid diagram header", 0, true},
		{"only 0 steps (need 5)", 5, true},
		{"only 1 sections (need 4-8)", 4, true},
		{"only 2 examples (require 5-15)", 5, true},
		{"only 2 applications (need 2)", 2, false},
		{"only 3 sections (need 4-8)", 4, false},
		{"word count 400 below minimum 800", 800, false},
		{"key concepts: 12 (too many, max 10)", 5, false},
		{"no safety warnings found", 0, false},
		// length exclusions outrank the critical phrases
		{"too many fragments: cannot parse 3 of them", 0, false},
		{"word count 9000 exceeds maximum 3000, invalid syntax in tables", 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.warning, func(t *testing.T) {
			if got := IsCriticalWarning(tc.warning, tc.minimum); got != tc.want {
				t.Fatalf("IsCriticalWarning(%q, %d) = %v, want %v", tc.warning, tc.minimum, got, tc.want)
			}
		})
	}
}
