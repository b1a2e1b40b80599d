package retry

import (
	"strings"
	"testing"

	"github.com/yungbote/courseforge/internal/config"
	"github.com/yungbote/courseforge/internal/pkg/logger"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		message string
		want    Category
	}{
		{"3 questions missing question marks", CategoryFormat},
		{"2 multiple-choice questions do not have exactly 4 options", CategoryFormat},
		{"word count 400 below minimum 800", CategoryContentLength},
		{"too few nodes: 2 (need 3)", CategoryContentLength},
		{"key concepts: 12 (too many, max 10)", CategoryContentLength},
		{"only 2 examples (require 5-15)", CategoryCompleteness},
		{"no questions detected", CategoryMissingContent},
		{"no examples found", CategoryMissingContent},
		{"something went sideways", CategoryUnknown},
	}
	for _, tc := range tests {
		t.Run(tc.message, func(t *testing.T) {
			if got := Categorize(tc.message); got != tc.want {
				t.Fatalf("Categorize(%q) = %s, want %s", tc.message, got, tc.want)
			}
		})
	}
}

func TestShouldRetryBudget(t *testing.T) {
	m := NewManager(logger.NewNop())
	if ok, _ := m.ShouldRetry("no examples found", "lecture", 3, 3); ok {
		t.Fatal("retry allowed past max attempts")
	}
	ok, strategy := m.ShouldRetry("no examples found", "lecture", 0, 3)
	if !ok {
		t.Fatal("first retry refused")
	}
	if strategy != StrategyEnhanced {
		t.Fatalf("strategy = %s, want enhanced", strategy)
	}
}

func TestShouldRetryDefaultStrategies(t *testing.T) {
	m := NewManager(logger.NewNop())
	if _, s := m.ShouldRetry("word count 100 below minimum 800", "lecture", 0, 3); s != StrategySimplified {
		t.Fatalf("content_length strategy = %s, want simplified", s)
	}
	if _, s := m.ShouldRetry("weird failure", "lecture", 0, 3); s != StrategyImmediate {
		t.Fatalf("unknown strategy = %s, want immediate", s)
	}
}

func TestShouldRetryLowSuccessRateCutoff(t *testing.T) {
	m := NewManager(logger.NewNop())
	for i := 0; i < 5; i++ {
		m.RecordAttempt("validation", "no examples found", "lecture", i, false, StrategyEnhanced, "")
	}
	if ok, _ := m.ShouldRetry("no examples found", "lecture", 1, 5); ok {
		t.Fatal("retry allowed despite 0% success rate")
	}
	// the first attempt is always allowed regardless of history
	if ok, _ := m.ShouldRetry("no examples found", "lecture", 0, 5); !ok {
		t.Fatal("initial retry refused")
	}
	// other content types keep their own ledger
	if ok, _ := m.ShouldRetry("no examples found", "lab", 1, 5); !ok {
		t.Fatal("cutoff leaked across content types")
	}
}

func TestStrategyPreferenceFromHistory(t *testing.T) {
	m := NewManager(logger.NewNop())
	m.RecordAttempt("validation", "only 3 examples (require 5-15)", "lecture", 1, true, StrategySimplified, "")
	m.RecordAttempt("validation", "only 4 examples (require 5-15)", "lecture", 1, true, StrategySimplified, "")
	m.RecordAttempt("validation", "only 2 examples (require 5-15)", "lecture", 1, true, StrategyEnhanced, "")

	a := m.AnalyzeErrorPattern("only 1 examples (require 5-15)", "lecture")
	if a.ErrorCategory != CategoryCompleteness {
		t.Fatalf("category = %s, want completeness", a.ErrorCategory)
	}
	if a.SuggestedStrategy != StrategySimplified {
		t.Fatalf("strategy = %s, want simplified (2 wins vs 1)", a.SuggestedStrategy)
	}
	if a.SimilarPatternsFound != 3 {
		t.Fatalf("similar = %d, want 3", a.SimilarPatternsFound)
	}
	if a.SuccessRateForCategory != 1.0 {
		t.Fatalf("rate = %.2f, want 1.0", a.SuccessRateForCategory)
	}
}

func TestPatternFIFOBound(t *testing.T) {
	m := NewManager(logger.NewNop())
	for i := 0; i < defaultMaxPatterns+20; i++ {
		m.RecordAttempt("validation", "no examples found", "lecture", 1, i%2 == 0, StrategyEnhanced, "")
	}
	if len(m.patterns) != defaultMaxPatterns {
		t.Fatalf("patterns = %d, want %d", len(m.patterns), defaultMaxPatterns)
	}
	if m.Stats().TotalAttempts != defaultMaxPatterns+20 {
		t.Fatalf("counters should survive eviction, attempts = %d", m.Stats().TotalAttempts)
	}
}

func TestFeedback(t *testing.T) {
	m := NewManager(logger.NewNop())
	req := &config.Requirements{
		MinWordCount: 800, MaxWordCount: 3000,
		MinSections: 4, MaxSections: 8,
		MinExamples: 5, MaxExamples: 15,
	}
	warnings := []string{
		"word count 400 below minimum 800",
		"only 2 examples (require 5-15)",
	}
	fb := m.Feedback("only 2 examples (require 5-15)", "lecture", warnings, req)

	for _, want := range []string{
		"VALIDATION FEEDBACK FROM PREVIOUS ATTEMPT",
		"LENGTH PROBLEMS",
		"INCOMPLETE CONTENT",
		"word count 400 below minimum 800",
		"CRITICAL FIXES REQUIRED:",
		"between 800 and 3000 words",
		"'for example'",
	} {
		if !strings.Contains(fb, want) {
			t.Fatalf("feedback missing %q:\n%s", want, fb)
		}
	}
	if !strings.HasPrefix(fb, "```\n") || !strings.HasSuffix(fb, "```\n") {
		t.Fatalf("feedback not fenced:\n%s", fb)
	}
}

func TestFeedbackCapsWarnings(t *testing.T) {
	m := NewManager(logger.NewNop())
	warnings := []string{"w one", "w two", "w three", "w four", "w five"}
	fb := m.Feedback("", "lecture", warnings, nil)
	if strings.Contains(fb, "w four") {
		t.Fatalf("feedback should carry at most %d warnings:\n%s", maxFeedbackWarnings, fb)
	}
}
