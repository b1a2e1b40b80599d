// Package retry tracks generation failures across the whole run and
// decides whether, and how, a failed artifact should be regenerated. One
// Manager is shared by every generator in the process.
package retry

import (
	"strings"
	"time"

	"github.com/yungbote/courseforge/internal/pkg/logger"
)

// Category classifies a validation failure by what kind of fix it needs.
type Category string

const (
	CategoryFormat         Category = "format"
	CategoryContentLength  Category = "content_length"
	CategoryCompleteness   Category = "completeness"
	CategoryMissingContent Category = "missing_content"
	CategoryUnknown        Category = "unknown"
)

// Strategy names how the next attempt's prompt is built.
type Strategy string

const (
	StrategyImmediate  Strategy = "immediate"
	StrategyEnhanced   Strategy = "enhanced"
	StrategySimplified Strategy = "simplified"
	StrategyAdaptive   Strategy = "adaptive"
)

// defaultMaxPatterns bounds the pattern FIFO.
const defaultMaxPatterns = 100

// minSuccessRate is the cutoff below which retrying a category is not
// worth another model call.
const minSuccessRate = 0.20

// Pattern is one recorded attempt.
type Pattern struct {
	ErrorType    string
	ErrorMessage string
	ContentType  string
	Category     Category
	AttemptCount int
	Success      bool
	StrategyUsed Strategy
	FixApplied   string
	RecordedAt   time.Time
}

type counter struct {
	attempts  int
	successes int
}

func (c *counter) rate() float64 {
	if c.attempts == 0 {
		return 0
	}
	return float64(c.successes) / float64(c.attempts)
}

type categoryKey struct {
	contentType string
	category    Category
}

// Manager is the process-wide retry state. Generators run sequentially, so
// no locking is needed.
type Manager struct {
	log         *logger.Logger
	maxPatterns int

	patterns []Pattern

	totalAttempts  int
	totalSuccesses int
	byContentType  map[string]*counter
	byCategory     map[categoryKey]*counter
	byStrategy     map[Strategy]*counter
	// successes per (category, strategy), used to prefer what has worked
	strategyWins map[Category]map[Strategy]int
}

func NewManager(log *logger.Logger) *Manager {
	return &Manager{
		log:           log,
		maxPatterns:   defaultMaxPatterns,
		byContentType: map[string]*counter{},
		byCategory:    map[categoryKey]*counter{},
		byStrategy:    map[Strategy]*counter{},
		strategyWins:  map[Category]map[Strategy]int{},
	}
}

// categoryRules map lowercase error substrings to categories. Order
// matters: the first matching rule wins.
var categoryRules = []struct {
	category Category
	keywords []string
}{
	{CategoryFormat, []string{"format", "missing question marks", "do not have"}},
	{CategoryContentLength, []string{"word count", "too many", "too few", "exceeds", "below"}},
	{CategoryCompleteness, []string{"only", "require", "need"}},
	{CategoryMissingContent, []string{"no questions detected", "no examples", "no sections"}},
}

// Categorize maps an error message to its retry category.
func Categorize(message string) Category {
	lower := strings.ToLower(message)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category
			}
		}
	}
	return CategoryUnknown
}

// defaultStrategy is the per-category starting point before any history
// exists.
func defaultStrategy(cat Category) Strategy {
	switch cat {
	case CategoryContentLength:
		return StrategySimplified
	case CategoryUnknown:
		return StrategyImmediate
	default:
		return StrategyEnhanced
	}
}

// RecordAttempt appends a pattern and updates every counter. The oldest
// pattern is evicted once the FIFO is full; counters are cumulative and
// unaffected by eviction.
func (m *Manager) RecordAttempt(errorType, errorMessage, contentType string, attemptCount int, success bool, strategyUsed Strategy, fixApplied string) {
	cat := Categorize(errorMessage)
	p := Pattern{
		ErrorType:    errorType,
		ErrorMessage: errorMessage,
		ContentType:  contentType,
		Category:     cat,
		AttemptCount: attemptCount,
		Success:      success,
		StrategyUsed: strategyUsed,
		FixApplied:   fixApplied,
		RecordedAt:   time.Now(),
	}
	m.patterns = append(m.patterns, p)
	if len(m.patterns) > m.maxPatterns {
		m.patterns = m.patterns[1:]
	}

	m.totalAttempts++
	if success {
		m.totalSuccesses++
	}
	bump(m.byContentType, contentType, success)
	bump(m.byCategory, categoryKey{contentType, cat}, success)
	if strategyUsed != "" {
		bump(m.byStrategy, strategyUsed, success)
		if success {
			if m.strategyWins[cat] == nil {
				m.strategyWins[cat] = map[Strategy]int{}
			}
			m.strategyWins[cat][strategyUsed]++
		}
	}
}

func bump[K comparable](set map[K]*counter, key K, success bool) {
	c := set[key]
	if c == nil {
		c = &counter{}
		set[key] = c
	}
	c.attempts++
	if success {
		c.successes++
	}
}

// PatternAnalysis is the read-side view of history for one error.
type PatternAnalysis struct {
	ErrorCategory          Category
	SuggestedStrategy      Strategy
	SimilarPatternsFound   int
	SuccessRateForCategory float64
}

// AnalyzeErrorPattern classifies the message and reports how similar
// failures have fared, with a strategy suggestion biased toward whatever
// has succeeded most for the category.
func (m *Manager) AnalyzeErrorPattern(errorMessage, contentType string) PatternAnalysis {
	cat := Categorize(errorMessage)
	a := PatternAnalysis{
		ErrorCategory:     cat,
		SuggestedStrategy: defaultStrategy(cat),
	}
	for _, p := range m.patterns {
		if p.Category == cat && p.ContentType == contentType {
			a.SimilarPatternsFound++
		}
	}
	if c := m.byCategory[categoryKey{contentType, cat}]; c != nil {
		a.SuccessRateForCategory = c.rate()
	}
	if best, ok := m.bestStrategy(cat); ok {
		a.SuggestedStrategy = best
	}
	return a
}

func (m *Manager) bestStrategy(cat Category) (Strategy, bool) {
	wins := m.strategyWins[cat]
	var best Strategy
	bestN := 0
	for s, n := range wins {
		if n > bestN {
			best, bestN = s, n
		}
	}
	return best, bestN > 0
}

// ShouldRetry decides whether another attempt is worthwhile. It refuses
// once the attempt budget is spent, and also once history shows the
// category succeeding under 20% of the time for this content type.
func (m *Manager) ShouldRetry(errorMessage, contentType string, attempt, maxRetries int) (bool, Strategy) {
	if attempt >= maxRetries {
		return false, ""
	}
	cat := Categorize(errorMessage)
	key := categoryKey{contentType, cat}
	if c := m.byCategory[key]; c != nil && attempt >= 1 && c.attempts >= 1 && c.rate() < minSuccessRate {
		if m.log != nil {
			m.log.Info("giving up on retry category",
				"content_type", contentType,
				"category", string(cat),
				"success_rate", c.rate())
		}
		return false, ""
	}
	strategy := defaultStrategy(cat)
	if best, ok := m.bestStrategy(cat); ok {
		strategy = best
	}
	return true, strategy
}

// Stats summarizes the manager's counters for end-of-run reporting.
type Stats struct {
	TotalAttempts  int
	TotalSuccesses int
	SuccessRate    float64
	ByContentType  map[string]float64
	ByStrategy     map[Strategy]float64
}

func (m *Manager) Stats() Stats {
	s := Stats{
		TotalAttempts:  m.totalAttempts,
		TotalSuccesses: m.totalSuccesses,
		ByContentType:  map[string]float64{},
		ByStrategy:     map[Strategy]float64{},
	}
	if m.totalAttempts > 0 {
		s.SuccessRate = float64(m.totalSuccesses) / float64(m.totalAttempts)
	}
	for ct, c := range m.byContentType {
		s.ByContentType[ct] = c.rate()
	}
	for st, c := range m.byStrategy {
		s.ByStrategy[st] = c.rate()
	}
	return s
}
