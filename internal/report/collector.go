// Package report accumulates structured issues for one pipeline stage and
// answers read-side questions about them: what failed, where, how badly,
// and what to try next. Each stage constructs its own Collector.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Severity orders issues. Lower value sorts first.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityWarning  Severity = "WARNING"
	SeverityInfo     Severity = "INFO"
)

func severityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityWarning:
		return 1
	default:
		return 2
	}
}

// Issue is one recorded problem.
type Issue struct {
	Type        string         `json:"type"`
	Message     string         `json:"message"`
	Severity    Severity       `json:"severity"`
	Context     string         `json:"context,omitempty"`
	ContentType string         `json:"content_type,omitempty"`
	ModuleID    int            `json:"module_id,omitempty"`
	SessionNum  int            `json:"session_num,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	RecordedAt  time.Time      `json:"recorded_at"`
}

// Option attaches optional fields to an issue.
type Option func(*Issue)

func WithContext(ctx string) Option {
	return func(i *Issue) { i.Context = ctx }
}

func WithContentType(ct string) Option {
	return func(i *Issue) { i.ContentType = ct }
}

func WithSession(moduleID, sessionNum int) Option {
	return func(i *Issue) {
		i.ModuleID = moduleID
		i.SessionNum = sessionNum
	}
}

func WithMetadata(md map[string]any) Option {
	return func(i *Issue) { i.Metadata = md }
}

// Collector gathers issues for a single stage. It is not shared across
// goroutines.
type Collector struct {
	stage  string
	issues []Issue
}

func NewCollector(stage string) *Collector {
	return &Collector{stage: stage}
}

func (c *Collector) add(severity Severity, typ, message string, opts []Option) {
	issue := Issue{
		Type:       typ,
		Message:    message,
		Severity:   severity,
		RecordedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(&issue)
	}
	c.issues = append(c.issues, issue)
}

func (c *Collector) AddError(typ, message string, opts ...Option) {
	c.add(SeverityCritical, typ, message, opts)
}

func (c *Collector) AddWarning(typ, message string, opts ...Option) {
	c.add(SeverityWarning, typ, message, opts)
}

func (c *Collector) AddInfo(typ, message string, opts ...Option) {
	c.add(SeverityInfo, typ, message, opts)
}

func (c *Collector) Critical() []Issue { return c.bySeverity(SeverityCritical) }
func (c *Collector) Warnings() []Issue { return c.bySeverity(SeverityWarning) }
func (c *Collector) Infos() []Issue    { return c.bySeverity(SeverityInfo) }

func (c *Collector) bySeverity(s Severity) []Issue {
	var out []Issue
	for _, i := range c.issues {
		if i.Severity == s {
			out = append(out, i)
		}
	}
	return out
}

func (c *Collector) ByContentType(ct string) []Issue {
	var out []Issue
	for _, i := range c.issues {
		if i.ContentType == ct {
			out = append(out, i)
		}
	}
	return out
}

func (c *Collector) ByType(typ string) []Issue {
	var out []Issue
	for _, i := range c.issues {
		if i.Type == typ {
			out = append(out, i)
		}
	}
	return out
}

func (c *Collector) ByContext(ctx string) []Issue {
	var out []Issue
	for _, i := range c.issues {
		if i.Context == ctx {
			out = append(out, i)
		}
	}
	return out
}

// AllIssues returns every issue ordered CRITICAL, WARNING, INFO, with
// insertion order preserved inside each severity.
func (c *Collector) AllIssues() []Issue {
	out := make([]Issue, len(c.issues))
	copy(out, c.issues)
	sort.SliceStable(out, func(a, b int) bool {
		return severityRank(out[a].Severity) < severityRank(out[b].Severity)
	})
	return out
}

func (c *Collector) HasCritical() bool {
	for _, i := range c.issues {
		if i.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// Summary aggregates issue counts along each axis.
type Summary struct {
	Stage         string         `json:"stage"`
	Total         int            `json:"total"`
	BySeverity    map[string]int `json:"by_severity"`
	ByContentType map[string]int `json:"by_content_type"`
	ByType        map[string]int `json:"by_type"`
}

func (c *Collector) Summary() Summary {
	s := Summary{
		Stage:         c.stage,
		Total:         len(c.issues),
		BySeverity:    map[string]int{},
		ByContentType: map[string]int{},
		ByType:        map[string]int{},
	}
	for _, i := range c.issues {
		s.BySeverity[string(i.Severity)]++
		if i.ContentType != "" {
			s.ByContentType[i.ContentType]++
		}
		s.ByType[i.Type]++
	}
	return s
}

// Snapshot is the serializable form of the collector, written into stage
// reports.
type Snapshot struct {
	Stage   string  `json:"stage"`
	Summary Summary `json:"summary"`
	Issues  []Issue `json:"issues"`
}

func (c *Collector) Snapshot() Snapshot {
	return Snapshot{Stage: c.stage, Summary: c.Summary(), Issues: c.AllIssues()}
}

func (c *Collector) Clear() {
	c.issues = nil
}

// PatternReport groups recurring messages for the end-of-stage log.
type PatternReport struct {
	Message     string   `json:"message"`
	Count       int      `json:"count"`
	ContentType string   `json:"content_type,omitempty"`
	Contexts    []string `json:"contexts,omitempty"`
}

// AnalyzeErrorPatterns reports messages that recurred, most frequent
// first.
func (c *Collector) AnalyzeErrorPatterns() []PatternReport {
	type key struct {
		message     string
		contentType string
	}
	byKey := map[key]*PatternReport{}
	var order []key
	for _, i := range c.issues {
		if i.Severity == SeverityInfo {
			continue
		}
		k := key{i.Message, i.ContentType}
		p := byKey[k]
		if p == nil {
			p = &PatternReport{Message: i.Message, ContentType: i.ContentType}
			byKey[k] = p
			order = append(order, k)
		}
		p.Count++
		if i.Context != "" {
			p.Contexts = appendUnique(p.Contexts, i.Context)
		}
	}
	out := make([]PatternReport, 0, len(order))
	for _, k := range order {
		if byKey[k].Count > 1 {
			out = append(out, *byKey[k])
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Count > out[b].Count })
	return out
}

// SuggestRecovery proposes a next step for a failing (type, content type)
// pair.
func (c *Collector) SuggestRecovery(errorType, contentType string) string {
	lower := strings.ToLower(errorType)
	switch {
	case strings.Contains(lower, "timeout"):
		return "increase the operation timeout in llm.yaml or switch to a smaller model"
	case strings.Contains(lower, "connection"), strings.Contains(lower, "transport"):
		return "check that the model server is running and reachable at the configured base_url"
	case strings.Contains(lower, "parse"):
		if contentType != "" {
			return fmt.Sprintf("regenerate the %s with a simplified prompt; the model is not following the required format", contentType)
		}
		return "regenerate with a simplified prompt; the model is not following the required format"
	case strings.Contains(lower, "validation"):
		return "re-run the stage; the retry system will feed the validation warnings back into the prompt"
	case strings.Contains(lower, "empty"):
		return "re-run the stage; the model returned no content, which is usually transient"
	default:
		return "inspect the stage log for the failing request id and re-run the stage"
	}
}

// Trend is the per-content-type issue trajectory within the stage.
type Trend struct {
	ContentType string `json:"content_type"`
	Issues      int    `json:"issues"`
	Critical    int    `json:"critical"`
}

// TrackTrends ranks content types by how many issues they accumulated.
func (c *Collector) TrackTrends() []Trend {
	byCT := map[string]*Trend{}
	var order []string
	for _, i := range c.issues {
		if i.ContentType == "" {
			continue
		}
		t := byCT[i.ContentType]
		if t == nil {
			t = &Trend{ContentType: i.ContentType}
			byCT[i.ContentType] = t
			order = append(order, i.ContentType)
		}
		t.Issues++
		if i.Severity == SeverityCritical {
			t.Critical++
		}
	}
	out := make([]Trend, 0, len(order))
	for _, ct := range order {
		out = append(out, *byCT[ct])
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Issues > out[b].Issues })
	return out
}

// QualityImpact condenses the stage's issues into a single verdict used in
// the final summary line.
type QualityImpact struct {
	Score   float64 `json:"score"`
	Verdict string  `json:"verdict"`
}

// AssessQualityImpact scores the stage from 100 down: 15 points per
// critical issue, 3 per warning.
func (c *Collector) AssessQualityImpact() QualityImpact {
	score := 100.0
	for _, i := range c.issues {
		switch i.Severity {
		case SeverityCritical:
			score -= 15
		case SeverityWarning:
			score -= 3
		}
	}
	if score < 0 {
		score = 0
	}
	verdict := "content meets configured requirements"
	switch {
	case score < 50:
		verdict = "significant rework needed; multiple sessions failed validation"
	case score < 80:
		verdict = "usable with review; some sessions carry validation warnings"
	}
	return QualityImpact{Score: score, Verdict: verdict}
}

func appendUnique(list []string, s string) []string {
	for _, x := range list {
		if x == s {
			return list
		}
	}
	return append(list, s)
}
