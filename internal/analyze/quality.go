package analyze

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/yungbote/courseforge/internal/config"
	"github.com/yungbote/courseforge/internal/types"
)

// QualityLevel buckets an overall score.
type QualityLevel string

const (
	QualityPoor      QualityLevel = "poor"
	QualityFair      QualityLevel = "fair"
	QualityGood      QualityLevel = "good"
	QualityExcellent QualityLevel = "excellent"
)

// QualityScore is the deterministic session-quality verdict derived from
// analyzer metrics.
type QualityScore struct {
	OverallScore float64      `json:"overall_score"`
	QualityLevel QualityLevel `json:"quality_level"`
}

// PromptQuality reports how well a resolved prompt sets the model up to
// satisfy the requirement bounds.
type PromptQuality struct {
	Score  float64
	Issues []string
}

var unfilledRe = regexp.MustCompile(`\{[a-zA-Z_][a-zA-Z0-9_]*\}`)

// ValidatePromptQuality checks the filled prompt once per session before
// the first model call: unfilled placeholders, missing explicit numeric
// bounds, and for lectures the absence of any example cue phrase.
func ValidatePromptQuality(filled string, vars map[string]string, kind types.Kind, req config.Requirements) PromptQuality {
	q := PromptQuality{Score: 100}
	deduct := func(points float64, issue string) {
		q.Score -= points
		q.Issues = append(q.Issues, issue)
	}

	if unfilled := unfilledRe.FindAllString(filled, -1); len(unfilled) > 0 {
		deduct(30, fmt.Sprintf("unfilled placeholders remain: %s", strings.Join(dedupe(unfilled), ", ")))
	}
	for name, val := range vars {
		if strings.TrimSpace(val) == "" {
			deduct(10, fmt.Sprintf("variable %q resolved to empty text", name))
		}
	}

	lower := strings.ToLower(filled)
	switch kind {
	case types.KindLecture:
		if req.MinWordCount > 0 && !strings.Contains(filled, fmt.Sprintf("%d", req.MinWordCount)) {
			deduct(15, fmt.Sprintf("prompt does not state the minimum word count (%d)", req.MinWordCount))
		}
		if req.MinExamples > 0 && !strings.Contains(lower, "example") {
			deduct(15, "prompt never asks for examples")
		}
	case types.KindQuestions:
		if req.NumQuestions > 0 && !strings.Contains(filled, fmt.Sprintf("%d", req.NumQuestions)) {
			deduct(15, fmt.Sprintf("prompt does not state the question count (%d)", req.NumQuestions))
		}
	case types.KindLab:
		if req.MinSteps > 0 && !strings.Contains(filled, fmt.Sprintf("%d", req.MinSteps)) {
			deduct(15, fmt.Sprintf("prompt does not state the minimum step count (%d)", req.MinSteps))
		}
	case types.KindDiagram, types.KindVisualization:
		if !strings.Contains(lower, "mermaid") {
			deduct(20, "prompt never mentions mermaid syntax")
		}
	}

	if q.Score < 0 {
		q.Score = 0
	}
	return q
}

// CalculateQualityScore scores metrics against their bounds. Each bound the
// artifact satisfies contributes its full share; a missed bound contributes
// proportionally to how close the count came.
func CalculateQualityScore(m Metrics, req config.Requirements, kind types.Kind) QualityScore {
	var parts []float64
	add := func(score float64) { parts = append(parts, clamp01(score)) }

	// every analyzer warning beyond the structural bounds costs a little
	switch kind {
	case types.KindLecture:
		add(boundScore(m.WordCount, req.MinWordCount, req.MaxWordCount))
		add(boundScore(m.SectionCount, req.MinSections, req.MaxSections))
		add(boundScore(m.ExampleCount, req.MinExamples, req.MaxExamples))
	case types.KindLab:
		add(ratio(m.ProcedureSteps, req.MinSteps))
		add(presence(m.Materials))
		add(presence(m.SafetyWarnings))
	case types.KindStudyNotes:
		add(boundScore(m.KeyConcepts, req.MinKeyConcepts, req.MaxKeyConcepts))
		add(boundScore(m.WordCount, 0, req.MaxWordCount))
	case types.KindQuestions:
		add(ratio(m.Questions, req.NumQuestions))
		if m.Questions > 0 {
			add(float64(m.AnswersProvided) / float64(m.Questions))
		} else {
			add(0)
		}
		if m.MCQuestions > 0 {
			add(float64(m.ExplanationsProvided) / float64(m.MCQuestions))
		}
	case types.KindDiagram, types.KindVisualization:
		if m.SyntaxValid {
			add(1)
		} else {
			add(0)
		}
		add(ratio(m.NodeCount, req.MinNodes))
	default:
		count := m.CaseStudies + m.AdvancedTopics + m.CrossReferences + m.ResearchQuestions + m.OpenQuestions
		add(ratio(count, req.MinItems))
		add(presence(m.WordCount))
	}

	total := 0.0
	for _, p := range parts {
		total += p
	}
	score := 100 * total / float64(len(parts))

	// warnings drag the score down even when counts scrape past bounds
	score -= 5 * float64(len(m.Warnings))
	if score < 0 {
		score = 0
	}

	return QualityScore{OverallScore: score, QualityLevel: levelFor(score)}
}

func levelFor(score float64) QualityLevel {
	switch {
	case score >= 90:
		return QualityExcellent
	case score >= 70:
		return QualityGood
	case score >= 50:
		return QualityFair
	default:
		return QualityPoor
	}
}

// boundScore is 1 inside [min,max], and decays linearly with the relative
// distance outside it.
func boundScore(got, min, max int) float64 {
	if min > 0 && got < min {
		return float64(got) / float64(min)
	}
	if max > 0 && got > max {
		over := float64(got-max) / float64(max)
		return clamp01(1 - over)
	}
	return 1
}

func ratio(got, want int) float64 {
	if want <= 0 {
		return 1
	}
	return clamp01(float64(got) / float64(want))
}

func presence(n int) float64 {
	if n > 0 {
		return 1
	}
	return 0
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func dedupe(in []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
