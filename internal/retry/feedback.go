package retry

import (
	"fmt"
	"strings"

	"github.com/yungbote/courseforge/internal/analyze"
	"github.com/yungbote/courseforge/internal/config"
	"github.com/yungbote/courseforge/internal/types"
)

// maxFeedbackWarnings caps how many previous warnings the next prompt
// repeats back to the model.
const maxFeedbackWarnings = 3

var categoryHeadings = map[Category]string{
	CategoryFormat:         "FORMAT PROBLEMS",
	CategoryContentLength:  "LENGTH PROBLEMS",
	CategoryCompleteness:   "INCOMPLETE CONTENT",
	CategoryMissingContent: "MISSING CONTENT",
	CategoryUnknown:        "PROBLEMS DETECTED",
}

// Feedback composes the block appended to the prompt of an enhanced retry:
// the previous attempt's leading warnings grouped by category, then the
// numeric targets the artifact must hit.
func (m *Manager) Feedback(errorMessage, contentType string, previousWarnings []string, req *config.Requirements) string {
	var b strings.Builder
	b.WriteString("```\nVALIDATION FEEDBACK FROM PREVIOUS ATTEMPT\n")

	grouped := groupWarnings(errorMessage, previousWarnings)
	for _, g := range grouped {
		b.WriteString("\n")
		b.WriteString(categoryHeadings[g.category])
		b.WriteString(":\n")
		for _, w := range g.warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}

	if req != nil {
		targets := fixTargets(types.Kind(contentType), *req)
		if len(targets) > 0 {
			b.WriteString("\nCRITICAL FIXES REQUIRED:\n")
			for i, t := range targets {
				fmt.Fprintf(&b, "%d. %s\n", i+1, t)
			}
		}
	}

	b.WriteString("```\n")
	return b.String()
}

type warningGroup struct {
	category Category
	warnings []string
}

func groupWarnings(errorMessage string, previous []string) []warningGroup {
	all := previous
	if len(all) == 0 && errorMessage != "" {
		all = []string{errorMessage}
	}
	if len(all) > maxFeedbackWarnings {
		all = all[:maxFeedbackWarnings]
	}

	var groups []warningGroup
	index := map[Category]int{}
	for _, w := range all {
		cat := Categorize(w)
		idx, ok := index[cat]
		if !ok {
			idx = len(groups)
			index[cat] = idx
			groups = append(groups, warningGroup{category: cat})
		}
		groups[idx].warnings = append(groups[idx].warnings, w)
	}
	return groups
}

// fixTargets turns the requirement bounds for a kind into imperative,
// numeric instructions.
func fixTargets(kind types.Kind, req config.Requirements) []string {
	var out []string
	add := func(format string, args ...any) {
		out = append(out, fmt.Sprintf(format, args...))
	}

	switch kind {
	case types.KindLecture:
		if req.MinWordCount > 0 {
			add("Write between %d and %d words.", req.MinWordCount, req.MaxWordCount)
		}
		if req.MinSections > 0 {
			add("Use between %d and %d level-2 (## ) sections.", req.MinSections, req.MaxSections)
		}
		if req.MinExamples > 0 {
			add("Include %d to %d worked examples, introduced with phrases like %s.",
				req.MinExamples, req.MaxExamples, quoteList(analyze.ExampleCues))
		}
	case types.KindLab:
		if req.MinSteps > 0 {
			add("Provide a numbered procedure with at least %d steps.", req.MinSteps)
		}
		add("Include a '## Materials' section with a bulleted list.")
		add("Include explicit safety warnings.")
	case types.KindStudyNotes:
		if req.MinKeyConcepts > 0 {
			add("Define between %d and %d key concepts as '**Term**: definition' entries.",
				req.MinKeyConcepts, req.MaxKeyConcepts)
		}
		if req.MaxWordCount > 0 {
			add("Keep the total under %d words.", req.MaxWordCount)
		}
	case types.KindQuestions:
		if req.NumQuestions > 0 {
			add("Produce exactly %d questions headed '**Question N:**'.", req.NumQuestions)
		}
		add("End every question stem with a question mark.")
		add("Give every multiple-choice question exactly 4 options labeled A) through D).")
		add("Provide an '**Answer:**' line for every question and an '**Explanation:**' line for every multiple-choice question.")
	case types.KindDiagram, types.KindVisualization:
		add("Output only Mermaid syntax, starting with a diagram header such as 'flowchart TD'.")
		if req.MinNodes > 0 {
			add("Include at least %d nodes.", req.MinNodes)
		}
	default:
		if req.MinItems > 0 {
			add("Provide at least %d distinct items, each under its own heading.", req.MinItems)
		}
	}
	return out
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = "'" + s + "'"
	}
	return strings.Join(quoted, ", ")
}
