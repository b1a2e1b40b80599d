// Package analyze extracts quantitative metrics from generated artifact
// text and flags bound violations. Every analyzer is a pure function of the
// text and the requirement bounds; warnings are plain English strings whose
// wording is matched downstream, so the phrases used here are contractual.
package analyze

import (
	"github.com/yungbote/courseforge/internal/config"
	"github.com/yungbote/courseforge/internal/types"
)

// Metrics is the per-artifact analyzer output. Counts that do not apply to
// a kind stay zero.
type Metrics struct {
	Kind types.Kind

	WordCount    int
	SectionCount int

	// lecture
	ExampleCount int
	DefinedTerms int

	// lab
	ProcedureSteps int
	SafetyWarnings int
	Materials      int
	Tables         int

	// study notes
	KeyConcepts int

	// questions
	Questions            int
	MCQuestions          int
	SAQuestions          int
	EssayQuestions       int
	AnswersProvided      int
	ExplanationsProvided int

	// mermaid
	MermaidKind string
	NodeCount   int
	EdgeCount   int
	SyntaxValid bool

	// secondary kinds
	CaseStudies       int
	AdvancedTopics    int
	CrossReferences   int
	ResearchQuestions int
	OpenQuestions     int
	Domains           int

	Warnings []string
}

func (m *Metrics) warnf(format string, args ...any) {
	m.Warnings = append(m.Warnings, sprintf(format, args...))
}

// Analyze dispatches to the kind-specific analyzer.
func Analyze(kind types.Kind, text string, req config.Requirements) Metrics {
	switch kind {
	case types.KindLecture:
		return Lecture(text, req)
	case types.KindLab:
		return Lab(text, req)
	case types.KindStudyNotes:
		return StudyNotes(text, req)
	case types.KindQuestions:
		return Questions(text, req)
	case types.KindDiagram, types.KindVisualization:
		return Mermaid(kind, text, req)
	case types.KindApplication:
		return Application(text, req)
	case types.KindExtension:
		return Extension(text, req)
	case types.KindIntegration:
		return Integration(text, req)
	case types.KindInvestigation:
		return Investigation(text, req)
	case types.KindOpenQuestions:
		return OpenQuestions(text, req)
	default:
		m := Metrics{Kind: kind}
		m.WordCount = CountWords(text)
		return m
	}
}
