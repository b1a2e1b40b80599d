package analyze

import (
	"regexp"
	"strings"

	"github.com/yungbote/courseforge/internal/config"
	"github.com/yungbote/courseforge/internal/types"
)

// Lecture checks word count, level-2 section count and example count
// against their bounds.
func Lecture(text string, req config.Requirements) Metrics {
	m := Metrics{Kind: types.KindLecture}
	m.WordCount = CountWords(text)
	m.SectionCount = CountSections(text)
	m.ExampleCount = CountExamples(text)
	m.DefinedTerms = CountDefinedTerms(text)

	if req.MinWordCount > 0 && m.WordCount < req.MinWordCount {
		m.warnf("word count %d below minimum %d", m.WordCount, req.MinWordCount)
	}
	if req.MaxWordCount > 0 && m.WordCount > req.MaxWordCount {
		m.warnf("word count %d exceeds maximum %d", m.WordCount, req.MaxWordCount)
	}

	switch {
	case m.SectionCount == 0:
		m.warnf("no sections found")
	case req.MinSections > 0 && m.SectionCount < req.MinSections:
		m.warnf("only %d sections (need %d-%d)", m.SectionCount, req.MinSections, req.MaxSections)
	case req.MaxSections > 0 && m.SectionCount > req.MaxSections:
		m.warnf("too many sections: %d (exceeds maximum %d)", m.SectionCount, req.MaxSections)
	}

	switch {
	case m.ExampleCount == 0:
		m.warnf("no examples found")
	case req.MinExamples > 0 && m.ExampleCount < req.MinExamples:
		m.warnf("only %d examples (require %d-%d)", m.ExampleCount, req.MinExamples, req.MaxExamples)
	case req.MaxExamples > 0 && m.ExampleCount > req.MaxExamples:
		m.warnf("too many examples: %d (exceeds maximum %d)", m.ExampleCount, req.MaxExamples)
	}
	return m
}

var safetyRe = regexp.MustCompile(`(?i)\b(caution|warning|danger|hazard|safety|goggles|gloves|ventilat)`)

// Lab checks for a materials list, a numbered procedure with enough steps,
// and safety warnings.
func Lab(text string, req config.Requirements) Metrics {
	m := Metrics{Kind: types.KindLab}
	m.WordCount = CountWords(text)
	m.SectionCount = CountSections(text)
	m.ProcedureSteps = CountNumberedSteps(sectionBody(text, "procedure"))
	if m.ProcedureSteps == 0 {
		// tolerate procedures not grouped under a "## Procedure" heading
		m.ProcedureSteps = CountNumberedSteps(text)
	}
	m.Materials = CountBullets(sectionBody(text, "material"))
	m.SafetyWarnings = len(safetyRe.FindAllString(text, -1))
	m.Tables = CountTables(text)

	if m.ProcedureSteps == 0 {
		m.warnf("no procedure steps found")
	} else if req.MinSteps > 0 && m.ProcedureSteps < req.MinSteps {
		m.warnf("only %d steps (need %d)", m.ProcedureSteps, req.MinSteps)
	}
	if m.Materials == 0 {
		m.warnf("no materials list found")
	}
	if m.SafetyWarnings == 0 {
		m.warnf("no safety warnings found")
	}
	if req.MinWordCount > 0 && m.WordCount < req.MinWordCount {
		m.warnf("word count %d below minimum %d", m.WordCount, req.MinWordCount)
	}
	return m
}

// StudyNotes checks the bolded key-concept entries and the word-count
// ceiling. "Too many concepts" stays a warning and never triggers a retry.
func StudyNotes(text string, req config.Requirements) Metrics {
	m := Metrics{Kind: types.KindStudyNotes}
	m.WordCount = CountWords(text)
	m.SectionCount = CountSections(text)
	m.KeyConcepts = CountDefinedTerms(text)

	switch {
	case m.KeyConcepts == 0:
		m.warnf("no key concepts found")
	case req.MinKeyConcepts > 0 && m.KeyConcepts < req.MinKeyConcepts:
		m.warnf("only %d key concepts (require %d-%d)", m.KeyConcepts, req.MinKeyConcepts, req.MaxKeyConcepts)
	case req.MaxKeyConcepts > 0 && m.KeyConcepts > req.MaxKeyConcepts:
		m.warnf("key concepts: %d (too many, max %d)", m.KeyConcepts, req.MaxKeyConcepts)
	}
	if req.MaxWordCount > 0 && m.WordCount > req.MaxWordCount {
		m.warnf("word count exceeds maximum: %d > %d", m.WordCount, req.MaxWordCount)
	}
	return m
}

var (
	questionHeaderRe = regexp.MustCompile(`(?m)^\*\*Question (\d+):\*\*(.*)$`)
	mcOptionRe       = regexp.MustCompile(`(?m)^\s*([A-D])\)\s+\S`)
	answerRe         = regexp.MustCompile(`(?m)^\*\*Answer:?\*\*`)
	explanationRe    = regexp.MustCompile(`(?m)^\*\*Explanation:?\*\*`)
)

// Questions validates the canonical question format: counted headers, stems
// ending in "?", exactly four options per multiple-choice item, and answer
// plus explanation blocks.
func Questions(text string, req config.Requirements) Metrics {
	m := Metrics{Kind: types.KindQuestions}
	m.WordCount = CountWords(text)

	blocks := splitQuestionBlocks(text)
	m.Questions = len(blocks)
	if m.Questions == 0 {
		m.warnf("no questions detected")
		return m
	}

	missingMarks := 0
	badMC := 0
	for _, blk := range blocks {
		opts := mcOptionRe.FindAllStringSubmatch(blk.body, -1)
		isMC := len(opts) > 0
		hasAnswer := answerRe.MatchString(blk.body)
		hasExplanation := explanationRe.MatchString(blk.body)

		if !stemHasQuestionMark(blk) {
			missingMarks++
		}
		if isMC {
			m.MCQuestions++
			if len(opts) != 4 {
				badMC++
			}
			if hasExplanation {
				m.ExplanationsProvided++
			}
		} else if CountWords(blk.body) > 80 || strings.Contains(strings.ToLower(blk.stem), "essay") || strings.Contains(strings.ToLower(blk.stem), "discuss") {
			m.EssayQuestions++
		} else {
			m.SAQuestions++
		}
		if hasAnswer {
			m.AnswersProvided++
		}
	}

	if req.NumQuestions > 0 && m.Questions < req.NumQuestions {
		m.warnf("only %d questions (require %d)", m.Questions, req.NumQuestions)
	}
	if missingMarks > 0 {
		m.warnf("%d questions missing question marks", missingMarks)
	}
	if badMC > 0 {
		m.warnf("%d multiple-choice questions do not have exactly 4 options", badMC)
	}
	if m.AnswersProvided < m.Questions {
		m.warnf("%d questions missing answers", m.Questions-m.AnswersProvided)
	}
	if m.ExplanationsProvided < m.MCQuestions {
		m.warnf("%d questions missing explanations", m.MCQuestions-m.ExplanationsProvided)
	}
	return m
}

type questionBlock struct {
	stem string
	body string
}

func splitQuestionBlocks(text string) []questionBlock {
	locs := questionHeaderRe.FindAllStringSubmatchIndex(text, -1)
	blocks := make([]questionBlock, 0, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		stem := strings.TrimSpace(text[loc[4]:loc[5]])
		body := text[loc[1]:end]
		if stem == "" {
			// stem continues on the following line
			if nl := strings.Index(body, "\n"); nl >= 0 {
				stem = strings.TrimSpace(body[:nl])
			} else {
				stem = strings.TrimSpace(body)
			}
		}
		blocks = append(blocks, questionBlock{stem: stem, body: body})
	}
	return blocks
}

func stemHasQuestionMark(blk questionBlock) bool {
	if strings.HasSuffix(strings.TrimSpace(blk.stem), "?") {
		return true
	}
	// stems spanning several lines: accept a "?" anywhere before the
	// options or answer block
	cut := blk.body
	if idx := mcOptionRe.FindStringIndex(cut); idx != nil {
		cut = cut[:idx[0]]
	}
	if idx := answerRe.FindStringIndex(cut); idx != nil {
		cut = cut[:idx[0]]
	}
	return strings.Contains(cut, "?")
}
