package analyze

import (
	"regexp"
	"strings"

	"github.com/yungbote/courseforge/internal/config"
	"github.com/yungbote/courseforge/internal/types"
)

// Secondary artifacts are prose markdown whose quality signal is the count
// of discrete items: case studies, advanced topics, cross-references,
// research questions, open questions. Items are counted from level-2/3
// headings and top-level bullets, whichever the model chose.

var domainCueRe = regexp.MustCompile(`(?i)\b(industry|field|domain|medicine|engineering|finance|education|manufacturing|agriculture|healthcare|software|research)\b`)

// Application counts case studies and the distinct domains they touch.
func Application(text string, req config.Requirements) Metrics {
	m := Metrics{Kind: types.KindApplication}
	m.WordCount = CountWords(text)
	m.CaseStudies = countItems(text)
	m.Domains = countDistinctMatches(domainCueRe, text)

	if m.CaseStudies == 0 {
		m.warnf("no applications found")
	} else if req.MinItems > 0 && m.CaseStudies < req.MinItems {
		m.warnf("only %d applications (need %d)", m.CaseStudies, req.MinItems)
	}
	return m
}

// Extension counts advanced topics introduced beyond the session material.
func Extension(text string, req config.Requirements) Metrics {
	m := Metrics{Kind: types.KindExtension}
	m.WordCount = CountWords(text)
	m.AdvancedTopics = countItems(text)

	if m.AdvancedTopics == 0 {
		m.warnf("no topics found")
	} else if req.MinItems > 0 && m.AdvancedTopics < req.MinItems {
		m.warnf("only %d topics (need %d)", m.AdvancedTopics, req.MinItems)
	}
	return m
}

var crossRefRe = regexp.MustCompile(`(?i)\b(session|module|chapter|lecture|earlier|previously|as we saw|recall)\b`)

// Integration counts cross-references back to other sessions and modules.
func Integration(text string, req config.Requirements) Metrics {
	m := Metrics{Kind: types.KindIntegration}
	m.WordCount = CountWords(text)
	m.CrossReferences = len(crossRefRe.FindAllString(text, -1))

	if req.MinItems > 0 && m.CrossReferences < req.MinItems {
		m.warnf("only %d cross-references (need %d)", m.CrossReferences, req.MinItems)
	}
	return m
}

// Investigation counts research questions posed to the learner.
func Investigation(text string, req config.Requirements) Metrics {
	m := Metrics{Kind: types.KindInvestigation}
	m.WordCount = CountWords(text)
	m.ResearchQuestions = countQuestionLines(text)

	if req.MinItems > 0 && m.ResearchQuestions < req.MinItems {
		m.warnf("only %d research questions (need %d)", m.ResearchQuestions, req.MinItems)
	}
	return m
}

// OpenQuestions counts distinct open questions in the field.
func OpenQuestions(text string, req config.Requirements) Metrics {
	m := Metrics{Kind: types.KindOpenQuestions}
	m.WordCount = CountWords(text)
	m.OpenQuestions = countQuestionLines(text)
	m.Domains = countDistinctMatches(domainCueRe, text)

	if req.MinItems > 0 && m.OpenQuestions < req.MinItems {
		m.warnf("only %d open questions (need %d)", m.OpenQuestions, req.MinItems)
	}
	return m
}

var (
	itemHeadingRe = regexp.MustCompile(`(?m)^#{2,3}\s+\S`)
	numberedRe    = regexp.MustCompile(`(?m)^\s*\d+[.)]\s+\S`)
)

// countItems prefers headings, falling back to numbered entries and then
// bullets, so a single formatting choice does not zero out the count.
func countItems(text string) int {
	if n := len(itemHeadingRe.FindAllString(text, -1)); n > 0 {
		return n
	}
	if n := len(numberedRe.FindAllString(text, -1)); n > 0 {
		return n
	}
	return CountBullets(text)
}

// countQuestionLines counts distinct lines (headings, bullets, or numbered
// entries) that contain a question mark.
func countQuestionLines(text string) int {
	n := 0
	for _, line := range strings.Split(text, "\n") {
		t := strings.TrimSpace(line)
		if t == "" || !strings.Contains(t, "?") {
			continue
		}
		if strings.HasPrefix(t, "#") || strings.HasPrefix(t, "-") || strings.HasPrefix(t, "*") || numberedRe.MatchString(t) {
			n++
		}
	}
	return n
}

func countDistinctMatches(re *regexp.Regexp, text string) int {
	seen := map[string]bool{}
	for _, mt := range re.FindAllString(text, -1) {
		seen[strings.ToLower(mt)] = true
	}
	return len(seen)
}
