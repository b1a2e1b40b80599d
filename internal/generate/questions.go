package generate

import (
	"regexp"
	"strings"

	"github.com/yungbote/courseforge/internal/cleanup"
)

var (
	questionLineRe = regexp.MustCompile(`^\*\*Question (\d+):\*\*(.*)$`)
	optionLineRe   = regexp.MustCompile(`^(\s*)([A-Da-d])[).]\s+(\S.*)$`)
	answerLineRe   = regexp.MustCompile(`^\*\*(Answer|Explanation):?\*\*`)
)

var optionLabels = []string{"A", "B", "C", "D"}

// AutoFixQuestions repairs the mechanical format slips models make in
// question sets: header normalization, question marks on stems, and MC
// option labels forced into strict "A)".."D)" order. The returned count is
// the number of individual fixes applied; running the result through again
// yields the identical text and zero fixes.
func AutoFixQuestions(text string) (string, int) {
	fixes := 0

	normalized := cleanup.NormalizeQuestionHeaders(text)
	if normalized != text {
		fixes += countLineDiffs(text, normalized)
		text = normalized
	}

	lines := strings.Split(text, "\n")
	lines, n := fixQuestionMarks(lines)
	fixes += n
	lines, n = fixOptionLabels(lines)
	fixes += n

	return strings.Join(lines, "\n"), fixes
}

// fixQuestionMarks appends a "?" to every stem that lacks one. The stem
// runs from the question header to the first blank line, option line, or
// answer block.
func fixQuestionMarks(lines []string) ([]string, int) {
	fixes := 0
	for i := 0; i < len(lines); i++ {
		m := questionLineRe.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		// collect stem line indexes, starting with any text on the header
		// line itself
		stem := []int{i}
		hasText := strings.TrimSpace(m[2]) != ""
		for j := i + 1; j < len(lines); j++ {
			t := strings.TrimSpace(lines[j])
			if t == "" || optionLineRe.MatchString(lines[j]) || answerLineRe.MatchString(t) || questionLineRe.MatchString(t) {
				break
			}
			stem = append(stem, j)
			hasText = true
		}
		if !hasText {
			continue
		}
		if stemContains(lines, stem, "?") {
			continue
		}
		last := stem[len(stem)-1]
		lines[last] = appendQuestionMark(lines[last])
		fixes++
	}
	return lines, fixes
}

func stemContains(lines []string, idxs []int, substr string) bool {
	for _, i := range idxs {
		if strings.Contains(lines[i], substr) {
			return true
		}
	}
	return false
}

func appendQuestionMark(line string) string {
	trimmed := strings.TrimRight(line, " \t")
	trimmed = strings.TrimSuffix(trimmed, ".")
	return trimmed + "?"
}

// fixOptionLabels relabels each run of two or more option lines into
// strict "A)".."D)" order. Runs longer than four keep their tail labels
// untouched so the analyzer can flag the overflow.
func fixOptionLabels(lines []string) ([]string, int) {
	fixes := 0
	for i := 0; i < len(lines); {
		if !optionLineRe.MatchString(lines[i]) {
			i++
			continue
		}
		start := i
		for i < len(lines) && optionLineRe.MatchString(lines[i]) {
			i++
		}
		if i-start < 2 {
			continue
		}
		for k := start; k < i && k-start < len(optionLabels); k++ {
			m := optionLineRe.FindStringSubmatch(lines[k])
			fixed := m[1] + optionLabels[k-start] + ") " + m[3]
			if fixed != lines[k] {
				lines[k] = fixed
				fixes++
			}
		}
	}
	return lines, fixes
}

func countLineDiffs(before, after string) int {
	a := strings.Split(before, "\n")
	b := strings.Split(after, "\n")
	if len(a) != len(b) {
		return 1
	}
	n := 0
	for i := range a {
		if a[i] != b[i] {
			n++
		}
	}
	if n == 0 {
		return 1
	}
	return n
}

// QuestionSplit is the deterministic mc/sa/essay partition of n questions.
type QuestionSplit struct {
	MC    int
	SA    int
	Essay int
}

// SplitQuestions partitions n into multiple-choice, short-answer and essay
// counts using the configured ratios; zero ratios fall back to the standard
// 50/30 split. Essay takes the remainder, so the three always sum to n.
func SplitQuestions(n int, mcRatio, saRatio float64) QuestionSplit {
	if n <= 0 {
		return QuestionSplit{}
	}
	if mcRatio <= 0 {
		mcRatio = 0.5
	}
	if saRatio <= 0 {
		saRatio = 0.3
	}
	mc := int(mcRatio*float64(n) + 1e-9)
	if mc > n {
		mc = n
	}
	sa := int(saRatio*float64(n) + 1e-9)
	if mc+sa > n {
		sa = n - mc
	}
	return QuestionSplit{MC: mc, SA: sa, Essay: n - mc - sa}
}
