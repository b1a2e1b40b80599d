// Package cleanup applies the deterministic post-processors every LLM
// response goes through before analysis and persistence. All functions are
// pure and idempotent; Clean(Clean(x, k), k) == Clean(x, k).
package cleanup

import (
	"regexp"
	"strings"

	"github.com/yungbote/courseforge/internal/types"
)

// Clean runs the kind-appropriate normalization pipeline, in order: fence
// strip, newline normalization, trailing meta-line strip, then the per-kind
// step (question headers, Mermaid prose strip).
func Clean(text string, kind types.Kind) string {
	text = StripWrappingFence(text)
	text = NormalizeNewlines(text)
	text = StripTrailingMeta(text)

	switch kind {
	case types.KindQuestions:
		text = NormalizeQuestionHeaders(text)
	case types.KindDiagram, types.KindVisualization:
		text = ExtractMermaid(text)
	}
	return strings.TrimSpace(text) + "\n"
}

var fenceOpenRe = regexp.MustCompile("^```[a-zA-Z0-9_-]*\\s*$")

// StripWrappingFence removes a code fence the model wrapped around the
// entire answer. Interior fences are left alone.
func StripWrappingFence(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) < 2 {
		return text
	}
	if !fenceOpenRe.MatchString(strings.TrimSpace(lines[0])) {
		return text
	}
	if strings.TrimSpace(lines[len(lines)-1]) != "```" {
		return text
	}
	inner := lines[1 : len(lines)-1]
	// A fence that closes and reopens mid-document is not a wrapper.
	for _, l := range inner {
		if strings.HasPrefix(strings.TrimSpace(l), "```") {
			return text
		}
	}
	return strings.Join(inner, "\n")
}

var blankRunRe = regexp.MustCompile(`\n{3,}`)

// NormalizeNewlines converts CRLF to LF and collapses runs of three or more
// consecutive newlines down to two (one blank line).
func NormalizeNewlines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return blankRunRe.ReplaceAllString(text, "\n\n")
}

var metaLineRe = regexp.MustCompile(`(?i)^(assistant|system|user|note to user|meta)\s*:`)

// StripTrailingMeta drops a final "assistant:"-style line some models append
// after the real content.
func StripTrailingMeta(text string) string {
	trimmed := strings.TrimRight(text, "\n \t")
	idx := strings.LastIndex(trimmed, "\n")
	if idx < 0 {
		return text
	}
	last := strings.TrimSpace(trimmed[idx+1:])
	if metaLineRe.MatchString(last) {
		return trimmed[:idx]
	}
	return text
}

var questionHeaderRe = regexp.MustCompile(`(?mi)^(?:#{1,6}\s*)?(?:\*\*)?\s*q(?:uestion)?\s*\.?\s*(\d+)\s*(?:\*\*)?\s*[:.)]?\s*(?:\*\*)?:?\s*`)

// NormalizeQuestionHeaders rewrites the question header shapes the model
// produces ("## Question 1", "**Question 2**:", "Q 3:") to the canonical
// "**Question N:**" form the analyzer matches on.
func NormalizeQuestionHeaders(text string) string {
	return questionHeaderRe.ReplaceAllStringFunc(text, func(m string) string {
		num := questionHeaderRe.FindStringSubmatch(m)[1]
		return "**Question " + num + ":** "
	})
}

// MermaidHeaders are the diagram kinds the pipeline recognizes. Order
// matters: longer variants first so "stateDiagram-v2" wins over
// "stateDiagram".
var MermaidHeaders = []string{
	"flowchart", "graph", "sequenceDiagram", "classDiagram",
	"stateDiagram-v2", "stateDiagram", "erDiagram", "mindmap",
	"gantt", "pie", "journey", "timeline",
}

// IsMermaidHeader reports whether line opens a known Mermaid diagram.
func IsMermaidHeader(line string) bool {
	line = strings.TrimSpace(line)
	for _, h := range MermaidHeaders {
		if line == h || strings.HasPrefix(line, h+" ") {
			return true
		}
	}
	return false
}

// ExtractMermaid strips surrounding prose so the output begins at the first
// valid Mermaid header line. A fenced mermaid block wins when present. When
// no header exists at all the text is returned untouched so the analyzer
// can flag the syntax failure.
func ExtractMermaid(text string) string {
	if block, ok := fencedMermaid(text); ok {
		text = block
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		if IsMermaidHeader(l) {
			return strings.Join(lines[i:], "\n")
		}
	}
	return text
}

func fencedMermaid(text string) (string, bool) {
	lines := strings.Split(text, "\n")
	start := -1
	for i, l := range lines {
		t := strings.TrimSpace(l)
		if start < 0 && (t == "```mermaid" || t == "```") {
			start = i
			continue
		}
		if start >= 0 && t == "```" {
			inner := strings.Join(lines[start+1:i], "\n")
			for _, il := range lines[start+1 : i] {
				if IsMermaidHeader(il) {
					return inner, true
				}
			}
			start = -1
		}
	}
	return "", false
}
