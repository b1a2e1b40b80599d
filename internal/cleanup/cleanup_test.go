package cleanup

import (
	"strings"
	"testing"

	"github.com/yungbote/courseforge/internal/types"
)

func TestStripWrappingFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "full wrapper removed",
			in:   "```markdown\n# Title\n\nBody text.\n```",
			want: "# Title\n\nBody text.",
		},
		{
			name: "interior fence untouched",
			in:   "# Title\n\n```python\nprint(1)\n```\n\nMore.",
			want: "# Title\n\n```python\nprint(1)\n```\n\nMore.",
		},
		{
			name: "reopened fence is not a wrapper",
			in:   "```\nfirst\n```\nprose\n```\nsecond\n```",
			want: "```\nfirst\n```\nprose\n```\nsecond\n```",
		},
		{
			name: "plain text untouched",
			in:   "just prose",
			want: "just prose",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripWrappingFence(tc.in); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNormalizeNewlines(t *testing.T) {
	in := "a\r\nb\r\n\r\n\r\n\r\nc\rd"
	want := "a\nb\n\nc\nd"
	if got := NormalizeNewlines(in); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestStripTrailingMeta(t *testing.T) {
	in := "# Notes\n\nReal content here.\nAssistant: let me know if you need more!"
	got := StripTrailingMeta(in)
	if strings.Contains(got, "Assistant:") {
		t.Fatalf("meta line survived: %q", got)
	}
	if !strings.Contains(got, "Real content here.") {
		t.Fatalf("content lost: %q", got)
	}

	keep := "Discussion of the user: system boundary.\nFinal line."
	if got := StripTrailingMeta(keep); got != keep {
		t.Fatalf("non-trailing text altered: %q", got)
	}
}

func TestNormalizeQuestionHeaders(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"## Question 1: What is energy", "**Question 1:** What is energy"},
		{"**Question 2**: Define work", "**Question 2:** Define work"},
		{"Q3. Explain momentum", "**Question 3:** Explain momentum"},
		{"question 4) State the law", "**Question 4:** State the law"},
		{"**Question 5:** already canonical", "**Question 5:** already canonical"},
	}
	for _, tc := range tests {
		if got := NormalizeQuestionHeaders(tc.in); got != tc.want {
			t.Errorf("NormalizeQuestionHeaders(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestExtractMermaid(t *testing.T) {
	prose := "Here is your diagram:\n\nflowchart TD\n  A[Start] --> B[End]\n"
	got := ExtractMermaid(prose)
	if !strings.HasPrefix(got, "flowchart TD") {
		t.Fatalf("leading prose survived: %q", got)
	}

	fenced := "Sure!\n\n```mermaid\nsequenceDiagram\n  A->>B: hi\n```\n\nHope that helps."
	got = ExtractMermaid(fenced)
	if !strings.HasPrefix(got, "sequenceDiagram") {
		t.Fatalf("fenced block not extracted: %q", got)
	}
	if strings.Contains(got, "Hope that helps") {
		t.Fatalf("trailing prose survived: %q", got)
	}

	// No header at all: pass through so the analyzer reports it.
	junk := "this is not a diagram"
	if got := ExtractMermaid(junk); got != junk {
		t.Fatalf("headerless text altered: %q", got)
	}
}

func TestIsMermaidHeader(t *testing.T) {
	for _, h := range []string{"flowchart TD", "graph LR", "stateDiagram-v2", "mindmap"} {
		if !IsMermaidHeader(h) {
			t.Errorf("IsMermaidHeader(%q) = false", h)
		}
	}
	for _, h := range []string{"flowcharting tips", "diagram", "## Heading"} {
		if IsMermaidHeader(h) {
			t.Errorf("IsMermaidHeader(%q) = true", h)
		}
	}
}

func TestCleanIsIdempotent(t *testing.T) {
	inputs := map[types.Kind]string{
		types.KindLecture:   "```markdown\n# Lecture\r\n\r\n\r\nBody.\n```",
		types.KindQuestions: "## Question 1: What is heat\nA) energy\nB) mass",
		types.KindDiagram:   "Here you go:\n\nflowchart TD\n  A --> B",
	}
	for kind, in := range inputs {
		once := Clean(in, kind)
		twice := Clean(once, kind)
		if once != twice {
			t.Errorf("Clean not idempotent for %s:\nonce:  %q\ntwice: %q", kind, once, twice)
		}
		if !strings.HasSuffix(once, "\n") {
			t.Errorf("Clean(%s) missing trailing newline", kind)
		}
	}
}
