package generate

import (
	"strings"
	"testing"

	"github.com/yungbote/courseforge/internal/cleanup"
	"github.com/yungbote/courseforge/internal/types"
)

func TestAutoFixQuestions(t *testing.T) {
	input := `## Question 1
What is osmosis

a. Diffusion of water
b. Active transport
c. Endocytosis

**Answer:** a

**Question 2**: Name the cell's powerhouse

**Answer:** Mitochondrion

Q 3: Explain diffusion in one sentence

**Answer:** Movement down a gradient.
`
	cleaned := cleanup.Clean(input, types.KindQuestions)
	fixed, fixes := AutoFixQuestions(cleaned)
	if fixes == 0 {
		t.Fatal("expected fixes")
	}

	for _, want := range []string{
		"**Question 1:**",
		"**Question 2:**",
		"**Question 3:**",
		"What is osmosis?",
		"powerhouse?",
		"one sentence?",
		"A) Diffusion of water",
		"B) Active transport",
		"C) Endocytosis",
	} {
		if !strings.Contains(fixed, want) {
			t.Fatalf("fixed text missing %q:\n%s", want, fixed)
		}
	}
	if strings.Contains(fixed, "a. Diffusion") {
		t.Fatalf("lowercase option survived:\n%s", fixed)
	}

	again, n := AutoFixQuestions(fixed)
	if n != 0 {
		t.Fatalf("second pass applied %d fixes, want 0", n)
	}
	if again != fixed {
		t.Fatalf("auto-fix not idempotent:\n%s\n!=\n%s", again, fixed)
	}
}

func TestAutoFixLeavesCleanTextAlone(t *testing.T) {
	input := "**Question 1:** What is diffusion?\n\nA) one\nB) two\nC) three\nD) four\n\n**Answer:** A\n"
	fixed, n := AutoFixQuestions(input)
	if n != 0 || fixed != input {
		t.Fatalf("clean text changed (%d fixes):\n%s", n, fixed)
	}
}

func TestSplitQuestions(t *testing.T) {
	tests := []struct {
		n                int
		mcRatio, saRatio float64
		mc, sa, essay    int
	}{
		// zero ratios use the standard 50/30 split
		{10, 0, 0, 5, 3, 2},
		{9, 0, 0, 4, 2, 3},
		{1, 0, 0, 0, 0, 1},
		{4, 0, 0, 2, 1, 1},
		// configured ratios drive the split
		{10, 0.5, 0.3, 5, 3, 2},
		{10, 0.7, 0.2, 7, 2, 1},
		{20, 0.5, 0.3, 10, 6, 4},
		{8, 0.25, 0.5, 2, 4, 2},
	}
	for _, tc := range tests {
		got := SplitQuestions(tc.n, tc.mcRatio, tc.saRatio)
		if got.MC != tc.mc || got.SA != tc.sa || got.Essay != tc.essay {
			t.Fatalf("SplitQuestions(%d, %.2f, %.2f) = %+v, want %d/%d/%d",
				tc.n, tc.mcRatio, tc.saRatio, got, tc.mc, tc.sa, tc.essay)
		}
		if got.MC+got.SA+got.Essay != tc.n {
			t.Fatalf("split of %d does not sum: %+v", tc.n, got)
		}
	}
}

func TestLabFocusRotation(t *testing.T) {
	sess := types.Session{
		SessionTitle: "Membranes",
		Subtopics:    []string{"Osmosis", "Diffusion", "Transport"},
	}
	if got := labFocus(sess, 1); got != "Osmosis" {
		t.Fatalf("lab 1 focus = %q", got)
	}
	if got := labFocus(sess, 2); got != "Diffusion" {
		t.Fatalf("lab 2 focus = %q", got)
	}
	if got := labFocus(sess, 4); got != "Osmosis" {
		t.Fatalf("lab 4 focus = %q, want wraparound", got)
	}
	if got := labFocus(types.Session{SessionTitle: "Fallback"}, 1); got != "Fallback" {
		t.Fatalf("empty subtopics focus = %q", got)
	}
}
