package outline

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/yungbote/courseforge/internal/types"
)

const happyOutline = `## Module 1: Cell Biology

How cells are built and how they work.

### Session 1: Cell Structure

**Subtopics:**
- Membranes
- Organelles
- Cytoskeleton

**Learning Objectives:**
- Identify the major organelles
- Explain membrane transport
- Relate structure to function

**Key Concepts:**
- Phospholipid bilayer
- Mitochondrion
- Ribosome

### Session 2: Cell Division

**Subtopics:**
- Mitosis
- Meiosis
- Cell cycle control

**Learning Objectives:**
- Order the phases of mitosis
- Contrast mitosis and meiosis
- Describe checkpoint regulation

**Key Concepts:**
- Chromatid
- Spindle
- Checkpoint

## Module 2: Genetics

From genes to traits.

### Session 1: DNA and Replication

**Subtopics:**
- Double helix
- Replication fork
- Proofreading

**Learning Objectives:**
- Sketch semiconservative replication
- Name the core enzymes
- Explain error correction

**Key Concepts:**
- DNA polymerase
- Helicase
- Okazaki fragment

### Session 2: Inheritance

**Subtopics:**
- Mendelian ratios
- Alleles
- Pedigrees

**Learning Objectives:**
- Apply Punnett squares
- Interpret a pedigree
- Distinguish genotype and phenotype

**Key Concepts:**
- Dominant allele
- Heterozygote
- Segregation
`

func happyStructure() types.StructureConfig {
	return types.StructureConfig{
		NumModules:         2,
		TotalSessions:      4,
		Subtopics:          types.Bounds{Min: 3, Max: 5},
		LearningObjectives: types.Bounds{Min: 3, Max: 5},
		KeyConcepts:        types.Bounds{Min: 3, Max: 5},
	}
}

func TestParseHappyOutline(t *testing.T) {
	tree, warnings, err := Parse(happyOutline)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("warnings: %v", warnings)
	}
	if len(tree.Modules) != 2 {
		t.Fatalf("modules = %d, want 2", len(tree.Modules))
	}
	if tree.TotalSessions() != 4 {
		t.Fatalf("sessions = %d, want 4", tree.TotalSessions())
	}

	m1 := tree.Modules[0]
	if m1.ModuleID != 1 || m1.ModuleName != "Cell Biology" {
		t.Fatalf("module 1 = %d %q", m1.ModuleID, m1.ModuleName)
	}
	if m1.ModuleDescription != "How cells are built and how they work." {
		t.Fatalf("description = %q", m1.ModuleDescription)
	}
	s1 := m1.Sessions[0]
	if s1.SessionTitle != "Cell Structure" || s1.SessionNumber != 1 {
		t.Fatalf("session 1 = %d %q", s1.SessionNumber, s1.SessionTitle)
	}
	if len(s1.Subtopics) != 3 || s1.Subtopics[0] != "Membranes" {
		t.Fatalf("subtopics = %v", s1.Subtopics)
	}
	if len(s1.LearningObjectives) != 3 || len(s1.KeyConcepts) != 3 {
		t.Fatalf("objectives = %v, concepts = %v", s1.LearningObjectives, s1.KeyConcepts)
	}

	if violations := CheckStructure(tree, happyStructure()); len(violations) != 0 {
		t.Fatalf("violations: %v", violations)
	}
}

func TestParseFlatEnumeration(t *testing.T) {
	text := `## Module 1: Basics

Intro module.

1. Session 1: Getting Started
2. Session 2: Core Ideas
`
	tree, _, err := Parse(text)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := len(tree.Modules[0].Sessions); got != 2 {
		t.Fatalf("sessions = %d, want 2", got)
	}
	if tree.Modules[0].Sessions[1].SessionTitle != "Core Ideas" {
		t.Fatalf("title = %q", tree.Modules[0].Sessions[1].SessionTitle)
	}
}

func TestParseDropsEmptyModule(t *testing.T) {
	text := happyOutline + "\n## Module 3: Placeholder\n\nNothing here yet.\n"
	tree, warnings, err := Parse(text)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(tree.Modules) != 2 {
		t.Fatalf("modules = %d, want 2 (empty dropped)", len(tree.Modules))
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "Placeholder") {
		t.Fatalf("warnings = %v", warnings)
	}
}

func TestParseRefusesUnstructuredText(t *testing.T) {
	if _, _, err := Parse("This is just prose about biology with no headings at all."); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestCheckStructureViolations(t *testing.T) {
	tree, _, err := Parse(happyOutline)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	sc := happyStructure()
	sc.TotalSessions = 6
	sc.Subtopics = types.Bounds{Min: 4, Max: 5}

	violations := CheckStructure(tree, sc)
	if len(violations) == 0 {
		t.Fatal("expected violations")
	}
	joined := strings.Join(violations, "\n")
	if !strings.Contains(joined, "expected exactly 6 sessions in total, found 4") {
		t.Fatalf("missing session-count violation:\n%s", joined)
	}
	if !strings.Contains(joined, "3 subtopics, need 4-5") {
		t.Fatalf("missing bounds violation:\n%s", joined)
	}
}

func TestOutlineJSONRoundTrip(t *testing.T) {
	tree, _, err := Parse(happyOutline)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	tree.CourseMetadata = types.CourseMetadata{
		Name: "Intro Bio", Subject: "Biology", Level: "Undergrad", Language: "English",
	}

	first, err := json.Marshal(tree)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back types.OutlineTree
	if err := json.Unmarshal(first, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	second, err := json.Marshal(&back)
	if err != nil {
		t.Fatalf("re-marshal: %v", err)
	}
	if string(first) != string(second) {
		t.Fatalf("round trip unstable:\n%s\n!=\n%s", first, second)
	}
}

func TestRenderMarkdown(t *testing.T) {
	tree, _, err := Parse(happyOutline)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	tree.CourseMetadata = types.CourseMetadata{Name: "Intro Bio", Subject: "Biology", Level: "Undergrad", Language: "English"}

	md := RenderMarkdown(tree)
	for _, want := range []string{
		"# Intro Bio",
		"## Module 1: Cell Biology",
		"### Session 2: Cell Division",
		"**Key Concepts:**",
		"- Okazaki fragment",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("render missing %q:\n%s", want, md)
		}
	}
}
