package types

// Kind identifies one of the content types the pipeline produces. The
// outline is a Kind too so that LLM-client operations, timeouts and request
// ids are uniform across every call the pipeline makes.
type Kind string

const (
	KindOutline       Kind = "outline"
	KindLecture       Kind = "lecture"
	KindLab           Kind = "lab"
	KindStudyNotes    Kind = "study_notes"
	KindDiagram       Kind = "diagram"
	KindQuestions     Kind = "questions"
	KindApplication   Kind = "application"
	KindExtension     Kind = "extension"
	KindVisualization Kind = "visualization"
	KindIntegration   Kind = "integration"
	KindInvestigation Kind = "investigation"
	KindOpenQuestions Kind = "open_questions"
)

// PrimaryKinds is the fixed generation order within a session for stage 04.
// Diagrams are generated DiagramsPerSession times at their slot.
var PrimaryKinds = []Kind{KindLecture, KindLab, KindStudyNotes, KindDiagram, KindQuestions}

// SecondaryKinds is the fixed generation order for stage 05. Secondary
// generators may read any primary artifact of the same session.
var SecondaryKinds = []Kind{KindApplication, KindExtension, KindVisualization, KindIntegration, KindInvestigation, KindOpenQuestions}

// AllKinds covers every kind including the outline.
var AllKinds = append(append([]Kind{KindOutline}, PrimaryKinds...), SecondaryKinds...)

var kindAbbrevs = map[Kind]string{
	KindOutline:       "out",
	KindLecture:       "lec",
	KindLab:           "lab",
	KindStudyNotes:    "stu",
	KindDiagram:       "dia",
	KindQuestions:     "qst",
	KindApplication:   "app",
	KindExtension:     "ext",
	KindVisualization: "viz",
	KindIntegration:   "int",
	KindInvestigation: "inv",
	KindOpenQuestions: "opq",
}

// Abbrev returns the three-letter operation abbreviation used in request ids.
func (k Kind) Abbrev() string {
	if a, ok := kindAbbrevs[k]; ok {
		return a
	}
	return "gen"
}

// Ext returns the artifact file extension for the kind. Diagram sources are
// Mermaid, everything else is markdown.
func (k Kind) Ext() string {
	switch k {
	case KindDiagram, KindVisualization:
		return ".mmd"
	default:
		return ".md"
	}
}

// Valid reports whether k is one of the twelve known kinds.
func (k Kind) Valid() bool {
	_, ok := kindAbbrevs[k]
	return ok
}

// ParseKind resolves a user-supplied kind name (stage 05 --types filter).
func ParseKind(s string) (Kind, bool) {
	k := Kind(s)
	if k.Valid() {
		return k, true
	}
	return "", false
}
