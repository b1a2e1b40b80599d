package config

import (
	"errors"
	"fmt"

	"github.com/yungbote/courseforge/internal/types"
)

// ErrConfig marks fatal configuration problems. The pipeline exits with
// code 1 before any LLM call when it sees one.
var ErrConfig = errors.New("configuration error")

func configErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
}

// CourseDoc is course.yaml: selectable course templates plus the per-kind
// content requirement bounds.
type CourseDoc struct {
	DefaultCourse       string                      `yaml:"default_course"`
	Courses             map[string]CourseTemplate   `yaml:"courses"`
	ContentRequirements map[types.Kind]Requirements `yaml:"content_requirements"`
}

// CourseTemplate is one selectable course definition.
type CourseTemplate struct {
	Name        string                `yaml:"name"`
	Subject     string                `yaml:"subject"`
	Level       string                `yaml:"level"`
	Description string                `yaml:"description"`
	Language    string                `yaml:"language"`
	Constraints string                `yaml:"constraints"`
	Structure   types.StructureConfig `yaml:"structure"`
}

// LLMDoc is llm.yaml: endpoint, model, sampling parameters, per-operation
// timeouts (seconds) and per-kind secondary context truncation limits.
type LLMDoc struct {
	BaseURL           string             `yaml:"base_url"`
	GeneratePath      string             `yaml:"generate_path"`
	Model             string             `yaml:"model"`
	TimeoutDefault    int                `yaml:"timeout_default"`
	Parameters        map[string]any     `yaml:"parameters"`
	OperationTimeouts map[types.Kind]int `yaml:"operation_timeouts"`
	ContextLimits     map[types.Kind]int `yaml:"context_limits"`
}

// OutputDoc is output.yaml: the base directory plus the fixed course-scoped
// subdirectory names.
type OutputDoc struct {
	BaseDir     string `yaml:"base_dir"`
	Directories struct {
		Outlines string `yaml:"outlines"`
		Modules  string `yaml:"modules"`
		Website  string `yaml:"website"`
		Logs     string `yaml:"logs"`
	} `yaml:"directories"`
}

// PromptsDoc is prompts.yaml: per-kind overrides merged over the compiled-in
// defaults.
type PromptsDoc struct {
	Prompts map[types.Kind]PromptTemplate `yaml:"prompts"`
}

// PromptTemplate is a (system, user) prompt pair. User text carries {name}
// placeholders; Required lists the variable names the template expects so a
// bad fill fails before the LLM is called.
type PromptTemplate struct {
	System   string   `yaml:"system"`
	User     string   `yaml:"user"`
	Required []string `yaml:"required"`
}

// Requirements is the per-kind bounds map consumed by analyzers and
// generators. Fields that do not apply to a kind stay zero.
type Requirements struct {
	MinWordCount int `yaml:"min_word_count"`
	MaxWordCount int `yaml:"max_word_count"`

	MinSections int `yaml:"min_sections"`
	MaxSections int `yaml:"max_sections"`

	MinExamples int `yaml:"min_examples"`
	MaxExamples int `yaml:"max_examples"`

	MinKeyConcepts int `yaml:"min_key_concepts"`
	MaxKeyConcepts int `yaml:"max_key_concepts"`

	NumQuestions int     `yaml:"num_questions"`
	MCRatio      float64 `yaml:"mc_ratio"`
	SARatio      float64 `yaml:"sa_ratio"`
	EssayRatio   float64 `yaml:"essay_ratio"`

	MinSteps int `yaml:"min_steps"`
	MinNodes int `yaml:"min_nodes"`

	// MinItems/MaxItems bound the countable unit of the secondary kinds
	// (case studies, advanced topics, cross-references, ...).
	MinItems int `yaml:"min_items"`
	MaxItems int `yaml:"max_items"`
}

// PrimaryMinimum returns the minimum attached to the kind's headline
// countable property. The warning-to-critical classifier uses it to decide
// whether an "only 2" warning is critical.
func (r Requirements) PrimaryMinimum(kind types.Kind) int {
	switch kind {
	case types.KindLecture:
		return r.MinExamples
	case types.KindLab:
		return r.MinSteps
	case types.KindStudyNotes:
		return r.MinKeyConcepts
	case types.KindQuestions:
		return r.NumQuestions
	case types.KindDiagram, types.KindVisualization:
		return r.MinNodes
	default:
		return r.MinItems
	}
}
