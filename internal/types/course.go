package types

import "fmt"

// CourseMetadata is the immutable course identity loaded from a course
// template (or the default template) before any generation happens.
type CourseMetadata struct {
	Name           string `json:"name" yaml:"name"`
	Subject        string `json:"subject" yaml:"subject"`
	Level          string `json:"level" yaml:"level"`
	Description    string `json:"description" yaml:"description"`
	Language       string `json:"language" yaml:"language"`
	Constraints    string `json:"constraints,omitempty" yaml:"constraints"`
	CourseTemplate string `json:"course_template,omitempty" yaml:"-"`
}

// Bounds is an inclusive [Min,Max] range attached to a countable property.
type Bounds struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

func (b Bounds) Contains(n int) bool { return n >= b.Min && n <= b.Max }

func (b Bounds) String() string { return fmt.Sprintf("%d-%d", b.Min, b.Max) }

// StructureConfig carries the counts and bounds established before outline
// generation.
type StructureConfig struct {
	NumModules         int    `json:"num_modules" yaml:"num_modules"`
	TotalSessions      int    `json:"total_sessions" yaml:"total_sessions"`
	Subtopics          Bounds `json:"subtopics" yaml:"subtopics"`
	LearningObjectives Bounds `json:"learning_objectives" yaml:"learning_objectives"`
	KeyConcepts        Bounds `json:"key_concepts" yaml:"key_concepts"`
	DiagramsPerSession int    `json:"diagrams_per_session" yaml:"diagrams_per_session"`
}

// Validate enforces the structural invariants. TotalSessions below
// NumModules is permitted, callers flag it separately.
func (s StructureConfig) Validate() error {
	if s.NumModules < 1 {
		return fmt.Errorf("num_modules must be positive, got %d", s.NumModules)
	}
	if s.TotalSessions < 1 {
		return fmt.Errorf("total_sessions must be positive, got %d", s.TotalSessions)
	}
	if s.DiagramsPerSession < 1 {
		return fmt.Errorf("diagrams_per_session must be positive, got %d", s.DiagramsPerSession)
	}
	for _, b := range []struct {
		name string
		b    Bounds
	}{
		{"subtopics", s.Subtopics},
		{"learning_objectives", s.LearningObjectives},
		{"key_concepts", s.KeyConcepts},
	} {
		if b.b.Min < 1 {
			return fmt.Errorf("%s min must be positive, got %d", b.name, b.b.Min)
		}
		if b.b.Min > b.b.Max {
			return fmt.Errorf("%s bounds invalid: min %d > max %d", b.name, b.b.Min, b.b.Max)
		}
	}
	return nil
}
