package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yungbote/courseforge/internal/pkg/logger"
	"github.com/yungbote/courseforge/internal/types"
)

func writeConfig(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDefaultsWhenDirEmpty(t *testing.T) {
	s, err := Load(t.TempDir(), logger.NewNop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	meta, structure, err := s.CourseInfo("")
	if err != nil {
		t.Fatalf("CourseInfo: %v", err)
	}
	if meta.Name == "" || meta.Language != "English" {
		t.Fatalf("default metadata incomplete: %+v", meta)
	}
	if structure.NumModules < 1 || structure.TotalSessions < structure.NumModules {
		t.Fatalf("default structure invalid: %+v", structure)
	}

	p := s.LLMParams()
	if p.BaseURL == "" || p.Model == "" || p.TimeoutDefault <= 0 {
		t.Fatalf("default llm params incomplete: %+v", p)
	}
	for _, kind := range types.AllKinds {
		if _, err := s.PromptTemplate(kind); err != nil {
			t.Errorf("no default prompt for %s: %v", kind, err)
		}
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "llm.yaml", "model: llama3:70b\ntimeout_default: 120\n")
	writeConfig(t, dir, "course.yaml", `
default_course: chem
courses:
  chem:
    name: Introductory Chemistry
    subject: Chemistry
    level: Undergraduate
    structure:
      num_modules: 3
      total_sessions: 9
      subtopics: {min: 3, max: 5}
      learning_objectives: {min: 3, max: 5}
      key_concepts: {min: 3, max: 5}
      diagrams_per_session: 2
`)

	s, err := Load(dir, logger.NewNop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	p := s.LLMParams()
	if p.Model != "llama3:70b" {
		t.Fatalf("model override lost: %q", p.Model)
	}
	if p.TimeoutDefault != 120*time.Second {
		t.Fatalf("timeout override lost: %s", p.TimeoutDefault)
	}
	// base_url was not overridden and keeps its default
	if p.BaseURL == "" {
		t.Fatal("default base_url lost on merge")
	}

	meta, structure, err := s.CourseInfo("")
	if err != nil {
		t.Fatalf("CourseInfo: %v", err)
	}
	if meta.Name != "Introductory Chemistry" || structure.TotalSessions != 9 {
		t.Fatalf("course override lost: %+v %+v", meta, structure)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "llm.yaml", "model: [unclosed\n")

	_, err := Load(dir, logger.NewNop())
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("want ErrConfig, got %v", err)
	}
}

func TestLoadRejectsUnknownDefaultCourse(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "course.yaml", `
default_course: nope
courses:
  real:
    name: Real Course
    structure:
      num_modules: 2
      total_sessions: 4
      subtopics: {min: 3, max: 5}
      learning_objectives: {min: 3, max: 5}
      key_concepts: {min: 3, max: 5}
      diagrams_per_session: 1
`)
	_, err := Load(dir, logger.NewNop())
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("want ErrConfig, got %v", err)
	}
}

func TestLoadRejectsInvertedBounds(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "course.yaml", `
courses:
  general_science:
    name: Foundations of Modern Science
    structure:
      num_modules: 4
      total_sessions: 12
      subtopics: {min: 3, max: 5}
      learning_objectives: {min: 3, max: 5}
      key_concepts: {min: 3, max: 5}
      diagrams_per_session: 2
content_requirements:
  lecture:
    min_word_count: 3000
    max_word_count: 800
`)
	_, err := Load(dir, logger.NewNop())
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("want ErrConfig, got %v", err)
	}
}

func TestLoadRejectsBadQuestionRatios(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "course.yaml", `
courses:
  general_science:
    name: Foundations of Modern Science
    structure:
      num_modules: 4
      total_sessions: 12
      subtopics: {min: 3, max: 5}
      learning_objectives: {min: 3, max: 5}
      key_concepts: {min: 3, max: 5}
      diagrams_per_session: 2
content_requirements:
  questions:
    num_questions: 10
    mc_ratio: 0.5
    sa_ratio: 0.5
    essay_ratio: 0.5
`)
	_, err := Load(dir, logger.NewNop())
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("want ErrConfig, got %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("COURSEFORGE_LLM_MODEL", "mistral:7b")
	t.Setenv("COURSEFORGE_OUTPUT_DIR", "/tmp/course-out")

	s, err := Load(t.TempDir(), logger.NewNop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := s.LLMParams().Model; got != "mistral:7b" {
		t.Fatalf("env model override lost: %q", got)
	}
	if got := s.OutputPaths("X").Base; got != "/tmp/course-out" {
		t.Fatalf("env output override lost: %q", got)
	}
}

func TestOperationTimeoutFallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "llm.yaml", `
timeout_default: 90
operation_timeouts:
  lecture: 600
`)
	s, err := Load(dir, logger.NewNop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := s.OperationTimeout(types.KindLecture); got != 600*time.Second {
		t.Fatalf("lecture timeout = %s", got)
	}
	if got := s.OperationTimeout(types.KindLab); got != 90*time.Second {
		t.Fatalf("lab fallback = %s", got)
	}
}

func TestContextLimitDefaults(t *testing.T) {
	s, err := Load(t.TempDir(), logger.NewNop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := s.ContextLimit(types.KindIntegration); got != 2000 {
		t.Fatalf("integration limit = %d", got)
	}
	if got := s.ContextLimit(types.KindApplication); got != 50000 {
		t.Fatalf("application limit = %d", got)
	}
}
