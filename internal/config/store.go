package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/yungbote/courseforge/internal/types"
)

// CourseInfo resolves a course template (or the default when template is
// empty) into its metadata and structure configuration.
func (s *Store) CourseInfo(template string) (types.CourseMetadata, types.StructureConfig, error) {
	if strings.TrimSpace(template) == "" {
		template = s.course.DefaultCourse
	}
	ct, ok := s.course.Courses[template]
	if !ok {
		return types.CourseMetadata{}, types.StructureConfig{}, configErrorf("unknown course template %q", template)
	}
	lang := ct.Language
	if strings.TrimSpace(lang) == "" {
		lang = "English"
	}
	meta := types.CourseMetadata{
		Name:           ct.Name,
		Subject:        ct.Subject,
		Level:          ct.Level,
		Description:    ct.Description,
		Language:       lang,
		Constraints:    ct.Constraints,
		CourseTemplate: template,
	}
	return meta, ct.Structure, nil
}

// CourseTemplates lists defined template names in lexical order (the batch
// iteration order).
func (s *Store) CourseTemplates() []string {
	names := make([]string, 0, len(s.course.Courses))
	for name := range s.course.Courses {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LLMParams is the model block handed to the LLM client.
type LLMParams struct {
	BaseURL        string
	GeneratePath   string
	Model          string
	TimeoutDefault time.Duration
	Parameters     map[string]any
}

func (s *Store) LLMParams() LLMParams {
	return LLMParams{
		BaseURL:        s.llm.BaseURL,
		GeneratePath:   s.llm.GeneratePath,
		Model:          s.llm.Model,
		TimeoutDefault: time.Duration(s.llm.TimeoutDefault) * time.Second,
		Parameters:     s.llm.Parameters,
	}
}

// OperationTimeout returns the per-kind timeout, falling back to the global
// default.
func (s *Store) OperationTimeout(kind types.Kind) time.Duration {
	if secs, ok := s.llm.OperationTimeouts[kind]; ok && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return time.Duration(s.llm.TimeoutDefault) * time.Second
}

// ContextLimit returns the per-kind character cap for session context
// passed into generators.
func (s *Store) ContextLimit(kind types.Kind) int {
	if n, ok := s.llm.ContextLimits[kind]; ok && n > 0 {
		return n
	}
	return 50000
}

func (s *Store) PromptTemplate(kind types.Kind) (PromptTemplate, error) {
	tpl, ok := s.prompts[kind]
	if !ok {
		return PromptTemplate{}, configErrorf("no prompt template for kind %q", kind)
	}
	return tpl, nil
}

func (s *Store) ContentRequirements() map[types.Kind]Requirements {
	out := make(map[types.Kind]Requirements, len(s.course.ContentRequirements))
	for k, v := range s.course.ContentRequirements {
		out[k] = v
	}
	return out
}

func (s *Store) Requirements(kind types.Kind) Requirements {
	return s.course.ContentRequirements[kind]
}

func (s *Store) Language(template string) string {
	meta, _, err := s.CourseInfo(template)
	if err != nil {
		return "English"
	}
	return meta.Language
}

func (s *Store) DiagramsPerSession(template string) int {
	_, st, err := s.CourseInfo(template)
	if err != nil || st.DiagramsPerSession < 1 {
		return 1
	}
	return st.DiagramsPerSession
}

// ModulesFromOutline loads a persisted outline JSON. With an empty path it
// searches every course directory under the output base for the newest
// course_outline_*.json by modification time.
func (s *Store) ModulesFromOutline(path string) (*types.OutlineTree, string, error) {
	if strings.TrimSpace(path) == "" {
		found, err := s.findLatestOutline()
		if err != nil {
			return nil, "", err
		}
		path = found
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, "", configErrorf("read outline %s: %v", path, err)
	}
	var tree types.OutlineTree
	if err := json.Unmarshal(b, &tree); err != nil {
		return nil, "", configErrorf("parse outline %s: %v", path, err)
	}
	if len(tree.Modules) == 0 {
		return nil, "", configErrorf("outline %s has no modules", path)
	}
	return &tree, path, nil
}

func (s *Store) findLatestOutline() (string, error) {
	pattern := filepath.Join(s.output.BaseDir, "*", s.output.Directories.Outlines, "course_outline_*.json")
	matches, err := filepath.Glob(pattern)
	if err != nil || len(matches) == 0 {
		return "", configErrorf("no outline JSON found under %s", s.output.BaseDir)
	}
	sort.Slice(matches, func(i, j int) bool {
		fi, errI := os.Stat(matches[i])
		fj, errJ := os.Stat(matches[j])
		if errI != nil || errJ != nil {
			return matches[i] > matches[j]
		}
		return fi.ModTime().After(fj.ModTime())
	})
	return matches[0], nil
}
