package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/courseforge/internal/pkg/logger"
	"github.com/yungbote/courseforge/internal/types"
)

// Store holds the four loaded configuration documents. It is loaded once
// per process and read-only afterwards.
type Store struct {
	log *logger.Logger
	dir string

	course  CourseDoc
	llm     LLMDoc
	output  OutputDoc
	prompts map[types.Kind]PromptTemplate
}

// Load reads course.yaml, llm.yaml, output.yaml and prompts.yaml from dir,
// merging each over compiled-in defaults. A missing file is fine; a
// malformed one, an unknown default course or an inverted bound is an
// ErrConfig.
func Load(dir string, log *logger.Logger) (*Store, error) {
	s := &Store{
		log:     log.With("service", "ConfigStore"),
		dir:     dir,
		course:  defaultCourseDoc(),
		llm:     defaultLLMDoc(),
		output:  defaultOutputDoc(),
		prompts: defaultPrompts(),
	}

	if err := readYAML(filepath.Join(dir, "course.yaml"), &s.course); err != nil {
		return nil, err
	}
	if err := readYAML(filepath.Join(dir, "llm.yaml"), &s.llm); err != nil {
		return nil, err
	}
	if err := readYAML(filepath.Join(dir, "output.yaml"), &s.output); err != nil {
		return nil, err
	}
	var pd PromptsDoc
	if err := readYAML(filepath.Join(dir, "prompts.yaml"), &pd); err != nil {
		return nil, err
	}
	for kind, tpl := range pd.Prompts {
		merged := s.prompts[kind]
		if strings.TrimSpace(tpl.System) != "" {
			merged.System = tpl.System
		}
		if strings.TrimSpace(tpl.User) != "" {
			merged.User = tpl.User
			merged.Required = tpl.Required
		}
		s.prompts[kind] = merged
	}

	s.applyEnv()

	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func readYAML(path string, out any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return configErrorf("read %s: %v", path, err)
	}
	if err := yaml.Unmarshal(b, out); err != nil {
		return configErrorf("parse %s: %v", path, err)
	}
	return nil
}

func (s *Store) applyEnv() {
	if v := getEnv("COURSEFORGE_LLM_BASE_URL", ""); v != "" {
		s.llm.BaseURL = v
	}
	if v := getEnv("COURSEFORGE_LLM_MODEL", ""); v != "" {
		s.llm.Model = v
	}
	if v := intFromEnv("COURSEFORGE_LLM_TIMEOUT_SECONDS", 0); v > 0 {
		s.llm.TimeoutDefault = v
	}
	if v := getEnv("COURSEFORGE_OUTPUT_DIR", ""); v != "" {
		s.output.BaseDir = v
	}
}

func (s *Store) validate() error {
	if strings.TrimSpace(s.llm.BaseURL) == "" {
		return configErrorf("llm base_url is empty")
	}
	if strings.TrimSpace(s.llm.Model) == "" {
		return configErrorf("llm model is empty")
	}
	if s.llm.TimeoutDefault <= 0 {
		return configErrorf("llm timeout_default must be positive, got %d", s.llm.TimeoutDefault)
	}
	for kind, secs := range s.llm.OperationTimeouts {
		if !kind.Valid() {
			return configErrorf("operation_timeouts: unknown kind %q", kind)
		}
		if secs <= 0 {
			return configErrorf("operation_timeouts.%s must be positive, got %d", kind, secs)
		}
	}

	if len(s.course.Courses) == 0 {
		return configErrorf("no course templates defined")
	}
	if s.course.DefaultCourse != "" {
		if _, ok := s.course.Courses[s.course.DefaultCourse]; !ok {
			return configErrorf("default_course %q is not a defined course template", s.course.DefaultCourse)
		}
	}
	for name, ct := range s.course.Courses {
		if strings.TrimSpace(ct.Name) == "" {
			return configErrorf("course template %q has no name", name)
		}
		if err := ct.Structure.Validate(); err != nil {
			return configErrorf("course template %q: %v", name, err)
		}
		if ct.Structure.TotalSessions < ct.Structure.NumModules {
			s.log.Warn("course template has fewer sessions than modules",
				"template", name,
				"total_sessions", ct.Structure.TotalSessions,
				"num_modules", ct.Structure.NumModules,
			)
		}
	}

	for kind, req := range s.course.ContentRequirements {
		if !kind.Valid() {
			return configErrorf("content_requirements: unknown kind %q", kind)
		}
		for _, pair := range [][3]int{
			{req.MinWordCount, req.MaxWordCount, 0},
			{req.MinSections, req.MaxSections, 1},
			{req.MinExamples, req.MaxExamples, 2},
			{req.MinKeyConcepts, req.MaxKeyConcepts, 3},
			{req.MinItems, req.MaxItems, 4},
		} {
			if pair[1] != 0 && pair[0] > pair[1] {
				names := []string{"word_count", "sections", "examples", "key_concepts", "items"}
				return configErrorf("content_requirements.%s: %s min %d > max %d", kind, names[pair[2]], pair[0], pair[1])
			}
		}
		if req.MCRatio != 0 || req.SARatio != 0 || req.EssayRatio != 0 {
			sum := req.MCRatio + req.SARatio + req.EssayRatio
			if sum < 0.999 || sum > 1.001 {
				return configErrorf("content_requirements.%s: question ratios sum to %.2f, want 1.0", kind, sum)
			}
		}
	}

	for _, kind := range types.AllKinds {
		tpl, ok := s.prompts[kind]
		if !ok || strings.TrimSpace(tpl.User) == "" {
			return configErrorf("no prompt template for kind %q", kind)
		}
	}
	return nil
}

func getEnv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func intFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
