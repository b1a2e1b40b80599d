package generate

import (
	"testing"

	"github.com/yungbote/courseforge/internal/config"
	"github.com/yungbote/courseforge/internal/llm"
	"github.com/yungbote/courseforge/internal/pkg/logger"
	"github.com/yungbote/courseforge/internal/types"
)

func testTree() *types.OutlineTree {
	return &types.OutlineTree{
		CourseMetadata: types.CourseMetadata{
			Name:     "Foundations of Modern Science",
			Subject:  "Science",
			Level:    "Undergraduate",
			Language: "English",
		},
		Modules: []types.Module{
			{
				ModuleID:          1,
				ModuleName:        "Mechanics",
				ModuleDescription: "Motion and forces.",
				Sessions: []types.Session{
					{
						SessionNumber:      1,
						SessionTitle:       "Kinematics",
						Subtopics:          []string{"displacement", "velocity", "acceleration"},
						LearningObjectives: []string{"describe motion", "compute velocity", "plot trajectories"},
						KeyConcepts:        []string{"frame of reference", "vector", "rate of change"},
					},
				},
			},
		},
	}
}

// Every default prompt template must be fillable from the variable map the
// runner builds, with no unresolved placeholders.
func TestVarsSatisfyDefaultPrompts(t *testing.T) {
	cfg, err := config.Load(t.TempDir(), logger.NewNop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	r := &Runner{log: logger.NewNop(), cfg: cfg}

	tree := testTree()
	sc := newSessionContext(tree, tree.AllSessions()[0])
	sc.OutlineContext = "outline"
	sc.SessionContent = "content"

	kinds := append(append([]types.Kind{}, types.PrimaryKinds...), types.SecondaryKinds...)
	for _, kind := range kinds {
		t.Run(string(kind), func(t *testing.T) {
			tpl, err := cfg.PromptTemplate(kind)
			if err != nil {
				t.Fatalf("PromptTemplate: %v", err)
			}
			v := r.vars(kind, sc, cfg.Requirements(kind))
			for _, name := range tpl.Required {
				if _, ok := v[name]; !ok {
					t.Errorf("required variable %q missing from map", name)
				}
			}
			if _, err := llm.FillTemplate(tpl.User, v); err != nil {
				t.Errorf("user template: %v", err)
			}
			if tpl.System != "" {
				if _, err := llm.FillTemplate(tpl.System, v); err != nil {
					t.Errorf("system template: %v", err)
				}
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 4); got != "abcd" {
		t.Fatalf("got %q", got)
	}
	if got := truncate("abc", 0); got != "abc" {
		t.Fatalf("zero limit must disable truncation, got %q", got)
	}
}
