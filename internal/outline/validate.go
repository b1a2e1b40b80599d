package outline

import (
	"fmt"

	"github.com/yungbote/courseforge/internal/types"
)

// CheckStructure verifies the parsed tree against the configured structure
// and returns one violation string per broken invariant. An empty slice
// means the outline is accepted.
func CheckStructure(tree *types.OutlineTree, sc types.StructureConfig) []string {
	var violations []string
	fail := func(format string, args ...any) {
		violations = append(violations, fmt.Sprintf(format, args...))
	}

	if len(tree.Modules) != sc.NumModules {
		fail("expected exactly %d modules, found %d", sc.NumModules, len(tree.Modules))
	}
	for i, mod := range tree.Modules {
		if mod.ModuleID != i+1 {
			fail("module %d has id %d, ids must run 1..%d in order", i+1, mod.ModuleID, sc.NumModules)
		}
		for j, sess := range mod.Sessions {
			if sess.SessionNumber != j+1 {
				fail("module %d session %d is numbered %d, numbers must run 1..%d in order",
					mod.ModuleID, j+1, sess.SessionNumber, len(mod.Sessions))
			}
			checkBounds(&violations, mod.ModuleID, sess.SessionNumber, "subtopics", len(sess.Subtopics), sc.Subtopics)
			checkBounds(&violations, mod.ModuleID, sess.SessionNumber, "learning objectives", len(sess.LearningObjectives), sc.LearningObjectives)
			checkBounds(&violations, mod.ModuleID, sess.SessionNumber, "key concepts", len(sess.KeyConcepts), sc.KeyConcepts)
		}
	}
	if total := tree.TotalSessions(); total != sc.TotalSessions {
		fail("expected exactly %d sessions in total, found %d", sc.TotalSessions, total)
	}
	return violations
}

func checkBounds(violations *[]string, moduleID, sessionNum int, list string, got int, b types.Bounds) {
	if b.Contains(got) {
		return
	}
	*violations = append(*violations,
		fmt.Sprintf("module %d session %d: %d %s, need %s", moduleID, sessionNum, got, list, b.String()))
}
