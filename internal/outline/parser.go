// Package outline turns a markdown course outline produced by the model
// into the typed tree that seeds every later stage, and renders it back for
// human review.
package outline

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/yungbote/courseforge/internal/types"
)

var (
	moduleHeadingRe  = regexp.MustCompile(`^##\s+(.+?)\s*$`)
	sessionHeadingRe = regexp.MustCompile(`^###\s+(.+?)\s*$`)
	moduleTitleRe    = regexp.MustCompile(`(?i)^(?:\*\*)?module\s+(\d+)(?:\*\*)?\s*[:.\-–]?\s*(.*)$`)
	sessionTitleRe   = regexp.MustCompile(`(?i)^(?:\*\*)?session\s+(\d+)(?:\*\*)?\s*[:.\-–]?\s*(.*)$`)
	listLabelRe      = regexp.MustCompile(`(?i)^(?:#{4,6}\s+|\*\*)?\s*(subtopics|learning\s+objectives|key\s+concepts)(?:\*\*)?\s*:?\s*(?:\*\*)?\s*$`)
	bulletItemRe     = regexp.MustCompile(`^\s*[-*]\s+(.+?)\s*$`)
	flatSessionRe    = regexp.MustCompile(`^\s*(?:\d+[.)]\s+|[-*]\s+)(?:\*\*)?[Ss]ession\s+(\d+)(?:\*\*)?\s*[:.\-–]?\s*(.+?)(?:\*\*)?\s*$`)
)

// Parse reads the model's outline markdown into a tree. Level-2 headings
// are modules and level-3 headings sessions; when a module carries no
// level-3 headings at all, a flat "Session N: title" enumeration is
// accepted instead. Empty modules are dropped with a warning. The parser
// never guesses: no recognizable modules is an error, not an empty tree.
func Parse(text string) (*types.OutlineTree, []string, error) {
	lines := strings.Split(text, "\n")

	var tree types.OutlineTree
	var warnings []string

	var cur *types.Module
	var curSession *types.Session
	var curList *[]string
	inFence := false
	flatMode := false

	flush := func() {
		if cur == nil {
			return
		}
		if curSession != nil {
			cur.Sessions = append(cur.Sessions, *curSession)
			curSession = nil
		}
		if len(cur.Sessions) == 0 {
			warnings = append(warnings, fmt.Sprintf("dropping empty module %q", cur.ModuleName))
		} else {
			tree.Modules = append(tree.Modules, *cur)
		}
		cur = nil
		curList = nil
	}

	for _, raw := range lines {
		line := strings.TrimRight(raw, " \t")
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}

		if m := moduleHeadingRe.FindStringSubmatch(line); m != nil {
			flush()
			id, name := splitModuleTitle(m[1], len(tree.Modules)+1)
			cur = &types.Module{ModuleID: id, ModuleName: name}
			flatMode = false
			continue
		}
		if cur == nil {
			continue
		}

		if m := sessionHeadingRe.FindStringSubmatch(line); m != nil {
			if curSession != nil {
				cur.Sessions = append(cur.Sessions, *curSession)
			}
			num, title := splitSessionTitle(m[1], len(cur.Sessions)+1)
			curSession = &types.Session{SessionNumber: num, SessionTitle: title}
			curList = nil
			continue
		}

		if m := listLabelRe.FindStringSubmatch(trimmed); m != nil && curSession != nil {
			switch normalizeLabel(m[1]) {
			case "subtopics":
				curList = &curSession.Subtopics
			case "learning objectives":
				curList = &curSession.LearningObjectives
			case "key concepts":
				curList = &curSession.KeyConcepts
			}
			continue
		}

		// bullet line that itself carries an inline label:
		// "- **Subtopics:** a; b; c" style is rejected as ambiguous, but
		// "**Subtopics:**" followed by bullets is the labelled form above.
		if m := bulletItemRe.FindStringSubmatch(line); m != nil && curSession != nil && curList != nil {
			if item := cleanItem(m[1]); item != "" {
				*curList = append(*curList, item)
			}
			continue
		}

		// flat enumeration fallback, used only for modules with no level-3
		// headings
		if flatMode || (curSession == nil && len(cur.Sessions) == 0) {
			if m := flatSessionRe.FindStringSubmatch(line); m != nil {
				if curSession != nil {
					cur.Sessions = append(cur.Sessions, *curSession)
				}
				num, _ := strconv.Atoi(m[1])
				curSession = &types.Session{SessionNumber: num, SessionTitle: cleanItem(m[2])}
				curList = nil
				flatMode = true
				continue
			}
		}

		// module description: first plain prose line under the heading
		if cur.ModuleDescription == "" && curSession == nil && trimmed != "" && !strings.HasPrefix(trimmed, "#") {
			cur.ModuleDescription = cleanItem(trimmed)
		}
	}
	flush()

	if len(tree.Modules) == 0 {
		return nil, warnings, fmt.Errorf("cannot parse outline: no modules recognized")
	}
	return &tree, warnings, nil
}

func splitModuleTitle(heading string, fallbackID int) (int, string) {
	if m := moduleTitleRe.FindStringSubmatch(strings.TrimSpace(heading)); m != nil {
		id, _ := strconv.Atoi(m[1])
		name := cleanItem(m[2])
		if name == "" {
			name = fmt.Sprintf("Module %d", id)
		}
		return id, name
	}
	return fallbackID, cleanItem(heading)
}

func splitSessionTitle(heading string, fallbackNum int) (int, string) {
	if m := sessionTitleRe.FindStringSubmatch(strings.TrimSpace(heading)); m != nil {
		num, _ := strconv.Atoi(m[1])
		title := cleanItem(m[2])
		if title == "" {
			title = fmt.Sprintf("Session %d", num)
		}
		return num, title
	}
	return fallbackNum, cleanItem(heading)
}

func normalizeLabel(label string) string {
	return strings.Join(strings.Fields(strings.ToLower(label)), " ")
}

// cleanItem strips bold markers and stray list punctuation from one item.
func cleanItem(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "**")
	s = strings.TrimSuffix(s, "**")
	s = strings.TrimSpace(s)
	return strings.Trim(s, ":")
}
