package outline

import (
	"fmt"
	"strings"

	"github.com/yungbote/courseforge/internal/types"
)

// RenderMarkdown produces the human-review twin of the outline JSON. Only
// the JSON is read by later stages; this rendering is never parsed back.
func RenderMarkdown(tree *types.OutlineTree) string {
	var b strings.Builder

	meta := tree.CourseMetadata
	fmt.Fprintf(&b, "# %s\n\n", meta.Name)
	if meta.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", meta.Description)
	}
	fmt.Fprintf(&b, "- Subject: %s\n- Level: %s\n- Language: %s\n", meta.Subject, meta.Level, meta.Language)
	fmt.Fprintf(&b, "- Modules: %d, sessions: %d\n\n", len(tree.Modules), tree.TotalSessions())

	for _, mod := range tree.Modules {
		fmt.Fprintf(&b, "## Module %d: %s\n\n", mod.ModuleID, mod.ModuleName)
		if mod.ModuleDescription != "" {
			fmt.Fprintf(&b, "%s\n\n", mod.ModuleDescription)
		}
		for _, sess := range mod.Sessions {
			fmt.Fprintf(&b, "### Session %d: %s\n\n", sess.SessionNumber, sess.SessionTitle)
			writeList(&b, "Subtopics", sess.Subtopics)
			writeList(&b, "Learning Objectives", sess.LearningObjectives)
			writeList(&b, "Key Concepts", sess.KeyConcepts)
		}
	}
	return b.String()
}

func writeList(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "**%s:**\n", label)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}
