package generate

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/yungbote/courseforge/internal/config"
	"github.com/yungbote/courseforge/internal/outline"
	"github.com/yungbote/courseforge/internal/types"
)

// SessionContext is everything a generator needs to know about the session
// it is producing one artifact for.
type SessionContext struct {
	Meta          types.CourseMetadata
	Module        types.Module
	Session       types.Session
	TotalSessions int

	// rendered outline, bounded, for lecture prompts
	OutlineContext string
	// concatenated prior artifacts of the same session, for secondary
	// prompts; bounded per kind at fill time
	SessionContent string

	LabNumber     int
	DiagramNumber int
}

func newSessionContext(tree *types.OutlineTree, ref types.SessionRef) SessionContext {
	return SessionContext{
		Meta:          tree.CourseMetadata,
		Module:        *ref.Module,
		Session:       *ref.Session,
		TotalSessions: tree.TotalSessions(),
		LabNumber:     1,
		DiagramNumber: 1,
	}
}

// outlineContext renders the whole outline for prompt context, truncated
// to the lecture context limit.
func outlineContext(tree *types.OutlineTree, limit int) string {
	return truncate(outline.RenderMarkdown(tree), limit)
}

// sessionContent concatenates every artifact already written into the
// session directory, in stable name order, labelled per file.
func sessionContent(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext != ".md" && ext != ".mmd" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "--- %s ---\n%s\n", name, strings.TrimSpace(string(data)))
	}
	return b.String()
}

func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	return s[:limit]
}

// vars builds the template variable map for one kind.
func (r *Runner) vars(kind types.Kind, sc SessionContext, req config.Requirements) map[string]string {
	sess := sc.Session
	v := map[string]string{
		"language":      sc.Meta.Language,
		"session_title": sess.SessionTitle,
	}
	switch kind {
	case types.KindLecture:
		v["session_number"] = strconv.Itoa(sess.SessionNumber)
		v["total_sessions"] = strconv.Itoa(sc.TotalSessions)
		v["module_name"] = sc.Module.ModuleName
		v["outline_context"] = truncate(sc.OutlineContext, r.cfg.ContextLimit(kind))
		v["subtopics"] = joinList(sess.Subtopics)
		v["learning_objectives"] = joinList(sess.LearningObjectives)
		v["key_concepts"] = joinList(sess.KeyConcepts)
		v["min_word_count"] = strconv.Itoa(req.MinWordCount)
		v["max_word_count"] = strconv.Itoa(req.MaxWordCount)
		v["min_sections"] = strconv.Itoa(req.MinSections)
		v["max_sections"] = strconv.Itoa(req.MaxSections)
		v["min_examples"] = strconv.Itoa(req.MinExamples)
		v["max_examples"] = strconv.Itoa(req.MaxExamples)
	case types.KindLab:
		v["lab_number"] = strconv.Itoa(sc.LabNumber)
		v["lab_focus"] = labFocus(sess, sc.LabNumber)
		v["key_concepts"] = joinList(sess.KeyConcepts)
		v["min_steps"] = strconv.Itoa(req.MinSteps)
	case types.KindStudyNotes:
		v["subtopics"] = joinList(sess.Subtopics)
		v["key_concepts"] = joinList(sess.KeyConcepts)
		v["min_key_concepts"] = strconv.Itoa(req.MinKeyConcepts)
		v["max_key_concepts"] = strconv.Itoa(req.MaxKeyConcepts)
		v["max_word_count"] = strconv.Itoa(req.MaxWordCount)
	case types.KindDiagram:
		v["diagram_number"] = strconv.Itoa(sc.DiagramNumber)
		v["subtopics"] = joinList(sess.Subtopics)
		v["min_nodes"] = strconv.Itoa(req.MinNodes)
	case types.KindQuestions:
		split := SplitQuestions(req.NumQuestions, req.MCRatio, req.SARatio)
		v["num_questions"] = strconv.Itoa(req.NumQuestions)
		v["num_mc"] = strconv.Itoa(split.MC)
		v["num_sa"] = strconv.Itoa(split.SA)
		v["num_essay"] = strconv.Itoa(split.Essay)
		v["key_concepts"] = joinList(sess.KeyConcepts)
	case types.KindVisualization:
		v["session_content"] = truncate(sc.SessionContent, r.cfg.ContextLimit(kind))
		v["min_nodes"] = strconv.Itoa(req.MinNodes)
	default:
		// prose secondary kinds
		v["session_content"] = truncate(sc.SessionContent, r.cfg.ContextLimit(kind))
		v["min_items"] = strconv.Itoa(req.MinItems)
	}
	return v
}

// labFocus rotates through the session's subtopics so a second lab in the
// same session gets a different focus.
func labFocus(sess types.Session, labNumber int) string {
	if len(sess.Subtopics) == 0 {
		return sess.SessionTitle
	}
	return sess.Subtopics[(labNumber-1)%len(sess.Subtopics)]
}

func joinList(items []string) string {
	if len(items) == 0 {
		return "(none listed)"
	}
	return strings.Join(items, "; ")
}
