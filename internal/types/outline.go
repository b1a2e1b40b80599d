package types

import (
	"encoding/json"
	"fmt"
)

// OutlineTree is the persisted outline document: course metadata plus the
// ordered module/session tree. It is the only cross-stage contract; later
// stages discover the active course by reading it back from disk.
//
// Unknown JSON keys are preserved through a load/store round trip so that
// hand-annotated outlines survive regeneration of downstream stages.
type OutlineTree struct {
	CourseMetadata CourseMetadata `json:"course_metadata"`
	Modules        []Module       `json:"modules"`

	extra map[string]json.RawMessage
}

// Module is a top-level division of a course. ModuleID is 1-based and dense.
type Module struct {
	ModuleID          int       `json:"module_id"`
	ModuleName        string    `json:"module_name"`
	ModuleDescription string    `json:"module_description"`
	Sessions          []Session `json:"sessions"`

	extra map[string]json.RawMessage
}

// Session is the leaf unit of a course. SessionNumber is 1-based and dense
// within its module; global identity is (ModuleID, SessionNumber).
type Session struct {
	SessionNumber      int      `json:"session_number"`
	SessionTitle       string   `json:"session_title"`
	Subtopics          []string `json:"subtopics"`
	LearningObjectives []string `json:"learning_objectives"`
	KeyConcepts        []string `json:"key_concepts"`

	extra map[string]json.RawMessage
}

// TotalSessions counts sessions across all modules.
func (t *OutlineTree) TotalSessions() int {
	n := 0
	for _, m := range t.Modules {
		n += len(m.Sessions)
	}
	return n
}

// SessionRef is one (module, session) pair with its parent module, handed to
// generators as the unit of work.
type SessionRef struct {
	Module  *Module
	Session *Session
}

// AllSessions walks modules in order and returns every session with its
// module link.
func (t *OutlineTree) AllSessions() []SessionRef {
	refs := make([]SessionRef, 0, t.TotalSessions())
	for i := range t.Modules {
		m := &t.Modules[i]
		for j := range m.Sessions {
			refs = append(refs, SessionRef{Module: m, Session: &m.Sessions[j]})
		}
	}
	return refs
}

// ---- round-trip-preserving JSON ----

func splitKnown(b []byte, known ...string) (map[string]json.RawMessage, map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, nil, err
	}
	extra := map[string]json.RawMessage{}
	for k, v := range raw {
		keep := false
		for _, kn := range known {
			if k == kn {
				keep = true
				break
			}
		}
		if !keep {
			extra[k] = v
		}
	}
	if len(extra) == 0 {
		extra = nil
	}
	return raw, extra, nil
}

func mergeExtra(out map[string]json.RawMessage, extra map[string]json.RawMessage) map[string]json.RawMessage {
	for k, v := range extra {
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	return out
}

func mustRaw(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("null")
	}
	return b
}

func (t *OutlineTree) UnmarshalJSON(b []byte) error {
	raw, extra, err := splitKnown(b, "course_metadata", "modules")
	if err != nil {
		return fmt.Errorf("outline document: %w", err)
	}
	t.extra = extra
	if v, ok := raw["course_metadata"]; ok {
		if err := json.Unmarshal(v, &t.CourseMetadata); err != nil {
			return fmt.Errorf("course_metadata: %w", err)
		}
	}
	if v, ok := raw["modules"]; ok {
		if err := json.Unmarshal(v, &t.Modules); err != nil {
			return fmt.Errorf("modules: %w", err)
		}
	}
	return nil
}

func (t OutlineTree) MarshalJSON() ([]byte, error) {
	out := map[string]json.RawMessage{
		"course_metadata": mustRaw(t.CourseMetadata),
		"modules":         mustRaw(t.Modules),
	}
	return json.Marshal(mergeExtra(out, t.extra))
}

func (m *Module) UnmarshalJSON(b []byte) error {
	raw, extra, err := splitKnown(b, "module_id", "module_name", "module_description", "sessions")
	if err != nil {
		return fmt.Errorf("module: %w", err)
	}
	m.extra = extra
	if v, ok := raw["module_id"]; ok {
		if err := json.Unmarshal(v, &m.ModuleID); err != nil {
			return fmt.Errorf("module_id: %w", err)
		}
	}
	if v, ok := raw["module_name"]; ok {
		if err := json.Unmarshal(v, &m.ModuleName); err != nil {
			return fmt.Errorf("module_name: %w", err)
		}
	}
	if v, ok := raw["module_description"]; ok {
		if err := json.Unmarshal(v, &m.ModuleDescription); err != nil {
			return fmt.Errorf("module_description: %w", err)
		}
	}
	if v, ok := raw["sessions"]; ok {
		if err := json.Unmarshal(v, &m.Sessions); err != nil {
			return fmt.Errorf("sessions: %w", err)
		}
	}
	return nil
}

func (m Module) MarshalJSON() ([]byte, error) {
	sessions := m.Sessions
	if sessions == nil {
		sessions = []Session{}
	}
	out := map[string]json.RawMessage{
		"module_id":          mustRaw(m.ModuleID),
		"module_name":        mustRaw(m.ModuleName),
		"module_description": mustRaw(m.ModuleDescription),
		"sessions":           mustRaw(sessions),
	}
	return json.Marshal(mergeExtra(out, m.extra))
}

func (s *Session) UnmarshalJSON(b []byte) error {
	raw, extra, err := splitKnown(b, "session_number", "session_title", "subtopics", "learning_objectives", "key_concepts")
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}
	s.extra = extra
	if v, ok := raw["session_number"]; ok {
		if err := json.Unmarshal(v, &s.SessionNumber); err != nil {
			return fmt.Errorf("session_number: %w", err)
		}
	}
	if v, ok := raw["session_title"]; ok {
		if err := json.Unmarshal(v, &s.SessionTitle); err != nil {
			return fmt.Errorf("session_title: %w", err)
		}
	}
	for key, dst := range map[string]*[]string{
		"subtopics":           &s.Subtopics,
		"learning_objectives": &s.LearningObjectives,
		"key_concepts":        &s.KeyConcepts,
	} {
		if v, ok := raw[key]; ok {
			if err := json.Unmarshal(v, dst); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
		}
	}
	return nil
}

func (s Session) MarshalJSON() ([]byte, error) {
	emptyIfNil := func(xs []string) []string {
		if xs == nil {
			return []string{}
		}
		return xs
	}
	out := map[string]json.RawMessage{
		"session_number":      mustRaw(s.SessionNumber),
		"session_title":       mustRaw(s.SessionTitle),
		"subtopics":           mustRaw(emptyIfNil(s.Subtopics)),
		"learning_objectives": mustRaw(emptyIfNil(s.LearningObjectives)),
		"key_concepts":        mustRaw(emptyIfNil(s.KeyConcepts)),
	}
	return json.Marshal(mergeExtra(out, s.extra))
}
