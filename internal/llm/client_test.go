package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/courseforge/internal/config"
	"github.com/yungbote/courseforge/internal/pkg/logger"
	"github.com/yungbote/courseforge/internal/types"
)

type fixedTimeouts time.Duration

func (f fixedTimeouts) OperationTimeout(types.Kind) time.Duration { return time.Duration(f) }

func newTestClient(t *testing.T, handler http.HandlerFunc, timeout time.Duration) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := New(config.LLMParams{
		BaseURL:        srv.URL,
		Model:          "test-model",
		TimeoutDefault: timeout,
	}, fixedTimeouts(timeout), logger.NewNop())
	return c, srv
}

func TestGenerateConcatenatesStream(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/x-ndjson")
		fmt.Fprintln(w, `{"response":"# Lecture\n\n","done":false}`)
		fmt.Fprintln(w, `{"response":"Body text.","done":false}`)
		fmt.Fprintln(w, `{"response":"","done":true}`)
	}, 10*time.Second)

	out, err := c.Generate(context.Background(), "write a lecture", Options{Operation: types.KindLecture})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(out, "# Lecture") || !strings.Contains(out, "Body text.") {
		t.Fatalf("stream not concatenated: %q", out)
	}
}

func TestGenerateEmptyOutputIsTypedError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"response":"   \n","done":true}`)
	}, 10*time.Second)

	_, err := c.Generate(context.Background(), "prompt", Options{Operation: types.KindLecture})
	le, ok := AsError(err)
	if !ok {
		t.Fatalf("expected *Error, got %v", err)
	}
	if le.Kind != KindEmpty {
		t.Fatalf("kind = %s, want %s", le.Kind, KindEmpty)
	}
}

func TestGenerateTimeoutClassified(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		time.Sleep(2 * time.Second)
	}, 100*time.Millisecond)

	_, err := c.Generate(context.Background(), "prompt", Options{Operation: types.KindLecture})
	if !IsTimeout(err) {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestGenerateBadStatusIsTransport(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}, 10*time.Second)

	_, err := c.Generate(context.Background(), "prompt", Options{Operation: types.KindLecture})
	le, ok := AsError(err)
	if !ok || le.Kind != KindTransport {
		t.Fatalf("expected transport error, got %v", err)
	}
	if !strings.Contains(err.Error(), "500") {
		t.Fatalf("status missing from message: %v", err)
	}
}

func TestErrorMessageCarriesRequestID(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `not json at all`)
	}, 10*time.Second)

	_, err := c.Generate(context.Background(), "prompt", Options{Operation: types.KindDiagram})
	if err == nil {
		t.Fatal("expected error")
	}
	idRe := regexp.MustCompile(`^\[[a-z]+:[0-9a-f]{6}\]`)
	if !idRe.MatchString(err.Error()) {
		t.Fatalf("request id missing from %q", err.Error())
	}
}

func TestNewRequestIDShape(t *testing.T) {
	idRe := regexp.MustCompile(`^[a-z]+:[0-9a-f]{6}$`)
	for _, kind := range types.AllKinds {
		id := newRequestID(kind)
		if !idRe.MatchString(id) {
			t.Errorf("newRequestID(%s) = %q", kind, id)
		}
		if !strings.HasPrefix(id, kind.Abbrev()+":") {
			t.Errorf("id %q missing abbrev for %s", id, kind)
		}
	}
}

func TestFillTemplate(t *testing.T) {
	out, err := FillTemplate("Course {course_name} at {level}", map[string]string{
		"course_name": "Physics",
		"level":       "Introductory",
		"unused":      "x",
	})
	if err != nil {
		t.Fatalf("FillTemplate: %v", err)
	}
	if out != "Course Physics at Introductory" {
		t.Fatalf("got %q", out)
	}

	_, err = FillTemplate("Course {course_name} for {audience}", map[string]string{"course_name": "Physics"})
	if err == nil || !strings.Contains(err.Error(), "audience") {
		t.Fatalf("unresolved placeholder not reported: %v", err)
	}
}

func TestExtraVars(t *testing.T) {
	extras := ExtraVars("{a} and {b}", map[string]string{"a": "1", "b": "2", "c": "3", "d": "4"})
	if len(extras) != 2 || extras[0] != "c" || extras[1] != "d" {
		t.Fatalf("extras = %v", extras)
	}
}

func TestEmptyPromptRejected(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {}, time.Second)
	if _, err := c.Generate(context.Background(), "   ", Options{}); err == nil {
		t.Fatal("expected error for empty prompt")
	}
}
