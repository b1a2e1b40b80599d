package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yungbote/courseforge/internal/config"
	"github.com/yungbote/courseforge/internal/llm"
	"github.com/yungbote/courseforge/internal/pkg/logger"
	"github.com/yungbote/courseforge/internal/report"
	"github.com/yungbote/courseforge/internal/retry"
	"github.com/yungbote/courseforge/internal/runstore"
	"github.com/yungbote/courseforge/internal/types"
)

// failingLectureServer serves a lecture short enough to trip the
// "only 1 sections" critical warning on every attempt, and records the
// prompt of each request.
func failingLectureServer(t *testing.T, prompts *[]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Prompt string `json:"prompt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		*prompts = append(*prompts, req.Prompt)
		fmt.Fprintln(w, `{"response":"## Introduction\nFor example, water boils. For instance, ice melts.","done":true}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func failingLectureRunner(t *testing.T, baseURL string) (*Runner, *retry.Manager) {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "llm.yaml"), []byte("base_url: "+baseURL+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(dir, logger.NewNop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	client := llm.New(cfg.LLMParams(), cfg, logger.NewNop())
	retries := retry.NewManager(logger.NewNop())
	col := report.NewCollector("04_primary")
	return NewRunner(cfg, client, retries, col, logger.NewNop(), "X"), retries
}

func TestGenerateRetriesOnceWithFeedback(t *testing.T) {
	var prompts []string
	srv := failingLectureServer(t, &prompts)
	r, retries := failingLectureRunner(t, srv.URL)

	tree := testTree()
	sc := newSessionContext(tree, tree.AllSessions()[0])

	text, err := r.generate(context.Background(), types.KindLecture, sc)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if text == "" {
		t.Fatal("no text returned despite validation failure")
	}

	if len(prompts) != 2 {
		t.Fatalf("llm calls = %d, want 2 (one retry)", len(prompts))
	}
	if strings.Contains(prompts[0], "VALIDATION FEEDBACK") {
		t.Fatal("first attempt already carried feedback")
	}
	if !strings.Contains(prompts[1], "VALIDATION FEEDBACK FROM PREVIOUS ATTEMPT") {
		t.Fatalf("retry prompt missing feedback block:\n%s", prompts[1])
	}

	if got := retries.Stats().TotalAttempts; got != 2 {
		t.Fatalf("recorded attempts = %d, want 2", got)
	}
}

func TestGenerateRecordsLedgerAttempts(t *testing.T) {
	var prompts []string
	srv := failingLectureServer(t, &prompts)
	r, _ := failingLectureRunner(t, srv.URL)

	ledger, err := runstore.Open(filepath.Join(t.TempDir(), "runs.db"), logger.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer ledger.Close()
	runID := ledger.BeginRun("X", "04_primary")
	r.WithLedger(ledger, runID)

	tree := testTree()
	sc := newSessionContext(tree, tree.AllSessions()[0])
	if _, err := r.generate(context.Background(), types.KindLecture, sc); err != nil {
		t.Fatalf("generate: %v", err)
	}

	rows, err := ledger.RecentFailures(10)
	if err != nil {
		t.Fatalf("RecentFailures: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("ledger rows = %d, want 2", len(rows))
	}
	attempts := map[int]bool{}
	for _, row := range rows {
		if row.ContentType != "lecture" {
			t.Errorf("content type = %q", row.ContentType)
		}
		if row.ModuleID != 1 || row.SessionNum != 1 {
			t.Errorf("session key = %d/%d", row.ModuleID, row.SessionNum)
		}
		if row.Success {
			t.Error("failed attempt stored as success")
		}
		if row.ErrorCategory == "" || row.ErrorMessage == "" {
			t.Errorf("category/message missing: %+v", row)
		}
		if row.QualityScore <= 0 {
			t.Errorf("quality score not stored: %+v", row)
		}
		attempts[row.Attempt] = true
	}
	if !attempts[1] || !attempts[2] {
		t.Fatalf("attempt numbers = %v, want 1 and 2", attempts)
	}
}
