package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/yungbote/courseforge/internal/config"
	"github.com/yungbote/courseforge/internal/pkg/logger"
	"github.com/yungbote/courseforge/internal/report"
)

func testOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	cfgDir := t.TempDir()
	outDir := t.TempDir()
	outputYAML := fmt.Sprintf("base_dir: %s\n", outDir)
	if err := os.WriteFile(filepath.Join(cfgDir, "output.yaml"), []byte(outputYAML), 0o644); err != nil {
		t.Fatalf("write output.yaml: %v", err)
	}
	cfg, err := config.Load(cfgDir, logger.NewNop())
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	o := New(cfg, logger.NewNop())
	t.Cleanup(o.Close)
	return o
}

func TestRunStageExitCodes(t *testing.T) {
	o := testOrchestrator(t)
	ctx := context.Background()

	t.Run("clean stage exits 0", func(t *testing.T) {
		code := o.RunStage(ctx, "01_setup", "", func(ctx context.Context, col *report.Collector) error {
			col.AddInfo("setup", "ok")
			return nil
		})
		if code != ExitOK {
			t.Fatalf("code = %d, want 0", code)
		}
	})

	t.Run("returned error exits 1", func(t *testing.T) {
		code := o.RunStage(ctx, "04_primary", "", func(ctx context.Context, col *report.Collector) error {
			return errors.New("boom")
		})
		if code != ExitFailure {
			t.Fatalf("code = %d, want 1", code)
		}
	})

	t.Run("critical collector entry exits 1", func(t *testing.T) {
		code := o.RunStage(ctx, "04_primary", "", func(ctx context.Context, col *report.Collector) error {
			col.AddError("timeout", "[lec:a1b2c3] llm timeout error: stream exceeded effective timeout")
			return nil
		})
		if code != ExitFailure {
			t.Fatalf("code = %d, want 1", code)
		}
	})

	t.Run("warnings alone exit 0", func(t *testing.T) {
		code := o.RunStage(ctx, "04_primary", "", func(ctx context.Context, col *report.Collector) error {
			col.AddWarning("validation", "key concepts: 12 (too many, max 10)")
			return nil
		})
		if code != ExitOK {
			t.Fatalf("code = %d, want 0", code)
		}
	})

	t.Run("tests failed exits 2", func(t *testing.T) {
		code := o.RunStage(ctx, "02_tests", "", func(ctx context.Context, col *report.Collector) error {
			return fmt.Errorf("%w: 1 of 4", ErrTestsFailed)
		})
		if code != ExitTestsFailed {
			t.Fatalf("code = %d, want 2", code)
		}
	})

	t.Run("no tests exits 3", func(t *testing.T) {
		code := o.RunStage(ctx, "02_tests", "", func(ctx context.Context, col *report.Collector) error {
			return ErrNoTests
		})
		if code != ExitNoTests {
			t.Fatalf("code = %d, want 3", code)
		}
	})

	t.Run("panic is caught and exits 1", func(t *testing.T) {
		code := o.RunStage(ctx, "04_primary", "", func(ctx context.Context, col *report.Collector) error {
			panic("unexpected")
		})
		if code != ExitFailure {
			t.Fatalf("code = %d, want 1", code)
		}
	})
}

func TestSetupStageCreatesLayout(t *testing.T) {
	o := testOrchestrator(t)
	code := o.RunStage(context.Background(), "01_setup", "", o.SetupStage(""))
	if code != ExitOK {
		t.Fatalf("setup exit = %d", code)
	}
	paths := o.cfg.OutputPaths("")
	for _, dir := range []string{paths.Outlines, paths.Modules, paths.Website, paths.Logs} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("missing directory %s: %v", dir, err)
		}
	}
}

func TestModuleSelected(t *testing.T) {
	if !moduleSelected(3, nil) {
		t.Fatal("empty filter must select everything")
	}
	if !moduleSelected(2, []int{1, 2}) || moduleSelected(3, []int{1, 2}) {
		t.Fatal("filter not applied")
	}
}

func TestLastLine(t *testing.T) {
	if got := lastLine("a\nb\n\n  \n"); got != "b" {
		t.Fatalf("lastLine = %q, want b", got)
	}
	if got := lastLine("  \n"); got != "" {
		t.Fatalf("lastLine = %q, want empty", got)
	}
}
