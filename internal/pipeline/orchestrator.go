// Package pipeline sequences the six course-generation stages and derives
// their exit codes from the per-stage error collector.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/yungbote/courseforge/internal/config"
	"github.com/yungbote/courseforge/internal/generate"
	"github.com/yungbote/courseforge/internal/llm"
	"github.com/yungbote/courseforge/internal/outline"
	"github.com/yungbote/courseforge/internal/pkg/logger"
	"github.com/yungbote/courseforge/internal/report"
	"github.com/yungbote/courseforge/internal/retry"
	"github.com/yungbote/courseforge/internal/runstore"
	"github.com/yungbote/courseforge/internal/types"
	"github.com/yungbote/courseforge/internal/website"
)

// Stage exit codes. Codes 2 and 3 belong to the tests stage alone.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitTestsFailed = 2
	ExitNoTests     = 3
)

// Sentinel failures of the tests stage.
var (
	ErrTestsFailed = errors.New("preflight checks failed")
	ErrNoTests     = errors.New("no preflight checks discovered")
)

// StageFunc is the body of one stage. The collector is fresh per stage;
// critical entries in it force exit code 1 even when the func returns nil.
type StageFunc func(ctx context.Context, col *report.Collector) error

// Orchestrator owns the cross-stage services: config, model client, retry
// state and the run ledger.
type Orchestrator struct {
	log     *logger.Logger
	cfg     *config.Store
	client  *llm.Client
	retries *retry.Manager
	ledger  *runstore.Store

	// run id of the stage currently inside RunStage; stages run strictly
	// sequentially, so one slot is enough.
	runID string
}

func New(cfg *config.Store, log *logger.Logger) *Orchestrator {
	o := &Orchestrator{
		log:     log,
		cfg:     cfg,
		client:  llm.New(cfg.LLMParams(), cfg, log),
		retries: retry.NewManager(log),
	}
	ledger, err := runstore.Open(cfg.RunLedgerPath(), log)
	if err != nil {
		log.Warn("run ledger unavailable", "error", err.Error())
	} else {
		o.ledger = ledger
	}
	return o
}

// Close releases the ledger connection.
func (o *Orchestrator) Close() {
	if o.ledger != nil {
		o.ledger.Close()
	}
}

// RunStage executes one stage with a fresh collector, records it in the
// ledger, and reports failures the way operators read them: a reason
// line, representative failed sessions with request ids, and recovery
// suggestions.
func (o *Orchestrator) RunStage(ctx context.Context, stage, course string, fn StageFunc) int {
	col := report.NewCollector(stage)
	log := o.log.With("stage", stage)

	runID := ""
	if o.ledger != nil {
		runID = o.ledger.BeginRun(course, stage)
	}
	o.runID = runID

	err := runProtected(ctx, col, fn)

	code := ExitOK
	switch {
	case errors.Is(err, ErrTestsFailed):
		code = ExitTestsFailed
	case errors.Is(err, ErrNoTests):
		code = ExitNoTests
	case err != nil, col.HasCritical():
		code = ExitFailure
	}

	if o.ledger != nil {
		o.ledger.FinishRun(runID, code, col.Summary())
	}

	if code != ExitOK {
		o.reportFailure(log, col, err)
		return code
	}

	s := col.Summary()
	log.Info("stage complete",
		"issues", s.Total,
		"warnings", s.BySeverity[string(report.SeverityWarning)],
	)
	return ExitOK
}

func runProtected(ctx context.Context, col *report.Collector, fn StageFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			col.AddError("generation", fmt.Sprintf("panic: %v\n%s", r, debug.Stack()))
			err = fmt.Errorf("stage panicked: %v", r)
		}
	}()
	return fn(ctx, col)
}

func (o *Orchestrator) reportFailure(log *logger.Logger, col *report.Collector, err error) {
	reason := "stage reported critical issues"
	if err != nil {
		reason = err.Error()
	}
	log.Error("stage failed", "reason", reason)

	critical := col.Critical()
	for i, issue := range critical {
		if i >= 5 {
			break
		}
		log.Error("failed session",
			"content_type", issue.ContentType,
			"module", issue.ModuleID,
			"session", issue.SessionNum,
			"message", issue.Message,
		)
	}

	seen := map[string]bool{}
	suggestions := 0
	for _, issue := range critical {
		key := issue.Type + "/" + issue.ContentType
		if seen[key] || suggestions >= 3 {
			continue
		}
		seen[key] = true
		suggestions++
		log.Error("recovery suggestion",
			"for", key,
			"suggestion", col.SuggestRecovery(issue.Type, issue.ContentType),
		)
	}
}

// SetupStage validates the configuration and creates the course directory
// skeleton.
func (o *Orchestrator) SetupStage(course string) StageFunc {
	return func(ctx context.Context, col *report.Collector) error {
		meta, structure, err := o.cfg.CourseInfo(course)
		if err != nil {
			return err
		}
		if err := structure.Validate(); err != nil {
			return err
		}
		paths := o.cfg.OutputPaths(meta.Name)
		for _, dir := range []string{paths.Outlines, paths.Modules, paths.Website, paths.Logs} {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", dir, err)
			}
		}
		col.AddInfo("setup", fmt.Sprintf("directories ready for course %q", meta.Name))
		return nil
	}
}

// OutlineStage runs the outline generator. A non-nil structure override
// comes from the interactive dialog of the outline entry point.
func (o *Orchestrator) OutlineStage(course string, override *types.StructureConfig) StageFunc {
	return func(ctx context.Context, col *report.Collector) error {
		gen := outline.NewGenerator(o.cfg, o.client, col, o.log)
		res, err := gen.Generate(ctx, course, override)
		if err != nil {
			return err
		}
		col.AddInfo("outline", fmt.Sprintf("outline written to %s", res.JSONPath))
		return nil
	}
}

// PrimaryStage walks every outline session and produces the primary
// artifacts. Transport failures skip the session, never the stage.
func (o *Orchestrator) PrimaryStage(outlinePath string, moduleFilter []int) StageFunc {
	return o.sessionStage(outlinePath, moduleFilter, func(ctx context.Context, r *generate.Runner, tree *types.OutlineTree, ref types.SessionRef) error {
		return r.PrimarySession(ctx, tree, ref)
	})
}

// SecondaryStage produces the secondary artifacts, optionally filtered to
// a subset of kinds.
func (o *Orchestrator) SecondaryStage(outlinePath string, moduleFilter []int, kinds []types.Kind) StageFunc {
	return o.sessionStage(outlinePath, moduleFilter, func(ctx context.Context, r *generate.Runner, tree *types.OutlineTree, ref types.SessionRef) error {
		return r.SecondarySession(ctx, tree, ref, kinds)
	})
}

func (o *Orchestrator) sessionStage(outlinePath string, moduleFilter []int, run func(context.Context, *generate.Runner, *types.OutlineTree, types.SessionRef) error) StageFunc {
	return func(ctx context.Context, col *report.Collector) error {
		tree, resolved, err := o.cfg.ModulesFromOutline(outlinePath)
		if err != nil {
			return err
		}
		o.log.Info("using outline", "path", resolved, "course", tree.CourseMetadata.Name)

		runner := generate.NewRunner(o.cfg, o.client, o.retries, col, o.log, tree.CourseMetadata.Name)
		if o.ledger != nil {
			runner.WithLedger(o.ledger, o.runID)
		}
		for _, ref := range tree.AllSessions() {
			if !moduleSelected(ref.Module.ModuleID, moduleFilter) {
				continue
			}
			sessionProtected(ctx, col, runner, tree, ref, run)
		}
		return nil
	}
}

// sessionProtected confines panics and transport failures to one session.
func sessionProtected(ctx context.Context, col *report.Collector, r *generate.Runner, tree *types.OutlineTree, ref types.SessionRef, run func(context.Context, *generate.Runner, *types.OutlineTree, types.SessionRef) error) {
	defer func() {
		if rec := recover(); rec != nil {
			col.AddError("generation",
				fmt.Sprintf("panic in session: %v\n%s", rec, debug.Stack()),
				report.WithSession(ref.Module.ModuleID, ref.Session.SessionNumber))
		}
	}()
	// errors are already recorded in the collector by the runner
	_ = run(ctx, r, tree, ref)
}

// WebsiteStage renders index.html from whatever artifacts exist.
func (o *Orchestrator) WebsiteStage(outlinePath string) StageFunc {
	return func(ctx context.Context, col *report.Collector) error {
		tree, _, err := o.cfg.ModulesFromOutline(outlinePath)
		if err != nil {
			return err
		}
		builder := website.NewBuilder(o.cfg, o.log)
		path, err := builder.Build(tree)
		if err != nil {
			return err
		}
		col.AddInfo("website", fmt.Sprintf("site written to %s", path))
		return nil
	}
}

func moduleSelected(id int, filter []int) bool {
	if len(filter) == 0 {
		return true
	}
	for _, f := range filter {
		if f == id {
			return true
		}
	}
	return false
}
