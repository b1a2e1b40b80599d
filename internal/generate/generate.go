// Package generate drives the eleven per-session artifact generators.
// Every kind runs the same loop: fill the prompt, call the model, clean
// and analyze the result, and retry once with targeted feedback when the
// analyzer finds critical problems.
package generate

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yungbote/courseforge/internal/analyze"
	"github.com/yungbote/courseforge/internal/config"
	"github.com/yungbote/courseforge/internal/llm"
	"github.com/yungbote/courseforge/internal/pkg/fsutil"
	"github.com/yungbote/courseforge/internal/pkg/logger"
	"github.com/yungbote/courseforge/internal/report"
	"github.com/yungbote/courseforge/internal/retry"
	"github.com/yungbote/courseforge/internal/runstore"
	"github.com/yungbote/courseforge/internal/types"
)

// defaultMaxRetries is the per-artifact retry budget on validation
// failures. Transport failures are never retried here.
const defaultMaxRetries = 1

// Runner generates artifacts for one course. It owns no per-session state;
// the same Runner walks every session of a stage sequentially.
type Runner struct {
	log       *logger.Logger
	cfg       *config.Store
	client    *llm.Client
	retries   *retry.Manager
	collector *report.Collector

	paths      config.OutputPaths
	maxRetries int

	ledger *runstore.Store
	runID  string
}

func NewRunner(cfg *config.Store, client *llm.Client, retries *retry.Manager, collector *report.Collector, log *logger.Logger, course string) *Runner {
	return &Runner{
		log:        log.With("service", "ArtifactRunner"),
		cfg:        cfg,
		client:     client,
		retries:    retries,
		collector:  collector,
		paths:      cfg.OutputPaths(course),
		maxRetries: defaultMaxRetries,
	}
}

// WithLedger attaches the run ledger so every generation attempt is
// persisted with its outcome and quality score. Ledger writes stay
// advisory; a nil ledger disables them.
func (r *Runner) WithLedger(ledger *runstore.Store, runID string) *Runner {
	r.ledger = ledger
	r.runID = runID
	return r
}

// PrimarySession produces the fixed primary artifact sequence for one
// session: lecture, lab, study notes, the configured number of diagrams,
// then questions. A transport or timeout failure skips the rest of the
// session; the caller moves on to the next one.
func (r *Runner) PrimarySession(ctx context.Context, tree *types.OutlineTree, ref types.SessionRef) error {
	sc := newSessionContext(tree, ref)
	sc.OutlineContext = outlineContext(tree, r.cfg.ContextLimit(types.KindLecture))
	dir := r.sessionDir(sc)

	for _, kind := range []types.Kind{types.KindLecture, types.KindLab, types.KindStudyNotes} {
		if err := r.generateAndWrite(ctx, kind, sc, filepath.Join(dir, string(kind)+kind.Ext())); err != nil {
			return err
		}
	}
	diagrams := r.cfg.DiagramsPerSession(sc.Meta.CourseTemplate)
	for i := 1; i <= diagrams; i++ {
		sc.DiagramNumber = i
		name := fmt.Sprintf("diagram_%d%s", i, types.KindDiagram.Ext())
		if err := r.generateAndWrite(ctx, types.KindDiagram, sc, filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return r.generateAndWrite(ctx, types.KindQuestions, sc, filepath.Join(dir, string(types.KindQuestions)+types.KindQuestions.Ext()))
}

// SecondarySession produces the requested secondary kinds in fixed order,
// feeding each one the session folder's content as it stands.
func (r *Runner) SecondarySession(ctx context.Context, tree *types.OutlineTree, ref types.SessionRef, kinds []types.Kind) error {
	sc := newSessionContext(tree, ref)
	dir := r.sessionDir(sc)

	for _, kind := range types.SecondaryKinds {
		if !kindRequested(kind, kinds) {
			continue
		}
		sc.SessionContent = sessionContent(dir)
		if sc.SessionContent == "" {
			r.collector.AddWarning("missing_context",
				fmt.Sprintf("no primary artifacts found for %s context", kind),
				report.WithContentType(string(kind)),
				report.WithSession(sc.Module.ModuleID, sc.Session.SessionNumber))
		}
		path := filepath.Join(dir, string(kind)+kind.Ext())
		if err := r.generateAndWrite(ctx, kind, sc, path); err != nil {
			return err
		}
	}
	return nil
}

func kindRequested(kind types.Kind, requested []types.Kind) bool {
	if len(requested) == 0 {
		return true
	}
	for _, k := range requested {
		if k == kind {
			return true
		}
	}
	return false
}

func (r *Runner) sessionDir(sc SessionContext) string {
	return r.paths.SessionDir(sc.Module.ModuleID, sc.Module.ModuleName, sc.Session.SessionNumber)
}

func (r *Runner) generateAndWrite(ctx context.Context, kind types.Kind, sc SessionContext, path string) error {
	text, err := r.generate(ctx, kind, sc)
	if err != nil {
		r.recordLLMError(kind, sc, err)
		return err
	}
	if err := fsutil.WriteFileAtomic(path, []byte(text)); err != nil {
		r.collector.AddError("write_error", err.Error(),
			report.WithContentType(string(kind)),
			report.WithSession(sc.Module.ModuleID, sc.Session.SessionNumber))
		return err
	}
	return nil
}

// generate runs the shared loop for one artifact and returns the last
// produced text even when it still carries critical warnings, so partial
// output stays inspectable downstream.
func (r *Runner) generate(ctx context.Context, kind types.Kind, sc SessionContext) (string, error) {
	req := r.cfg.Requirements(kind)
	tpl, err := r.cfg.PromptTemplate(kind)
	if err != nil {
		return "", err
	}
	vars := r.vars(kind, sc, req)

	if filled, err := llm.FillTemplate(tpl.User, vars); err == nil {
		if q := analyze.ValidatePromptQuality(filled, vars, kind, req); len(q.Issues) > 0 {
			r.log.Warn("prompt quality issues",
				"kind", string(kind),
				"score", q.Score,
				"issues", strings.Join(q.Issues, "; "),
			)
		}
	}

	log := r.log.With("kind", string(kind),
		"module", sc.Module.ModuleID,
		"session", sc.Session.SessionNumber)

	var text string
	var warnings, critical []string
	feedback := ""

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		user := tpl.User
		if attempt > 0 && feedback != "" {
			user = user + "\n\n" + feedback
		}
		raw, err := r.client.GenerateWithTemplate(ctx, user, vars, llm.Options{
			System:    tpl.System,
			Operation: kind,
		})
		if err != nil {
			return "", err
		}

		text = raw
		if kind == types.KindQuestions {
			var fixes int
			text, fixes = AutoFixQuestions(text)
			if fixes > 0 && attempt == 0 {
				log.Info("auto-fixed question format", "fixes", fixes)
			}
		}
		text = header(kind, sc) + text

		metrics := analyze.Analyze(kind, text, req)
		warnings = metrics.Warnings
		critical = filterCritical(warnings, req, kind)

		strategy := retry.StrategyImmediate
		if attempt > 0 {
			strategy = retry.StrategyEnhanced
		}
		errType, errMsg := "success", ""
		if len(critical) > 0 {
			errType, errMsg = "validation", critical[0]
		}
		score := analyze.CalculateQualityScore(metrics, req, kind)
		r.retries.RecordAttempt(errType, errMsg, string(kind), attempt+1, len(critical) == 0, strategy, "")
		if r.ledger != nil {
			category := ""
			if len(critical) > 0 {
				category = string(retry.Categorize(critical[0]))
			}
			r.ledger.RecordAttempt(r.runID, runstore.GenerationAttempt{
				ContentType:   string(kind),
				ModuleID:      sc.Module.ModuleID,
				SessionNum:    sc.Session.SessionNumber,
				Attempt:       attempt + 1,
				Success:       len(critical) == 0,
				ErrorCategory: category,
				ErrorMessage:  errMsg,
				QualityScore:  score.OverallScore,
			})
		}

		log.Info("artifact analyzed",
			"attempt", attempt+1,
			"words", metrics.WordCount,
			"warnings", len(warnings),
			"critical", len(critical),
			"quality_score", score.OverallScore,
			"quality_level", string(score.QualityLevel),
		)

		if len(critical) == 0 || attempt == r.maxRetries {
			break
		}
		// attempt counts retries already consumed here, matching the
		// budget guard in ShouldRetry.
		ok, strategyNext := r.retries.ShouldRetry(critical[0], string(kind), attempt, r.maxRetries)
		if !ok {
			log.Warn("retry declined by history", "error", critical[0])
			break
		}
		log.Info("retrying with feedback", "strategy", string(strategyNext), "error", critical[0])
		feedback = r.retries.Feedback(critical[0], string(kind), warnings, &req)
	}

	r.pushWarnings(kind, sc, warnings, req)
	return text, nil
}

// filterCritical keeps the warnings that block the stage.
func filterCritical(warnings []string, req config.Requirements, kind types.Kind) []string {
	var out []string
	for _, w := range warnings {
		if report.IsCriticalWarning(w, req.PrimaryMinimum(kind)) {
			out = append(out, w)
		}
	}
	return out
}

func (r *Runner) pushWarnings(kind types.Kind, sc SessionContext, warnings []string, req config.Requirements) {
	for _, w := range warnings {
		opts := []report.Option{
			report.WithContentType(string(kind)),
			report.WithSession(sc.Module.ModuleID, sc.Session.SessionNumber),
		}
		if report.IsCriticalWarning(w, req.PrimaryMinimum(kind)) {
			r.collector.AddError("validation", w, opts...)
		} else {
			r.collector.AddWarning("validation", w, opts...)
		}
	}
}

func (r *Runner) recordLLMError(kind types.Kind, sc SessionContext, err error) {
	typ := "llm_error"
	if llm.IsTimeout(err) {
		typ = "timeout"
	}
	r.collector.AddError(typ, err.Error(),
		report.WithContentType(string(kind)),
		report.WithSession(sc.Module.ModuleID, sc.Session.SessionNumber))
	r.log.Error("generation failed, skipping session",
		"kind", string(kind),
		"module", sc.Module.ModuleID,
		"session", sc.Session.SessionNumber,
		"error", err.Error(),
	)
}

// header prefixes the generated body with its per-kind title block.
// Mermaid kinds get none: their first line must stay a diagram header.
func header(kind types.Kind, sc SessionContext) string {
	title := sc.Session.SessionTitle
	switch kind {
	case types.KindLecture:
		var b strings.Builder
		fmt.Fprintf(&b, "# %s\n\n", title)
		if len(sc.Session.LearningObjectives) > 0 {
			b.WriteString("**Learning Objectives:**\n")
			for _, obj := range sc.Session.LearningObjectives {
				fmt.Fprintf(&b, "- %s\n", obj)
			}
			b.WriteString("\n")
		}
		return b.String()
	case types.KindLab:
		return fmt.Sprintf("# Lab %d: %s\n\n", sc.LabNumber, title)
	case types.KindStudyNotes:
		return fmt.Sprintf("# Study Notes: %s\n\n", title)
	case types.KindQuestions:
		return fmt.Sprintf("# Questions: %s\n\n", title)
	case types.KindDiagram, types.KindVisualization:
		return ""
	case types.KindApplication:
		return fmt.Sprintf("# Applications: %s\n\n", title)
	case types.KindExtension:
		return fmt.Sprintf("# Extensions: %s\n\n", title)
	case types.KindIntegration:
		return fmt.Sprintf("# Integration: %s\n\n", title)
	case types.KindInvestigation:
		return fmt.Sprintf("# Investigations: %s\n\n", title)
	case types.KindOpenQuestions:
		return fmt.Sprintf("# Open Questions: %s\n\n", title)
	default:
		return ""
	}
}
