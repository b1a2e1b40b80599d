package outline

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/courseforge/internal/config"
	"github.com/yungbote/courseforge/internal/llm"
	"github.com/yungbote/courseforge/internal/pkg/fsutil"
	"github.com/yungbote/courseforge/internal/pkg/logger"
	"github.com/yungbote/courseforge/internal/report"
	"github.com/yungbote/courseforge/internal/types"
)

// Generator produces, validates and persists the course outline.
type Generator struct {
	log       *logger.Logger
	cfg       *config.Store
	client    *llm.Client
	collector *report.Collector
}

func NewGenerator(cfg *config.Store, client *llm.Client, collector *report.Collector, log *logger.Logger) *Generator {
	return &Generator{
		log:       log.With("service", "OutlineGenerator"),
		cfg:       cfg,
		client:    client,
		collector: collector,
	}
}

// Result carries the persisted outline and its paths.
type Result struct {
	Tree         *types.OutlineTree
	JSONPath     string
	MarkdownPath string
}

// Generate runs the full outline procedure: prompt, parse, invariant
// check, at most one repair pass, then persistence of both the JSON and
// the rendered markdown. A non-nil override replaces the configured
// structure (the interactive path).
func (g *Generator) Generate(ctx context.Context, courseTemplate string, override *types.StructureConfig) (*Result, error) {
	meta, structure, err := g.cfg.CourseInfo(courseTemplate)
	if err != nil {
		return nil, err
	}
	if override != nil {
		structure = *override
	}
	if err := structure.Validate(); err != nil {
		return nil, err
	}
	tpl, err := g.cfg.PromptTemplate(types.KindOutline)
	if err != nil {
		return nil, err
	}
	vars := promptVars(meta, structure)

	g.log.Info("generating outline",
		"course", meta.Name,
		"modules", structure.NumModules,
		"sessions", structure.TotalSessions,
	)

	tree, err := g.generateOnce(ctx, tpl, vars, structure, "")
	if err != nil {
		feedback := repairFeedback(err, structure)
		g.log.Warn("outline rejected, attempting one repair pass", "reason", err.Error())
		tree, err = g.generateOnce(ctx, tpl, vars, structure, feedback)
		if err != nil {
			g.collector.AddError("outline_validation", err.Error(), report.WithContentType("outline"))
			return nil, fmt.Errorf("outline failed after repair pass: %w", err)
		}
	}
	tree.CourseMetadata = meta

	return g.persist(meta, tree)
}

func (g *Generator) generateOnce(ctx context.Context, tpl config.PromptTemplate, vars map[string]string, sc types.StructureConfig, feedback string) (*types.OutlineTree, error) {
	user := tpl.User
	if feedback != "" {
		user += "\n\n" + feedback
	}
	raw, err := g.client.GenerateWithTemplate(ctx, user, vars, llm.Options{
		System:    tpl.System,
		Operation: types.KindOutline,
	})
	if err != nil {
		return nil, err
	}

	tree, warnings, err := Parse(raw)
	for _, w := range warnings {
		g.collector.AddWarning("outline_parse", w, report.WithContentType("outline"))
		g.log.Warn("outline parse warning", "warning", w)
	}
	if err != nil {
		return nil, err
	}
	if violations := CheckStructure(tree, sc); len(violations) > 0 {
		return nil, fmt.Errorf("outline violates structure: %s", strings.Join(violations, "; "))
	}
	return tree, nil
}

func (g *Generator) persist(meta types.CourseMetadata, tree *types.OutlineTree) (*Result, error) {
	paths := g.cfg.OutputPaths(meta.Name)
	now := time.Now()

	jsonPath := paths.OutlineJSONPath(now)
	data, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode outline: %w", err)
	}
	if err := fsutil.WriteFileAtomic(jsonPath, append(data, '\n')); err != nil {
		return nil, err
	}

	mdPath := paths.OutlineMarkdownPath(now)
	if err := fsutil.WriteFileAtomic(mdPath, []byte(RenderMarkdown(tree))); err != nil {
		return nil, err
	}

	g.log.Info("outline persisted",
		"json", jsonPath,
		"markdown", mdPath,
		"modules", len(tree.Modules),
		"sessions", tree.TotalSessions(),
	)
	return &Result{Tree: tree, JSONPath: jsonPath, MarkdownPath: mdPath}, nil
}

func promptVars(meta types.CourseMetadata, sc types.StructureConfig) map[string]string {
	constraints := meta.Constraints
	if strings.TrimSpace(constraints) == "" {
		constraints = "none"
	}
	return map[string]string{
		"language":       meta.Language,
		"course_name":    meta.Name,
		"subject":        meta.Subject,
		"level":          meta.Level,
		"description":    meta.Description,
		"constraints":    constraints,
		"num_modules":    strconv.Itoa(sc.NumModules),
		"total_sessions": strconv.Itoa(sc.TotalSessions),
		"subtopics_min":  strconv.Itoa(sc.Subtopics.Min),
		"subtopics_max":  strconv.Itoa(sc.Subtopics.Max),
		"objectives_min": strconv.Itoa(sc.LearningObjectives.Min),
		"objectives_max": strconv.Itoa(sc.LearningObjectives.Max),
		"concepts_min":   strconv.Itoa(sc.KeyConcepts.Min),
		"concepts_max":   strconv.Itoa(sc.KeyConcepts.Max),
	}
}

// repairFeedback turns the rejection reason into an explicit fix block for
// the second attempt.
func repairFeedback(err error, sc types.StructureConfig) string {
	var b strings.Builder
	b.WriteString("THE PREVIOUS OUTLINE WAS REJECTED. Problems found:\n")
	reason := err.Error()
	reason = strings.TrimPrefix(reason, "outline violates structure: ")
	for _, v := range strings.Split(reason, "; ") {
		fmt.Fprintf(&b, "- %s\n", v)
	}
	fmt.Fprintf(&b, "\nRegenerate the complete outline and fix every problem. Keep exactly %d modules and exactly %d sessions in total, numbered consecutively from 1.\n",
		sc.NumModules, sc.TotalSessions)
	return b.String()
}
