// courseforge-primary generates the primary session artifacts (lecture,
// lab, study notes, diagrams, questions) for every session in an outline.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/yungbote/courseforge/internal/app"
	"github.com/yungbote/courseforge/internal/pipeline"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configDir = flag.String("config-dir", "config", "directory holding course.yaml, llm.yaml, output.yaml, prompts.yaml")
		outline   = flag.String("outline", "", "outline JSON to generate from (default: newest outline under the output base)")
		modules   = flag.String("modules", "", "comma-separated module ids to generate (default: all)")
		all       = flag.Bool("all", false, "generate every module even when --modules is set")
	)
	flag.Parse()

	cfg, log, err := app.Bootstrap(*configDir)
	if err != nil {
		if log != nil {
			log.Error("startup failed", "error", err.Error())
		} else {
			fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
		}
		return pipeline.ExitFailure
	}
	defer log.Sync()

	filter, err := app.ParseModules(*modules)
	if err != nil {
		log.Error("bad --modules value", "error", err.Error())
		return pipeline.ExitFailure
	}
	if *all {
		filter = nil
	}

	course := ""
	if tree, _, err := cfg.ModulesFromOutline(*outline); err == nil {
		course = tree.CourseMetadata.Name
	}
	log = app.StageLogger(cfg, log, course, "04_primary")
	defer log.Sync()

	o := pipeline.New(cfg, log)
	defer o.Close()

	return o.RunStage(context.Background(), "04_primary", course, o.PrimaryStage(*outline, filter))
}
