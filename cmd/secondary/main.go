// courseforge-secondary generates the secondary session artifacts
// (application, extension, integration, investigation, visualization,
// open questions) for every session in an outline.
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
		kindsFlag = flag.String("types", "", "comma-separated secondary kinds to generate (default: all)")
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
	kinds, err := app.ParseKinds(*kindsFlag)
	if err != nil {
		log.Error("bad --types value", "error", err.Error())
		return pipeline.ExitFailure
	}

	course := ""
	if tree, _, err := cfg.ModulesFromOutline(*outline); err == nil {
		course = tree.CourseMetadata.Name
	}
	log = app.StageLogger(cfg, log, course, "05_secondary")
	defer log.Sync()

	o := pipeline.New(cfg, log)
	defer o.Close()

	return o.RunStage(context.Background(), "05_secondary", course, o.SecondaryStage(*outline, filter, kinds))
}
