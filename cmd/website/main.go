// courseforge-website renders the static course site from whatever
// artifacts the generation stages produced.
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
		outline   = flag.String("outline", "", "outline JSON to render from (default: newest outline under the output base)")
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

	course := ""
	if tree, _, err := cfg.ModulesFromOutline(*outline); err == nil {
		course = tree.CourseMetadata.Name
	}
	log = app.StageLogger(cfg, log, course, "06_website")
	defer log.Sync()

	o := pipeline.New(cfg, log)
	defer o.Close()

	return o.RunStage(context.Background(), "06_website", course, o.WebsiteStage(*outline))
}
