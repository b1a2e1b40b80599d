// courseforge-batch runs the full pipeline for every configured course
// template, one sub-process per stage. A failing course is reported and
// skipped, never fatal to its siblings.
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
		configDir   = flag.String("config-dir", "config", "directory holding course.yaml, llm.yaml, output.yaml, prompts.yaml")
		outlineOnly = flag.Bool("outline-only", false, "run only the outline stage for each course")
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

	runner := pipeline.NewBatchRunner(cfg, log, *configDir, *outlineOnly)
	res, code := runner.Run(context.Background())

	fmt.Printf("\nBatch complete: %d/%d courses succeeded\n", len(res.Successful), res.Total)
	for _, name := range res.Successful {
		fmt.Printf("  ok   %s\n", name)
	}
	for _, f := range res.Failed {
		fmt.Printf("  FAIL %s: %s\n", f.Name, f.Error)
	}
	return code
}
