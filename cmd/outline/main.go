// courseforge-outline runs the setup, preflight and outline stages for one
// course template.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/yungbote/courseforge/internal/app"
	"github.com/yungbote/courseforge/internal/pipeline"
	"github.com/yungbote/courseforge/internal/pkg/logger"
	"github.com/yungbote/courseforge/internal/types"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configDir     = flag.String("config-dir", "config", "directory holding course.yaml, llm.yaml, output.yaml, prompts.yaml")
		course        = flag.String("course", "", "course template to generate (default: the configured default course)")
		noInteractive = flag.Bool("no-interactive", false, "never prompt for structure overrides")
		lenient       = flag.Bool("interactive-lenient", false, "fall back to configured defaults on invalid interactive input instead of failing")
		_             = flag.String("outline", "", "unused by this stage; accepted for a uniform stage CLI")
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

	meta, structure, err := cfg.CourseInfo(*course)
	if err != nil {
		log.Error("course resolution failed", "error", err.Error())
		return pipeline.ExitFailure
	}

	var override *types.StructureConfig
	if !*noInteractive {
		structure, err = promptStructureOverrides(structure, *lenient, log)
		if err != nil {
			log.Error("invalid structure override", "error", err.Error())
			return pipeline.ExitFailure
		}
		override = &structure
	}

	log = app.StageLogger(cfg, log, meta.Name, "03_outline")
	defer log.Sync()

	o := pipeline.New(cfg, log)
	defer o.Close()
	ctx := context.Background()

	if code := o.RunStage(ctx, "01_setup", *course, o.SetupStage(*course)); code != pipeline.ExitOK {
		return code
	}
	if code := o.RunStage(ctx, "02_tests", *course, o.TestsStage(*course)); code != pipeline.ExitOK {
		return code
	}
	return o.RunStage(ctx, "03_outline", *course, o.OutlineStage(*course, override))
}

// promptStructureOverrides lets an operator adjust the module and session
// counts before generation. Empty input keeps the configured value. Bad
// input is a hard error unless lenient mode keeps the default instead.
func promptStructureOverrides(sc types.StructureConfig, lenient bool, log *logger.Logger) (types.StructureConfig, error) {
	reader := bufio.NewReader(os.Stdin)
	ask := func(label string, current int) (int, error) {
		fmt.Printf("%s [%d]: ", label, current)
		line, err := reader.ReadString('\n')
		if err != nil {
			return current, nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return current, nil
		}
		n, err := strconv.Atoi(line)
		if err != nil || n < 1 {
			if lenient {
				log.Warn("keeping configured value after invalid input", "field", label, "input", line)
				return current, nil
			}
			return 0, fmt.Errorf("%s: invalid value %q", label, line)
		}
		return n, nil
	}

	var err error
	if sc.NumModules, err = ask("number of modules", sc.NumModules); err != nil {
		return sc, err
	}
	if sc.TotalSessions, err = ask("total sessions", sc.TotalSessions); err != nil {
		return sc, err
	}
	if err := sc.Validate(); err != nil {
		return sc, err
	}
	return sc, nil
}
