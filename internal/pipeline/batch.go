package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yungbote/courseforge/internal/config"
	"github.com/yungbote/courseforge/internal/pkg/logger"
)

// Stage binaries spawned by batch mode, in pipeline order. Only the
// outline stage takes a course argument; the later stages discover the
// course from the persisted outline JSON.
var stageBinaries = []struct {
	name        string
	courseAware bool
}{
	{"courseforge-outline", true},
	{"courseforge-primary", false},
	{"courseforge-secondary", false},
	{"courseforge-website", false},
}

// BatchFailure names a failed course with the shortest useful reason.
type BatchFailure struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// BatchResult summarizes one batch run.
type BatchResult struct {
	Total      int            `json:"total"`
	Successful []string       `json:"successful"`
	Failed     []BatchFailure `json:"failed"`
}

// BatchRunner iterates over every configured course template in lexical
// order, spawning the stage binaries as sub-processes. One failing course
// never aborts its siblings.
type BatchRunner struct {
	log *logger.Logger
	cfg *config.Store

	configDir   string
	binDir      string
	outlineOnly bool
}

func NewBatchRunner(cfg *config.Store, log *logger.Logger, configDir string, outlineOnly bool) *BatchRunner {
	binDir := ""
	if exe, err := os.Executable(); err == nil {
		binDir = filepath.Dir(exe)
	}
	return &BatchRunner{
		log:         log.With("service", "BatchRunner"),
		cfg:         cfg,
		configDir:   configDir,
		binDir:      binDir,
		outlineOnly: outlineOnly,
	}
}

// Run processes every course template and returns the summary plus the
// process exit code (1 when any course failed).
func (b *BatchRunner) Run(ctx context.Context) (BatchResult, int) {
	courses := b.cfg.CourseTemplates()
	sort.Strings(courses)

	res := BatchResult{Total: len(courses)}
	for _, course := range courses {
		b.log.Info("batch course start", "course", course)
		if err := b.runCourse(ctx, course); err != nil {
			b.log.Error("batch course failed", "course", course, "error", err.Error())
			res.Failed = append(res.Failed, BatchFailure{Name: course, Error: err.Error()})
			continue
		}
		b.log.Info("batch course done", "course", course)
		res.Successful = append(res.Successful, course)
	}

	b.log.Info("batch complete",
		"total", res.Total,
		"successful", len(res.Successful),
		"failed", len(res.Failed),
	)
	code := ExitOK
	if len(res.Failed) > 0 {
		code = ExitFailure
	}
	return res, code
}

func (b *BatchRunner) runCourse(ctx context.Context, course string) error {
	stages := stageBinaries
	if b.outlineOnly {
		stages = stages[:1]
	}
	for _, stage := range stages {
		args := []string{"--config-dir", b.configDir}
		if stage.courseAware {
			args = append(args, "--course", course, "--no-interactive")
		}
		if err := b.runStageProcess(ctx, course, stage.name, args); err != nil {
			return err
		}
	}
	return nil
}

func (b *BatchRunner) runStageProcess(ctx context.Context, course, binary string, args []string) error {
	path := binary
	if b.binDir != "" {
		if candidate := filepath.Join(b.binDir, binary); fileExists(candidate) {
			path = candidate
		}
	}

	cmd := exec.CommandContext(ctx, path, args...)
	var stderr bytes.Buffer
	cmd.Stdout = os.Stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}

	exitCode := -1
	if exitErr, ok := err.(*exec.ExitError); ok {
		exitCode = exitErr.ExitCode()
	}
	return fmt.Errorf("%s: %s", binary, b.failureReason(course, stderr.Bytes(), exitCode))
}

// failureReason picks the shortest useful explanation: the stderr tail,
// then the newest stage log tail, then the bare exit code.
func (b *BatchRunner) failureReason(course string, stderr []byte, exitCode int) string {
	if line := lastLine(string(stderr)); line != "" {
		return line
	}
	if line := b.logTail(course); line != "" {
		return line
	}
	return fmt.Sprintf("Exit code %d", exitCode)
}

func (b *BatchRunner) logTail(course string) string {
	paths := b.cfg.OutputPaths(course)
	matches, err := filepath.Glob(filepath.Join(paths.Logs, "*.log"))
	if err != nil || len(matches) == 0 {
		return ""
	}
	sort.Slice(matches, func(i, j int) bool {
		fi, errI := os.Stat(matches[i])
		fj, errJ := os.Stat(matches[j])
		if errI != nil || errJ != nil {
			return matches[i] > matches[j]
		}
		return fi.ModTime().After(fj.ModTime())
	})
	data, err := os.ReadFile(matches[0])
	if err != nil {
		return ""
	}
	return lastLine(string(data))
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if t := strings.TrimSpace(lines[i]); t != "" {
			return t
		}
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
