// Package app is the shared bootstrap for the stage entry points: env
// loading, logger construction, config loading and the common flag
// plumbing.
package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/courseforge/internal/config"
	"github.com/yungbote/courseforge/internal/pkg/logger"
	"github.com/yungbote/courseforge/internal/types"
)

// Bootstrap loads .env, builds the console logger and loads the config
// store from dir.
func Bootstrap(configDir string) (*config.Store, *logger.Logger, error) {
	_ = godotenv.Load()

	mode := os.Getenv("LOG_MODE")
	if mode == "" {
		mode = "production"
	}
	log, err := logger.New(mode)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	cfg, err := config.Load(configDir, log)
	if err != nil {
		return nil, log, err
	}
	return cfg, log, nil
}

// StageLogger returns a logger that also appends to the course's stage log
// file. Falls back to the console logger when the log dir cannot be
// created.
func StageLogger(cfg *config.Store, console *logger.Logger, course, stage string) *logger.Logger {
	mode := os.Getenv("LOG_MODE")
	if mode == "" {
		mode = "production"
	}
	paths := cfg.OutputPaths(course)
	if err := os.MkdirAll(paths.Logs, 0o755); err != nil {
		console.Warn("stage log dir unavailable", "error", err.Error())
		return console
	}
	log, err := logger.NewWithFile(mode, paths.StageLogPath(stage, time.Now()))
	if err != nil {
		console.Warn("stage log file unavailable", "error", err.Error())
		return console
	}
	return log
}

// ParseModules parses a comma-separated module id list ("1,3").
func ParseModules(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var out []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil || id < 1 {
			return nil, fmt.Errorf("invalid module id %q", part)
		}
		out = append(out, id)
	}
	return out, nil
}

// ParseKinds parses a comma-separated kind list ("application,extension").
func ParseKinds(raw string) ([]types.Kind, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var out []types.Kind
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kind, ok := types.ParseKind(part)
		if !ok {
			return nil, fmt.Errorf("unknown content kind %q", part)
		}
		out = append(out, kind)
	}
	return out, nil
}
