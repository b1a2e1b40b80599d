package pipeline

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/yungbote/courseforge/internal/report"
	"github.com/yungbote/courseforge/internal/types"
)

// Check is one preflight test run by the tests stage before any model
// call.
type Check struct {
	Name string
	Run  func(ctx context.Context) error
}

// TestsStage runs the preflight checks. Exit code 2 when any check fails,
// 3 when none are discovered.
func (o *Orchestrator) TestsStage(course string) StageFunc {
	return func(ctx context.Context, col *report.Collector) error {
		checks := o.preflightChecks(course)
		if len(checks) == 0 {
			return ErrNoTests
		}
		failed := 0
		for _, c := range checks {
			if err := c.Run(ctx); err != nil {
				failed++
				col.AddError("preflight", fmt.Sprintf("%s: %v", c.Name, err))
				o.log.Error("preflight check failed", "check", c.Name, "error", err.Error())
				continue
			}
			col.AddInfo("preflight", c.Name+" ok")
			o.log.Info("preflight check passed", "check", c.Name)
		}
		if failed > 0 {
			return fmt.Errorf("%w: %d of %d", ErrTestsFailed, failed, len(checks))
		}
		return nil
	}
}

func (o *Orchestrator) preflightChecks(course string) []Check {
	return []Check{
		{Name: "course template resolves", Run: func(ctx context.Context) error {
			meta, structure, err := o.cfg.CourseInfo(course)
			if err != nil {
				return err
			}
			if err := structure.Validate(); err != nil {
				return fmt.Errorf("course %q: %w", meta.Name, err)
			}
			return nil
		}},
		{Name: "prompt templates complete", Run: func(ctx context.Context) error {
			for _, kind := range types.AllKinds {
				if _, err := o.cfg.PromptTemplate(kind); err != nil {
					return err
				}
			}
			return nil
		}},
		{Name: "output base writable", Run: func(ctx context.Context) error {
			paths := o.cfg.OutputPaths(course)
			if err := os.MkdirAll(paths.Base, 0o755); err != nil {
				return err
			}
			probe := filepath.Join(paths.Base, ".write_probe")
			if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
				return err
			}
			return os.Remove(probe)
		}},
		{Name: "model endpoint reachable", Run: o.checkEndpoint},
	}
}

// checkEndpoint verifies the configured endpoint accepts TCP and HTTP
// without spending a model call.
func (o *Orchestrator) checkEndpoint(ctx context.Context) error {
	params := o.cfg.LLMParams()
	u, err := url.Parse(params.BaseURL)
	if err != nil {
		return fmt.Errorf("base_url %q: %w", params.BaseURL, err)
	}
	host := u.Host
	if _, _, splitErr := net.SplitHostPort(host); splitErr != nil {
		port := "80"
		if u.Scheme == "https" {
			port = "443"
		}
		host = net.JoinHostPort(host, port)
	}
	conn, err := net.DialTimeout("tcp", host, 5*time.Second)
	if err != nil {
		return fmt.Errorf("endpoint %s not reachable: %w", params.BaseURL, err)
	}
	conn.Close()

	reqCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, params.BaseURL, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("endpoint %s: %w", params.BaseURL, err)
	}
	resp.Body.Close()
	return nil
}
