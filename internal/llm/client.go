package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/courseforge/internal/cleanup"
	"github.com/yungbote/courseforge/internal/config"
	"github.com/yungbote/courseforge/internal/pkg/logger"
	"github.com/yungbote/courseforge/internal/types"
)

// progressEvery is the cadence of stream progress log lines.
const progressEvery = 15 * time.Second

// TimeoutSource resolves the per-operation timeout; *config.Store satisfies
// it.
type TimeoutSource interface {
	OperationTimeout(types.Kind) time.Duration
}

// Client is the single blocking request/response abstraction over the local
// model endpoint. One call, one streamed completion, one returned string.
// Callers must not retry transport failures here; retry is reserved for
// content-level validation failures upstream.
type Client struct {
	log *logger.Logger

	baseURL      string
	generatePath string
	model        string
	params       map[string]any

	timeoutDefault time.Duration
	timeouts       TimeoutSource

	httpClient *http.Client
}

// Options tunes a single Generate call.
type Options struct {
	System          string
	Operation       types.Kind
	TimeoutOverride time.Duration
}

func New(p config.LLMParams, timeouts TimeoutSource, log *logger.Logger) *Client {
	path := strings.TrimSpace(p.GeneratePath)
	if path == "" {
		path = "/api/generate"
	}
	return &Client{
		log:            log.With("service", "LLMClient"),
		baseURL:        strings.TrimRight(strings.TrimSpace(p.BaseURL), "/"),
		generatePath:   path,
		model:          p.Model,
		params:         p.Parameters,
		timeoutDefault: p.TimeoutDefault,
		timeouts:       timeouts,
		// Per-request deadlines come from the stream context, not a fixed
		// client timeout.
		httpClient: &http.Client{},
	}
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	System  string         `json:"system,omitempty"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type generateChunk struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate streams one completion and returns the concatenated text with
// deterministic cleanup already applied. Failures surface as *Error with a
// kind tag and the request id embedded in the message.
func (c *Client) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("empty prompt")
	}

	op := opts.Operation
	if !op.Valid() {
		op = types.KindOutline
	}
	reqID := newRequestID(op)
	timeout := c.effectiveTimeout(op, opts.TimeoutOverride)
	log := c.log.With("request_id", fmt.Sprintf("[%s]", reqID))

	log.Info("llm request start",
		"operation", string(op),
		"model", c.model,
		"prompt_chars", len(prompt),
		"timeout", timeout.String(),
	)

	body := generateRequest{
		Model:   c.model,
		Prompt:  prompt,
		System:  strings.TrimSpace(opts.System),
		Stream:  true,
		Options: c.params,
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return "", &Error{Kind: KindTransport, RequestID: reqID, Operation: string(op), Err: err}
	}

	// The deadline covers total wall time of the stream, not per-chunk gaps.
	ctx2, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx2, http.MethodPost, c.baseURL+c.generatePath, &buf)
	if err != nil {
		return "", &Error{Kind: KindTransport, RequestID: reqID, Operation: string(op), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", c.classify(ctx2, reqID, op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &Error{
			Kind:      KindTransport,
			RequestID: reqID,
			Operation: string(op),
			Detail:    fmt.Sprintf("endpoint returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))),
		}
	}

	var full strings.Builder
	chunks := 0
	lastProgress := started

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var chunk generateChunk
		if err := json.Unmarshal([]byte(line), &chunk); err != nil {
			return "", &Error{
				Kind:      KindTransport,
				RequestID: reqID,
				Operation: string(op),
				Detail:    fmt.Sprintf("malformed stream chunk: %v", err),
			}
		}
		full.WriteString(chunk.Response)
		chunks++

		if time.Since(lastProgress) >= progressEvery {
			lastProgress = time.Now()
			elapsed := time.Since(started)
			chars := full.Len()
			log.Info("llm stream progress",
				"elapsed", elapsed.Round(time.Second).String(),
				"chunks", chunks,
				"chars", chars,
				"est_tokens", chars/4,
				"chars_per_sec", int(float64(chars)/elapsed.Seconds()),
			)
		}

		if chunk.Done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return "", c.classify(ctx2, reqID, op, err)
	}

	text := full.String()
	if strings.TrimSpace(text) == "" {
		return "", &Error{
			Kind:      KindEmpty,
			RequestID: reqID,
			Operation: string(op),
			Detail:    "model returned no output",
		}
	}

	text = cleanup.Clean(text, op)

	elapsed := time.Since(started)
	log.Info("llm request done",
		"operation", string(op),
		"elapsed", elapsed.Round(time.Millisecond).String(),
		"chunks", chunks,
		"chars", len(text),
		"est_tokens", len(text)/4,
	)
	return text, nil
}

// GenerateWithTemplate fills {name} placeholders and calls Generate.
func (c *Client) GenerateWithTemplate(ctx context.Context, tpl string, vars map[string]string, opts Options) (string, error) {
	if extras := ExtraVars(tpl, vars); len(extras) > 0 {
		c.log.Debug("template fill has unused variables",
			"operation", string(opts.Operation),
			"extras", strings.Join(extras, ","),
		)
	}
	prompt, err := FillTemplate(tpl, vars)
	if err != nil {
		return "", fmt.Errorf("fill %s template: %w", opts.Operation, err)
	}
	return c.Generate(ctx, prompt, opts)
}

func (c *Client) effectiveTimeout(op types.Kind, override time.Duration) time.Duration {
	if override > 0 {
		return override
	}
	if c.timeouts != nil {
		if d := c.timeouts.OperationTimeout(op); d > 0 {
			return d
		}
	}
	if c.timeoutDefault > 0 {
		return c.timeoutDefault
	}
	return 5 * time.Minute
}

// classify splits the wall-clock timeout off from plain transport trouble.
func (c *Client) classify(ctx context.Context, reqID string, op types.Kind, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{
			Kind:      KindTimeout,
			RequestID: reqID,
			Operation: string(op),
			Err:       err,
			Detail:    "stream exceeded effective timeout",
		}
	}
	return &Error{Kind: KindTransport, RequestID: reqID, Operation: string(op), Err: err}
}
