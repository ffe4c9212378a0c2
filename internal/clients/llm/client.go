// Package llm talks to an Ollama-compatible /generate endpoint.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"pyventure/internal/common"
)

// Options are the sampling parameters sent with a prompt. A zero TopP is
// omitted from the request.
type Options struct {
	Temperature float64
	TopP        float64
}

type generateOptions struct {
	Temperature float64  `json:"temperature"`
	TopP        *float64 `json:"top_p,omitempty"`
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateResponse struct {
	Response string `json:"response"`
}

type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	tracer     trace.Tracer
}

func New(baseURL, model string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		tracer:     otel.Tracer("pyventure/clients/llm"),
	}
}

// Generate sends prompt and returns the model's free-text answer, trimmed.
func (c *Client) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	ctx, span := c.tracer.Start(ctx, "llm generate",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("llm.model", c.model),
			attribute.Float64("llm.temperature", opts.Temperature),
		))
	defer span.End()

	text, err := c.generate(ctx, prompt, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	span.SetAttributes(attribute.Int("llm.response_length", len(text)))
	return text, nil
}

func (c *Client) generate(ctx context.Context, prompt string, opts Options) (string, error) {
	body := generateRequest{
		Model:   c.model,
		Prompt:  prompt,
		Stream:  false,
		Options: generateOptions{Temperature: opts.Temperature},
	}
	if opts.TopP > 0 {
		topP := opts.TopP
		body.Options.TopP = &topP
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: llm request: %v", common.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: llm error %d: %s", common.ErrUpstream, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode llm response: %v", common.ErrUpstream, err)
	}
	return strings.TrimSpace(out.Response), nil
}
