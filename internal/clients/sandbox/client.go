// Package sandbox runs source code on a Piston-compatible /execute endpoint.
package sandbox

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
	"pyventure/internal/domain/model"
)

const (
	DefaultLanguage = "python"
	DefaultVersion  = "3.10.0"
)

type file struct {
	Content string `json:"content"`
}

type executeRequest struct {
	Language string `json:"language"`
	Version  string `json:"version"`
	Files    []file `json:"files"`
}

type executeResponse struct {
	Language string                `json:"language"`
	Version  string                `json:"version"`
	Run      model.ExecutionResult `json:"run"`
	Message  string                `json:"message,omitempty"`
}

type Client struct {
	baseURL    string
	language   string
	version    string
	httpClient *http.Client
	tracer     trace.Tracer
}

// New returns a client that runs code as language/version. Empty values fall
// back to python 3.10.0.
func New(baseURL, language, version string, timeout time.Duration) *Client {
	if language == "" {
		language = DefaultLanguage
	}
	if version == "" {
		version = DefaultVersion
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   language,
		version:    version,
		httpClient: &http.Client{Timeout: timeout},
		tracer:     otel.Tracer("pyventure/clients/sandbox"),
	}
}

// Execute runs source once and returns what the program printed.
func (c *Client) Execute(ctx context.Context, source string) (*model.ExecutionResult, error) {
	ctx, span := c.tracer.Start(ctx, "sandbox execute",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("sandbox.language", c.language),
			attribute.String("sandbox.version", c.version),
		))
	defer span.End()

	res, err := c.execute(ctx, source)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if res.ExitCode != nil {
		span.SetAttributes(attribute.Int("sandbox.exit_code", *res.ExitCode))
	}
	return res, nil
}

func (c *Client) execute(ctx context.Context, source string) (*model.ExecutionResult, error) {
	payload, err := json.Marshal(executeRequest{
		Language: c.language,
		Version:  c.version,
		Files:    []file{{Content: source}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/execute", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: sandbox request: %v", common.ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read sandbox response: %v", common.ErrUpstream, err)
	}

	var out executeResponse
	decodeErr := json.Unmarshal(raw, &out)
	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(raw))
		if decodeErr == nil && out.Message != "" {
			msg = out.Message
		}
		return nil, fmt.Errorf("%w: sandbox error %d: %s", common.ErrUpstream, resp.StatusCode, msg)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: decode sandbox response: %v", common.ErrUpstream, decodeErr)
	}
	return &out.Run, nil
}
