// Package backend is the client for the PyVenture backend REST API.
//
// Authenticated calls take the caller's Credentials. A 401 on any of them
// invalidates the credential generation the request was sent with and is
// reported as common.ErrSessionExpired. Nothing is retried.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
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
	"pyventure/internal/session"
)

// Credentials supplies the bearer token for authenticated calls and accepts
// the report that it was rejected. *session.Session implements it.
type Credentials interface {
	Token() (string, uint64)
	Invalidate(gen uint64, reason session.Reason) bool
}

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string   { return e.Message }
func (e *APIError) HTTPStatus() int { return e.Status }

type Client struct {
	baseURL    string
	httpClient *http.Client
	tracer     trace.Tracer
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		tracer:     otel.Tracer("pyventure/clients/backend"),
	}
}

type call struct {
	method   string
	path     string
	body     any
	creds    Credentials
	fallback string // message used when the error body carries none
}

func (c *Client) do(ctx context.Context, cl call, out any) error {
	path, _, _ := strings.Cut(cl.path, "?")
	ctx, span := c.tracer.Start(ctx, "backend "+cl.method+" "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", cl.method),
			attribute.String("url.path", path),
		))
	defer span.End()

	err := c.roundTrip(ctx, cl, out)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, cl call, out any) error {
	var reader io.Reader
	if cl.body != nil {
		payload, err := json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	var gen uint64
	if cl.creds != nil {
		token, g := cl.creds.Token()
		if token == "" {
			return common.ErrSessionExpired
		}
		gen = g
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: backend %s %s: %v", common.ErrUpstream, cl.method, cl.path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read backend response: %v", common.ErrUpstream, err)
	}

	if resp.StatusCode == http.StatusUnauthorized && cl.creds != nil {
		cl.creds.Invalidate(gen, session.ReasonExpired)
		return common.ErrSessionExpired
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(body, cl.fallback, resp.StatusCode)}
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode backend response: %v", common.ErrUpstream, err)
	}
	return nil
}

// errorMessage pulls "message" or "error" out of an error body.
func errorMessage(body []byte, fallback string, status int) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	if fallback != "" {
		return fallback
	}
	return fmt.Sprintf("backend request failed with status %d", status)
}

// envelope is the {success, data, message} wrapper used by level endpoints.
type envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

func (e envelope[T]) unwrap(fallback string) (T, error) {
	if !e.Success {
		msg := e.Message
		if msg == "" {
			msg = fallback
		}
		var zero T
		return zero, &APIError{Status: http.StatusBadGateway, Message: msg}
	}
	return e.Data, nil
}

// IsAPIError reports whether err is an APIError with the given status.
func IsAPIError(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
