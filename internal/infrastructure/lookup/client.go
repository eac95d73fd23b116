// Package lookup contains clients of the external registries used to
// resolve organisations (ROR) and ontology terms (TIB terminology service).
package lookup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// maxResponseSize limits the size of registry responses (5MB)
const maxResponseSize = 5 * 1024 * 1024

const defaultTimeout = 10 * time.Second

// Errors returned by the registry clients
var (
	ErrServiceUnavailable = errors.New("lookup: service unavailable")
	ErrRequestFailed      = errors.New("lookup: request failed")
)

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

const tracerName = "github.com/qbic/datamanager/internal/infrastructure/lookup"

// getJSON performs a GET request and returns the body and status code.
// Transport failures wrap ErrServiceUnavailable.
func getJSON(ctx context.Context, client *http.Client, url string) ([]byte, int, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "lookup.GET",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("url.full", url)))
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("lookup: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := client.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return nil, 0, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("lookup: failed to read response: %w", err)
	}
	return body, resp.StatusCode, nil
}
