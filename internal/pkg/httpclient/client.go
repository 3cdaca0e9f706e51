package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Resolver maps a logical service name to a reachable host:port.
// The Nacos client implements it; StaticResolver serves deployments
// without a registry.
type Resolver interface {
	Resolve(serviceName string) (string, error)
}

// StaticResolver resolves from a fixed service -> host:port table.
type StaticResolver map[string]string

func (r StaticResolver) Resolve(serviceName string) (string, error) {
	addr, ok := r[serviceName]
	if !ok {
		return "", fmt.Errorf("no static address configured for service %s", serviceName)
	}
	return addr, nil
}

// StatusError is returned for any non-2xx response so callers can map
// downstream status codes onto their own error taxonomy.
type StatusError struct {
	Service string
	Code    int
	Body    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("service %s returned status %d: %s", e.Service, e.Code, e.Body)
}

// Client is a traced HTTP client for service-to-service calls. Every call is
// bounded by the configured timeout and carries the propagated trace context.
type Client struct {
	tracer   trace.Tracer
	resolver Resolver
	http     *http.Client
	timeout  time.Duration
}

// New builds a client. The underlying http.Client has no global timeout;
// deadlines come from the per-call context so a caller-supplied deadline
// shorter than timeout still wins.
func New(tracer trace.Tracer, resolver Resolver, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Client{
		tracer:   tracer,
		resolver: resolver,
		http: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
			},
		},
		timeout: timeout,
	}
}

// PostForm issues a POST with query-string parameters, the calling
// convention the inventory endpoints use.
func (c *Client) PostForm(ctx context.Context, service, path string, params url.Values) error {
	return c.do(ctx, http.MethodPost, service, path, params, nil, nil)
}

// PostJSON issues a POST with a JSON body.
func (c *Client) PostJSON(ctx context.Context, service, path string, body any) error {
	return c.do(ctx, http.MethodPost, service, path, nil, body, nil)
}

// GetJSON issues a GET and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, service, path string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, service, path, params, nil, out)
}

func (c *Client) do(ctx context.Context, method, service, path string, params url.Values, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ctx, span := c.tracer.Start(ctx, "call-"+service, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	addr, err := c.resolver.Resolve(service)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	u := url.URL{Scheme: "http", Host: addr, Path: path}
	if params != nil {
		u.RawQuery = params.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	span.SetAttributes(
		attribute.String("http.url", u.String()),
		attribute.String("http.method", method),
		attribute.String("peer.service", service),
	)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		statusErr := &StatusError{Service: service, Code: resp.StatusCode, Body: string(bytes.TrimSpace(raw))}
		span.RecordError(statusErr)
		span.SetStatus(codes.Error, statusErr.Error())
		return statusErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			span.RecordError(err)
			return fmt.Errorf("decode %s response: %w", service, err)
		}
	}
	return nil
}
