package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"pkt.systems/pslog"
	"pkt.systems/zscale/api"
	"pkt.systems/zscale/internal/correlation"
	"pkt.systems/zscale/internal/svcfields"
	"pkt.systems/zscale/internal/uuidv7"
	"pkt.systems/zscale/internal/version"
	"pkt.systems/zscale/validate"
)

const (
	// DefaultBaseURL is the Zephyr Scale Cloud API root.
	DefaultBaseURL = "https://api.zephyrscale.smartbear.com/v2"
	// DefaultHTTPTimeout bounds one call when neither the source nor an
	// option sets a timeout.
	DefaultHTTPTimeout = 30 * time.Second

	headerRequestID = "X-Request-Id"
)

// Settings is the configuration snapshot one call runs with.
type Settings struct {
	Token             string
	BaseURL           string
	DefaultProjectKey string
	Timeout           time.Duration
}

// Source supplies the current Settings. Current is read once per call, so a
// source may swap snapshots between calls.
type Source interface {
	Current() Settings
}

// StaticSource is a Source that never changes.
type StaticSource Settings

// Current returns the fixed settings.
func (s StaticSource) Current() Settings { return Settings(s) }

// Client is the typed gateway to the Zephyr Scale REST API. Every method
// re-checks its canonical input, sends exactly one request per HTTP step and
// parses the reply against the declared output schema.
type Client struct {
	source         Source
	httpClient     *http.Client
	httpTimeout    time.Duration
	logger         pslog.Base
	userAgent      string
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	tracer         trace.Tracer
	metrics        *clientMetrics
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient supplies the HTTP client used for every request. The
// default wraps http.DefaultTransport with otelhttp.
func WithHTTPClient(cli *http.Client) Option {
	return func(c *Client) {
		if cli != nil {
			c.httpClient = cli
		}
	}
}

// WithLogger supplies a logger for client diagnostics. Passing nil falls back
// to pslog.NoopLogger().
func WithLogger(logger pslog.Base) Option {
	return func(c *Client) {
		if logger == nil {
			c.logger = pslog.NoopLogger()
			return
		}
		if full, ok := logger.(pslog.Logger); ok {
			c.logger = svcfields.WithSubsystem(full, "client.gateway")
			return
		}
		c.logger = logger
	}
}

// WithHTTPTimeout overrides the per-call timeout from the Source.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpTimeout = d
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua = strings.TrimSpace(ua); ua != "" {
			c.userAgent = ua
		}
	}
}

// WithTracerProvider sets the provider for gateway spans. The global
// provider is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		if tp != nil {
			c.tracerProvider = tp
		}
	}
}

// WithMeterProvider sets the provider for gateway metrics. The global
// provider is used otherwise.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *Client) {
		if mp != nil {
			c.meterProvider = mp
		}
	}
}

// New returns a Client reading its settings from source.
//
//	cli, err := client.New(client.StaticSource{Token: token, BaseURL: client.DefaultBaseURL})
//	if err != nil {
//		return err
//	}
//	page, err := cli.ListPriorities(ctx, api.ListQuery{Page: api.DefaultPageRequest()})
func New(source Source, opts ...Option) (*Client, error) {
	if source == nil {
		return nil, errors.New("zscale: client: settings source required")
	}
	c := &Client{
		source:    source,
		logger:    pslog.NoopLogger(),
		userAgent: version.UserAgent(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.tracerProvider == nil {
		c.tracerProvider = otel.GetTracerProvider()
	}
	if c.meterProvider == nil {
		c.meterProvider = otel.GetMeterProvider()
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithTracerProvider(c.tracerProvider),
				otelhttp.WithMeterProvider(c.meterProvider),
			),
		}
	}
	c.tracer = c.tracerProvider.Tracer(instrumentationName)
	c.metrics = newClientMetrics(c.meterProvider, c.logger)
	return c, nil
}

// settings reads the source once and fills defaults.
func (c *Client) settings() Settings {
	s := c.source.Current()
	s.BaseURL = strings.TrimRight(strings.TrimSpace(s.BaseURL), "/")
	if s.BaseURL == "" {
		s.BaseURL = DefaultBaseURL
	}
	if c.httpTimeout > 0 {
		s.Timeout = c.httpTimeout
	}
	if s.Timeout <= 0 {
		s.Timeout = DefaultHTTPTimeout
	}
	return s
}

// projectKey returns key, or the configured default when key is empty. With
// neither the call fails validation before anything is sent.
func (c *Client) projectKey(s Settings, key string, required bool) (string, error) {
	if key = strings.TrimSpace(key); key != "" {
		return key, nil
	}
	if def := strings.TrimSpace(s.DefaultProjectKey); def != "" {
		if err := validate.ProjectKey(def).Err(); err != nil {
			return "", err
		}
		return def, nil
	}
	if !required {
		return "", nil
	}
	return "", &validate.ValidationError{Errors: []api.FieldError{{
		Field:   "projectKey",
		Message: "is required: pass projectKey or configure a default project key (ZEPHYR_SCALE_DEFAULT_PROJECT_KEY)",
	}}}
}

type boundedKey struct{}

// bound applies the per-call timeout. A context that is already bounded keeps
// its deadline, so every step of a multi-request call shares one wait.
func (c *Client) bound(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	if timeout <= 0 || parent.Value(boundedKey{}) != nil {
		return parent, func() {}
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	return context.WithValue(ctx, boundedKey{}, true), cancel
}

// request describes one HTTP exchange.
type request struct {
	op     Op
	params []string
	query  url.Values
	body   any
	// schema validates the 2xx body; nil means the body is ignored.
	schema *api.Schema
}

// do sends r once and decodes a 2xx body into out.
func (c *Client) do(ctx context.Context, s Settings, r request, out any) (status int, err error) {
	route, ok := routes[r.op]
	if !ok {
		return 0, fmt.Errorf("zscale: unknown operation %q", r.op)
	}
	ctx, cid := correlation.Ensure(ctx)
	target := s.BaseURL + expand(route.Path, r.params...)
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}
	requestID := uuidv7.NewString()

	ctx, span := c.tracer.Start(ctx, "zscale.client."+string(r.op), trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String("zscale.op", string(r.op)),
		attribute.String("http.request.method", route.Method),
		attribute.String("url.template", route.Path),
		attribute.String("zscale.correlation_id", cid),
		attribute.String("zscale.request_id", requestID),
	)
	begin := time.Now()
	defer func() {
		outcome := outcomeOf(err)
		span.SetAttributes(attribute.String("zscale.outcome", outcome))
		if status > 0 {
			span.SetAttributes(attribute.Int("http.response.status_code", status))
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
		c.metrics.record(ctx, r.op, route.Method, status, outcome, time.Since(begin))
	}()

	var body io.Reader
	if r.body != nil {
		payload, encErr := json.Marshal(r.body)
		if encErr != nil {
			return 0, fmt.Errorf("zscale: %s: encode request: %w", r.op, encErr)
		}
		body = bytes.NewReader(payload)
	}
	reqCtx, cancel := c.bound(ctx, s.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, route.Method, target, body)
	if err != nil {
		return 0, &TransportError{Op: r.op, Method: route.Method, URL: target, Err: err}
	}
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(headerRequestID, requestID)

	c.logTraceCtx(ctx, "client.http.request.start", "op", r.op, "method", route.Method, "url", target, "request_id", requestID)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		te := &TransportError{Op: r.op, Method: route.Method, URL: target, Timeout: timedOut(err), Err: err}
		c.logWarnCtx(ctx, "client.http.transport_error", "op", r.op, "url", target, "timeout", te.Timeout, "error", err)
		return 0, te
	}
	defer resp.Body.Close()
	status = resp.StatusCode
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		te := &TransportError{Op: r.op, Method: route.Method, URL: target, Timeout: timedOut(err), Err: fmt.Errorf("read response body: %w", err)}
		c.logWarnCtx(ctx, "client.http.transport_error", "op", r.op, "url", target, "status", status, "error", err)
		return status, te
	}
	c.logDebugCtx(ctx, "client.http.request.done", "op", r.op, "status", status, "bytes", len(data), "elapsed", time.Since(begin))
	if status < 200 || status > 299 {
		ce := decodeError(r.op, status, data)
		c.logDebugCtx(ctx, "client.http.rejected", "op", r.op, "status", status, "message", ce.Message)
		return status, ce
	}
	if r.schema == nil || out == nil {
		return status, nil
	}
	if err := r.schema.Decode(data, out); err != nil {
		var mm *api.MismatchError
		if errors.As(err, &mm) {
			return status, c.mismatch(ctx, r.op, status, data, mm)
		}
		c.logWarnCtx(ctx, "client.http.unreadable_body", "op", r.op, "status", status, "error", err)
		return status, &TransportError{Op: r.op, Method: route.Method, URL: target, Err: err}
	}
	return status, nil
}

// mismatch records contract drift and wraps it as a ClientError.
func (c *Client) mismatch(ctx context.Context, op Op, status int, data []byte, mm *api.MismatchError) error {
	c.logWarnCtx(ctx, "client.schema.mismatch", "op", op, "status", status, "schema", mm.Schema, "field", mm.Field(), "error", mm.Error())
	return &ClientError{
		Op:       op,
		Status:   status,
		Message:  "the response did not match the expected " + mm.Schema + " shape",
		Body:     data,
		Mismatch: &SchemaMismatchError{Op: op, Status: status, Err: mm},
	}
}

func outcomeOf(err error) string {
	if err == nil {
		return outcomeSuccess
	}
	var (
		ce *ClientError
		te *TransportError
		ve *validate.ValidationError
	)
	switch {
	case errors.As(err, &te):
		if te.Timeout {
			return outcomeTimeout
		}
		return outcomeTransportError
	case errors.As(err, &ce):
		if ce.Mismatch != nil {
			return outcomeSchemaMismatch
		}
		return outcomeClientError
	case errors.As(err, &ve):
		return outcomeInvalid
	}
	return outcomeTransportError
}

// get decodes a single entity.
func get[T any](ctx context.Context, c *Client, s Settings, r request) (T, error) {
	var out T
	if _, err := c.do(ctx, s, r, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// list decodes a page and checks it is internally consistent.
func list[T any](ctx context.Context, c *Client, s Settings, r request) (api.Page[T], error) {
	var page api.Page[T]
	status, err := c.do(ctx, s, r, &page)
	if err != nil {
		return api.Page[T]{}, err
	}
	if err := page.Consistent(r.schema.Name()); err != nil {
		var mm *api.MismatchError
		if errors.As(err, &mm) {
			return api.Page[T]{}, c.mismatch(ctx, r.op, status, nil, mm)
		}
		return api.Page[T]{}, err
	}
	return page, nil
}

func hasKey(keyvals []any, target string) bool {
	for i := 0; i+1 < len(keyvals); i += 2 {
		if key, ok := keyvals[i].(string); ok && key == target {
			return true
		}
	}
	return false
}

func (c *Client) enrichKeyvals(ctx context.Context, keyvals []any) []any {
	cid := correlation.ID(ctx)
	if cid == "" || hasKey(keyvals, "cid") {
		return keyvals
	}
	enriched := append([]any(nil), keyvals...)
	return append(enriched, "cid", cid)
}

func (c *Client) logTraceCtx(ctx context.Context, msg string, keyvals ...any) {
	if c.logger == nil {
		return
	}
	c.logger.Trace(msg, c.enrichKeyvals(ctx, keyvals)...)
}

func (c *Client) logDebugCtx(ctx context.Context, msg string, keyvals ...any) {
	if c.logger == nil {
		return
	}
	c.logger.Debug(msg, c.enrichKeyvals(ctx, keyvals)...)
}

func (c *Client) logWarnCtx(ctx context.Context, msg string, keyvals ...any) {
	if c.logger == nil {
		return
	}
	c.logger.Warn(msg, c.enrichKeyvals(ctx, keyvals)...)
}
