package outbound

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"outbound-custom/lib/mapped"
	"outbound-custom/lib/outcome"
	"outbound-custom/lib/restyutil"
	"outbound-custom/lib/validate"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

var ErrUnknownFormat = errors.New("unknown integration format")

const (
	defaultTimeout = 10 * time.Second
	maxRedirects   = 10
)

var tracer = otel.Tracer("outbound-custom/lib/outbound")

type followAllKey struct{}

// Client delivers requests built by the registered integrations.
type Client struct {
	http       *resty.Client
	validation validate.Options
	deliveries metric.Int64Counter
}

// NewClient creates a delivery client, output may be nil.
func NewClient(opts validate.Options, output restyutil.InstrumentOutput) *Client {
	client := resty.New()
	client.SetRedirectPolicy(resty.RedirectPolicyFunc(redirectPolicy))
	restyutil.InstrumentClient(client, otel.Tracer("outbound-custom/lib/outbound/http"), output)

	deliveries, err := otel.Meter("outbound-custom/lib/outbound").Int64Counter(
		"outbound.deliveries",
		metric.WithDescription("Outbound delivery attempts by format and outcome"),
	)
	if err != nil {
		slog.Warn("failed to create delivery counter", "err", err)
		deliveries = noop.Int64Counter{}
	}

	return &Client{http: client, validation: opts, deliveries: deliveries}
}

// Close releases idle connections.
func (c *Client) Close() {
	c.http.GetClient().CloseIdleConnections()
}

// redirectPolicy follows every redirect when the request asked for it,
// and only redirects of GET and HEAD requests otherwise.
func redirectPolicy(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	if followAll, _ := req.Context().Value(followAllKey{}).(bool); followAll {
		return nil
	}
	switch via[0].Method {
	case http.MethodGet, http.MethodHead:
		return nil
	}
	return http.ErrUseLastResponse
}

func timeoutFromVars(vars map[string]any) time.Duration {
	seconds, ok := mapped.Float(mapped.Expand(vars)["timeout_seconds"])
	if !ok || seconds <= 0 {
		return defaultTimeout
	}
	return time.Duration(seconds * float64(time.Second))
}

// Deliver validates vars, sends the request they describe and builds the
// event from the response. Validation and transport failures are returned
// as errors; server errors become an event with an error outcome.
func (c *Client) Deliver(ctx context.Context, format string, vars map[string]any) (outcome.Event, error) {
	integration, ok := Integrations[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}

	attempt := uuid.NewString()
	ctx, span := tracer.Start(ctx, "deliver "+format, trace.WithAttributes(
		attribute.String("outbound.format", format),
		attribute.String("outbound.attempt_id", attempt),
	))
	defer span.End()

	err := integration.Validate(vars, c.validation)
	if err != nil {
		span.SetStatus(codes.Error, "invalid vars")
		return nil, err
	}

	req := integration.Request(vars)
	slog.DebugContext(ctx, "delivering",
		"attempt_id", attempt,
		"format", format,
		"method", req.Method,
		"url", req.URL,
	)

	ctx, cancel := context.WithTimeout(ctx, timeoutFromVars(vars))
	defer cancel()
	ctx = context.WithValue(ctx, followAllKey{}, req.FollowAllRedirects)

	r := c.http.R().
		SetContext(ctx).
		SetHeaders(req.Headers)
	if req.Body != "" {
		r.SetBody(req.Body)
	}
	res, err := r.Execute(req.Method, req.URL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delivery failed")
		slog.WarnContext(ctx, "delivery failed", "attempt_id", attempt, "err", err)
		return nil, err
	}

	event := outcome.Build(outcome.OptionsFromVars(vars), outcome.Response{
		Status: res.StatusCode(),
		Header: res.Header(),
		Body:   res.Body(),
	})

	span.SetAttributes(attribute.String("outbound.outcome", string(event.Outcome())))
	c.deliveries.Add(ctx, 1, metric.WithAttributes(
		attribute.String("format", format),
		attribute.String("outcome", string(event.Outcome())),
	))
	slog.DebugContext(ctx, "delivered",
		"attempt_id", attempt,
		"status", res.StatusCode(),
		"outcome", event.Outcome(),
	)
	return event, nil
}
