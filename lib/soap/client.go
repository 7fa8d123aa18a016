package soap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"outbound-custom/lib/document"
	"outbound-custom/lib/outcome"
	"outbound-custom/lib/restyutil"

	"github.com/antchfx/xmlquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

var (
	ErrUnsupportedFunction = errors.New("Unsupported SOAP function specified")
	ErrTimeout             = errors.New("SOAP request timed out")
	ErrNoEndpoint          = errors.New("WSDL declares no SOAP endpoint")
)

var tracer = otel.Tracer("outbound-custom/lib/soap")

// Result carries the completion of an asynchronous call.
type Result struct {
	Event outcome.Event
	Err   error
}

type Client struct {
	http   *resty.Client
	faults metric.Int64Counter
}

// NewClient creates a SOAP client, output may be nil.
func NewClient(output restyutil.InstrumentOutput) *Client {
	client := resty.New()
	restyutil.InstrumentClient(client, otel.Tracer("outbound-custom/lib/soap/http"), output)

	faults, err := otel.Meter("outbound-custom/lib/soap").Int64Counter(
		"soap.faults",
		metric.WithDescription("SOAP faults returned by remote services"),
	)
	if err != nil {
		slog.Warn("failed to create soap fault counter", "err", err)
		faults = noop.Int64Counter{}
	}

	return &Client{http: client, faults: faults}
}

// Close releases idle connections.
func (c *Client) Close() {
	c.http.GetClient().CloseIdleConnections()
}

// Invoke runs Handle in the background. The returned channel receives
// exactly one result and is then closed.
func (c *Client) Invoke(ctx context.Context, vars map[string]any) <-chan Result {
	results := make(chan Result, 1)
	go func() {
		defer close(results)
		event, err := c.Handle(ctx, vars)
		results <- Result{Event: event, Err: err}
	}()
	return results
}

// Handle fetches the WSDL named by vars, calls the configured function
// and builds an event from its result. A SOAP fault is reported as an
// event with an error outcome, not as an error.
func (c *Client) Handle(ctx context.Context, vars map[string]any) (outcome.Event, error) {
	cfg := ConfigFromVars(vars)

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	ctx, span := tracer.Start(ctx, "soap "+cfg.operationName())
	defer span.End()
	span.SetAttributes(
		attribute.String("soap.function", cfg.Function),
		attribute.String("soap.version", string(cfg.Version)),
	)

	event, err := c.call(ctx, cfg)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "soap call failed")
		return nil, err
	}
	return event, nil
}

func (c *Client) call(ctx context.Context, cfg Config) (outcome.Event, error) {
	svc, err := c.fetchService(ctx, cfg)
	if err != nil {
		return nil, err
	}

	op, ok := svc.Operations[cfg.operationName()]
	if !ok {
		return nil, ErrUnsupportedFunction
	}
	endpoint, ok := svc.Endpoint(cfg.Version)
	if !ok {
		return nil, ErrNoEndpoint
	}

	env := envelope{cfg: cfg, svc: svc, op: op}
	req := c.http.R().SetContext(ctx)
	switch {
	case cfg.BasicUsername != "" && cfg.BasicPassword != "":
		req.SetBasicAuth(cfg.BasicUsername, cfg.BasicPassword)
	case cfg.BearerToken != "":
		req.SetAuthToken(cfg.BearerToken)
	case cfg.WSSUsername != "" && cfg.WSSPassword != "":
		env.security = &wsSecurity{
			username: cfg.WSSUsername,
			password: cfg.WSSPassword,
			digest:   cfg.WSSDigest,
		}
	}

	body, err := env.render()
	if err != nil {
		return nil, fmt.Errorf("render envelope: %w", err)
	}

	action := op.Actions[cfg.Version]
	if cfg.Version == Version12 {
		req.SetHeader("Content-Type", fmt.Sprintf(`application/soap+xml; charset=utf-8; action="%s"`, action))
	} else {
		req.SetHeader("Content-Type", "text/xml; charset=utf-8")
		req.SetHeader("SOAPAction", fmt.Sprintf(`"%s"`, action))
	}

	res, err := req.SetBody(body).Post(endpoint)
	if err != nil {
		return nil, err
	}

	return c.handleResponse(ctx, cfg, res.StatusCode(), res.Body())
}

func (c *Client) fetchService(ctx context.Context, cfg Config) (*Service, error) {
	req := c.http.R().SetContext(ctx)
	if cfg.BasicUsername != "" && cfg.BasicPassword != "" {
		req.SetBasicAuth(cfg.BasicUsername, cfg.BasicPassword)
	}
	res, err := req.Get(cfg.WSDL)
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, fmt.Errorf("fetch wsdl: unexpected status %d", res.StatusCode())
	}
	return ParseWSDL(res.Body())
}

func (c *Client) handleResponse(ctx context.Context, cfg Config, status int, body []byte) (outcome.Event, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		if status < 200 || status > 299 {
			return nil, fmt.Errorf("soap call failed with status %d", status)
		}
		return nil, fmt.Errorf("parse soap response: %w", err)
	}

	envBody := xmlquery.FindOne(doc, "/*[local-name()='Envelope']/*[local-name()='Body']")
	if envBody == nil {
		return nil, fmt.Errorf("soap call failed with status %d: missing envelope body", status)
	}

	if fault := xmlquery.FindOne(envBody, "./*[local-name()='Fault']"); fault != nil {
		c.faults.Add(ctx, 1, metric.WithAttributes(attribute.String("soap.version", string(cfg.Version))))
		event := outcome.Event{"outcome": string(outcome.Error)}
		if reason := faultReason(fault); reason != "" {
			event["reason"] = reason
		}
		return event, nil
	}
	if status < 200 || status > 299 {
		return nil, fmt.Errorf("soap call failed with status %d", status)
	}

	result := map[string]any{}
	if el := firstElement(envBody); el != nil {
		if obj, ok := document.ElementValue(el).(map[string]any); ok {
			result = obj
		}
	}
	for key, value := range result {
		if key == "xmlns" || strings.HasPrefix(key, "xmlns:") {
			delete(result, key)
			continue
		}
		if s, ok := value.(string); ok {
			result[key] = decodeEmbeddedXML(s)
		}
	}

	event := outcome.Extract(cfg.Response, document.FromObject(result, string(body)))
	if event.Outcome() != outcome.Success {
		event["price"] = float64(0)
	}
	return event, nil
}

func firstElement(n *xmlquery.Node) *xmlquery.Node {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			return child
		}
	}
	return nil
}

// faultReason reads a SOAP 1.1 faultstring/faultcode or a SOAP 1.2
// Reason/Code.
func faultReason(fault *xmlquery.Node) string {
	for _, expr := range []string{
		"./*[local-name()='faultstring']",
		"./*[local-name()='Reason']/*[local-name()='Text']",
		"./*[local-name()='faultcode']",
		"./*[local-name()='Code']/*[local-name()='Value']",
	} {
		if n := xmlquery.FindOne(fault, expr); n != nil {
			if text := strings.TrimSpace(n.InnerText()); text != "" {
				return text
			}
		}
	}
	return ""
}

// decodeEmbeddedXML parses strings that look like an encoded XML document
// into an object. Anything else is returned unchanged.
func decodeEmbeddedXML(s string) any {
	open := strings.Count(s, "<")
	if open == 0 || open != strings.Count(s, ">") {
		return s
	}
	doc, err := xmlquery.Parse(strings.NewReader(s))
	if err != nil {
		return s
	}
	obj := document.ToObject(doc)
	if len(obj) == 0 {
		return s
	}
	return obj
}
