package loans

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/travelbank/accounts-loans/pkg/discovery"
	"github.com/travelbank/accounts-loans/pkg/httpclient"
)

const (
	// DefaultServiceName is the logical name of the loans backend.
	DefaultServiceName = "loans"

	fetchPath         = "/api/fetch"
	mobileNumberParam = "mobileNumber"
	contentTypeJSON   = "application/json"
	maxErrorBodyBytes = 512
)

// Logger is the logging surface the client relies on.
type Logger interface {
	DebugObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) DebugObj(string, string, interface{}) {}

// Options configures a Client. HTTP and Resolver are required.
type Options struct {
	HTTP        httpclient.Client
	Resolver    discovery.Resolver
	ServiceName string
	Log         Logger
}

// Client fetches loan details from the loans service. It holds no mutable
// state and is safe for concurrent use.
type Client struct {
	http     httpclient.Client
	resolver discovery.Resolver
	service  string
	log      Logger
}

// NewClient validates opts and builds a Client.
func NewClient(opts Options) (*Client, error) {
	if opts.HTTP == nil {
		return nil, fmt.Errorf("loans client: http client must not be nil")
	}
	if opts.Resolver == nil {
		return nil, fmt.Errorf("loans client: resolver must not be nil")
	}
	service := strings.TrimSpace(opts.ServiceName)
	if service == "" {
		service = DefaultServiceName
	}
	log := opts.Log
	if log == nil {
		log = noopLogger{}
	}
	return &Client{
		http:     opts.HTTP,
		resolver: opts.Resolver,
		service:  service,
		log:      log,
	}, nil
}

// ServiceName returns the logical backend name the client resolves.
func (c *Client) ServiceName() string { return c.service }

// FetchLoanDetails issues GET /api/fetch?mobileNumber=<mobileNumber> against the
// loans service. mobileNumber is passed through as-is. Failures are returned as
// *TransportError, *RemoteError or *DecodeError and are never retried.
func (c *Client) FetchLoanDetails(ctx context.Context, mobileNumber string) (*Response, error) {
	base, err := c.resolver.Resolve(ctx, c.service)
	if err != nil {
		return nil, fmt.Errorf("resolve %s service: %w", c.service, err)
	}

	start := time.Now()
	resp, err := c.http.Get(ctx, httpclient.Request{
		URL:   base + fetchPath,
		Query: map[string]string{mobileNumberParam: mobileNumber},
		Headers: map[string]string{
			"Accept":       contentTypeJSON,
			"Content-Type": contentTypeJSON,
		},
	})
	if err != nil {
		c.log.DebugObj("loans fetch failed", "loans_call", map[string]any{
			"service":    c.service,
			"elapsed_ms": time.Since(start).Milliseconds(),
			"error":      err.Error(),
		})
		return nil, &TransportError{Err: err}
	}

	status := resp.StatusCode()
	c.log.DebugObj("loans fetch completed", "loans_call", map[string]any{
		"service":    c.service,
		"status":     status,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})

	if !httpclient.IsSuccess(resp) {
		return nil, &RemoteError{StatusCode: status, Body: bodySnippet(resp.Body())}
	}

	var details LoanDetails
	if err := json.Unmarshal(resp.Body(), &details); err != nil {
		return nil, &DecodeError{StatusCode: status, Err: err}
	}

	return &Response{StatusCode: status, Loan: details}, nil
}

func bodySnippet(body []byte) string {
	if len(body) > maxErrorBodyBytes {
		body = body[:maxErrorBodyBytes]
	}
	return strings.TrimSpace(string(body))
}
