package httpclient

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultUserAgent = "accounts-loans-client"

// Options tunes the underlying resty client.
type Options struct {
	Timeout   time.Duration
	UserAgent string
}

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	client *resty.Client
}

// NewRestyClient creates a new RestyClient with the specified options.
func NewRestyClient(opts Options) *RestyClient {
	return &RestyClient{client: newRestyBaseClient(opts)}
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing custom verbs.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	return newRestyBaseClient(Options{Timeout: timeout})
}

// newRestyBaseClient creates a resty.Client that never retries on its own.
func newRestyBaseClient(opts Options) *resty.Client {
	c := resty.New()
	if opts.Timeout > 0 {
		c.SetTimeout(opts.Timeout)
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	c.SetHeader("User-Agent", ua)
	c.SetRetryCount(0)
	return c
}

// Get performs an HTTP GET request with the query parameters and headers of req.
func (r *RestyClient) Get(ctx context.Context, req Request) (Response, error) {
	rr := r.client.R().SetContext(ctx)
	if len(req.Query) > 0 {
		rr.SetQueryParams(req.Query)
	}
	if len(req.Headers) > 0 {
		rr.SetHeaders(req.Headers)
	}
	resp, err := rr.Get(req.URL)
	if err != nil {
		return nil, err
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte        { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int     { return r.resp.StatusCode() }
func (r *restyResponseAdapter) Header() http.Header { return r.resp.Header() }
