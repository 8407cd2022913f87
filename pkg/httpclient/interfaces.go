package httpclient

import (
	"context"
	"net/http"
)

// Request describes a single outbound GET.
type Request struct {
	URL     string
	Query   map[string]string
	Headers map[string]string
}

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	Header() http.Header
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Get(ctx context.Context, req Request) (Response, error)
}

// IsSuccess reports whether the status code is in the 2xx range.
func IsSuccess(resp Response) bool {
	if resp == nil {
		return false
	}
	code := resp.StatusCode()
	return code >= 200 && code < 300
}
