package discovery

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// ErrServiceNotFound is returned when a logical service name has no address.
var ErrServiceNotFound = errors.New("service not found")

// Resolver maps a logical service name (e.g. "loans") to a base URL.
type Resolver interface {
	Resolve(ctx context.Context, name string) (string, error)
}

// ResolverFunc adapts a plain function to Resolver.
type ResolverFunc func(ctx context.Context, name string) (string, error)

// Resolve calls f(ctx, name).
func (f ResolverFunc) Resolve(ctx context.Context, name string) (string, error) {
	return f(ctx, name)
}

// StaticResolver resolves names from a fixed in-memory table.
type StaticResolver struct {
	mu    sync.RWMutex
	addrs map[string]string
}

// NewStaticResolver builds a resolver from name -> base URL pairs.
func NewStaticResolver(addrs map[string]string) (*StaticResolver, error) {
	r := &StaticResolver{addrs: make(map[string]string, len(addrs))}
	for name, base := range addrs {
		if err := r.Set(name, base); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Set registers or replaces the base URL for name.
func (r *StaticResolver) Set(name, baseURL string) error {
	key := normalizeName(name)
	if key == "" {
		return errors.New("service name is empty")
	}
	base, err := normalizeBaseURL(baseURL)
	if err != nil {
		return fmt.Errorf("service %q: %w", key, err)
	}

	r.mu.Lock()
	r.addrs[key] = base
	r.mu.Unlock()
	return nil
}

// Resolve returns the base URL registered for name.
func (r *StaticResolver) Resolve(_ context.Context, name string) (string, error) {
	if r == nil {
		return "", fmt.Errorf("%w: %q", ErrServiceNotFound, name)
	}
	r.mu.RLock()
	base, ok := r.addrs[normalizeName(name)]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrServiceNotFound, name)
	}
	return base, nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// normalizeBaseURL requires an absolute http(s) URL and strips any trailing slash.
func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("base_url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("base_url %q must use http or https", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("base_url %q has no host", raw)
	}
	return strings.TrimRight(raw, "/"), nil
}
