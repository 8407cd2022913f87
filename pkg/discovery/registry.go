package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Service is a single entry of the services file.
type Service struct {
	Name    string `json:"name" yaml:"name"`
	BaseURL string `json:"base_url" yaml:"base_url"`
	Enabled *bool  `json:"enabled" yaml:"enabled"`
}

// EnabledValue returns the enabled flag defaulting to true.
func (s Service) EnabledValue() bool {
	if s.Enabled == nil {
		return true
	}
	return *s.Enabled
}

type servicesFile struct {
	Services []Service `json:"services" yaml:"services"`
}

// Registry is a Resolver backed by a services file.
type Registry struct {
	services []Service
	resolver *StaticResolver
}

// LoadRegistry loads the services registry from a YAML/JSON file.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("services file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open services file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read services file: %w", err)
	}

	return ParseRegistry(raw, filepath.Ext(path))
}

// ParseRegistry builds a registry from raw file content. ext selects the decoder;
// an empty ext tries YAML then JSON.
func ParseRegistry(data []byte, ext string) (*Registry, error) {
	file, err := parseServicesFile(data, ext)
	if err != nil {
		return nil, err
	}
	if len(file.Services) == 0 {
		return nil, errors.New("services file contains no services entries")
	}

	reg := &Registry{
		services: make([]Service, 0, len(file.Services)),
		resolver: &StaticResolver{addrs: make(map[string]string, len(file.Services))},
	}
	seen := make(map[string]struct{}, len(file.Services))

	for i, svc := range file.Services {
		svc.Name = normalizeName(svc.Name)
		if svc.Name == "" {
			return nil, fmt.Errorf("services[%d]: name is required", i)
		}
		if _, dup := seen[svc.Name]; dup {
			return nil, fmt.Errorf("duplicate service name %q", svc.Name)
		}
		seen[svc.Name] = struct{}{}

		base, err := normalizeBaseURL(svc.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("services[%d] %q: %w", i, svc.Name, err)
		}
		svc.BaseURL = base
		reg.services = append(reg.services, svc)

		if svc.EnabledValue() {
			reg.resolver.addrs[svc.Name] = base
		}
	}

	return reg, nil
}

func parseServicesFile(data []byte, ext string) (servicesFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	var errs []error
	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var out servicesFile
		if err := d.fn(data, &out); err != nil {
			errs = append(errs, fmt.Errorf("decode %s services: %w", d.name, err))
			continue
		}
		return out, nil
	}

	if len(errs) == 0 {
		return servicesFile{}, fmt.Errorf("services file extension %q not recognized (expected YAML or JSON)", ext)
	}
	return servicesFile{}, errors.Join(errs...)
}

// Resolve returns the base URL of an enabled service.
func (r *Registry) Resolve(ctx context.Context, name string) (string, error) {
	if r == nil {
		return "", fmt.Errorf("%w: %q", ErrServiceNotFound, name)
	}
	return r.resolver.Resolve(ctx, name)
}

// All returns a copy of every configured service, enabled or not.
func (r *Registry) All() []Service {
	if r == nil {
		return nil
	}
	out := make([]Service, len(r.services))
	copy(out, r.services)
	return out
}
