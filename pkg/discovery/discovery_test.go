package discovery

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRegistryYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "services.yaml")
	raw := `
services:
  - name: Loans
    base_url: http://loans.internal:8090/
  - name: cards
    base_url: http://cards.internal:9000
    enabled: false
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write services file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}

	base, err := reg.Resolve(context.Background(), "loans")
	if err != nil {
		t.Fatalf("Resolve loans: %v", err)
	}
	if base != "http://loans.internal:8090" {
		t.Fatalf("unexpected base url %q", base)
	}

	if _, err := reg.Resolve(context.Background(), "cards"); !errors.Is(err, ErrServiceNotFound) {
		t.Fatalf("disabled service should not resolve, got %v", err)
	}
	if len(reg.All()) != 2 {
		t.Fatalf("expected 2 services listed, got %d", len(reg.All()))
	}
}

func TestParseRegistryJSON(t *testing.T) {
	raw := []byte(`{"services":[{"name":"loans","base_url":"https://loans.example.com"}]}`)
	reg, err := ParseRegistry(raw, ".json")
	if err != nil {
		t.Fatalf("ParseRegistry: %v", err)
	}
	base, err := reg.Resolve(context.Background(), " LOANS ")
	if err != nil || base != "https://loans.example.com" {
		t.Fatalf("Resolve = %q, %v", base, err)
	}
}

func TestParseRegistryRejectsBadEntries(t *testing.T) {
	cases := map[string]string{
		"duplicate": `
services:
  - name: loans
    base_url: http://a
  - name: LOANS
    base_url: http://b
`,
		"missing url": `
services:
  - name: loans
`,
		"relative url": `
services:
  - name: loans
    base_url: /api
`,
		"empty": `services: []`,
	}
	for name, raw := range cases {
		if _, err := ParseRegistry([]byte(raw), ".yaml"); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestParseRegistryUnknownExtension(t *testing.T) {
	if _, err := ParseRegistry([]byte(`services: []`), ".toml"); err == nil {
		t.Fatalf("expected error for unsupported extension")
	}
}

func TestStaticResolver(t *testing.T) {
	r, err := NewStaticResolver(map[string]string{"loans": "http://127.0.0.1:8090/"})
	if err != nil {
		t.Fatalf("NewStaticResolver: %v", err)
	}
	base, err := r.Resolve(context.Background(), "loans")
	if err != nil || base != "http://127.0.0.1:8090" {
		t.Fatalf("Resolve = %q, %v", base, err)
	}
	if _, err := r.Resolve(context.Background(), "accounts"); !errors.Is(err, ErrServiceNotFound) {
		t.Fatalf("expected ErrServiceNotFound, got %v", err)
	}
	if _, err := NewStaticResolver(map[string]string{"loans": "ftp://x"}); err == nil {
		t.Fatalf("expected scheme validation error")
	}
}
