// Package storage keeps a local journal of published loan snapshots.
package storage

import (
	"crypto/sha1" //nolint:gosec // non-cryptographic key derivation
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/travelbank/accounts-loans/pkg/loans"
)

// Store tracks which loan snapshots have already been published.
type Store interface {
	Close() error
	SeenSnapshot(key string) (bool, error)
	MarkSnapshot(key string) error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	SnapshotTTL     time.Duration
	CleanupInterval time.Duration
}

const (
	defaultSnapshotTTL     = 24 * time.Hour
	defaultCleanupInterval = 6 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		store, err := openBolt(path, opts)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

// SnapshotKey derives the journal key for a loan snapshot. Any change in the
// repayment figures yields a new key.
func SnapshotKey(d loans.LoanDetails) string {
	parts := []string{
		d.MobileNumber,
		d.LoanNumber,
		d.LoanType,
		strconv.Itoa(d.TotalLoan),
		strconv.Itoa(d.AmountPaid),
		strconv.Itoa(d.OutstandingAmount),
	}
	sum := sha1.Sum([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:])
}

func normalizeOptions(opts Options) Options {
	if opts.SnapshotTTL <= 0 {
		opts.SnapshotTTL = defaultSnapshotTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                      { return nil }
func (noopStore) SeenSnapshot(string) (bool, error) { return false, nil }
func (noopStore) MarkSnapshot(string) error         { return nil }
