package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/travelbank/accounts-loans/internal/config"
	"github.com/travelbank/accounts-loans/internal/domain"
	"github.com/travelbank/accounts-loans/internal/logger"
	"github.com/travelbank/accounts-loans/internal/storage"
	"github.com/travelbank/accounts-loans/pkg/discovery"
	"github.com/travelbank/accounts-loans/pkg/httpclient"
	"github.com/travelbank/accounts-loans/pkg/loans"
	"github.com/travelbank/accounts-loans/pkg/publishers"
)

// Lookup represents the loans lookup runtime. It fetches loan details for a
// batch of mobile numbers, publishes fresh snapshots and keeps the snapshot
// journal up to date.
type Lookup struct {
	service     string
	client      LoanFetcher
	fanout      EventPublisher
	journal     SnapshotJournal
	concurrency int
	log         logger.Logger

	// inflight serializes delivery of identical snapshots within a batch.
	inflight singleflight.Group
}

// NewLookup builds a lookup runtime from config.
func NewLookup(ctx context.Context, cfg *config.Config, log logger.Logger) (*Lookup, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	resolver, err := buildResolver(cfg, log)
	if err != nil {
		return nil, err
	}

	client, err := loans.NewClient(loans.Options{
		HTTP:        httpclient.NewRestyClient(httpclient.Options{Timeout: cfg.HTTPTimeout, UserAgent: cfg.AppName}),
		Resolver:    resolver,
		ServiceName: cfg.LoansServiceName,
		Log:         log,
	})
	if err != nil {
		return nil, fmt.Errorf("init loans client: %w", err)
	}

	fanout, err := buildFanout(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	journal, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		SnapshotTTL:     cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"snapshot_ttl_seconds":     int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	return newLookup(cfg.LoansServiceName, client, fanout, journal, cfg.LookupConcurrency, log), nil
}

func newLookup(service string, client LoanFetcher, fanout EventPublisher, journal SnapshotJournal, concurrency int, log logger.Logger) *Lookup {
	if fanout == nil {
		fanout = publishers.NewFanout(nil)
	}
	if journal == nil {
		journal, _ = storage.NewStore("none", "", storage.Options{})
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Lookup{
		service:     service,
		client:      client,
		fanout:      fanout,
		journal:     journal,
		concurrency: concurrency,
		log:         log,
	}
}

// buildResolver prefers an explicit base URL over the services file.
func buildResolver(cfg *config.Config, log logger.Logger) (discovery.Resolver, error) {
	if cfg.LoansBaseURL != "" {
		r, err := discovery.NewStaticResolver(map[string]string{cfg.LoansServiceName: cfg.LoansBaseURL})
		if err != nil {
			return nil, fmt.Errorf("loans base url: %w", err)
		}
		log.InfoObj("loans service address pinned", "resolver", map[string]any{
			"service":  cfg.LoansServiceName,
			"base_url": cfg.LoansBaseURL,
		})
		return r, nil
	}

	reg, err := discovery.LoadRegistry(cfg.ServicesFile)
	if err != nil {
		return nil, fmt.Errorf("load services registry: %w", err)
	}
	names := make([]string, 0)
	for _, svc := range reg.All() {
		if svc.EnabledValue() {
			names = append(names, svc.Name)
		}
	}
	log.InfoObj("services registry loaded", "services_meta", map[string]any{
		"file":     cfg.ServicesFile,
		"count":    len(names),
		"services": names,
	})
	return reg, nil
}

// buildFanout returns an empty fan-out when no publishers file is configured.
func buildFanout(ctx context.Context, cfg *config.Config, log logger.Logger) (*publishers.Fanout, error) {
	if cfg.PublishersFile == "" {
		log.InfoObj("publishing disabled", "publishers_file", "")
		return publishers.NewFanout(nil), nil
	}

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabled := publisherReg.Enabled()
	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubClients), nil
}

// Run looks up every mobile number and returns one result per input, in input
// order. A failed lookup never stops the others; the returned error joins all
// lookup failures.
func (l *Lookup) Run(ctx context.Context, mobileNumbers []string) ([]domain.LookupResult, error) {
	if l == nil || l.client == nil {
		return nil, fmt.Errorf("lookup is not initialized")
	}
	if len(mobileNumbers) == 0 {
		return nil, fmt.Errorf("no mobile numbers given")
	}

	start := time.Now()
	results := make([]domain.LookupResult, len(mobileNumbers))

	var g errgroup.Group
	g.SetLimit(l.concurrency)
	for i, number := range mobileNumbers {
		g.Go(func() error {
			results[i] = l.lookupOne(ctx, number)
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, r := range results {
		if r.Failed() {
			errs = append(errs, fmt.Errorf("lookup %s: %s", maskMobile(r.MobileNumber), r.Error))
		}
	}

	l.log.InfoObj("lookup batch completed", "lookup_meta", map[string]any{
		"requested":  len(mobileNumbers),
		"failed":     len(errs),
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return results, errors.Join(errs...)
}

func (l *Lookup) lookupOne(ctx context.Context, number string) domain.LookupResult {
	res := domain.LookupResult{MobileNumber: number}

	resp, err := l.client.FetchLoanDetails(ctx, number)
	if err != nil {
		res.Error = err.Error()
		res.ErrorKind = errorKind(err)
		res.StatusCode = loans.StatusCode(err)
		l.log.WarnObj("loan lookup failed", "lookup_error", map[string]any{
			"mobile": maskMobile(number),
			"kind":   res.ErrorKind,
			"status": res.StatusCode,
			"error":  err.Error(),
		})
		return res
	}

	loan := resp.Loan
	res.StatusCode = resp.StatusCode
	res.Loan = &loan

	if l.fanout.Size() > 0 {
		l.publish(ctx, number, resp, &res)
	}
	return res
}

// publishOutcome is the delivery result shared by identical in-flight snapshots.
type publishOutcome struct {
	duplicate bool
	published int
	err       string
}

// publish delivers a snapshot unless the journal already holds it. Identical
// snapshots published concurrently are delivered once; the others are
// reported as duplicates.
func (l *Lookup) publish(ctx context.Context, number string, resp *loans.Response, res *domain.LookupResult) {
	key := storage.SnapshotKey(resp.Loan)

	var leader bool
	v, _, _ := l.inflight.Do(key, func() (any, error) {
		leader = true
		return l.deliver(ctx, number, resp, key), nil
	})
	out := v.(publishOutcome)

	switch {
	case out.duplicate:
		res.Duplicate = true
	case leader:
		res.Published = out.published
		res.PublishError = out.err
	case out.published > 0:
		res.Duplicate = true
	default:
		res.PublishError = out.err
	}
}

// deliver checks the journal, publishes through the fan-out and marks the
// snapshot once at least one publisher accepted it.
func (l *Lookup) deliver(ctx context.Context, number string, resp *loans.Response, key string) publishOutcome {
	seen, err := l.journal.SeenSnapshot(key)
	if err != nil {
		l.log.WarnObj("snapshot journal lookup failed", "journal_error", map[string]any{
			"mobile": maskMobile(number),
			"error":  err.Error(),
		})
	}
	if seen {
		return publishOutcome{duplicate: true}
	}

	n, err := l.fanout.Publish(ctx, publishers.NewEvent(l.service, number, resp))
	out := publishOutcome{published: n}
	if err != nil {
		out.err = err.Error()
		l.log.ErrorObj("lookup event publish failed", "publish_error", map[string]any{
			"mobile":    maskMobile(number),
			"delivered": n,
			"error":     err.Error(),
		})
	}
	if n == 0 {
		return out
	}
	if err := l.journal.MarkSnapshot(key); err != nil {
		l.log.WarnObj("snapshot journal update failed", "journal_error", map[string]any{
			"mobile": maskMobile(number),
			"error":  err.Error(),
		})
	}
	return out
}

// Close releases publishers and the snapshot journal.
func (l *Lookup) Close() error {
	if l == nil {
		return nil
	}
	return errors.Join(l.fanout.Close(), l.journal.Close())
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, loans.ErrTransport):
		return "transport"
	case errors.Is(err, loans.ErrRemote):
		return "remote"
	case errors.Is(err, loans.ErrDecode):
		return "decode"
	case errors.Is(err, discovery.ErrServiceNotFound):
		return "resolve"
	default:
		return "unknown"
	}
}

// maskMobile keeps the last four digits for log correlation.
func maskMobile(number string) string {
	const visible = 4
	if len(number) <= visible {
		return number
	}
	masked := make([]byte, len(number))
	for i := range masked {
		if i < len(number)-visible {
			masked[i] = '*'
		} else {
			masked[i] = number[i]
		}
	}
	return string(masked)
}
