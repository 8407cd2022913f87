package app

import (
	"context"

	"github.com/travelbank/accounts-loans/pkg/loans"
	"github.com/travelbank/accounts-loans/pkg/publishers"
)

// LoanFetcher retrieves loan details for a mobile number.
type LoanFetcher interface {
	FetchLoanDetails(ctx context.Context, mobileNumber string) (*loans.Response, error)
}

// EventPublisher delivers lookup events downstream.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
	Size() int
	Close() error
}

// SnapshotJournal remembers which snapshots were already published.
type SnapshotJournal interface {
	SeenSnapshot(key string) (bool, error)
	MarkSnapshot(key string) error
	Close() error
}
