package publishers

import (
	"time"

	"github.com/travelbank/accounts-loans/pkg/loans"
)

// Event is the payload published downstream after a successful loan lookup.
type Event struct {
	Service      string            `json:"service"`
	MobileNumber string            `json:"mobile_number"`
	StatusCode   int               `json:"status_code"`
	Loan         loans.LoanDetails `json:"loan"`
	FetchedAt    time.Time         `json:"fetched_at"`
}

// NewEvent builds an Event for a lookup of mobileNumber against service.
func NewEvent(service, mobileNumber string, resp *loans.Response) Event {
	evt := Event{
		Service:      service,
		MobileNumber: mobileNumber,
		FetchedAt:    time.Now().UTC(),
	}
	if resp != nil {
		evt.StatusCode = resp.StatusCode
		evt.Loan = resp.Loan
	}
	return evt
}

// attributes returns the routing attributes attached to broker messages.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"service":     e.Service,
		"loan_number": e.Loan.LoanNumber,
		"loan_type":   e.Loan.LoanType,
	}
}
