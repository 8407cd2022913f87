package domain

import "github.com/travelbank/accounts-loans/pkg/loans"

// LookupResult is the outcome of one loan lookup for a mobile number.
// Exactly one of Loan or Error is set.
type LookupResult struct {
	MobileNumber string             `json:"mobile_number"`
	StatusCode   int                `json:"status_code,omitempty"`
	Loan         *loans.LoanDetails `json:"loan,omitempty"`
	Error        string             `json:"error,omitempty"`
	ErrorKind    string             `json:"error_kind,omitempty"`
	Published    int                `json:"published,omitempty"`
	Duplicate    bool               `json:"duplicate,omitempty"`
	PublishError string             `json:"publish_error,omitempty"`
}

// Failed reports whether the lookup itself failed.
func (r LookupResult) Failed() bool { return r.Error != "" }
