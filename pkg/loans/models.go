package loans

// LoanDetails mirrors the loans service response body. The loans service owns
// this contract; unknown fields are ignored on decode.
type LoanDetails struct {
	MobileNumber      string `json:"mobileNumber"`
	LoanNumber        string `json:"loanNumber"`
	LoanType          string `json:"loanType"`
	TotalLoan         int    `json:"totalLoan"`
	AmountPaid        int    `json:"amountPaid"`
	OutstandingAmount int    `json:"outstandingAmount"`
}

// Response wraps a successful fetch.
type Response struct {
	StatusCode int
	Loan       LoanDetails
}
