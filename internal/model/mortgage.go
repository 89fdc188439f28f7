package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Mortgage ledger transaction type tags.
const (
	MortgageMonthlyPayment   = "MONTHLY PAYMENT"
	MortgagePrincipalPayment = "PRINCIPAL PAYMENT"
	MortgageNewLoan          = "NEW LOAN SET UP"
	MortgageOther            = "OTHER"
)

// MortgageTransaction is one row of an amortization-style mortgage
// ledger, with the payment broken down into principal, interest,
// escrow and fees. Read-only once parsed.
type MortgageTransaction struct {
	Date        time.Time
	Type        string // one of the Mortgage* tags
	TotalAmount decimal.Decimal
	Principal   decimal.Decimal
	Interest    decimal.Decimal
	Escrow      decimal.Decimal
	Fees        decimal.Decimal
	Balance     decimal.Decimal
	RawDetails  string

	Month string // "YYYY-MM", derived
}

// MortgageAnalysis summarizes a mortgage ledger independent of the
// bank-transaction pipeline.
type MortgageAnalysis struct {
	TotalTransactions      int
	MonthlyPayments        int
	ExtraPrincipalPayments int

	TotalPrincipalPaid  decimal.Decimal
	TotalInterestPaid   decimal.Decimal
	TotalExtraPrincipal decimal.Decimal

	AvgMonthlyPayment  decimal.Decimal
	AvgMonthlyInterest decimal.Decimal

	PrincipalToInterestRatio float64

	From string // "YYYY-MM-DD"
	To   string
}
