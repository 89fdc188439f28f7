package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// FlowType is the cash-flow role of a transaction. The four roles are
// mutually exclusive and every transaction ends the pipeline with
// exactly one of them.
//
// Net cash flow = INCOME - EXPENSE. Internal transfers move money
// between the owner's own accounts and excluded payments are debt
// service already counted at purchase time; neither participates in
// the net formula.
type FlowType string

const (
	FlowIncome   FlowType = "INCOME"
	FlowExpense  FlowType = "EXPENSE"
	FlowTransfer FlowType = "INTERNAL_TRANSFER"
	FlowExcluded FlowType = "EXCLUDED"
)

// FlowTypes lists all flow types in a stable order.
var FlowTypes = []FlowType{FlowIncome, FlowExpense, FlowTransfer, FlowExcluded}

// Confidence levels assigned by the automatic pipeline. User overrides
// use 1.0.
const (
	ConfidenceHigh   = 0.9
	ConfidenceMedium = 0.7
	ConfidenceLow    = 0.5
)

// Transaction is one bank ledger line. Source fields come from the CSV
// and never change; annotation fields are written once by the
// classifier and once by the categorizer, then read-only.
type Transaction struct {
	// Source fields.
	Date        time.Time
	Description string
	Amount      decimal.Decimal // negative = debit, positive = credit
	Balance     decimal.Decimal // running balance from the export; often unreliable
	Type        string          // bank transaction type tag (ACH_DEBIT, etc.)

	// Pipeline annotations.
	FlowType    FlowType // empty until classified
	Category    string
	Subcategory string
	Confidence  float64
	HasPair     bool   // part of a matched transfer pair
	PairID      string // identity of the counterpart transaction

	// Manual overrides. A user-verified transaction is immutable to
	// the automatic pipeline.
	UserVerified bool
	UserCategory string

	// Derived at construction, never change.
	Month     string // "YYYY-MM"
	DayOfWeek string
	Quarter   string // "YYYY-Qn"
}

// NewTransaction builds a Transaction and computes the derived date
// fields.
func NewTransaction(date time.Time, description string, amount, balance decimal.Decimal, txnType string) Transaction {
	return Transaction{
		Date:        date,
		Description: description,
		Amount:      amount,
		Balance:     balance,
		Type:        txnType,
		Month:       MonthKey(date),
		DayOfWeek:   date.Weekday().String(),
		Quarter:     fmt.Sprintf("%d-Q%d", date.Year(), (int(date.Month())-1)/3+1),
	}
}

// MonthKey formats a date as "YYYY-MM".
func MonthKey(date time.Time) string {
	return date.Format("2006-01")
}

// AbsAmount returns the absolute value of the amount.
func (t Transaction) AbsAmount() decimal.Decimal {
	return t.Amount.Abs()
}

// IsClassified reports whether the classifier has assigned a flow type.
func (t Transaction) IsClassified() bool {
	return t.FlowType != ""
}

// CategorizationResult describes one classification or categorization
// decision, including the method and pattern used for diagnostics.
type CategorizationResult struct {
	FlowType       FlowType
	Category       string
	Subcategory    string
	Confidence     float64
	Method         string
	MatchedPattern string
}
