package model

import "github.com/shopspring/decimal"

// MonthlyMetrics is the cash-flow picture of one calendar month.
// Computed fresh on each calculator run and never mutated afterwards;
// the mortgage enhancement produces a new value rather than editing
// the base one.
type MonthlyMetrics struct {
	Month string // "YYYY-MM"

	// Core figures. NetCashFlow = GrossIncome - TrueExpenses, always.
	GrossIncome  decimal.Decimal
	TrueExpenses decimal.Decimal // excludes transfers and debt payments
	NetCashFlow  decimal.Decimal

	// Informational totals, never part of the net formula.
	InternalTransfersOut decimal.Decimal
	InternalTransfersIn  decimal.Decimal
	ExcludedPayments     decimal.Decimal

	// Ratios, zero when income is zero. The base savings rate is
	// transfer-based; the mortgage enhancement replaces it with a
	// net-based rate (net / income).
	SavingsRate  float64 // (transfers_out / income) * 100
	ExpenseRatio float64 // (expenses / income) * 100

	IncomeByCategory  map[string]decimal.Decimal
	ExpenseByCategory map[string]decimal.Decimal

	TransactionCount int
	LargestExpense   decimal.Decimal
	LargestIncome    decimal.Decimal
	DailyBurnRate    decimal.Decimal

	// Balance reconciliation against the export's balance column.
	// Best-effort only; the transaction-derived change is authoritative.
	StartingBalance    decimal.Decimal
	EndingBalance      decimal.Decimal
	CalculatedChange   decimal.Decimal
	ActualChange       decimal.Decimal
	ReconciliationDiff decimal.Decimal
}

// SummaryMetrics aggregates the whole dataset into per-month averages
// and overall ratios.
type SummaryMetrics struct {
	Period string // "YYYY-MM-DD to YYYY-MM-DD"

	TotalIncome       decimal.Decimal
	TotalExpenses     decimal.Decimal
	TotalNetCashFlow  decimal.Decimal
	TotalTransfersOut decimal.Decimal
	TotalExcluded     decimal.Decimal

	AvgMonthlyIncome      decimal.Decimal
	AvgMonthlyExpenses    decimal.Decimal
	AvgMonthlyNetCashFlow decimal.Decimal
	AvgMonthlySavings     decimal.Decimal

	OverallSavingsRate  float64
	OverallExpenseRatio float64

	TransactionCount int
	MonthsSpan       int
}

// CategoryStats describes one (flow type, category) bucket in the
// category analysis.
type CategoryStats struct {
	Total      decimal.Decimal
	Count      int
	Average    decimal.Decimal
	Percentage float64 // share of the flow type's grand total
}

// CalculationCheck is the result of validating a calculator run.
// Reconciliation mismatches are warnings, never errors: the export's
// balance column is known to be unreliable.
type CalculationCheck struct {
	Valid              bool
	Warnings           []string
	Errors             []string
	FlowTypeCounts     map[FlowType]int
	LargeDiscrepancies int
}

// ValidationResult collects data-quality findings from the input
// validator. Errors are fatal for the run; warnings accompany
// otherwise-complete output.
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string

	DateGaps             int
	DuplicateRows        []int
	BalanceDiscrepancies int

	TotalRows int
	ValidRows int
}
