package cashflow

import (
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/NashC/cashflow-analysis/internal/model"
)

// HousingInterestCategory is the expense bucket mortgage interest is
// added under during enhancement.
const HousingInterestCategory = "Housing_Interest"

// Enhancer folds mortgage interest from a servicer ledger into base
// cash-flow metrics. Interest is a true monthly cost of housing that
// the bank export hides inside an EXCLUDED mortgage payment; principal
// stays excluded because it is equity, not an expense.
type Enhancer struct {
	log    zerolog.Logger
	ledger []model.MortgageTransaction
}

// NewEnhancer creates an Enhancer over a parsed mortgage ledger.
func NewEnhancer(log zerolog.Logger, ledger []model.MortgageTransaction) *Enhancer {
	return &Enhancer{log: log, ledger: ledger}
}

// MonthlyInterest sums the interest portion of regular monthly
// payments per calendar month. Extra principal payments carry no
// interest and do not contribute.
func (e *Enhancer) MonthlyInterest() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, mt := range e.ledger {
		if mt.Type != model.MortgageMonthlyPayment || !mt.Interest.IsPositive() {
			continue
		}
		out[mt.Month] = out[mt.Month].Add(mt.Interest)
	}
	return out
}

// Enhance returns a new metrics slice with each month's interest added
// to its true expenses. The input rows are not modified. Months with
// no ledger entry pass through unchanged, so the enhancement can never
// lower a month's expenses.
func (e *Enhancer) Enhance(monthly []model.MonthlyMetrics) []model.MonthlyMetrics {
	interest := e.MonthlyInterest()
	out := make([]model.MonthlyMetrics, len(monthly))
	for i, m := range monthly {
		out[i] = e.enhanceMonth(m, interest[m.Month])
	}
	e.log.Info().Int("months_with_interest", len(interest)).Msg("applied mortgage interest enhancement")
	return out
}

func (e *Enhancer) enhanceMonth(m model.MonthlyMetrics, interest decimal.Decimal) model.MonthlyMetrics {
	out := m
	out.ExpenseByCategory = make(map[string]decimal.Decimal, len(m.ExpenseByCategory)+1)
	for k, v := range m.ExpenseByCategory {
		out.ExpenseByCategory[k] = v
	}
	if !interest.IsPositive() {
		return out
	}

	out.TrueExpenses = m.TrueExpenses.Add(interest)
	out.NetCashFlow = m.GrossIncome.Sub(out.TrueExpenses)
	out.ExpenseByCategory[HousingInterestCategory] = out.ExpenseByCategory[HousingInterestCategory].Add(interest)
	out.ExpenseRatio = ratioPercent(out.TrueExpenses, m.GrossIncome)
	// The enhanced rate is net-based, not transfer-based: once interest
	// is an expense, what is left over is what could have been saved.
	out.SavingsRate = ratioPercent(out.NetCashFlow, m.GrossIncome)
	if interest.GreaterThan(out.LargestExpense) {
		out.LargestExpense = interest
	}
	// DailyBurnRate keeps the bank-export view. The interest figure is
	// a month-level allocation, not a daily spend.
	return out
}

// EnhanceSummary rebuilds summary metrics from enhanced monthly rows.
// Like the monthly figures, the savings rate here is net-based
// (net / income) rather than the base summary's transfer-based rate.
func (e *Enhancer) EnhanceSummary(base model.SummaryMetrics, enhanced []model.MonthlyMetrics) model.SummaryMetrics {
	s := base
	s.TotalExpenses = decimal.Zero
	for _, m := range enhanced {
		s.TotalExpenses = s.TotalExpenses.Add(m.TrueExpenses)
	}
	s.TotalNetCashFlow = s.TotalIncome.Sub(s.TotalExpenses)

	span := decimal.NewFromInt(int64(s.MonthsSpan))
	s.AvgMonthlyExpenses = s.TotalExpenses.Div(span).Round(2)
	s.AvgMonthlyNetCashFlow = s.TotalNetCashFlow.Div(span).Round(2)

	s.OverallExpenseRatio = ratioPercent(s.TotalExpenses, s.TotalIncome)
	s.OverallSavingsRate = ratioPercent(s.TotalNetCashFlow, s.TotalIncome)
	return s
}

// ComparisonRow pairs one month's base and enhanced figures.
type ComparisonRow struct {
	Month            string
	InterestAdded    decimal.Decimal
	BaseExpenses     decimal.Decimal
	EnhancedExpenses decimal.Decimal
	BaseNet          decimal.Decimal
	EnhancedNet      decimal.Decimal
}

// Compare lines up base and enhanced monthly metrics month by month.
// Both slices must come from the same calculator run.
func (e *Enhancer) Compare(base, enhanced []model.MonthlyMetrics) []ComparisonRow {
	byMonth := make(map[string]model.MonthlyMetrics, len(enhanced))
	for _, m := range enhanced {
		byMonth[m.Month] = m
	}

	out := make([]ComparisonRow, 0, len(base))
	for _, b := range base {
		en, ok := byMonth[b.Month]
		if !ok {
			en = b
		}
		out = append(out, ComparisonRow{
			Month:            b.Month,
			InterestAdded:    en.TrueExpenses.Sub(b.TrueExpenses),
			BaseExpenses:     b.TrueExpenses,
			EnhancedExpenses: en.TrueExpenses,
			BaseNet:          b.NetCashFlow,
			EnhancedNet:      en.NetCashFlow,
		})
	}
	return out
}

// Analyze summarizes the mortgage ledger on its own: payment counts,
// principal versus interest totals, and the principal-to-interest
// ratio of regular payments.
func (e *Enhancer) Analyze() model.MortgageAnalysis {
	a := model.MortgageAnalysis{TotalTransactions: len(e.ledger)}
	if len(e.ledger) == 0 {
		return a
	}

	first, last := e.ledger[0].Date, e.ledger[0].Date
	var totalPayments decimal.Decimal
	for _, mt := range e.ledger {
		if mt.Date.Before(first) {
			first = mt.Date
		}
		if mt.Date.After(last) {
			last = mt.Date
		}
		switch mt.Type {
		case model.MortgageMonthlyPayment:
			a.MonthlyPayments++
			totalPayments = totalPayments.Add(mt.TotalAmount.Abs())
			a.TotalPrincipalPaid = a.TotalPrincipalPaid.Add(mt.Principal)
			a.TotalInterestPaid = a.TotalInterestPaid.Add(mt.Interest)
		case model.MortgagePrincipalPayment:
			a.ExtraPrincipalPayments++
			extra := mt.Principal
			if extra.IsZero() {
				extra = mt.TotalAmount.Abs()
			}
			a.TotalExtraPrincipal = a.TotalExtraPrincipal.Add(extra)
			a.TotalPrincipalPaid = a.TotalPrincipalPaid.Add(extra)
		}
	}

	if a.MonthlyPayments > 0 {
		n := decimal.NewFromInt(int64(a.MonthlyPayments))
		a.AvgMonthlyPayment = totalPayments.Div(n).Round(2)
		a.AvgMonthlyInterest = a.TotalInterestPaid.Div(n).Round(2)
	}
	if a.TotalInterestPaid.IsPositive() {
		ratio, _ := a.TotalPrincipalPaid.Div(a.TotalInterestPaid).Float64()
		a.PrincipalToInterestRatio = ratio
	}
	a.From = first.Format("2006-01-02")
	a.To = last.Format("2006-01-02")
	return a
}
