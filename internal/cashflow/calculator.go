package cashflow

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/NashC/cashflow-analysis/internal/model"
)

// Reconciliation discrepancies above this are reported (as warnings).
var largeDiscrepancy = decimal.NewFromInt(100)

// Calculator is the single source of truth for the cash-flow formula:
//
//	net_cash_flow = total_income - total_true_expenses
//
// Internal transfers and excluded payments are never part of either
// term; they are tracked as informational totals only.
type Calculator struct {
	log  zerolog.Logger
	txns []model.Transaction
}

// NewCalculator creates a Calculator over a fully classified and
// categorized transaction set.
func NewCalculator(log zerolog.Logger, txns []model.Transaction) *Calculator {
	return &Calculator{log: log, txns: txns}
}

// MonthlyMetrics computes one metrics row per calendar month present
// in the data, in ascending month order.
func (c *Calculator) MonthlyMetrics() []model.MonthlyMetrics {
	byMonth := make(map[string][]model.Transaction)
	for _, t := range c.txns {
		byMonth[t.Month] = append(byMonth[t.Month], t)
	}

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	out := make([]model.MonthlyMetrics, 0, len(months))
	for _, m := range months {
		out = append(out, c.monthMetrics(m, byMonth[m]))
	}
	c.log.Info().Int("months", len(out)).Msg("calculated monthly metrics")
	return out
}

func (c *Calculator) monthMetrics(month string, txns []model.Transaction) model.MonthlyMetrics {
	m := model.MonthlyMetrics{
		Month:             month,
		TransactionCount:  len(txns),
		IncomeByCategory:  make(map[string]decimal.Decimal),
		ExpenseByCategory: make(map[string]decimal.Decimal),
	}

	for _, t := range txns {
		switch t.FlowType {
		case model.FlowIncome:
			m.GrossIncome = m.GrossIncome.Add(t.Amount)
			m.IncomeByCategory[t.Category] = m.IncomeByCategory[t.Category].Add(t.AbsAmount())
			if t.Amount.GreaterThan(m.LargestIncome) {
				m.LargestIncome = t.Amount
			}
		case model.FlowExpense:
			m.TrueExpenses = m.TrueExpenses.Add(t.AbsAmount())
			m.ExpenseByCategory[t.Category] = m.ExpenseByCategory[t.Category].Add(t.AbsAmount())
			if t.AbsAmount().GreaterThan(m.LargestExpense) {
				m.LargestExpense = t.AbsAmount()
			}
		case model.FlowTransfer:
			if t.Amount.IsNegative() {
				m.InternalTransfersOut = m.InternalTransfersOut.Add(t.AbsAmount())
			} else {
				m.InternalTransfersIn = m.InternalTransfersIn.Add(t.Amount)
			}
		case model.FlowExcluded:
			m.ExcludedPayments = m.ExcludedPayments.Add(t.AbsAmount())
		}
	}

	// The formula everything else hangs off.
	m.NetCashFlow = m.GrossIncome.Sub(m.TrueExpenses)

	m.SavingsRate = ratioPercent(m.InternalTransfersOut, m.GrossIncome)
	m.ExpenseRatio = ratioPercent(m.TrueExpenses, m.GrossIncome)

	days := daysInMonth(month)
	if days > 0 {
		m.DailyBurnRate = m.TrueExpenses.Div(decimal.NewFromInt(int64(days))).Round(2)
	}

	c.reconcile(&m, txns)
	return m
}

// reconcile compares the transaction-derived change against the
// export's balance column when it carries anything useful. The
// transaction-derived figure is authoritative either way.
func (c *Calculator) reconcile(m *model.MonthlyMetrics, txns []model.Transaction) {
	for _, t := range txns {
		m.CalculatedChange = m.CalculatedChange.Add(t.Amount)
	}

	hasBalance := false
	for _, t := range txns {
		if !t.Balance.IsZero() {
			hasBalance = true
			break
		}
	}
	if !hasBalance {
		m.ActualChange = m.CalculatedChange
		return
	}

	earliest, latest := txns[0], txns[0]
	for _, t := range txns[1:] {
		if t.Date.Before(earliest.Date) {
			earliest = t
		}
		if t.Date.After(latest.Date) {
			latest = t
		}
	}
	m.StartingBalance = earliest.Balance.Sub(earliest.Amount)
	m.EndingBalance = latest.Balance
	m.ActualChange = m.EndingBalance.Sub(m.StartingBalance)
	m.ReconciliationDiff = m.CalculatedChange.Sub(m.ActualChange).Abs()
}

// SummaryMetrics aggregates the whole dataset. Monthly averages divide
// by the inclusive count of calendar months between the earliest and
// latest transaction.
func (c *Calculator) SummaryMetrics() model.SummaryMetrics {
	var s model.SummaryMetrics
	s.TransactionCount = len(c.txns)
	if len(c.txns) == 0 {
		s.MonthsSpan = 1
		return s
	}

	first, last := c.txns[0].Date, c.txns[0].Date
	for _, t := range c.txns {
		if t.Date.Before(first) {
			first = t.Date
		}
		if t.Date.After(last) {
			last = t.Date
		}
		switch t.FlowType {
		case model.FlowIncome:
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
		case model.FlowExpense:
			s.TotalExpenses = s.TotalExpenses.Add(t.AbsAmount())
		case model.FlowTransfer:
			if t.Amount.IsNegative() {
				s.TotalTransfersOut = s.TotalTransfersOut.Add(t.AbsAmount())
			}
		case model.FlowExcluded:
			s.TotalExcluded = s.TotalExcluded.Add(t.AbsAmount())
		}
	}

	s.Period = fmt.Sprintf("%s to %s", first.Format("2006-01-02"), last.Format("2006-01-02"))
	s.TotalNetCashFlow = s.TotalIncome.Sub(s.TotalExpenses)
	s.MonthsSpan = monthsSpan(first, last)

	span := decimal.NewFromInt(int64(s.MonthsSpan))
	s.AvgMonthlyIncome = s.TotalIncome.Div(span).Round(2)
	s.AvgMonthlyExpenses = s.TotalExpenses.Div(span).Round(2)
	s.AvgMonthlyNetCashFlow = s.TotalNetCashFlow.Div(span).Round(2)
	s.AvgMonthlySavings = s.TotalTransfersOut.Div(span).Round(2)

	s.OverallSavingsRate = ratioPercent(s.TotalTransfersOut, s.TotalIncome)
	s.OverallExpenseRatio = ratioPercent(s.TotalExpenses, s.TotalIncome)
	return s
}

// CategoryAnalysis groups INCOME and EXPENSE transactions by
// "FLOWTYPE:Category", with each bucket's share of its flow type's
// grand total.
func (c *Calculator) CategoryAnalysis() map[string]model.CategoryStats {
	stats := make(map[string]model.CategoryStats)
	var totalIncome, totalExpenses decimal.Decimal

	for _, t := range c.txns {
		if t.FlowType != model.FlowIncome && t.FlowType != model.FlowExpense {
			continue
		}
		key := string(t.FlowType) + ":" + t.Category
		cs := stats[key]
		cs.Total = cs.Total.Add(t.AbsAmount())
		cs.Count++
		stats[key] = cs

		if t.FlowType == model.FlowIncome {
			totalIncome = totalIncome.Add(t.Amount)
		} else {
			totalExpenses = totalExpenses.Add(t.AbsAmount())
		}
	}

	for key, cs := range stats {
		cs.Average = cs.Total.Div(decimal.NewFromInt(int64(cs.Count))).Round(2)
		switch model.FlowType(keyFlowType(key)) {
		case model.FlowIncome:
			cs.Percentage = ratioPercent(cs.Total, totalIncome)
		case model.FlowExpense:
			cs.Percentage = ratioPercent(cs.Total, totalExpenses)
		}
		stats[key] = cs
	}
	return stats
}

// Validate sanity-checks a calculator run. Missing income or expenses
// is suspicious but not fatal. Reconciliation mismatches stay warnings
// because the export's balance data is known to be unreliable; only
// when every month shows a large discrepancy is a systemic warning
// added.
func (c *Calculator) Validate() model.CalculationCheck {
	check := model.CalculationCheck{
		FlowTypeCounts: make(map[model.FlowType]int),
	}

	for _, t := range c.txns {
		check.FlowTypeCounts[t.FlowType]++
	}
	if check.FlowTypeCounts[model.FlowIncome] == 0 {
		check.Warnings = append(check.Warnings, "no INCOME transactions found")
	}
	if check.FlowTypeCounts[model.FlowExpense] == 0 {
		check.Warnings = append(check.Warnings, "no EXPENSE transactions found")
	}

	monthly := c.MonthlyMetrics()
	for _, m := range monthly {
		if m.ReconciliationDiff.GreaterThan(largeDiscrepancy) {
			check.Warnings = append(check.Warnings, fmt.Sprintf(
				"large balance discrepancy in %s: $%s (source balance data may be unreliable)",
				m.Month, m.ReconciliationDiff.StringFixed(2)))
			check.LargeDiscrepancies++
		}
	}
	if check.LargeDiscrepancies > 0 && check.LargeDiscrepancies == len(monthly) {
		check.Warnings = append(check.Warnings,
			"every month shows a balance discrepancy; the export's balance column is unreliable, transaction-derived figures remain accurate")
	}

	check.Valid = len(check.Errors) == 0
	return check
}

// ratioPercent returns numerator/denominator as a percentage, or 0
// when the denominator is not positive. Zero income must never produce
// a division error.
func ratioPercent(numerator, denominator decimal.Decimal) float64 {
	if !denominator.IsPositive() {
		return 0
	}
	f, _ := numerator.Div(denominator).Mul(decimal.NewFromInt(100)).Float64()
	return f
}

// daysInMonth returns the calendar-correct day count for a "YYYY-MM"
// key, leap years included.
func daysInMonth(month string) int {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return 0
	}
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// monthsSpan counts calendar months between two dates, inclusive of
// partial months at both ends. Never less than 1.
func monthsSpan(first, last time.Time) int {
	months := (last.Year()-first.Year())*12 + int(last.Month()) - int(first.Month()) + 1
	if months < 1 {
		return 1
	}
	return months
}

func keyFlowType(key string) string {
	for i := 0; i < len(key); i++ {
		if key[i] == ':' {
			return key[:i]
		}
	}
	return key
}
