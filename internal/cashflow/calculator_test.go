package cashflow

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NashC/cashflow-analysis/internal/model"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func flowTxn(y, m, d int, desc, amount string, ft model.FlowType, category string) model.Transaction {
	t := model.NewTransaction(date(y, m, d), desc, dec(amount), decimal.Zero, "ACH_DEBIT")
	t.FlowType = ft
	t.Category = category
	return t
}

func januaryBatch() []model.Transaction {
	return []model.Transaction{
		flowTxn(2025, 1, 2, "PAYROLL", "5000.00", model.FlowIncome, "Salary"),
		flowTxn(2025, 1, 5, "RENT", "-1500.00", model.FlowExpense, "Housing"),
		flowTxn(2025, 1, 10, "GROCERIES", "-500.00", model.FlowExpense, "Groceries"),
		flowTxn(2025, 1, 15, "TO SAVINGS", "-1000.00", model.FlowTransfer, "To_Savings"),
		flowTxn(2025, 1, 20, "CARD PAYMENT", "-500.00", model.FlowExcluded, "Credit_Card_Payment"),
	}
}

func TestMonthlyMetrics_CoreFormula(t *testing.T) {
	calc := NewCalculator(zerolog.Nop(), januaryBatch())
	monthly := calc.MonthlyMetrics()
	require.Len(t, monthly, 1)

	m := monthly[0]
	assert.Equal(t, "2025-01", m.Month)
	assert.True(t, m.GrossIncome.Equal(dec("5000")), "income: %s", m.GrossIncome)
	assert.True(t, m.TrueExpenses.Equal(dec("2000")), "expenses: %s", m.TrueExpenses)
	assert.True(t, m.NetCashFlow.Equal(dec("3000")), "net: %s", m.NetCashFlow)
	assert.True(t, m.InternalTransfersOut.Equal(dec("1000")))
	assert.True(t, m.ExcludedPayments.Equal(dec("500")))

	assert.InDelta(t, 20.0, m.SavingsRate, 1e-9)
	assert.InDelta(t, 40.0, m.ExpenseRatio, 1e-9)

	assert.True(t, m.LargestExpense.Equal(dec("1500")))
	assert.True(t, m.LargestIncome.Equal(dec("5000")))
	assert.Equal(t, 5, m.TransactionCount)

	// January has 31 days.
	assert.True(t, m.DailyBurnRate.Equal(dec("64.52")), "burn: %s", m.DailyBurnRate)

	assert.True(t, m.ExpenseByCategory["Housing"].Equal(dec("1500")))
	assert.True(t, m.IncomeByCategory["Salary"].Equal(dec("5000")))
}

func TestMonthlyMetrics_TransfersNeverTouchNet(t *testing.T) {
	base := NewCalculator(zerolog.Nop(), januaryBatch()).MonthlyMetrics()[0]

	extra := append(januaryBatch(),
		flowTxn(2025, 1, 22, "TO BROKERAGE", "-2500.00", model.FlowTransfer, "To_Investment"),
		flowTxn(2025, 1, 23, "LOAN PAYMENT", "-900.00", model.FlowExcluded, "Loan_Payment"),
	)
	got := NewCalculator(zerolog.Nop(), extra).MonthlyMetrics()[0]

	assert.True(t, got.NetCashFlow.Equal(base.NetCashFlow))
	assert.True(t, got.GrossIncome.Equal(base.GrossIncome))
	assert.True(t, got.TrueExpenses.Equal(base.TrueExpenses))
	assert.True(t, got.InternalTransfersOut.Equal(dec("3500")))
	assert.True(t, got.ExcludedPayments.Equal(dec("1400")))
}

func TestMonthlyMetrics_MonthsAscending(t *testing.T) {
	txns := []model.Transaction{
		flowTxn(2025, 2, 3, "PAYROLL", "5200.00", model.FlowIncome, "Salary"),
		flowTxn(2025, 2, 9, "RENT", "-2500.00", model.FlowExpense, "Housing"),
		flowTxn(2025, 1, 2, "PAYROLL", "5000.00", model.FlowIncome, "Salary"),
		flowTxn(2025, 1, 9, "RENT", "-2500.00", model.FlowExpense, "Housing"),
	}

	monthly := NewCalculator(zerolog.Nop(), txns).MonthlyMetrics()
	require.Len(t, monthly, 2)
	assert.Equal(t, "2025-01", monthly[0].Month)
	assert.Equal(t, "2025-02", monthly[1].Month)
	assert.True(t, monthly[0].NetCashFlow.Equal(dec("2500")))
	assert.True(t, monthly[1].NetCashFlow.Equal(dec("2700")))
}

func TestMonthlyMetrics_ZeroIncomeGuards(t *testing.T) {
	txns := []model.Transaction{
		flowTxn(2025, 3, 5, "RENT", "-2000.00", model.FlowExpense, "Housing"),
		flowTxn(2025, 3, 8, "TO SAVINGS", "-300.00", model.FlowTransfer, "To_Savings"),
	}

	m := NewCalculator(zerolog.Nop(), txns).MonthlyMetrics()[0]
	assert.InDelta(t, 0.0, m.SavingsRate, 1e-9)
	assert.InDelta(t, 0.0, m.ExpenseRatio, 1e-9)
	assert.True(t, m.NetCashFlow.Equal(dec("-2000")))
}

func TestMonthlyMetrics_LeapFebruaryBurnRate(t *testing.T) {
	txns := []model.Transaction{
		flowTxn(2024, 2, 10, "RENT", "-2900.00", model.FlowExpense, "Housing"),
	}

	m := NewCalculator(zerolog.Nop(), txns).MonthlyMetrics()[0]
	// 2900 / 29 days.
	assert.True(t, m.DailyBurnRate.Equal(dec("100.00")), "burn: %s", m.DailyBurnRate)
}

func TestSummaryMetrics(t *testing.T) {
	txns := []model.Transaction{
		flowTxn(2025, 1, 15, "PAYROLL", "5000.00", model.FlowIncome, "Salary"),
		flowTxn(2025, 2, 15, "PAYROLL", "5000.00", model.FlowIncome, "Salary"),
		flowTxn(2025, 3, 2, "RENT", "-2000.00", model.FlowExpense, "Housing"),
		flowTxn(2025, 3, 2, "TO SAVINGS", "-1500.00", model.FlowTransfer, "To_Savings"),
	}

	s := NewCalculator(zerolog.Nop(), txns).SummaryMetrics()
	assert.Equal(t, "2025-01-15 to 2025-03-02", s.Period)
	assert.Equal(t, 3, s.MonthsSpan)
	assert.Equal(t, 4, s.TransactionCount)

	assert.True(t, s.TotalIncome.Equal(dec("10000")))
	assert.True(t, s.TotalExpenses.Equal(dec("2000")))
	assert.True(t, s.TotalNetCashFlow.Equal(dec("8000")))
	assert.True(t, s.TotalTransfersOut.Equal(dec("1500")))

	assert.True(t, s.AvgMonthlyIncome.Equal(dec("3333.33")), "avg income: %s", s.AvgMonthlyIncome)
	assert.True(t, s.AvgMonthlyNetCashFlow.Equal(dec("2666.67")))

	assert.InDelta(t, 15.0, s.OverallSavingsRate, 1e-9)
	assert.InDelta(t, 20.0, s.OverallExpenseRatio, 1e-9)
}

func TestSummaryMetrics_SingleDaySpanIsOneMonth(t *testing.T) {
	txns := []model.Transaction{
		flowTxn(2025, 4, 10, "PAYROLL", "1000.00", model.FlowIncome, "Salary"),
	}

	s := NewCalculator(zerolog.Nop(), txns).SummaryMetrics()
	assert.Equal(t, 1, s.MonthsSpan)
	assert.True(t, s.AvgMonthlyIncome.Equal(dec("1000.00")))
}

func TestSummaryMetrics_Empty(t *testing.T) {
	s := NewCalculator(zerolog.Nop(), nil).SummaryMetrics()
	assert.Equal(t, 0, s.TransactionCount)
	assert.Equal(t, 1, s.MonthsSpan)
	assert.True(t, s.TotalIncome.IsZero())
}

func TestCategoryAnalysis(t *testing.T) {
	txns := []model.Transaction{
		flowTxn(2025, 1, 2, "PAYROLL", "4000.00", model.FlowIncome, "Salary"),
		flowTxn(2025, 1, 5, "RENT", "-1500.00", model.FlowExpense, "Housing"),
		flowTxn(2025, 1, 8, "GROCERIES A", "-300.00", model.FlowExpense, "Groceries"),
		flowTxn(2025, 1, 9, "GROCERIES B", "-200.00", model.FlowExpense, "Groceries"),
		flowTxn(2025, 1, 15, "TO SAVINGS", "-1000.00", model.FlowTransfer, "To_Savings"),
	}

	stats := NewCalculator(zerolog.Nop(), txns).CategoryAnalysis()

	groceries, ok := stats["EXPENSE:Groceries"]
	require.True(t, ok)
	assert.True(t, groceries.Total.Equal(dec("500")))
	assert.Equal(t, 2, groceries.Count)
	assert.True(t, groceries.Average.Equal(dec("250.00")))
	assert.InDelta(t, 25.0, groceries.Percentage, 1e-9)

	salary, ok := stats["INCOME:Salary"]
	require.True(t, ok)
	assert.InDelta(t, 100.0, salary.Percentage, 1e-9)

	// Transfers never show up in the category analysis.
	_, ok = stats["INTERNAL_TRANSFER:To_Savings"]
	assert.False(t, ok)
}

func TestValidate_WarnsOnMissingFlows(t *testing.T) {
	txns := []model.Transaction{
		flowTxn(2025, 1, 5, "RENT", "-1500.00", model.FlowExpense, "Housing"),
	}

	check := NewCalculator(zerolog.Nop(), txns).Validate()
	assert.True(t, check.Valid)
	require.NotEmpty(t, check.Warnings)
	assert.Contains(t, check.Warnings[0], "no INCOME")
	assert.Equal(t, 1, check.FlowTypeCounts[model.FlowExpense])
}

func TestReconcile_UsesBalanceColumnWhenPresent(t *testing.T) {
	first := flowTxn(2025, 1, 2, "PAYROLL", "5000.00", model.FlowIncome, "Salary")
	first.Balance = dec("7500.00") // implies 2500 starting balance
	second := flowTxn(2025, 1, 20, "RENT", "-1500.00", model.FlowExpense, "Housing")
	second.Balance = dec("6000.00")

	m := NewCalculator(zerolog.Nop(), []model.Transaction{first, second}).MonthlyMetrics()[0]
	assert.True(t, m.StartingBalance.Equal(dec("2500")))
	assert.True(t, m.EndingBalance.Equal(dec("6000")))
	assert.True(t, m.CalculatedChange.Equal(dec("3500")))
	assert.True(t, m.ActualChange.Equal(dec("3500")))
	assert.True(t, m.ReconciliationDiff.IsZero())
}
