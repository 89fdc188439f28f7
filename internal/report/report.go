// Package report renders the console analysis summary.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/NashC/cashflow-analysis/internal/cashflow"
	"github.com/NashC/cashflow-analysis/internal/model"
)

const rule = "============================================================"

// Summary describes everything the console report needs from one
// analysis run.
type Summary struct {
	SourceFile string
	Monthly    []model.MonthlyMetrics
	Totals     model.SummaryMetrics

	Validation    model.ValidationResult
	Calculation   model.CalculationCheck
	LowConfidence int
}

// Write renders the base analysis report.
func Write(w io.Writer, s Summary) error {
	var b strings.Builder

	b.WriteString("\n" + rule + "\n")
	b.WriteString("CASH FLOW ANALYSIS SUMMARY\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "File: %s\n", s.SourceFile)
	fmt.Fprintf(&b, "Transactions: %d\n", s.Totals.TransactionCount)
	fmt.Fprintf(&b, "Period: %s\n\n", s.Totals.Period)

	b.WriteString("KEY METRICS:\n")
	fmt.Fprintf(&b, "  Average Monthly Income:    $%12s\n", money(s.Totals.AvgMonthlyIncome))
	fmt.Fprintf(&b, "  Average Monthly Expenses:  $%12s\n", money(s.Totals.AvgMonthlyExpenses))
	fmt.Fprintf(&b, "  Average Monthly Net Flow:  $%12s\n", money(s.Totals.AvgMonthlyNetCashFlow))
	fmt.Fprintf(&b, "  Savings Rate:              %12.1f%%\n", s.Totals.OverallSavingsRate)
	fmt.Fprintf(&b, "  Expense Ratio:             %12.1f%%\n\n", s.Totals.OverallExpenseRatio)

	writeMonthly(&b, s.Monthly)

	b.WriteString("VALIDATION:\n")
	fmt.Fprintf(&b, "  Data Valid:        %s\n", check(s.Validation.Valid))
	fmt.Fprintf(&b, "  Calculation Valid: %s\n", check(s.Calculation.Valid))
	fmt.Fprintf(&b, "  Warnings:          %d\n", len(s.Validation.Warnings)+len(s.Calculation.Warnings))
	fmt.Fprintf(&b, "  Low Confidence:    %d\n", s.LowConfidence)
	if s.LowConfidence > 0 {
		fmt.Fprintf(&b, "\nNOTE: %d transactions have low confidence categorization.\n", s.LowConfidence)
		b.WriteString("Consider reviewing these transactions for improved accuracy.\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Enhanced extends Summary with the mortgage-interest view.
type Enhanced struct {
	Summary
	EnhancedMonthly []model.MonthlyMetrics
	EnhancedTotals  model.SummaryMetrics
	Comparison      []cashflow.ComparisonRow
	Mortgage        model.MortgageAnalysis
}

// WriteEnhanced renders the mortgage-enhanced report after the base
// report.
func WriteEnhanced(w io.Writer, e Enhanced) error {
	if err := Write(w, e.Summary); err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString("\n" + rule + "\n")
	b.WriteString("ENHANCED ANALYSIS (WITH MORTGAGE INTEREST)\n")
	b.WriteString(rule + "\n")

	fmt.Fprintf(&b, "  Enhanced Monthly Expenses: $%12s\n", money(e.EnhancedTotals.AvgMonthlyExpenses))
	fmt.Fprintf(&b, "  Enhanced Monthly Net Flow: $%12s\n", money(e.EnhancedTotals.AvgMonthlyNetCashFlow))
	fmt.Fprintf(&b, "  Enhanced Savings Rate:     %12.1f%%\n", e.EnhancedTotals.OverallSavingsRate)
	fmt.Fprintf(&b, "  Enhanced Expense Ratio:    %12.1f%%\n", e.EnhancedTotals.OverallExpenseRatio)

	if increase := e.EnhancedTotals.AvgMonthlyExpenses.Sub(e.Totals.AvgMonthlyExpenses); increase.IsPositive() {
		fmt.Fprintf(&b, "\nIMPACT OF INCLUDING MORTGAGE INTEREST:\n")
		fmt.Fprintf(&b, "  Base Monthly Expenses:     $%12s\n", money(e.Totals.AvgMonthlyExpenses))
		fmt.Fprintf(&b, "  Expense Increase:          $%12s\n", money(increase))
		fmt.Fprintf(&b, "  Savings Rate Change:       %12.1f percentage points\n",
			e.EnhancedTotals.OverallSavingsRate-e.Totals.OverallSavingsRate)
	}

	b.WriteString("\nMORTGAGE ANALYSIS:\n")
	fmt.Fprintf(&b, "  Total Interest Paid:       $%12s\n", money(e.Mortgage.TotalInterestPaid))
	fmt.Fprintf(&b, "  Total Principal Paid:      $%12s\n", money(e.Mortgage.TotalPrincipalPaid))
	fmt.Fprintf(&b, "  Extra Principal Payments:  $%12s\n", money(e.Mortgage.TotalExtraPrincipal))
	fmt.Fprintf(&b, "  Average Monthly Payment:   $%12s\n", money(e.Mortgage.AvgMonthlyPayment))
	fmt.Fprintf(&b, "  Average Monthly Interest:  $%12s\n", money(e.Mortgage.AvgMonthlyInterest))
	fmt.Fprintf(&b, "  Principal/Interest Ratio:  %12.2f:1\n", e.Mortgage.PrincipalToInterestRatio)

	if len(e.Comparison) > 0 {
		rows := e.Comparison
		if len(rows) > 6 {
			rows = rows[len(rows)-6:]
		}
		b.WriteString("\nRECENT MONTHS (BASE vs ENHANCED):\n")
		for _, row := range rows {
			fmt.Fprintf(&b, "  %s: Expenses $%10s -> $%10s | Net $%10s -> $%10s\n",
				row.Month, money(row.BaseExpenses), money(row.EnhancedExpenses),
				money(row.BaseNet), money(row.EnhancedNet))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// writeMonthly prints the most recent months, newest last.
func writeMonthly(b *strings.Builder, monthly []model.MonthlyMetrics) {
	if len(monthly) == 0 {
		return
	}
	rows := make([]model.MonthlyMetrics, len(monthly))
	copy(rows, monthly)
	sort.Slice(rows, func(i, j int) bool { return rows[i].Month < rows[j].Month })
	if len(rows) > 6 {
		rows = rows[len(rows)-6:]
	}

	b.WriteString("MONTHLY BREAKDOWN:\n")
	for _, m := range rows {
		fmt.Fprintf(b, "  %s: Income $%10s | Expenses $%10s | Net $%10s\n",
			m.Month, money(m.GrossIncome), money(m.TrueExpenses), money(m.NetCashFlow))
	}
	b.WriteString("\n")
}

func check(ok bool) string {
	if ok {
		return "PASS"
	}
	return "FAIL"
}

// money renders a decimal with thousands separators and two decimal
// places.
func money(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")
	for i := len(whole) - 3; i > 0; i -= 3 {
		whole = whole[:i] + "," + whole[i:]
	}
	out := whole + "." + frac
	if neg {
		out = "-" + out
	}
	return out
}
