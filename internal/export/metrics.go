package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/NashC/cashflow-analysis/internal/model"
)

// MetricsHeader is the CSV header for monthly_metrics.csv.
const MetricsHeader = "month,gross_income,true_expenses,net_cash_flow,internal_transfers_out,internal_transfers_in,excluded_payments,savings_rate,expense_ratio,transaction_count,largest_expense,largest_income,daily_burn_rate,reconciliation_diff"

const (
	metricsNumFields = 14
	colMetMonth      = 0
	colMetIncome     = 1
	colMetExpenses   = 2
	colMetNet        = 3
	colMetXferOut    = 4
	colMetXferIn     = 5
	colMetExcluded   = 6
	colMetSavRate    = 7
	colMetExpRatio   = 8
	colMetCount      = 9
	colMetLargestExp = 10
	colMetLargestInc = 11
	colMetBurn       = 12
	colMetReconDiff  = 13
)

// WriteMonthlyMetrics writes monthly metrics rows (including header).
func WriteMonthlyMetrics(w io.Writer, monthly []model.MonthlyMetrics) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(MetricsHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, m := range monthly {
		if err := cw.Write(MarshalMonthlyMetrics(m)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalMonthlyMetrics converts one month's metrics to a CSV row.
func MarshalMonthlyMetrics(m model.MonthlyMetrics) []string {
	row := make([]string, metricsNumFields)
	row[colMetMonth] = m.Month
	row[colMetIncome] = m.GrossIncome.StringFixed(2)
	row[colMetExpenses] = m.TrueExpenses.StringFixed(2)
	row[colMetNet] = m.NetCashFlow.StringFixed(2)
	row[colMetXferOut] = m.InternalTransfersOut.StringFixed(2)
	row[colMetXferIn] = m.InternalTransfersIn.StringFixed(2)
	row[colMetExcluded] = m.ExcludedPayments.StringFixed(2)
	row[colMetSavRate] = strconv.FormatFloat(m.SavingsRate, 'f', 1, 64)
	row[colMetExpRatio] = strconv.FormatFloat(m.ExpenseRatio, 'f', 1, 64)
	row[colMetCount] = strconv.Itoa(m.TransactionCount)
	row[colMetLargestExp] = m.LargestExpense.StringFixed(2)
	row[colMetLargestInc] = m.LargestIncome.StringFixed(2)
	row[colMetBurn] = m.DailyBurnRate.StringFixed(2)
	row[colMetReconDiff] = m.ReconciliationDiff.StringFixed(2)
	return row
}

// CategoryHeader is the CSV header for category_analysis.csv.
const CategoryHeader = "flow_type,category,total,count,average,percentage"

// WriteCategoryAnalysis writes category stats sorted by key for stable
// output.
func WriteCategoryAnalysis(w io.Writer, stats map[string]model.CategoryStats) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(CategoryHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		cs := stats[k]
		flow, category, _ := strings.Cut(k, ":")
		row := []string{
			flow,
			category,
			cs.Total.StringFixed(2),
			strconv.Itoa(cs.Count),
			cs.Average.StringFixed(2),
			strconv.FormatFloat(cs.Percentage, 'f', 1, 64),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing category %s: %w", k, err)
		}
	}
	return cw.Error()
}
