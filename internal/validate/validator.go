// Package validate runs data-quality checks over parsed transactions
// before analysis. Only an empty dataset is fatal; everything else,
// including balance discrepancies, is a warning because bank export
// balance columns are routinely wrong while the transaction rows
// themselves are fine.
package validate

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/NashC/cashflow-analysis/internal/model"
)

const (
	// Calendar days between consecutive transactions before the gap is
	// flagged. Five covers a quiet week with a weekend.
	maxDateGapDays = 5

	// How many individual gap/duplicate/discrepancy findings are spelled
	// out before collapsing into a count.
	maxReported = 3
)

var balanceTolerance = decimal.NewFromFloat(0.01)

// Validator checks a transaction batch for integrity problems.
type Validator struct {
	log zerolog.Logger
}

// New creates a Validator.
func New(log zerolog.Logger) *Validator {
	return &Validator{log: log}
}

// Validate runs all checks and returns the combined result.
func (v *Validator) Validate(txns []model.Transaction) model.ValidationResult {
	res := model.ValidationResult{TotalRows: len(txns)}

	if len(txns) == 0 {
		res.Errors = append(res.Errors, "no transactions to validate")
		return res
	}

	sorted := make([]model.Transaction, len(txns))
	copy(sorted, txns)
	sort.SliceStable(sorted, func(a, b int) bool { return sorted[a].Date.Before(sorted[b].Date) })

	v.checkDateContinuity(sorted, &res)
	v.checkDuplicates(txns, &res)
	v.checkBalances(sorted, &res)
	v.checkQuality(txns, &res)

	res.ValidRows = res.TotalRows - len(res.DuplicateRows)
	res.Valid = len(res.Errors) == 0

	v.log.Info().
		Bool("valid", res.Valid).
		Int("total", res.TotalRows).
		Int("warnings", len(res.Warnings)).
		Msg("validation complete")
	return res
}

func (v *Validator) checkDateContinuity(sorted []model.Transaction, res *model.ValidationResult) {
	for i := 1; i < len(sorted); i++ {
		days := int(sorted[i].Date.Sub(sorted[i-1].Date).Hours() / 24)
		if days <= maxDateGapDays {
			continue
		}
		res.DateGaps++
		if res.DateGaps <= maxReported {
			res.Warnings = append(res.Warnings, fmt.Sprintf(
				"date gap: %s to %s (%d days)",
				sorted[i-1].Date.Format("2006-01-02"), sorted[i].Date.Format("2006-01-02"), days))
		}
	}
	if res.DateGaps > maxReported {
		res.Warnings = append(res.Warnings, fmt.Sprintf("... and %d more date gaps", res.DateGaps-maxReported))
	}
}

// checkDuplicates flags rows sharing date, amount and description
// prefix. Recurring same-day charges can trip this, hence warning not
// error.
func (v *Validator) checkDuplicates(txns []model.Transaction, res *model.ValidationResult) {
	seen := make(map[string]int, len(txns))
	for i, t := range txns {
		desc := t.Description
		if len(desc) > 20 {
			desc = desc[:20]
		}
		key := fmt.Sprintf("%s|%s|%s", t.Date.Format("2006-01-02"), t.Amount.String(), desc)
		if _, ok := seen[key]; ok {
			res.DuplicateRows = append(res.DuplicateRows, i)
			if len(res.DuplicateRows) <= maxReported {
				res.Warnings = append(res.Warnings, fmt.Sprintf(
					"possible duplicate at row %d: %s $%s %s",
					i, t.Date.Format("2006-01-02"), t.Amount.StringFixed(2), desc))
			}
			continue
		}
		seen[key] = i
	}
	if len(res.DuplicateRows) > maxReported {
		res.Warnings = append(res.Warnings, fmt.Sprintf("... and %d more possible duplicates", len(res.DuplicateRows)-maxReported))
	}
}

// checkBalances replays the running balance against the export's
// balance column. On a mismatch the running figure resets to the
// reported one so a single bad row does not cascade.
func (v *Validator) checkBalances(sorted []model.Transaction, res *model.ValidationResult) {
	start := -1
	var running decimal.Decimal
	for i, t := range sorted {
		if !t.Balance.IsZero() {
			running = t.Balance.Sub(t.Amount)
			start = i
			break
		}
	}
	if start < 0 {
		res.Warnings = append(res.Warnings, "no balance data available for reconciliation")
		return
	}

	var reported int
	for i := start; i < len(sorted); i++ {
		t := sorted[i]
		running = running.Add(t.Amount)
		if t.Balance.IsZero() {
			continue
		}
		diff := running.Sub(t.Balance).Abs()
		if diff.GreaterThan(balanceTolerance) {
			res.BalanceDiscrepancies++
			if reported < maxReported {
				res.Warnings = append(res.Warnings, fmt.Sprintf(
					"balance discrepancy at row %d: expected $%s, got $%s",
					i, running.StringFixed(2), t.Balance.StringFixed(2)))
				reported++
			}
			running = t.Balance
		}
	}
	if res.BalanceDiscrepancies > 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"%d balance discrepancies found; common in bank exports and harmless to transaction-based analysis",
			res.BalanceDiscrepancies))
	}
}

func (v *Validator) checkQuality(txns []model.Transaction, res *model.ValidationResult) {
	var emptyDesc, zeroAmount int
	for _, t := range txns {
		if t.Description == "" {
			emptyDesc++
		}
		if t.Amount.IsZero() {
			zeroAmount++
		}
	}
	if emptyDesc > 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%d transactions have empty descriptions", emptyDesc))
	}
	if zeroAmount > 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%d transactions have zero amount", zeroAmount))
	}
}
