// Package sample generates realistic Chase-format CSV data for
// demos and end-to-end testing of the analysis pipeline.
package sample

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// template describes one recurring transaction shape. Amounts are
// drawn uniformly between min and max; frequency is the rough cadence
// in days.
type template struct {
	description string
	minAmount   float64
	maxAmount   float64
	frequency   int
	txnType     string
}

var incomeTemplates = []template{
	{"DIRECT DEP PAYROLL COMPANY", 4500, 5500, 14, "ACH_CREDIT"},
	{"FREELANCE PAYMENT ZELLE FROM JOHN", 800, 1500, 30, "ACH_CREDIT"},
	{"DIVIDEND SCHWAB", 50, 200, 90, "ACH_CREDIT"},
	{"TAX REFUND IRS TREAS", 1200, 2500, 365, "ACH_CREDIT"},
}

var expenseTemplates = []template{
	{"RENT PAYMENT CHECK", -1800, -1800, 30, "CHECK_PAID"},
	{"ELECTRIC COMPANY UTIL", -150, -80, 30, "ACH_DEBIT"},
	{"INTERNET COMCAST", -89, -89, 30, "ACH_DEBIT"},
	{"WHOLE FOODS", -150, -50, 7, "DEBIT_CARD"},
	{"STARBUCKS", -12, -5, 3, "DEBIT_CARD"},
	{"CHIPOTLE", -18, -12, 10, "DEBIT_CARD"},
	{"UBER EATS DELIVERY", -45, -25, 7, "DEBIT_CARD"},
	{"SHELL GAS STATION", -65, -35, 10, "DEBIT_CARD"},
	{"UBER RIDE", -25, -12, 14, "DEBIT_CARD"},
	{"AMAZON MARKETPLACE", -200, -25, 8, "DEBIT_CARD"},
	{"TARGET STORE", -120, -40, 20, "DEBIT_CARD"},
	{"NETFLIX", -15.99, -15.99, 30, "DEBIT_CARD"},
	{"SPOTIFY", -9.99, -9.99, 30, "DEBIT_CARD"},
	{"CVS PHARMACY", -80, -15, 45, "DEBIT_CARD"},
	{"PLANET FITNESS GYM", -10, -10, 30, "ACH_DEBIT"},
}

var transferTemplates = []template{
	{"ONLINE TRANSFER TO SAV ...1234", -2000, -1000, 30, "ACH_DEBIT"},
	{"CHARLES SCHWAB INVESTMENT", -1500, -500, 30, "ACH_DEBIT"},
	{"TREASURYDIRECT PURCHASE", -1000, -1000, 90, "ACH_DEBIT"},
}

var excludedTemplates = []template{
	{"CHASE CARD AUTOPAY PAYMENT", -2500, -800, 30, "ACH_DEBIT"},
	{"AUTO LOAN PAYMENT", -425, -425, 30, "ACH_DEBIT"},
}

// Generator produces sample bank activity.
type Generator struct {
	start   time.Time
	months  int
	rng     *rand.Rand
	balance decimal.Decimal
}

// New creates a Generator covering the given number of months ending
// near now. The seed fixes the output for reproducible fixtures.
func New(months int, seed int64) *Generator {
	if months <= 0 {
		months = 6
	}
	return &Generator{
		start:   time.Now().AddDate(0, -months, 0).Truncate(24 * time.Hour),
		months:  months,
		rng:     rand.New(rand.NewSource(seed)),
		balance: decimal.NewFromInt(2500),
	}
}

type row struct {
	date   time.Time
	desc   string
	amount decimal.Decimal
	typ    string
}

// WriteCSV writes generated activity in the Chase checking export
// format and returns the row count.
func (g *Generator) WriteCSV(w io.Writer) (int, error) {
	rows := g.generate()

	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"Details", "Posting Date", "Description", "Amount", "Type", "Balance", "Check or Slip #"}
	if err := cw.Write(header); err != nil {
		return 0, fmt.Errorf("writing header: %w", err)
	}

	balance := g.balance
	for _, r := range rows {
		balance = balance.Add(r.amount)
		details := "DEBIT"
		if r.amount.IsPositive() {
			details = "CREDIT"
		}
		rec := []string{
			details,
			r.date.Format("01/02/2006"),
			r.desc,
			r.amount.StringFixed(2),
			r.typ,
			balance.StringFixed(2),
			"",
		}
		if err := cw.Write(rec); err != nil {
			return 0, fmt.Errorf("writing row: %w", err)
		}
	}
	return len(rows), cw.Error()
}

// WriteFile writes a generated CSV to path.
func (g *Generator) WriteFile(path string) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	return g.WriteCSV(f)
}

func (g *Generator) generate() []row {
	var rows []row
	for _, set := range [][]template{incomeTemplates, expenseTemplates, transferTemplates, excludedTemplates} {
		for _, t := range set {
			rows = append(rows, g.fromTemplate(t)...)
		}
	}
	sort.SliceStable(rows, func(a, b int) bool { return rows[a].date.Before(rows[b].date) })
	return rows
}

func (g *Generator) fromTemplate(t template) []row {
	days := g.months * 30
	count := days / t.frequency
	if count < 1 {
		count = 1
	}

	out := make([]row, 0, count)
	for i := 0; i < count; i++ {
		// Jitter each occurrence around its cadence slot.
		day := i*t.frequency + g.rng.Intn(t.frequency)
		if day >= days {
			day = days - 1
		}
		amount := t.minAmount
		if t.maxAmount > t.minAmount {
			amount = t.minAmount + g.rng.Float64()*(t.maxAmount-t.minAmount)
		}
		out = append(out, row{
			date:   g.start.AddDate(0, 0, day),
			desc:   t.description,
			amount: decimal.NewFromFloat(amount).Round(2),
			typ:    t.txnType,
		})
	}
	return out
}
