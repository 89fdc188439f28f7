package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/NashC/cashflow-analysis/internal/model"
)

// ChaseParser parses Chase checking account activity CSV exports.
// Columns: Details, Posting Date, Description, Amount, Type, Balance,
// Check or Slip #.
type ChaseParser struct {
	log zerolog.Logger
}

const (
	chaseColDate    = 1
	chaseColDesc    = 2
	chaseColAmount  = 3
	chaseColType    = 4
	chaseColBalance = 5
	chaseMinFields  = 6
)

// Real exports occasionally switch date style mid-history.
var chaseDateFormats = []string{"01/02/2006", "2006-01-02"}

var multiSpace = regexp.MustCompile(`\s+`)

// NewChaseParser creates a ChaseParser.
func NewChaseParser(log zerolog.Logger) *ChaseParser {
	return &ChaseParser{log: log}
}

// Format returns the parser name.
func (p *ChaseParser) Format() string { return "chase" }

// Parse reads a Chase CSV and returns Transactions sorted by date.
// Individual malformed rows are skipped with a warning; the parse
// fails only when no row at all survives. Ties in the date sort keep
// file order, which downstream pair matching relies on.
func (p *ChaseParser) Parse(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading chase CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, fmt.Errorf("chase CSV contains no data rows")
	}

	var txns []model.Transaction
	for i, rec := range records[1:] {
		txn, err := p.parseRow(rec)
		if err != nil {
			p.log.Warn().Int("row", i+2).Err(err).Msg("skipping malformed row")
			continue
		}
		txns = append(txns, txn)
	}
	if len(txns) == 0 {
		return nil, fmt.Errorf("no valid transactions in chase CSV (%d rows skipped)", len(records)-1)
	}

	sort.SliceStable(txns, func(a, b int) bool { return txns[a].Date.Before(txns[b].Date) })
	p.log.Info().Int("count", len(txns)).Msg("parsed chase transactions")
	return txns, nil
}

func (p *ChaseParser) parseRow(rec []string) (model.Transaction, error) {
	if len(rec) < chaseMinFields {
		return model.Transaction{}, fmt.Errorf("expected at least %d fields, got %d", chaseMinFields, len(rec))
	}

	date, err := parseDate(rec[chaseColDate], chaseDateFormats)
	if err != nil {
		return model.Transaction{}, err
	}

	amount, err := parseMoney(rec[chaseColAmount])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", rec[chaseColAmount], err)
	}

	// Balance is best-effort; exports often leave it blank or stale.
	balance, err := parseMoney(rec[chaseColBalance])
	if err != nil {
		balance = decimal.Zero
	}

	desc := cleanDescription(rec[chaseColDesc])
	if desc == "" {
		return model.Transaction{}, fmt.Errorf("empty description")
	}

	return model.NewTransaction(date, desc, amount, balance, strings.ToUpper(strings.TrimSpace(rec[chaseColType]))), nil
}

func parseDate(s string, formats []string) (time.Time, error) {
	s = strings.Trim(strings.TrimSpace(s), `"`)
	for _, f := range formats {
		if d, err := time.Parse(f, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

// parseMoney parses an amount with optional $ signs, thousands commas
// and accounting-style parentheses for negatives.
func parseMoney(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("$", "", ",", "", `"`, "", " ", "").Replace(s)
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = "-" + s[1:len(s)-1]
	}
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("empty amount")
	}
	return decimal.NewFromString(s)
}

// cleanDescription collapses whitespace and uppercases so the pattern
// tables see a canonical form.
func cleanDescription(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = multiSpace.ReplaceAllString(strings.TrimSpace(s), " ")
	return strings.ToUpper(s)
}
