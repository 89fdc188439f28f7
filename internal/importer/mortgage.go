package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/NashC/cashflow-analysis/internal/model"
)

// MortgageParser parses a mortgage servicer CSV whose Details column
// carries the principal/interest/escrow breakdown as free text, e.g.
// "PAYMENT Principal$1,043.50Interest$1,682.04Escrow$474.46".
type MortgageParser struct {
	log zerolog.Logger
}

// Servicer exports are less consistent than bank exports.
var mortgageDateFormats = []string{"Jan 2, 2006", "01/02/2006", "2006-01-02"}

var (
	principalRe = regexp.MustCompile(`Principal\$?([\d,]+\.?\d*)`)
	interestRe  = regexp.MustCompile(`Interest\$?([\d,]+\.?\d*)`)
	escrowRe    = regexp.MustCompile(`Escrow\$?([\d,]+\.?\d*)`)
	feesRe      = regexp.MustCompile(`Fees\$?([\d,]+\.?\d*)`)
)

// NewMortgageParser creates a MortgageParser.
func NewMortgageParser(log zerolog.Logger) *MortgageParser {
	return &MortgageParser{log: log}
}

// ParseMortgageFile parses a mortgage ledger CSV from disk.
func ParseMortgageFile(p *MortgageParser, path string) ([]model.MortgageTransaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	txns, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return txns, nil
}

// Parse reads the ledger and returns rows sorted by date ascending.
// Malformed rows are skipped with a warning.
func (p *MortgageParser) Parse(r io.Reader) ([]model.MortgageTransaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading mortgage CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, fmt.Errorf("mortgage CSV contains no data rows")
	}

	cols, err := mortgageColumns(records[0])
	if err != nil {
		return nil, err
	}

	var txns []model.MortgageTransaction
	for i, rec := range records[1:] {
		mt, err := p.parseRow(rec, cols)
		if err != nil {
			p.log.Warn().Int("row", i+2).Err(err).Msg("skipping malformed mortgage row")
			continue
		}
		txns = append(txns, mt)
	}
	if len(txns) == 0 {
		return nil, fmt.Errorf("no valid rows in mortgage CSV")
	}

	sort.SliceStable(txns, func(a, b int) bool { return txns[a].Date.Before(txns[b].Date) })
	p.log.Info().Int("count", len(txns)).Msg("parsed mortgage transactions")
	return txns, nil
}

// mortgageCols maps the header names to indices. Servicer exports
// shuffle column order between statement versions.
type mortgageCols struct {
	date, details, amount, balance int
}

func mortgageColumns(header []string) (mortgageCols, error) {
	cols := mortgageCols{date: -1, details: -1, amount: -1, balance: -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "date":
			cols.date = i
		case "details", "description":
			cols.details = i
		case "amount":
			cols.amount = i
		case "balance":
			cols.balance = i
		}
	}
	if cols.date < 0 || cols.details < 0 || cols.amount < 0 {
		return cols, fmt.Errorf("mortgage CSV missing required columns (have %v)", header)
	}
	return cols, nil
}

func (p *MortgageParser) parseRow(rec []string, cols mortgageCols) (model.MortgageTransaction, error) {
	max := cols.date
	if cols.details > max {
		max = cols.details
	}
	if cols.amount > max {
		max = cols.amount
	}
	if len(rec) <= max {
		return model.MortgageTransaction{}, fmt.Errorf("short row: %d fields", len(rec))
	}

	date, err := parseDate(rec[cols.date], mortgageDateFormats)
	if err != nil {
		return model.MortgageTransaction{}, err
	}

	amount, err := parseMoney(rec[cols.amount])
	if err != nil {
		return model.MortgageTransaction{}, fmt.Errorf("parsing amount %q: %w", rec[cols.amount], err)
	}

	balance := decimal.Zero
	if cols.balance >= 0 && cols.balance < len(rec) {
		if b, err := parseMoney(rec[cols.balance]); err == nil {
			balance = b
		}
	}

	details := strings.TrimSpace(rec[cols.details])
	mt := model.MortgageTransaction{
		Date:        date,
		Type:        mortgageType(details),
		TotalAmount: amount,
		Principal:   extractMoney(principalRe, details),
		Interest:    extractMoney(interestRe, details),
		Escrow:      extractMoney(escrowRe, details),
		Fees:        extractMoney(feesRe, details),
		Balance:     balance,
		RawDetails:  details,
		Month:       model.MonthKey(date),
	}
	return mt, nil
}

// mortgageType tags a row by its details text. Order matters: an extra
// principal payment also contains the word PAYMENT.
func mortgageType(details string) string {
	up := strings.ToUpper(details)
	switch {
	case strings.Contains(up, "PRINCIPAL PAYMENT"):
		return model.MortgagePrincipalPayment
	case strings.Contains(up, "PAYMENT") && strings.Contains(details, "Principal"):
		return model.MortgageMonthlyPayment
	case strings.Contains(up, "NEW LOAN"):
		return model.MortgageNewLoan
	default:
		return model.MortgageOther
	}
}

func extractMoney(re *regexp.Regexp, details string) decimal.Decimal {
	m := re.FindStringSubmatch(details)
	if m == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return decimal.Zero
	}
	return d
}
