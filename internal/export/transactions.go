// Package export writes analysis results as CSV for spreadsheets and
// downstream tooling.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/NashC/cashflow-analysis/internal/model"
)

// TransactionHeader is the CSV header for categorized_transactions.csv.
const TransactionHeader = "date,description,amount,balance,type,flow_type,category,subcategory,confidence,has_pair,pair_id,month,day_of_week,quarter"

const (
	txnNumFields  = 14
	dateFormat    = "2006-01-02"
	colTxnDate    = 0
	colTxnDesc    = 1
	colTxnAmount  = 2
	colTxnBalance = 3
	colTxnType    = 4
	colTxnFlow    = 5
	colTxnCat     = 6
	colTxnSubcat  = 7
	colTxnConf    = 8
	colTxnHasPair = 9
	colTxnPairID  = 10
	colTxnMonth   = 11
	colTxnDOW     = 12
	colTxnQuarter = 13
)

// WriteTransactions writes categorized transactions (including header).
func WriteTransactions(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(TransactionHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, t := range txns {
		if err := cw.Write(MarshalTransaction(t)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// ReadTransactions reads a categorized_transactions.csv back.
func ReadTransactions(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = txnNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading transactions CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var txns []model.Transaction
	for i, rec := range records[1:] {
		t, err := UnmarshalTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, t)
	}
	return txns, nil
}

// MarshalTransaction converts a Transaction to a CSV row.
func MarshalTransaction(t model.Transaction) []string {
	row := make([]string, txnNumFields)
	row[colTxnDate] = t.Date.Format(dateFormat)
	row[colTxnDesc] = t.Description
	row[colTxnAmount] = t.Amount.StringFixed(2)
	if !t.Balance.IsZero() {
		row[colTxnBalance] = t.Balance.StringFixed(2)
	}
	row[colTxnType] = t.Type
	row[colTxnFlow] = string(t.FlowType)
	row[colTxnCat] = t.Category
	row[colTxnSubcat] = t.Subcategory
	row[colTxnConf] = strconv.FormatFloat(t.Confidence, 'f', -1, 64)
	row[colTxnHasPair] = strconv.FormatBool(t.HasPair)
	row[colTxnPairID] = t.PairID
	row[colTxnMonth] = t.Month
	row[colTxnDOW] = t.DayOfWeek
	row[colTxnQuarter] = t.Quarter
	return row
}

// UnmarshalTransaction converts a CSV row to a Transaction.
func UnmarshalTransaction(record []string) (model.Transaction, error) {
	if len(record) != txnNumFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", txnNumFields, len(record))
	}

	date, err := time.Parse(dateFormat, record[colTxnDate])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing date %q: %w", record[colTxnDate], err)
	}

	amount, err := decimal.NewFromString(record[colTxnAmount])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", record[colTxnAmount], err)
	}

	var balance decimal.Decimal
	if record[colTxnBalance] != "" {
		balance, err = decimal.NewFromString(record[colTxnBalance])
		if err != nil {
			return model.Transaction{}, fmt.Errorf("parsing balance %q: %w", record[colTxnBalance], err)
		}
	}

	confidence, err := strconv.ParseFloat(record[colTxnConf], 64)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing confidence %q: %w", record[colTxnConf], err)
	}

	hasPair, err := strconv.ParseBool(record[colTxnHasPair])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing has_pair %q: %w", record[colTxnHasPair], err)
	}

	t := model.NewTransaction(date, record[colTxnDesc], amount, balance, record[colTxnType])
	t.FlowType = model.FlowType(record[colTxnFlow])
	t.Category = record[colTxnCat]
	t.Subcategory = record[colTxnSubcat]
	t.Confidence = confidence
	t.HasPair = hasPair
	t.PairID = record[colTxnPairID]
	return t, nil
}

// WriteFile writes CSV content produced by fn to path, creating parent
// directories as needed.
func WriteFile(path string, fn func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating export dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := fn(f); err != nil {
		return err
	}
	return f.Close()
}
