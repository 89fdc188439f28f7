package classify

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

func txn(y, m, d int, desc, amount string) model.Transaction {
	return model.NewTransaction(date(y, m, d), desc, dec(amount), decimal.Zero, "ACH_DEBIT")
}

func TestClassifyAll_StagePriority(t *testing.T) {
	txns := []model.Transaction{
		txn(2025, 1, 2, "DIRECT DEP PAYROLL ACME CORP", "5000.00"),
		txn(2025, 1, 5, "CHASE CREDIT CRD AUTOPAY", "-500.00"),
		txn(2025, 1, 8, "ONLINE TRANSFER TO SAV ...1234", "-1000.00"),
		txn(2025, 1, 12, "WHOLE FOODS MARKET", "-85.50"),
	}

	c := New(zerolog.Nop())
	res, err := c.ClassifyAll(txns)
	require.NoError(t, err)

	assert.Equal(t, model.FlowIncome, txns[0].FlowType)
	assert.Equal(t, "Salary", txns[0].Category)

	// A credit card payment is excluded even though it is negative and
	// could look like money going out.
	assert.Equal(t, model.FlowExcluded, txns[1].FlowType)
	assert.Equal(t, "Credit_Card_Payment", txns[1].Category)

	assert.Equal(t, model.FlowTransfer, txns[2].FlowType)
	assert.Equal(t, "To_Savings", txns[2].Category)

	assert.Equal(t, model.FlowExpense, txns[3].FlowType)

	assert.Equal(t, 1, res.Counts[model.FlowIncome])
	assert.Equal(t, 1, res.Counts[model.FlowExcluded])
	assert.Equal(t, 1, res.Counts[model.FlowTransfer])
	assert.Equal(t, 1, res.Counts[model.FlowExpense])
}

func TestClassifyAll_IncomeBeatsTransferPattern(t *testing.T) {
	// SCHWAB appears in the investment-transfer table, but a positive
	// dividend is income, not a transfer.
	txns := []model.Transaction{
		txn(2025, 3, 10, "DIVIDEND SCHWAB BROKERAGE", "200.00"),
	}

	_, err := New(zerolog.Nop()).ClassifyAll(txns)
	require.NoError(t, err)
	assert.Equal(t, model.FlowIncome, txns[0].FlowType)
	assert.Equal(t, "Investment_Income", txns[0].Category)
}

func TestClassifyAll_IncomePatternRequiresPositiveAmount(t *testing.T) {
	// REFUND is an income pattern, but the amount is negative so the
	// income stage must not fire.
	txns := []model.Transaction{
		txn(2025, 3, 11, "REFUND ADJUSTMENT POSTED", "-50.00"),
	}

	_, err := New(zerolog.Nop()).ClassifyAll(txns)
	require.NoError(t, err)
	assert.Equal(t, model.FlowExpense, txns[0].FlowType)
	assert.Equal(t, "Uncategorized_Expense", txns[0].Category)
}

func TestClassifyAll_PairOnlyTransfer(t *testing.T) {
	txns := []model.Transaction{
		txn(2025, 2, 10, "MISC WITHDRAWAL REQUEST", "-500.00"),
		txn(2025, 2, 11, "MISC RECEIVED FUNDS", "500.00"),
	}

	_, err := New(zerolog.Nop()).ClassifyAll(txns)
	require.NoError(t, err)

	assert.Equal(t, model.FlowTransfer, txns[0].FlowType)
	assert.Equal(t, "To_Unknown_Account", txns[0].Category)
	assert.Equal(t, model.FlowTransfer, txns[1].FlowType)
	assert.Equal(t, "From_Unknown_Account", txns[1].Category)

	// Pairing is symmetric.
	assert.True(t, txns[0].HasPair)
	assert.True(t, txns[1].HasPair)
	assert.Equal(t, "2025-02-11_500", txns[0].PairID)
	assert.Equal(t, "2025-02-10_-500", txns[1].PairID)

	// Both legs carry medium confidence without a pattern match.
	assert.InDelta(t, model.ConfidenceMedium, txns[0].Confidence, 1e-9)
}

func TestClassifyAll_PairWindowExceeded(t *testing.T) {
	// Same amounts, opposite signs, but 5 days apart: no pair, so both
	// fall through to the amount-sign stage.
	txns := []model.Transaction{
		txn(2025, 2, 10, "MISC WITHDRAWAL REQUEST", "-500.00"),
		txn(2025, 2, 15, "MISC RECEIVED FUNDS", "500.00"),
	}

	_, err := New(zerolog.Nop()).ClassifyAll(txns)
	require.NoError(t, err)

	assert.Equal(t, model.FlowExpense, txns[0].FlowType)
	assert.Equal(t, model.FlowIncome, txns[1].FlowType)
	assert.False(t, txns[0].HasPair)
	assert.False(t, txns[1].HasPair)
}

func TestClassifyAll_PairIsExclusive(t *testing.T) {
	// One outgoing leg, two candidate incoming legs: only the first in
	// batch order is taken and the other falls back to income.
	txns := []model.Transaction{
		txn(2025, 2, 10, "MISC WITHDRAWAL REQUEST", "-500.00"),
		txn(2025, 2, 11, "MISC RECEIVED FUNDS", "500.00"),
		txn(2025, 2, 12, "MISC RECEIVED FUNDS AGAIN", "500.00"),
	}

	_, err := New(zerolog.Nop()).ClassifyAll(txns)
	require.NoError(t, err)

	assert.Equal(t, model.FlowTransfer, txns[0].FlowType)
	assert.Equal(t, model.FlowTransfer, txns[1].FlowType)
	assert.Equal(t, model.FlowIncome, txns[2].FlowType)
	assert.False(t, txns[2].HasPair)
}

func TestClassifyAll_TransferPatternWithPairIsHighConfidence(t *testing.T) {
	txns := []model.Transaction{
		txn(2025, 4, 1, "ONLINE TRANSFER TO SAV ...9876", "-750.00"),
		txn(2025, 4, 1, "MISC RECEIVED FUNDS", "750.00"),
	}

	c := New(zerolog.Nop())
	res, err := c.ClassifyAll(txns)
	require.NoError(t, err)

	assert.InDelta(t, model.ConfidenceHigh, txns[0].Confidence, 1e-9)
	assert.Equal(t, 1, res.ByMethod["transfer_pattern_with_pair"])
	assert.Equal(t, 1, res.ByMethod["transfer_pair_only"])
}

func TestClassifyAll_ZeroAmount(t *testing.T) {
	txns := []model.Transaction{
		txn(2025, 5, 1, "VOID MEMO ENTRY", "0.00"),
	}

	_, err := New(zerolog.Nop()).ClassifyAll(txns)
	require.NoError(t, err)

	assert.Equal(t, model.FlowExcluded, txns[0].FlowType)
	assert.Equal(t, "Zero_Amount", txns[0].Category)
	assert.InDelta(t, model.ConfidenceLow, txns[0].Confidence, 1e-9)
}

func TestClassifyAll_Totality(t *testing.T) {
	// Every transaction ends up with exactly one flow type, whatever
	// the description looks like.
	txns := []model.Transaction{
		txn(2025, 6, 1, "GIBBERISH QXW 123", "-42.00"),
		txn(2025, 6, 2, "", "17.00"),
		txn(2025, 6, 3, "!!!###", "-0.01"),
		txn(2025, 6, 4, "ANOTHER ODD ROW", "0.00"),
	}

	res, err := New(zerolog.Nop()).ClassifyAll(txns)
	require.NoError(t, err)

	total := 0
	for _, ft := range model.FlowTypes {
		total += res.Counts[ft]
	}
	assert.Equal(t, len(txns), total)
	for _, tx := range txns {
		assert.True(t, tx.IsClassified())
	}
}

func TestClassifyAll_UserVerifiedIsImmutable(t *testing.T) {
	manual := txn(2025, 7, 1, "WHOLE FOODS MARKET", "-60.00")
	manual.FlowType = model.FlowIncome
	manual.UserVerified = true
	txns := []model.Transaction{manual}

	res, err := New(zerolog.Nop()).ClassifyAll(txns)
	require.NoError(t, err)

	assert.Equal(t, model.FlowIncome, txns[0].FlowType)
	assert.Equal(t, 1, res.ByMethod["user_verified"])
}

func TestClassify_SingleDecisionDoesNotMutate(t *testing.T) {
	txns := []model.Transaction{
		txn(2025, 8, 1, "GUSTO PAYROLL 1234", "3200.00"),
	}

	r := New(zerolog.Nop()).Classify(txns, 0)
	assert.Equal(t, model.FlowIncome, r.FlowType)
	assert.Equal(t, "Salary", r.Category)
	assert.False(t, txns[0].IsClassified())
}

func TestReclassify(t *testing.T) {
	tx := txn(2025, 7, 2, "ZELLE PAYMENT TO LANDLORD", "-1800.00")
	c := New(zerolog.Nop())

	c.Reclassify(&tx, model.FlowExpense, "rent paid by zelle")

	assert.Equal(t, model.FlowExpense, tx.FlowType)
	assert.True(t, tx.UserVerified)
	assert.InDelta(t, 1.0, tx.Confidence, 1e-9)
}

func TestMatchTable_FirstCategoryWins(t *testing.T) {
	// UBER EATS must land in Dining, not Transportation, which depends
	// on Dining preceding Transportation in the expense table.
	category, _, ok := matchTable(expenseTable, "UBER EATS ORDER 12345")
	require.True(t, ok)
	assert.Equal(t, "Dining", category)

	category, _, ok = matchTable(expenseTable, "UBER TRIP SF")
	require.True(t, ok)
	assert.Equal(t, "Transportation", category)

	// Same for AMAZON PRIME versus plain AMAZON.
	category, _, ok = matchTable(expenseTable, "AMAZON PRIME MEMBERSHIP")
	require.True(t, ok)
	assert.Equal(t, "Subscriptions", category)

	category, _, ok = matchTable(expenseTable, "AMAZON MARKETPLACE")
	require.True(t, ok)
	assert.Equal(t, "Shopping", category)
}
