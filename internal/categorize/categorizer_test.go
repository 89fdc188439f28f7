package categorize

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NashC/cashflow-analysis/internal/model"
)

func expenseTxn(desc string) model.Transaction {
	t := model.NewTransaction(
		time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		desc, decimal.NewFromInt(-50), decimal.Zero, "DEBIT_CARD")
	t.FlowType = model.FlowExpense
	return t
}

func TestCategorize_UserOverrideWinsEverything(t *testing.T) {
	tx := expenseTxn("NETFLIX")
	tx.UserVerified = true
	tx.UserCategory = "Date_Night"

	c := New(zerolog.Nop(), Options{})
	r := c.Categorize(tx)

	assert.Equal(t, "Date_Night", r.Category)
	assert.InDelta(t, 1.0, r.Confidence, 1e-9)
	assert.Equal(t, "user_override", r.Method)
}

func TestCategorize_CustomRuleBeatsBuiltinPatterns(t *testing.T) {
	c := New(zerolog.Nop(), Options{
		Rules: []Rule{
			{Contains: "NETFLIX", Category: "Streaming", Subcategory: "Video"},
		},
	})

	r := c.Categorize(expenseTxn("NETFLIX"))
	assert.Equal(t, "Streaming", r.Category)
	assert.Equal(t, "Video", r.Subcategory)
	assert.Equal(t, "custom_rule", r.Method)
	assert.InDelta(t, model.ConfidenceHigh, r.Confidence, 1e-9)
}

func TestCategorize_RegexPattern(t *testing.T) {
	c := New(zerolog.Nop(), Options{})

	r := c.Categorize(expenseTxn("NETFLIX.COM SUBSCRIPTION"))
	assert.Equal(t, "Subscriptions", r.Category)
	assert.Equal(t, "regex_pattern", r.Method)
	assert.InDelta(t, model.ConfidenceHigh, r.Confidence, 1e-9)
}

func TestCategorize_FuzzyAliasExactMatch(t *testing.T) {
	// "WF MKT" matches nothing in the regex tables; the configured
	// alias gives the fuzzy matcher a perfect-score candidate.
	c := New(zerolog.Nop(), Options{
		MerchantAliases: map[string]string{"WF MKT": "WHOLE FOODS"},
	})

	r := c.Categorize(expenseTxn("WF MKT"))
	assert.Equal(t, "Groceries", r.Category)
	assert.Equal(t, "fuzzy_match", r.Method)
	assert.InDelta(t, model.ConfidenceHigh, r.Confidence, 1e-9)
}

func TestCategorize_FuzzyMisspelledMerchant(t *testing.T) {
	// One letter off from NETFLIX: below the exact-score bar, above the
	// match threshold, so medium confidence.
	c := New(zerolog.Nop(), Options{})

	r := c.Categorize(expenseTxn("NETFLX"))
	assert.Equal(t, "Subscriptions", r.Category)
	assert.Equal(t, "fuzzy_match", r.Method)
	assert.InDelta(t, model.ConfidenceMedium, r.Confidence, 1e-9)
}

func TestCategorize_FallsBackToFlowTypeDefault(t *testing.T) {
	c := New(zerolog.Nop(), Options{})

	r := c.Categorize(expenseTxn("QQQQ ZZZZ 000"))
	assert.Equal(t, "Other_Expense", r.Category)
	assert.Equal(t, "default", r.Method)
	assert.InDelta(t, model.ConfidenceLow, r.Confidence, 1e-9)

	income := expenseTxn("QQQQ ZZZZ 000")
	income.FlowType = model.FlowIncome
	r = c.Categorize(income)
	assert.Equal(t, "Other_Income", r.Category)
}

func TestCategorizeAll_SkipsUnclassified(t *testing.T) {
	classified := expenseTxn("STARBUCKS STORE 123")
	unclassified := expenseTxn("MYSTERY ROW")
	unclassified.FlowType = ""
	txns := []model.Transaction{classified, unclassified}

	c := New(zerolog.Nop(), Options{})
	byMethod := c.CategorizeAll(txns)

	assert.Equal(t, "Dining", txns[0].Category)
	assert.Empty(t, txns[1].Category)
	assert.Equal(t, 1, byMethod["skipped"])
}

func TestLowConfidence(t *testing.T) {
	high := expenseTxn("A")
	high.Confidence = model.ConfidenceHigh
	medium := expenseTxn("B")
	medium.Confidence = model.ConfidenceMedium
	low := expenseTxn("C")
	low.Confidence = model.ConfidenceLow

	flagged := LowConfidence([]model.Transaction{high, medium, low}, model.ConfidenceMedium)
	require.Len(t, flagged, 2)
	assert.Equal(t, "B", flagged[0].Description)
	assert.Equal(t, "C", flagged[1].Description)
}
