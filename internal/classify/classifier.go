package classify

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/NashC/cashflow-analysis/internal/model"
)

// Pair-matching tolerances. A transfer pair is two opposite-signed
// transactions whose amounts cancel within one cent, dated within a
// few days of each other.
const pairMatchDays = 3

var pairAmountTolerance = decimal.NewFromFloat(0.01)

// Classifier assigns exactly one flow type to every transaction in a
// batch. The stage order is strict: EXCLUDED before everything (a
// credit-card payment that looks like a transfer is still excluded),
// income patterns before the transfer check (a dividend arriving over
// a transfer-like rail is income), transfers before the sign fallback.
type Classifier struct {
	log    zerolog.Logger
	stages []stage
}

// stage is one named matcher in the priority chain. It returns nil
// when it has no opinion and the next stage runs.
type stage struct {
	name string
	run  func(ctx *batchContext, i int) *model.CategorizationResult
}

// batchContext carries the full batch plus the pair-assignment state
// for one ClassifyAll pass. Pair assignments live here, keyed by batch
// index, rather than as mid-scan mutation of sibling transactions.
type batchContext struct {
	txns    []model.Transaction
	partner map[int]int // index -> paired index, symmetric
}

// New creates a Classifier with the standard stage chain.
func New(log zerolog.Logger) *Classifier {
	c := &Classifier{log: log}
	c.stages = []stage{
		{"excluded_pattern", c.matchExcluded},
		{"income_pattern", c.matchIncome},
		{"internal_transfer", c.matchTransfer},
		{"amount_sign", c.matchAmountSign},
	}
	return c
}

// BatchResult summarizes one ClassifyAll pass.
type BatchResult struct {
	Counts   map[model.FlowType]int
	ByMethod map[string]int
}

// ClassifyAll assigns a flow type and coarse category to every
// transaction, using the whole batch as pair-matching context.
// Iteration follows slice order, which the importer fixes to load
// order, keeping the greedy pair matching deterministic. Returns an
// error if any transaction is left unclassified; that indicates a
// defect in the stage chain, not bad data.
func (c *Classifier) ClassifyAll(txns []model.Transaction) (BatchResult, error) {
	ctx := &batchContext{txns: txns, partner: make(map[int]int)}
	res := BatchResult{
		Counts:   make(map[model.FlowType]int),
		ByMethod: make(map[string]int),
	}

	for i := range txns {
		t := &txns[i]
		if t.UserVerified && t.IsClassified() {
			// Manual overrides are immutable to the automatic pass.
			res.Counts[t.FlowType]++
			res.ByMethod["user_verified"]++
			continue
		}

		r := c.classify(ctx, i)
		if r == nil {
			return res, fmt.Errorf("transaction %q (%s) left unclassified", t.Description, t.Date.Format("2006-01-02"))
		}
		t.FlowType = r.FlowType
		t.Category = r.Category
		t.Confidence = r.Confidence
		res.Counts[r.FlowType]++
		res.ByMethod[r.Method]++
	}

	// Write pair bookkeeping from the assignment map.
	for i, j := range ctx.partner {
		o := ctx.txns[j]
		txns[i].HasPair = true
		txns[i].PairID = fmt.Sprintf("%s_%s", o.Date.Format("2006-01-02"), o.Amount.String())
	}

	for _, ft := range model.FlowTypes {
		c.log.Info().Str("flow_type", string(ft)).Int("count", res.Counts[ft]).Msg("flow classification")
	}
	if res.Counts[model.FlowIncome] == 0 {
		c.log.Warn().Msg("no INCOME transactions found")
	}
	if res.Counts[model.FlowExpense] == 0 {
		c.log.Warn().Msg("no EXPENSE transactions found")
	}

	return res, nil
}

// Classify runs the stage chain for a single transaction against a
// context batch and returns the decision without mutating anything.
func (c *Classifier) Classify(txns []model.Transaction, i int) model.CategorizationResult {
	ctx := &batchContext{txns: txns, partner: make(map[int]int)}
	r := c.classify(ctx, i)
	if r == nil {
		return model.CategorizationResult{}
	}
	return *r
}

func (c *Classifier) classify(ctx *batchContext, i int) *model.CategorizationResult {
	for _, s := range c.stages {
		if r := s.run(ctx, i); r != nil {
			r.Method = orDefault(r.Method, s.name)
			return r
		}
	}
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func (c *Classifier) matchExcluded(ctx *batchContext, i int) *model.CategorizationResult {
	desc := strings.ToUpper(ctx.txns[i].Description)
	category, pattern, ok := matchTable(excludedTable, desc)
	if !ok {
		return nil
	}
	c.log.Debug().Str("description", desc).Str("pattern", pattern).Msg("matched EXCLUDED pattern")
	return &model.CategorizationResult{
		FlowType:       model.FlowExcluded,
		Category:       category,
		Confidence:     model.ConfidenceHigh,
		MatchedPattern: pattern,
	}
}

func (c *Classifier) matchIncome(ctx *batchContext, i int) *model.CategorizationResult {
	t := ctx.txns[i]
	if !t.Amount.IsPositive() {
		return nil
	}
	desc := strings.ToUpper(t.Description)
	category, pattern, ok := matchTable(incomeTable, desc)
	if !ok {
		return nil
	}
	c.log.Debug().Str("description", desc).Str("pattern", pattern).Msg("matched INCOME pattern")
	return &model.CategorizationResult{
		FlowType:       model.FlowIncome,
		Category:       category,
		Confidence:     model.ConfidenceHigh,
		MatchedPattern: pattern,
	}
}

func (c *Classifier) matchTransfer(ctx *batchContext, i int) *model.CategorizationResult {
	t := ctx.txns[i]
	desc := strings.ToUpper(t.Description)

	// Method 1: a known transfer description. A matched opposite leg
	// raises the confidence to high.
	if category, pattern, ok := matchTable(transferTable, desc); ok {
		_, paired := ctx.pairFor(i)
		confidence := model.ConfidenceMedium
		method := "transfer_pattern"
		if paired {
			confidence = model.ConfidenceHigh
			method = "transfer_pattern_with_pair"
		}
		return &model.CategorizationResult{
			FlowType:       model.FlowTransfer,
			Category:       category,
			Confidence:     confidence,
			Method:         method,
			MatchedPattern: pattern,
		}
	}

	// Method 2: no pattern, but an opposite-signed date-proximate
	// counterpart exists somewhere in the batch.
	if _, ok := ctx.pairFor(i); ok {
		category := "From_Unknown_Account"
		if t.Amount.IsNegative() {
			category = "To_Unknown_Account"
		}
		return &model.CategorizationResult{
			FlowType:   model.FlowTransfer,
			Category:   category,
			Confidence: model.ConfidenceMedium,
			Method:     "transfer_pair_only",
		}
	}

	return nil
}

// matchAmountSign is the terminal stage: the sign decides the role
// with certainty even though the category stays generic. A transaction
// of exactly zero is neither money in nor money out and is excluded
// explicitly rather than falling into the expense bucket.
func (c *Classifier) matchAmountSign(ctx *batchContext, i int) *model.CategorizationResult {
	t := ctx.txns[i]
	switch {
	case t.Amount.IsPositive():
		return &model.CategorizationResult{
			FlowType:   model.FlowIncome,
			Category:   "Uncategorized_Income",
			Confidence: model.ConfidenceHigh,
			Method:     "amount_positive",
		}
	case t.Amount.IsNegative():
		return &model.CategorizationResult{
			FlowType:   model.FlowExpense,
			Category:   "Uncategorized_Expense",
			Confidence: model.ConfidenceHigh,
			Method:     "amount_negative",
		}
	default:
		return &model.CategorizationResult{
			FlowType:   model.FlowExcluded,
			Category:   "Zero_Amount",
			Confidence: model.ConfidenceLow,
			Method:     "amount_zero",
		}
	}
}

// pairFor returns the batch index paired with transaction i, assigning
// a new pair greedily on first need. The first qualifying candidate in
// batch order wins; no globally optimal matching is attempted. Each
// transaction participates in at most one pair.
func (ctx *batchContext) pairFor(i int) (int, bool) {
	if j, ok := ctx.partner[i]; ok {
		return j, true
	}
	t := ctx.txns[i]
	want := t.Amount.Neg()
	for j := range ctx.txns {
		if j == i {
			continue
		}
		if _, taken := ctx.partner[j]; taken {
			continue
		}
		o := ctx.txns[j]
		days := o.Date.Sub(t.Date).Hours() / 24
		if days < 0 {
			days = -days
		}
		if days > pairMatchDays {
			continue
		}
		if o.Amount.Sub(want).Abs().GreaterThan(pairAmountTolerance) {
			continue
		}
		ctx.partner[i] = j
		ctx.partner[j] = i
		return j, true
	}
	return 0, false
}

// Reclassify forces a flow type on a transaction and marks it user
// verified so later automatic passes leave it alone.
func (c *Classifier) Reclassify(t *model.Transaction, ft model.FlowType, reason string) {
	old := t.FlowType
	t.FlowType = ft
	t.UserVerified = true
	t.Confidence = 1.0
	c.log.Info().
		Str("from", string(old)).
		Str("to", string(ft)).
		Str("description", t.Description).
		Str("reason", reason).
		Msg("reclassified transaction")
}
