package categorize

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/NashC/cashflow-analysis/internal/classify"
	"github.com/NashC/cashflow-analysis/internal/model"
)

// Fuzzy-match score bounds on the 0-100 fuzzywuzzy scale.
const (
	DefaultFuzzyThreshold = 85
	fuzzyHighScore        = 95
)

// Rule is one caller-supplied categorization rule. Either Contains
// (substring on the uppercased description) or Pattern is set.
type Rule struct {
	Contains    string
	Pattern     *regexp.Regexp
	Category    string
	Subcategory string
	Confidence  float64 // 0 means ConfidenceHigh
}

// Options configures a Categorizer.
type Options struct {
	FuzzyThreshold  int // 0 means DefaultFuzzyThreshold
	Rules           []Rule
	MerchantAliases map[string]string
}

// Categorizer assigns a fine-grained category within a transaction's
// already-assigned flow type. Precedence: user override, custom rules,
// flow-type regex tables, fuzzy merchant match, flow-type default.
type Categorizer struct {
	log       zerolog.Logger
	threshold int
	rules     []Rule
	merchants *merchantIndex

	// Counts by decision method, reset on each CategorizeAll.
	byMethod map[string]int
}

// New creates a Categorizer.
func New(log zerolog.Logger, opts Options) *Categorizer {
	threshold := opts.FuzzyThreshold
	if threshold <= 0 {
		threshold = DefaultFuzzyThreshold
	}
	return &Categorizer{
		log:       log,
		threshold: threshold,
		rules:     opts.Rules,
		merchants: newMerchantIndex(opts.MerchantAliases),
		byMethod:  make(map[string]int),
	}
}

// Categorize decides the category for a single transaction. The
// transaction's flow type must already be set.
func (c *Categorizer) Categorize(t model.Transaction) model.CategorizationResult {
	if t.UserVerified && t.UserCategory != "" {
		return model.CategorizationResult{
			FlowType:   t.FlowType,
			Category:   t.UserCategory,
			Confidence: 1.0,
			Method:     "user_override",
		}
	}

	if r := c.matchRules(t); r != nil {
		return *r
	}
	if r := c.matchPatterns(t); r != nil {
		return *r
	}
	if r := c.matchMerchant(t); r != nil {
		return *r
	}

	return model.CategorizationResult{
		FlowType:   t.FlowType,
		Category:   defaultCategory(t.FlowType),
		Confidence: model.ConfidenceLow,
		Method:     "default",
	}
}

// CategorizeAll categorizes every transaction in place. Transactions
// without a flow type indicate a pipeline-ordering bug; they are
// skipped with a warning rather than silently categorized.
func (c *Categorizer) CategorizeAll(txns []model.Transaction) map[string]int {
	c.byMethod = make(map[string]int)

	for i := range txns {
		t := &txns[i]
		if !t.IsClassified() {
			c.log.Warn().Str("description", t.Description).Msg("transaction has no flow type, skipping categorization")
			c.byMethod["skipped"]++
			continue
		}
		r := c.Categorize(*t)
		t.Category = r.Category
		t.Subcategory = r.Subcategory
		t.Confidence = r.Confidence
		c.byMethod[r.Method]++
	}

	for method, count := range c.byMethod {
		c.log.Info().Str("method", method).Int("count", count).Msg("categorization")
	}
	return c.byMethod
}

func (c *Categorizer) matchRules(t model.Transaction) *model.CategorizationResult {
	desc := strings.ToUpper(t.Description)
	for _, rule := range c.rules {
		matched := ""
		switch {
		case rule.Contains != "" && strings.Contains(desc, strings.ToUpper(rule.Contains)):
			matched = rule.Contains
		case rule.Pattern != nil && rule.Pattern.MatchString(desc):
			matched = rule.Pattern.String()
		default:
			continue
		}

		confidence := rule.Confidence
		if confidence == 0 {
			confidence = model.ConfidenceHigh
		}
		return &model.CategorizationResult{
			FlowType:       t.FlowType,
			Category:       rule.Category,
			Subcategory:    rule.Subcategory,
			Confidence:     confidence,
			Method:         "custom_rule",
			MatchedPattern: matched,
		}
	}
	return nil
}

func (c *Categorizer) matchPatterns(t model.Transaction) *model.CategorizationResult {
	desc := strings.ToUpper(t.Description)
	for _, cp := range classify.Patterns(t.FlowType) {
		for _, re := range cp.Patterns {
			if re.MatchString(desc) {
				c.log.Debug().Str("pattern", re.String()).Str("category", cp.Category).Msg("matched category pattern")
				return &model.CategorizationResult{
					FlowType:       t.FlowType,
					Category:       cp.Category,
					Confidence:     model.ConfidenceHigh,
					Method:         "regex_pattern",
					MatchedPattern: re.String(),
				}
			}
		}
	}
	return nil
}

func (c *Categorizer) matchMerchant(t model.Transaction) *model.CategorizationResult {
	desc := strings.ToUpper(t.Description)
	name, info, score := c.merchants.bestMatch(desc)
	if score < c.threshold {
		return nil
	}

	confidence := model.ConfidenceMedium
	if score >= fuzzyHighScore {
		confidence = model.ConfidenceHigh
	}
	return &model.CategorizationResult{
		FlowType:       t.FlowType,
		Category:       info.Category,
		Subcategory:    info.Subcategory,
		Confidence:     confidence,
		Method:         "fuzzy_match",
		MatchedPattern: name,
	}
}

func defaultCategory(ft model.FlowType) string {
	switch ft {
	case model.FlowIncome:
		return "Other_Income"
	case model.FlowExpense:
		return "Other_Expense"
	case model.FlowTransfer:
		return "Other_Transfer"
	case model.FlowExcluded:
		return "Other_Excluded"
	default:
		return "Unknown"
	}
}

// LowConfidence returns the transactions whose confidence is at or
// below threshold, for downstream review flagging.
func LowConfidence(txns []model.Transaction, threshold float64) []model.Transaction {
	var out []model.Transaction
	for _, t := range txns {
		if t.Confidence <= threshold {
			out = append(out, t)
		}
	}
	return out
}
