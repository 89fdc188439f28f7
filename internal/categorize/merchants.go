package categorize

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/NashC/cashflow-analysis/internal/model"
)

// merchantInfo is the category a known merchant maps to.
type merchantInfo struct {
	Category    string
	Subcategory string
	FlowType    model.FlowType
}

// merchantIndex provides fuzzy lookup over known merchant names.
type merchantIndex struct {
	byName map[string]merchantInfo
}

// newMerchantIndex builds the index from the built-in dictionary plus
// configured aliases. An alias contributes a new lookup key pointing
// at its canonical merchant's category; aliases for unknown merchants
// are ignored.
func newMerchantIndex(aliases map[string]string) *merchantIndex {
	byName := make(map[string]merchantInfo, len(builtinMerchants)+len(aliases))
	for alias, canonical := range aliases {
		if info, ok := builtinMerchants[strings.ToUpper(canonical)]; ok {
			byName[strings.ToUpper(alias)] = info
		}
	}
	for name, info := range builtinMerchants {
		byName[name] = info
	}
	return &merchantIndex{byName: byName}
}

// bestMatch scores the description against every known merchant with a
// token-order-insensitive ratio and returns the best one. Ties go to
// the lexically smallest name so results are reproducible.
func (m *merchantIndex) bestMatch(description string) (name string, info merchantInfo, score int) {
	for candidate, ci := range m.byName {
		s := fuzzy.TokenSortRatio(description, candidate)
		if s > score || (s == score && (name == "" || candidate < name)) {
			name, info, score = candidate, ci, s
		}
	}
	return name, info, score
}

// builtinMerchants is the fixed merchant dictionary used for fuzzy
// matching when no regex pattern fires.
var builtinMerchants = map[string]merchantInfo{
	"WHOLE FOODS": {Category: "Groceries", FlowType: model.FlowExpense},
	"TRADER JOES": {Category: "Groceries", FlowType: model.FlowExpense},
	"SAFEWAY":     {Category: "Groceries", FlowType: model.FlowExpense},
	"KROGER":      {Category: "Groceries", FlowType: model.FlowExpense},

	"STARBUCKS": {Category: "Dining", Subcategory: "Coffee", FlowType: model.FlowExpense},
	"CHIPOTLE":  {Category: "Dining", Subcategory: "Fast Food", FlowType: model.FlowExpense},
	"MCDONALDS": {Category: "Dining", Subcategory: "Fast Food", FlowType: model.FlowExpense},
	"UBER EATS": {Category: "Dining", Subcategory: "Delivery", FlowType: model.FlowExpense},
	"DOORDASH":  {Category: "Dining", Subcategory: "Delivery", FlowType: model.FlowExpense},

	"AMAZON":   {Category: "Shopping", Subcategory: "Online", FlowType: model.FlowExpense},
	"TARGET":   {Category: "Shopping", Subcategory: "General", FlowType: model.FlowExpense},
	"WALMART":  {Category: "Shopping", Subcategory: "General", FlowType: model.FlowExpense},
	"BEST BUY": {Category: "Shopping", Subcategory: "Electronics", FlowType: model.FlowExpense},

	"SHELL":   {Category: "Transportation", Subcategory: "Gas", FlowType: model.FlowExpense},
	"CHEVRON": {Category: "Transportation", Subcategory: "Gas", FlowType: model.FlowExpense},
	"UBER":    {Category: "Transportation", Subcategory: "Rideshare", FlowType: model.FlowExpense},
	"LYFT":    {Category: "Transportation", Subcategory: "Rideshare", FlowType: model.FlowExpense},

	"NETFLIX":      {Category: "Subscriptions", Subcategory: "Entertainment", FlowType: model.FlowExpense},
	"SPOTIFY":      {Category: "Subscriptions", Subcategory: "Music", FlowType: model.FlowExpense},
	"AMAZON PRIME": {Category: "Subscriptions", Subcategory: "Shopping", FlowType: model.FlowExpense},
}
