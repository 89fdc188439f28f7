package classify

import (
	"regexp"

	"github.com/NashC/cashflow-analysis/internal/model"
)

// CategoryPatterns is one category and its compiled description
// patterns. Tables are ordered: the first category with a matching
// pattern wins, so broader categories (Transportation's UBER, Shopping's
// AMAZON) must come after the narrower ones that share a merchant
// (Dining's UBER.*EATS, Subscriptions' AMAZON.*PRIME).
type CategoryPatterns struct {
	Category string
	Patterns []*regexp.Regexp
}

type rawTable []struct {
	category string
	patterns []string
}

func compileTable(raw rawTable) []CategoryPatterns {
	out := make([]CategoryPatterns, 0, len(raw))
	for _, rc := range raw {
		cp := CategoryPatterns{Category: rc.category}
		for _, p := range rc.patterns {
			cp.Patterns = append(cp.Patterns, regexp.MustCompile(`(?i)`+p))
		}
		out = append(out, cp)
	}
	return out
}

var incomeTable = compileTable(rawTable{
	{"Salary", []string{
		`DIRECT DEP.*PAYROLL`, `ADP.*CREDIT`, `GUSTO`, `PAYROLL`, `SALARY`,
		`EDI PYMNTS`, `PEO.*PAYROLL`,
	}},
	{"Government_Benefits", []string{
		`TREAS.*310.*MISC PAY`, `UI BENEFIT`, `UNEMPLOYMENT`, `STATE.*BENEFIT`,
	}},
	{"Freelance", []string{
		`ZELLE FROM`, `VENMO FROM`, `PAYPAL.*CREDIT`, `CASH APP.*FROM`, `RECEIVABLE`,
	}},
	{"Investment_Income", []string{
		`DIVIDEND`, `INTEREST PAYMENT`, `CAPITAL GAIN`, `INVESTMENT.*INCOME`,
		`COINBASE`, `STOCK.*OPTION`, `RSU.*VESTING`,
	}},
	{"Bank_Transfers", []string{
		`FEDWIRE CREDIT`, `BOOK TRANSFER CREDIT`, `P2P.*PAYMENT.*CREDIT`,
	}},
	{"Deposits", []string{
		`REMOTE.*ONLINE.*DEPOSIT`, `CHECK.*DEPOSIT`, `ATM CASH DEPOSIT`,
		`DEPOSIT ID NUMBER`,
	}},
	{"Tax_Refund", []string{
		`IRS.*TREAS`, `STATE.*REFUND`, `TAX REF`, `TREASURY.*REFUND`,
	}},
	{"Reimbursement", []string{
		`EXPENSE REIMB`, `REFUND`, `REIMB`, `FEE REVERSAL`,
	}},
	{"Gift", []string{
		`GIFT`, `BIRTHDAY`, `WEDDING`,
	}},
})

var expenseTable = compileTable(rawTable{
	{"Housing", []string{
		`RENT`, `HOA FEE`, `PROPERTY TAX`, `HOME.*INSURANCE`,
	}},
	{"Utilities", []string{
		`ELECTRIC`, `GAS COMP`, `WATER`, `INTERNET`, `CABLE`, `TRASH`, `SEWER`,
		`UTILITY`, `COMCAST`, `VERIZON.*PAYMENTREC`, `PUGET SOUND ENER`,
	}},
	{"Banking_Fees", []string{
		`ATM.*FEE`, `WIRE.*FEE`, `OVERDRAFT.*FEE`, `MONTHLY.*SERVICE.*FEE`,
	}},
	{"Insurance", []string{
		`INSURANCE`, `GEICO`, `STATE FARM`, `ALLSTATE`, `PROGRESSIVE`,
		`LIBERTY MUTUAL`, `LEMONADE`,
	}},
	{"Taxes", []string{
		`IRS.*USATAXPYMT`, `TAX.*PAYMENT`, `ESTIMATED.*TAX`, `FEDERAL.*TAX`,
		`STATE.*TAX`, `TAX BILL`, `STATE.*REVENUE.*TAX`,
	}},
	{"Subscriptions", []string{
		`NETFLIX`, `SPOTIFY`, `AMAZON.*PRIME`, `APPLE\.COM.*BILL`, `YOUTUBE`,
		`HULU`, `DISNEY\+`, `HBO`, `ADOBE`, `MICROSOFT`,
	}},
	{"Healthcare", []string{
		`CVS`, `WALGREENS`, `RITE AID`, `PHARMACY`, `MEDICAL`, `DENTAL`,
		`DOCTOR`, `HOSPITAL`, `CLINIC`, `LABCORP`,
	}},
	{"Groceries", []string{
		`SAFEWAY`, `WHOLE FOODS`, `TRADER JOE`, `KROGER`, `WALMART.*GROCERY`,
		`TARGET.*GROCERY`, `COSTCO`, `SAMS CLUB`,
	}},
	{"Dining", []string{
		`RESTAURANT`, `UBER.*EATS`, `DOORDASH`, `GRUBHUB`, `POSTMATES`,
		`STARBUCKS`, `COFFEE`, `CAFE`, `PIZZA`, `MCDONALD`, `SUBWAY`, `CHIPOTLE`,
	}},
	{"Transportation", []string{
		`UBER`, `LYFT`, `SHELL`, `CHEVRON`, `EXXON`, `PARKING`, `TOLL`,
		`PUBLIC TRANS`, `METRO`,
	}},
	{"Shopping", []string{
		`AMAZON`, `TARGET`, `WALMART`, `BEST BUY`, `HOME DEPOT`, `LOWES`,
		`IKEA`, `MACYS`, `NORDSTROM`,
	}},
	{"Entertainment", []string{
		`MOVIE`, `THEATER`, `CONCERT`, `TICKETMASTER`, `STUBHUB`, `STEAM`,
		`PLAYSTATION`, `XBOX`, `NINTENDO`,
	}},
	{"Personal_Care", []string{
		`HAIRCUT`, `SALON`, `SPA`, `BARBER`, `MASSAGE`,
	}},
	{"Fitness", []string{
		`GYM`, `FITNESS`, `CROSSFIT`, `YOGA`, `PILATES`,
	}},
	{"Education", []string{
		`TUITION`, `COURSE`, `UDEMY`, `COURSERA`, `SCHOOL`,
	}},
	{"Government_Services", []string{
		`DMV`, `DEPARTMENT OF LICENSING`, `GOVERNMENT.*FEE`, `STATE.*FEE`,
	}},
	{"Pets", []string{
		`PETCO`, `PETSMART`, `VETERINARY`, `PET.*FOOD`,
	}},
	{"Large_Withdrawals", []string{
		`ATM WITHDRAWAL`, `WITHDRAWAL.*\d{2}/\d{2}`, `CHECK.*\d{3,}`,
	}},
})

var transferTable = compileTable(rawTable{
	{"To_Savings", []string{
		`TRANSFER TO.*SAV`, `ONLINE TRANSFER TO SAV`, `SAVINGS TRANSFER`,
	}},
	{"From_Savings", []string{
		`TRANSFER FROM.*SAV`, `ONLINE TRANSFER FROM SAV`,
	}},
	{"To_Investment", []string{
		`CHARLES SCHWAB`, `SCHWAB`, `FIDELITY`, `VANGUARD`, `E\*TRADE`,
		`ETRADE`, `ROBINHOOD`, `BETTERMENT`, `WEALTHFRONT`, `INTERACTIVE.*BROK`,
	}},
	{"To_External_Checking", []string{
		`TRANSFER TO.*CHK`, `EXTERNAL TRANSFER`, `WIRE TRANSFER OUT`,
	}},
	{"From_External_Checking", []string{
		`TRANSFER FROM.*CHK`, `WIRE TRANSFER IN`,
	}},
	{"Treasury_Direct", []string{
		`TREASURYDIRECT`, `US TREASURY`, `TREASURY DIRECT`,
	}},
	{"Personal_Transfers", []string{
		`ZELLE PAYMENT TO`, `ZELLE PAYMENT FROM`, `VENMO PAYMENT`,
		`VENMO.*CASHOUT`, `P2P.*PAYMENT`,
	}},
})

var excludedTable = compileTable(rawTable{
	{"Credit_Card_Payment", []string{
		`CHASE CARD.*PAYMENT`, `CHASE CREDIT CRD`, `AMEX.*PAYMENT`,
		`AMERICAN EXPRESS.*PAYMENT`, `DISCOVER.*PAYMENT`, `CAPITAL ONE.*PAYMENT`,
		`CAPITAL ONE.*PMT`, `CITI.*PAYMENT`, `BARCLAYS.*PAYMENT`,
		`CREDIT CARD PAYMENT`,
	}},
	{"Loan_Payment", []string{
		`LOAN PAYMENT`, `AUTO LOAN`, `CAR LOAN`, `STUDENT LOAN`,
		`PERSONAL LOAN`, `NAVIENT`, `NELNET`, `SOFI.*LOAN`,
	}},
	{"Mortgage_Payment", []string{
		`MORTGAGE PAYMENT`, `PAYMENT.*TO MORTGAGE`,
	}},
})

// Patterns returns the category-level pattern table for a flow type.
// The categorizer uses these same tables for fine-grained category
// assignment.
func Patterns(ft model.FlowType) []CategoryPatterns {
	switch ft {
	case model.FlowIncome:
		return incomeTable
	case model.FlowExpense:
		return expenseTable
	case model.FlowTransfer:
		return transferTable
	case model.FlowExcluded:
		return excludedTable
	default:
		return nil
	}
}

// matchTable returns the first (category, pattern) whose pattern
// matches the description, honoring table order.
func matchTable(table []CategoryPatterns, description string) (category, pattern string, ok bool) {
	for _, cp := range table {
		for _, re := range cp.Patterns {
			if re.MatchString(description) {
				return cp.Category, re.String(), true
			}
		}
	}
	return "", "", false
}
