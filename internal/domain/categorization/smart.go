package categorization

import (
	"strings"

	"github.com/cloudflare/ahocorasick"

	"github.com/finlytics/finlytics-api/pkg/config"
)

// Account types the smart patterns discriminate on.
const (
	AccountTypeBank       = "BANK"
	AccountTypeCreditCard = "CREDIT_CARD"
)

const (
	directionDebit  = "DEBIT"
	directionCredit = "CREDIT"
)

// smartPattern is one row of the fixed heuristic table: a keyword guarded by
// direction and optionally account type. Table order is the tie-break when a
// description hits several keywords.
type smartPattern struct {
	keyword     string
	direction   string
	accountType string // empty matches any account type
	categoryID  string
	confidence  float64
}

// SmartMatcher matches the fixed pattern table against descriptions with a
// single Aho-Corasick pass, the same way the rule engine's bulk matcher
// works. The table is tiny but the descriptions are many.
type SmartMatcher struct {
	patterns []smartPattern
	matcher  *ahocorasick.Matcher
}

// NewSmartMatcher builds the heuristic table. The target category ids come
// from configuration so deployments can remap them without a rebuild.
func NewSmartMatcher(cfg config.CategorizationConfig) *SmartMatcher {
	patterns := []smartPattern{
		// Credit-card bill payments land as credits on the card account.
		{"payment received", directionCredit, AccountTypeCreditCard, cfg.BillPaymentCategoryID, 1.0},
		{"payment-thank you", directionCredit, AccountTypeCreditCard, cfg.BillPaymentCategoryID, 1.0},
		{"autopay", directionCredit, AccountTypeCreditCard, cfg.BillPaymentCategoryID, 1.0},
		{"bill payment", directionCredit, AccountTypeCreditCard, cfg.BillPaymentCategoryID, 1.0},

		{"refund", directionCredit, "", cfg.RefundCategoryID, 0.9},
		{"reversal", directionCredit, "", cfg.RefundCategoryID, 0.9},

		{"atm", directionDebit, "", cfg.CashWithdrawalCategoryID, 0.95},
		{"atw", directionDebit, "", cfg.CashWithdrawalCategoryID, 0.95},
		{"cash wdl", directionDebit, "", cfg.CashWithdrawalCategoryID, 0.95},
		{"cash withdrawal", directionDebit, "", cfg.CashWithdrawalCategoryID, 0.95},
	}

	keywords := make([][]byte, len(patterns))
	for i, p := range patterns {
		keywords[i] = []byte(p.keyword)
	}

	return &SmartMatcher{
		patterns: patterns,
		matcher:  ahocorasick.NewMatcher(keywords),
	}
}

// Match runs the table against one transaction. Keyword containment is
// case-insensitive; among matching rows the earliest table entry wins.
// One matcher serves every in-flight import, so the thread-safe variant
// is required: plain Match mutates the automaton's dedup state.
func (m *SmartMatcher) Match(in Input) (Result, bool) {
	hits := m.matcher.MatchThreadSafe([]byte(strings.ToLower(in.Description)))
	if len(hits) == 0 {
		return Result{}, false
	}

	best := -1
	for _, idx := range hits {
		if idx < 0 || idx >= len(m.patterns) {
			continue
		}
		p := m.patterns[idx]
		if p.direction != in.Direction {
			continue
		}
		if p.accountType != "" && p.accountType != in.AccountType {
			continue
		}
		if best < 0 || idx < best {
			best = idx
		}
	}
	if best < 0 {
		return Result{}, false
	}

	p := m.patterns[best]
	return resultFor(p.categoryID, SourceSmartPattern, p.confidence), true
}
