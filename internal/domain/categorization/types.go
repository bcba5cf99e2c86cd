// Package categorization assigns spending categories to imported
// transactions through a layered waterfall: hardcoded smart patterns, then
// user-defined rules, then an external inference model. The waterfall never
// fails; when every layer comes up empty the transaction stays
// uncategorised.
package categorization

import "github.com/google/uuid"

// Source tags how a category was assigned.
type Source string

const (
	SourceSmartPattern  Source = "SMART_PATTERN"
	SourceRule          Source = "RULE"
	SourceLLM           Source = "LLM"
	SourceManual        Source = "MANUAL"
	SourceUncategorised Source = "UNCATEGORISED"
)

// MatchType selects how a rule pattern is evaluated against a description.
type MatchType string

const (
	MatchContains   MatchType = "CONTAINS"
	MatchStartsWith MatchType = "STARTS_WITH"
	MatchEndsWith   MatchType = "ENDS_WITH"
	MatchRegex      MatchType = "REGEX"
)

// Category is a system or user-owned spending category. System category ids
// are fixed strings seeded at install time, so the id is text rather than a
// UUID.
type Category struct {
	ID   string
	Name string
	Type string
}

// CategoryRule is a user-defined categorization rule. A nil AccountID means
// the rule applies to all of the user's accounts.
type CategoryRule struct {
	ID         uuid.UUID
	Pattern    string
	MatchType  MatchType
	AccountID  *uuid.UUID
	CategoryID string
	Priority   int
	IsActive   bool
}

// Input carries everything the waterfall needs to categorize one
// transaction.
type Input struct {
	UserID      uuid.UUID
	AccountID   uuid.UUID
	Description string
	Amount      float64
	Direction   string
	AccountType string
}

// Result is the outcome of one waterfall run. CategoryID and Confidence are
// nil for UNCATEGORISED.
type Result struct {
	CategoryID *string
	Source     Source
	Confidence *float64
}

// Uncategorised is the terminal result when no layer produced a category.
func Uncategorised() Result {
	return Result{Source: SourceUncategorised}
}

func resultFor(categoryID string, source Source, confidence float64) Result {
	return Result{CategoryID: &categoryID, Source: source, Confidence: &confidence}
}
