package categorization

import (
	"regexp"
	"sort"
	"strings"
)

// EvaluateRules runs user rules against a description and returns the first
// match. Rules are evaluated by priority descending; equal priorities keep
// the order the store returned them in. Matching is case-insensitive and a
// rule whose regex fails to compile is skipped, never fatal. Matched rules
// carry a fixed confidence of 1.0.
func EvaluateRules(rules []CategoryRule, description string) (Result, bool) {
	ordered := make([]CategoryRule, len(rules))
	copy(ordered, rules)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority > ordered[j].Priority
	})

	descLower := strings.ToLower(description)
	for _, rule := range ordered {
		if ruleMatches(rule, descLower) {
			return resultFor(rule.CategoryID, SourceRule, 1.0), true
		}
	}
	return Result{}, false
}

func ruleMatches(rule CategoryRule, descLower string) bool {
	pattern := strings.ToLower(rule.Pattern)
	switch rule.MatchType {
	case MatchContains:
		return strings.Contains(descLower, pattern)
	case MatchStartsWith:
		return strings.HasPrefix(descLower, pattern)
	case MatchEndsWith:
		return strings.HasSuffix(descLower, pattern)
	case MatchRegex:
		re, err := regexp.Compile(pattern)
		if err != nil {
			return false
		}
		return re.MatchString(descLower)
	default:
		return false
	}
}
