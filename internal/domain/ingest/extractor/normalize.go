package extractor

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// currencyTokens are stripped from amount cells before numeric parsing.
// Longer tokens come first so "Rs." wins over "Rs".
var currencyTokens = []string{"INR", "USD", "EUR", "GBP", "Rs.", "Rs", "₹", "$", "€", "£"}

// indicator values meaning CREDIT; anything else in an indicator column
// means DEBIT.
var creditIndicators = map[string]bool{
	"cr":     true,
	"credit": true,
	"c":      true,
	"+":      true,
}

// parseSignedAmount parses an amount cell keeping its sign. Thousands
// separators, currency codes and symbols are stripped first. Returns false
// for cells that do not contain a number.
func parseSignedAmount(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	for _, tok := range currencyTokens {
		s = strings.ReplaceAll(s, tok, "")
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	f, _ := d.Float64()
	return f, true
}

// resolveDebitCredit resolves amount and direction from separate
// withdrawal/deposit cells: whichever is present and parses wins, as an
// absolute magnitude. When both are present the credit cell wins, matching
// how statements fill exactly one of the two. Returns false when neither
// yields a positive amount.
func resolveDebitCredit(debitRaw string, debitOK bool, creditRaw string, creditOK bool) (float64, Direction, bool) {
	amount := 0.0
	direction := DirectionDebit

	if debitOK {
		if v, ok := parseSignedAmount(debitRaw); ok && v != 0 {
			amount = abs(v)
			direction = DirectionDebit
		}
	}
	if creditOK {
		if v, ok := parseSignedAmount(creditRaw); ok && v != 0 {
			amount = abs(v)
			direction = DirectionCredit
		}
	}

	if amount <= 0 {
		return 0, direction, false
	}
	return amount, direction, true
}

// resolveSingleAmount resolves amount and direction from one amount cell.
// With an indicator cell the indicator decides the direction; without one
// the raw sign does (negative means CREDIT). The stored amount is always the
// positive magnitude. Returns false when the amount is missing, unparseable
// or zero.
func resolveSingleAmount(amountRaw string, indicatorRaw string, hasIndicator bool) (float64, Direction, bool) {
	v, ok := parseSignedAmount(amountRaw)
	if !ok || v == 0 {
		return 0, DirectionDebit, false
	}

	direction := DirectionDebit
	if hasIndicator {
		if creditIndicators[strings.ToLower(strings.TrimSpace(indicatorRaw))] {
			direction = DirectionCredit
		}
	} else if v < 0 {
		direction = DirectionCredit
	}

	return abs(v), direction, true
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// dayFirstLayouts are tried in order for date cells. Unpadded numeric fields
// accept both "2/1/2024" and "02/01/2024".
var dayFirstLayouts = []string{
	"2/1/2006",
	"2/1/06",
	"2-1-2006",
	"2-1-06",
	"2-Jan-2006",
	"2-Jan-06",
	"2 Jan 2006",
	"2.1.2006",
	"2006-1-2",
	"2006-1-2 15:04:05",
	"2006-01-02T15:04:05Z",
}

// parseDayFirstDate parses a date cell using a day-first convention.
func parseDayFirstDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dayFirstLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// splitDateTime handles combined date+time cells: the first whitespace token
// is the date, and the first valid HH:MM token among the rest is the time of
// day. Invalid clock tokens are dropped, never fatal.
func splitDateTime(raw string) (dateToken, clock string) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return "", ""
	}
	dateToken = fields[0]
	for _, tok := range fields[1:] {
		if c, ok := parseClockToken(tok); ok {
			return dateToken, c
		}
	}
	return dateToken, ""
}

// parseClockToken validates an HH:MM token (0-23 hours, 0-59 minutes) and
// returns it zero-padded.
func parseClockToken(tok string) (string, bool) {
	parts := strings.Split(tok, ":")
	if len(parts) < 2 {
		return "", false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", false
	}
	return twoDigits(hour) + ":" + twoDigits(minute), true
}

func twoDigits(v int) string {
	if v < 10 {
		return "0" + strconv.Itoa(v)
	}
	return strconv.Itoa(v)
}
