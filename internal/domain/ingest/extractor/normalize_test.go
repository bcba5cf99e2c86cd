package extractor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSignedAmount(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want float64
		ok   bool
	}{
		{"plain", "1250.50", 1250.50, true},
		{"thousands separators", "1,50,000.00", 150000.00, true},
		{"currency code", "INR 2,500.00", 2500.00, true},
		{"rupee symbol", "₹499", 499, true},
		{"rs prefix", "Rs. 120.00", 120.00, true},
		{"negative keeps sign", "-50.00", -50.00, true},
		{"empty", "", 0, false},
		{"text", "OPENING BALANCE", 0, false},
		{"currency only", "INR", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseSignedAmount(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestResolveDebitCredit(t *testing.T) {
	t.Run("debit cell only", func(t *testing.T) {
		amount, direction, ok := resolveDebitCredit("1,200.00", true, "", false)
		require.True(t, ok)
		assert.InDelta(t, 1200.00, amount, 1e-9)
		assert.Equal(t, DirectionDebit, direction)
	})

	t.Run("credit cell only", func(t *testing.T) {
		amount, direction, ok := resolveDebitCredit("", false, "500", true)
		require.True(t, ok)
		assert.InDelta(t, 500.0, amount, 1e-9)
		assert.Equal(t, DirectionCredit, direction)
	})

	t.Run("neither parseable", func(t *testing.T) {
		_, _, ok := resolveDebitCredit("n/a", true, "-", true)
		assert.False(t, ok)
	})

	t.Run("zero amount discarded", func(t *testing.T) {
		_, _, ok := resolveDebitCredit("0.00", true, "", false)
		assert.False(t, ok)
	})
}

func TestResolveSingleAmount(t *testing.T) {
	t.Run("credit indicator", func(t *testing.T) {
		amount, direction, ok := resolveSingleAmount("450.00", "Cr", true)
		require.True(t, ok)
		assert.InDelta(t, 450.00, amount, 1e-9)
		assert.Equal(t, DirectionCredit, direction)
	})

	t.Run("debit indicator", func(t *testing.T) {
		_, direction, ok := resolveSingleAmount("450.00", "Dr", true)
		require.True(t, ok)
		assert.Equal(t, DirectionDebit, direction)
	})

	t.Run("unknown indicator means debit", func(t *testing.T) {
		_, direction, ok := resolveSingleAmount("450.00", "??", true)
		require.True(t, ok)
		assert.Equal(t, DirectionDebit, direction)
	})

	t.Run("negative without indicator is credit magnitude", func(t *testing.T) {
		amount, direction, ok := resolveSingleAmount("-50.00", "", false)
		require.True(t, ok)
		assert.InDelta(t, 50.00, amount, 1e-9)
		assert.Equal(t, DirectionCredit, direction)
	})

	t.Run("positive without indicator is debit", func(t *testing.T) {
		_, direction, ok := resolveSingleAmount("50.00", "", false)
		require.True(t, ok)
		assert.Equal(t, DirectionDebit, direction)
	})

	t.Run("zero discarded", func(t *testing.T) {
		_, _, ok := resolveSingleAmount("0", "", false)
		assert.False(t, ok)
	})
}

func TestParseDayFirstDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"02/01/2024", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"2/1/2024", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"15/07/24", time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)},
		{"03-Apr-24", time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC)},
		{"3-Apr-2024", time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC)},
		{"2024-04-03", time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseDayFirstDate(tt.in)
			require.True(t, ok)
			assert.True(t, tt.want.Equal(got))
		})
	}

	t.Run("unparseable", func(t *testing.T) {
		_, ok := parseDayFirstDate("OPENING BALANCE")
		assert.False(t, ok)
	})
}

func TestSplitDateTime(t *testing.T) {
	t.Run("combined date and time", func(t *testing.T) {
		date, clock := splitDateTime("15/07/2024 09:05:33")
		assert.Equal(t, "15/07/2024", date)
		assert.Equal(t, "09:05", clock)
	})

	t.Run("date only", func(t *testing.T) {
		date, clock := splitDateTime("15/07/2024")
		assert.Equal(t, "15/07/2024", date)
		assert.Empty(t, clock)
	})

	t.Run("invalid clock token dropped", func(t *testing.T) {
		date, clock := splitDateTime("15/07/2024 29:99")
		assert.Equal(t, "15/07/2024", date)
		assert.Empty(t, clock)
	})

	t.Run("empty", func(t *testing.T) {
		date, clock := splitDateTime("   ")
		assert.Empty(t, date)
		assert.Empty(t, clock)
	})
}

func TestParseClockToken(t *testing.T) {
	clock, ok := parseClockToken("9:5")
	require.True(t, ok)
	assert.Equal(t, "09:05", clock)

	_, ok = parseClockToken("24:00")
	assert.False(t, ok)
	_, ok = parseClockToken("12:60")
	assert.False(t, ok)
	_, ok = parseClockToken("1230")
	assert.False(t, ok)
}
