package parser

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		input  string
		want   string
		wantOK bool
	}{
		{"1,234.56", "1234.56", true},
		{"500", "500", true},
		{"1,00,000.00", "100000", true},
		{" 250.00 ", "250", true},
		{"INR 42.5", "42.5", true},
		{"1,200.00 Cr", "1200", true},
		{"", "0", false},
		{"n/a", "0", false},
		{"Cr", "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := normalizeAmount(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNormalizeAmount_KeepsScale(t *testing.T) {
	got, ok := normalizeAmount("250.00")
	assert.True(t, ok)
	assert.Equal(t, int32(-2), got.Exponent())
}

func TestDetectForex(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantOK    bool
		currency  string
		amount    string
		remaining string
	}{
		{"usd", "STEAM GAMES USD 20.00", true, "USD", "20.00", "STEAM GAMES"},
		{"grouped", "HOTEL PARIS EUR 1,250.50", true, "EUR", "1250.50", "HOTEL PARIS"},
		{"whole", "APP STORE GBP 9", true, "GBP", "9", "APP STORE"},
		{"no fragment", "COFFEE SHOP PURCHASE", false, "", "", ""},
		{"not trailing", "USD 20.00 STEAM", false, "", "", ""},
		{"lowercase code", "steam usd 20.00", false, "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx, ok := detectForex(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.Equal(t, tt.currency, fx.Currency)
			assert.True(t, fx.Amount.Equal(decimal.RequireFromString(tt.amount)))
			assert.Equal(t, tt.remaining, fx.Description)
		})
	}
}

func TestForexRate(t *testing.T) {
	amount := decimal.NewNullDecimal(decimal.RequireFromString("1660.00"))
	forex := decimal.NewNullDecimal(decimal.RequireFromString("20.00"))

	rate := forexRate(amount, forex, 4)
	assert.True(t, rate.Valid)
	assert.Equal(t, "83.0000", rate.Decimal.StringFixed(4))

	rate = forexRate(decimal.NewNullDecimal(decimal.RequireFromString("100")), decimal.NewNullDecimal(decimal.RequireFromString("3")), 2)
	assert.Equal(t, "33.33", rate.Decimal.StringFixed(2))

	assert.False(t, forexRate(amount, decimal.NullDecimal{}, 4).Valid)
	assert.False(t, forexRate(decimal.NullDecimal{}, forex, 4).Valid)
	assert.False(t, forexRate(amount, decimal.NewNullDecimal(decimal.Zero), 4).Valid)
}
