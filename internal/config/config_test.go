package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STATEMENT_LOCAL_CURRENCY", "")
	t.Setenv("STATEMENT_INTL_SPLIT_X", "")
	t.Setenv("STATEMENT_WORKERS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "INR", cfg.Statement.LocalCurrency)
	assert.Equal(t, 380.0, cfg.Statement.IntlSplitX)
	assert.Equal(t, 12.0, cfg.Statement.CellGap)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("STATEMENT_LOCAL_CURRENCY", "gbp")
	t.Setenv("STATEMENT_INTL_SPLIT_X", "402.5")
	t.Setenv("STATEMENT_WORKERS", "8")
	t.Setenv("SERVER_ADDR", ":9000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "GBP", cfg.Statement.LocalCurrency)
	assert.Equal(t, 402.5, cfg.Statement.IntlSplitX)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, ":9000", cfg.Server.Addr)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("STATEMENT_INTL_SPLIT_X", "wide")
	t.Setenv("STATEMENT_WORKERS", "many")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 380.0, cfg.Statement.IntlSplitX)
	assert.Equal(t, 4, cfg.Workers)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"currency too long", func(c *Config) { c.Statement.LocalCurrency = "RUPEE" }},
		{"negative split", func(c *Config) { c.Statement.IntlSplitX = -1 }},
		{"zero cell gap", func(c *Config) { c.Statement.CellGap = 0 }},
		{"no workers", func(c *Config) { c.Workers = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, Default().Validate())
}
