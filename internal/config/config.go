package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Statement StatementConfig
	Server    ServerConfig
	LogLevel  string
	Workers   int
}

// StatementConfig holds the template-bound parsing constants.
type StatementConfig struct {
	// LocalCurrency is used when a transaction carries no forex fragment.
	LocalCurrency string
	// IntlSplitX is the x offset separating the currency code cell from the
	// forex amount cell on legacy international pages. It is tied to one statement
	// template and will need changing if the layout moves.
	IntlSplitX float64
	// CellGap is the horizontal gap in points that separates table cells.
	CellGap float64
}

type ServerConfig struct {
	Addr        string
	BodyLimitMB int
}

const (
	DefaultLocalCurrency = "INR"
	DefaultIntlSplitX    = 380
	DefaultCellGap       = 12
)

// Default returns the configuration used when nothing is set in the environment.
func Default() *Config {
	return &Config{
		Statement: StatementConfig{
			LocalCurrency: DefaultLocalCurrency,
			IntlSplitX:    DefaultIntlSplitX,
			CellGap:       DefaultCellGap,
		},
		Server: ServerConfig{
			Addr:        ":8080",
			BodyLimitMB: 32,
		},
		LogLevel: "info",
		Workers:  4,
	}
}

// Load reads configuration from environment variables, after loading a .env
// file from the working directory when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	def := Default()
	cfg := &Config{
		Statement: StatementConfig{
			LocalCurrency: strings.ToUpper(getEnv("STATEMENT_LOCAL_CURRENCY", def.Statement.LocalCurrency)),
			IntlSplitX:    getEnvAsFloat("STATEMENT_INTL_SPLIT_X", def.Statement.IntlSplitX),
			CellGap:       getEnvAsFloat("STATEMENT_CELL_GAP", def.Statement.CellGap),
		},
		Server: ServerConfig{
			Addr:        getEnv("SERVER_ADDR", def.Server.Addr),
			BodyLimitMB: getEnvAsInt("SERVER_BODY_LIMIT_MB", def.Server.BodyLimitMB),
		},
		LogLevel: getEnv("LOG_LEVEL", def.LogLevel),
		Workers:  getEnvAsInt("STATEMENT_WORKERS", def.Workers),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that would otherwise fail deep inside a parse.
func (c *Config) Validate() error {
	if len(c.Statement.LocalCurrency) != 3 {
		return fmt.Errorf("STATEMENT_LOCAL_CURRENCY must be a 3-letter code, got %q", c.Statement.LocalCurrency)
	}
	if c.Statement.IntlSplitX <= 0 {
		return fmt.Errorf("STATEMENT_INTL_SPLIT_X must be positive, got %v", c.Statement.IntlSplitX)
	}
	if c.Statement.CellGap <= 0 {
		return fmt.Errorf("STATEMENT_CELL_GAP must be positive, got %v", c.Statement.CellGap)
	}
	if c.Workers < 1 {
		return fmt.Errorf("STATEMENT_WORKERS must be at least 1, got %d", c.Workers)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}
