package main

import (
	"errors"
	"log"
	"strings"

	"gryffintwin/pkg/envconf"

	"github.com/shopspring/decimal"
)

const devJWTSecret = "dev-insecure-secret-change"

// Config is built once in main and handed to every component.
type Config struct {
	Addr        string
	Env         string
	DSN         string
	AutoMigrate bool
	JWTSecret   []byte
	CORSOrigins []string
	// login and register attempts per client IP
	LoginPerMinute int
	LoginBurst     int
	Finance        FinanceConfig
}

// FinanceConfig holds the illustrative figures the dashboard shows next to real ledger totals.
type FinanceConfig struct {
	MonthlyBudget    decimal.Decimal
	Investments      decimal.Decimal
	InvestmentReturn float64
	BalanceChange    float64
	FinancialScore   int
	CheckingShare    decimal.Decimal // of the balance; savings gets the rest
	MonitoredCards   int
	TwoFactorEnabled bool
}

func DefaultFinanceConfig() FinanceConfig {
	return FinanceConfig{
		MonthlyBudget:    decimal.NewFromInt(5000),
		Investments:      decimal.NewFromInt(12450),
		InvestmentReturn: 8.2,
		BalanceChange:    12.5,
		FinancialScore:   850,
		CheckingShare:    decimal.RequireFromString("0.4"),
		MonitoredCards:   4,
		TwoFactorEnabled: true,
	}
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// LoadConfig reads the environment. Call envconf.LoadDotEnv first to honour a local .env file.
func LoadConfig() (Config, error) {
	def := DefaultFinanceConfig()
	cfg := Config{
		Addr:           envconf.String("API_ADDR", ":8081"),
		Env:            strings.ToLower(envconf.String("APP_ENV", "development")),
		DSN:            envconf.String("DB_DSN", ""),
		AutoMigrate:    envconf.Bool("DB_AUTO_MIGRATE", true),
		CORSOrigins:    envconf.List("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5000", "http://127.0.0.1:5000"}),
		LoginPerMinute: envconf.Int("LOGIN_RATE_PER_MINUTE", 10),
		LoginBurst:     envconf.Int("LOGIN_RATE_BURST", 5),
		Finance: FinanceConfig{
			MonthlyBudget:    envconf.Decimal("MONTHLY_BUDGET", def.MonthlyBudget),
			Investments:      envconf.Decimal("INVESTMENTS", def.Investments),
			InvestmentReturn: envconf.Float("INVESTMENT_RETURN", def.InvestmentReturn),
			BalanceChange:    envconf.Float("BALANCE_CHANGE", def.BalanceChange),
			FinancialScore:   envconf.Int("FINANCIAL_SCORE", def.FinancialScore),
			CheckingShare:    envconf.Decimal("CHECKING_SHARE", def.CheckingShare),
			MonitoredCards:   envconf.Int("MONITORED_CARDS", def.MonitoredCards),
			TwoFactorEnabled: envconf.Bool("TWO_FACTOR_ENABLED", def.TwoFactorEnabled),
		},
	}
	if cfg.DSN == "" {
		return Config{}, errors.New("DB_DSN is not set. This project requires a Postgres DSN in DB_DSN")
	}
	if cfg.Finance.CheckingShare.IsNegative() || cfg.Finance.CheckingShare.GreaterThan(decimal.NewFromInt(1)) {
		return Config{}, errors.New("CHECKING_SHARE must be between 0 and 1")
	}
	secret := envconf.String("JWT_SECRET", "")
	if secret == "" {
		if cfg.IsProduction() {
			return Config{}, errors.New("JWT_SECRET must be set when APP_ENV=production")
		}
		log.Println("warning: JWT_SECRET not set, using the development secret")
		secret = devJWTSecret
	}
	cfg.JWTSecret = []byte(secret)
	return cfg, nil
}
