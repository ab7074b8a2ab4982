package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const (
	PricePolicyReject = "reject"
	PricePolicyFlag   = "flag"

	StockPolicyFloor  = "floor"
	StockPolicyReject = "reject"
)

// Configはアプリ全体の設定
type Config struct {
	Port  string // サーバーポート（8080）
	GoEnv string // development / production

	Database DatabaseConfig
	Log      LogConfig
	Razorpay RazorpayConfig
	Checkout CheckoutConfig

	JWTSecret string // JWT署名シークレット（発行は別サービス、ここでは検証だけ）

	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	URL      string // DATABASE_URL があれば最優先
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DATABASE_URL が無ければ個別の値から組み立てる
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

type LogConfig struct {
	Level    string
	Format   string
	SQLLevel string
}

type RazorpayConfig struct {
	KeyID     string
	KeySecret string // 空なら検証は常に失敗
}

type CheckoutConfig struct {
	PricePolicy    string
	PriceTolerance decimal.Decimal
	StockPolicy    string
}

// .env（あれば）→ 環境変数の順で読む
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	tolerance, err := decimal.NewFromString(v.GetString("PRICE_TOLERANCE"))
	if err != nil {
		return Config{}, fmt.Errorf("PRICE_TOLERANCE must be decimal: %w", err)
	}

	cfg := Config{
		Port:  v.GetString("PORT"),
		GoEnv: v.GetString("GO_ENV"),
		Database: DatabaseConfig{
			URL:             v.GetString("DATABASE_URL"),
			Host:            v.GetString("POSTGRES_HOST"),
			Port:            v.GetInt("POSTGRES_PORT"),
			User:            v.GetString("POSTGRES_USER"),
			Password:        v.GetString("POSTGRES_PASSWORD"),
			Name:            v.GetString("POSTGRES_DB"),
			SSLMode:         v.GetString("POSTGRES_SSLMODE"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Log: LogConfig{
			Level:    v.GetString("LOG_LEVEL"),
			Format:   v.GetString("LOG_FORMAT"),
			SQLLevel: v.GetString("LOG_SQL_LEVEL"),
		},
		Razorpay: RazorpayConfig{
			KeyID:     v.GetString("RAZORPAY_KEY_ID"),
			KeySecret: v.GetString("RAZORPAY_KEY_SECRET"),
		},
		Checkout: CheckoutConfig{
			PricePolicy:    strings.ToLower(v.GetString("PRICE_MISMATCH_POLICY")),
			PriceTolerance: tolerance,
			StockPolicy:    strings.ToLower(v.GetString("STOCK_POLICY")),
		},
		JWTSecret:       v.GetString("JWT_SECRET"),
		RequestTimeout:  v.GetDuration("REQUEST_TIMEOUT"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("GO_ENV", "development")

	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", 5432)
	v.SetDefault("POSTGRES_USER", "postgres")
	v.SetDefault("POSTGRES_PASSWORD", "postgres")
	v.SetDefault("POSTGRES_DB", "rushivan_agro")
	v.SetDefault("POSTGRES_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 20)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 30*time.Minute)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "")
	v.SetDefault("LOG_SQL_LEVEL", "warn")

	v.SetDefault("PRICE_MISMATCH_POLICY", PricePolicyReject)
	v.SetDefault("PRICE_TOLERANCE", "0.01")
	v.SetDefault("STOCK_POLICY", StockPolicyFloor)

	v.SetDefault("REQUEST_TIMEOUT", 10*time.Second)
	v.SetDefault("SHUTDOWN_TIMEOUT", 10*time.Second)
}

func (c Config) validate() error {
	//必須チェック
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Database.URL == "" && (c.Database.Host == "" || c.Database.Name == "") {
		return fmt.Errorf("DATABASE_URL or POSTGRES_HOST/POSTGRES_DB is required")
	}

	switch c.Checkout.PricePolicy {
	case PricePolicyReject, PricePolicyFlag:
	default:
		return fmt.Errorf("PRICE_MISMATCH_POLICY must be %q or %q", PricePolicyReject, PricePolicyFlag)
	}
	switch c.Checkout.StockPolicy {
	case StockPolicyFloor, StockPolicyReject:
	default:
		return fmt.Errorf("STOCK_POLICY must be %q or %q", StockPolicyFloor, StockPolicyReject)
	}
	if c.Checkout.PriceTolerance.IsNegative() {
		return fmt.Errorf("PRICE_TOLERANCE must be >= 0")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.GoEnv == "production"
}
