package config

import (
	"log"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Billing   BillingConfig
	Notify    NotifyConfig
	Printer   PrinterConfig
	Log       LogConfig
	Admin     AdminConfig
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
}

type JWTConfig struct {
	Secret      string
	ExpiryHours time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

// BillingConfig tunes the invoice engine and shift ledger
type BillingConfig struct {
	VATRate           decimal.Decimal // percentage, used when the settings table has no vat_rate
	MaxRetries        int
	RetryBackoff      time.Duration
	VarianceTolerance int64 // 0 disables the close-shift variance gate
}

type NotifyConfig struct {
	RabbitMQURL string // empty disables the broker publisher
	Exchange    string
	BufferSize  int
}

type PrinterConfig struct {
	Type      string
	USBPath   string
	Address   string
	Width     int
	StoreName string
}

type LogConfig struct {
	Level  string
	Format string
}

// AdminConfig seeds the first manager account
type AdminConfig struct {
	Name     string
	Username string
	PIN      string
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	setDefaults()

	return &Config{
		App: AppConfig{
			Name:  viper.GetString("APP_NAME"),
			Env:   viper.GetString("APP_ENV"),
			Port:  viper.GetString("APP_PORT"),
			Debug: viper.GetBool("APP_DEBUG"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
			Timezone: viper.GetString("DB_TIMEZONE"),
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			ExpiryHours: time.Duration(viper.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
		Billing: BillingConfig{
			VATRate:           parseRate(viper.GetString("VAT_RATE")),
			MaxRetries:        viper.GetInt("BILLING_TX_MAX_RETRIES"),
			RetryBackoff:      time.Duration(viper.GetInt("BILLING_RETRY_BACKOFF_MS")) * time.Millisecond,
			VarianceTolerance: viper.GetInt64("SHIFT_VARIANCE_TOLERANCE"),
		},
		Notify: NotifyConfig{
			RabbitMQURL: viper.GetString("RABBITMQ_URL"),
			Exchange:    viper.GetString("NOTIFY_EXCHANGE"),
			BufferSize:  viper.GetInt("NOTIFY_BUFFER_SIZE"),
		},
		Printer: PrinterConfig{
			Type:      viper.GetString("PRINTER_TYPE"),
			USBPath:   viper.GetString("PRINTER_USB_PATH"),
			Address:   viper.GetString("PRINTER_ADDRESS"),
			Width:     viper.GetInt("PRINTER_WIDTH"),
			StoreName: viper.GetString("STORE_NAME"),
		},
		Log: LogConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
		},
		Admin: AdminConfig{
			Name:     viper.GetString("ADMIN_NAME"),
			Username: viper.GetString("ADMIN_USERNAME"),
			PIN:      viper.GetString("ADMIN_PIN"),
		},
	}
}

func setDefaults() {
	viper.SetDefault("APP_NAME", "tablebill-api")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "tablebill")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "Africa/Nairobi")
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("JWT_EXPIRY_HOURS", 12)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
	viper.SetDefault("VAT_RATE", "10")
	viper.SetDefault("BILLING_TX_MAX_RETRIES", 3)
	viper.SetDefault("BILLING_RETRY_BACKOFF_MS", 25)
	viper.SetDefault("SHIFT_VARIANCE_TOLERANCE", 0)
	viper.SetDefault("RABBITMQ_URL", "")
	viper.SetDefault("NOTIFY_EXCHANGE", "tablebill.notifications")
	viper.SetDefault("NOTIFY_BUFFER_SIZE", 16)
	viper.SetDefault("PRINTER_TYPE", "none")
	viper.SetDefault("PRINTER_WIDTH", 32)
	viper.SetDefault("STORE_NAME", "TableBill")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("ADMIN_NAME", "Manager")
	viper.SetDefault("ADMIN_USERNAME", "")
	viper.SetDefault("ADMIN_PIN", "")
}

// parseRate falls back to 10% on a malformed or negative VAT_RATE
func parseRate(raw string) decimal.Decimal {
	rate, err := decimal.NewFromString(raw)
	if err != nil || rate.IsNegative() {
		log.Printf("Warning: invalid VAT_RATE %q, using 10", raw)
		return decimal.NewFromInt(10)
	}
	return rate
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}
