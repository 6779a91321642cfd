package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config is the whole application configuration, populated from environment
// variables. Gateway credentials are carried here and injected into the
// gateway clients; nothing reads them from the environment at call time.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Payment  PaymentConfig
	VNPay    VNPayConfig
	Momo     MomoConfig
	Job      JobConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	AccessTokenExpiry int // minutes
}

// PaymentConfig tunes the payment lifecycle shared by all gateways.
type PaymentConfig struct {
	MaxRetries     int // attempts allowed per order before we stop creating payments
	ExpiryMinutes  int // pending payments older than this get cancelled by the worker
	RequestTimeout int // seconds, outbound gateway calls
}

type VNPayConfig struct {
	TmnCode    string // merchant code issued by the gateway
	HashSecret string // secret key for HMAC-SHA512
	APIURL     string
	ReturnURL  string // browser redirect target
	IPNURL     string // server-to-server webhook
}

type MomoConfig struct {
	PartnerCode string
	AccessKey   string
	SecretKey   string // secret key for HMAC-SHA256
	APIURL      string
	ReturnURL   string
	IPNURL      string
}

// JobConfig tunes the worker's scheduled jobs.
type JobConfig struct {
	ExpiredCouponBatch  int
	ExpiredPaymentBatch int
}

func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Shop API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "shop"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 25),
			MinConns: getEnvInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenExpiry: getEnvInt("JWT_ACCESS_EXPIRY", 15),
		},
		Payment: PaymentConfig{
			MaxRetries:     getEnvInt("PAYMENT_MAX_RETRIES", 3),
			ExpiryMinutes:  getEnvInt("PAYMENT_EXPIRY_MINUTES", 30),
			RequestTimeout: getEnvInt("PAYMENT_REQUEST_TIMEOUT", 30),
		},
		VNPay: VNPayConfig{
			TmnCode:    getEnv("VNPAY_TMN_CODE", ""),
			HashSecret: getEnv("VNPAY_HASH_SECRET", ""),
			APIURL:     getEnv("VNPAY_API_URL", "https://sandbox.vnpayment.vn"),
			ReturnURL:  getEnv("VNPAY_RETURN_URL", "http://localhost:3000/payment/callback"),
			IPNURL:     getEnv("VNPAY_IPN_URL", "http://localhost:8080/api/v1/webhooks/vnpay"),
		},
		Momo: MomoConfig{
			PartnerCode: getEnv("MOMO_PARTNER_CODE", ""),
			AccessKey:   getEnv("MOMO_ACCESS_KEY", ""),
			SecretKey:   getEnv("MOMO_SECRET_KEY", ""),
			APIURL:      getEnv("MOMO_API_URL", "https://test-payment.momo.vn"),
			ReturnURL:   getEnv("MOMO_RETURN_URL", "http://localhost:3000/payment/callback"),
			IPNURL:      getEnv("MOMO_IPN_URL", "http://localhost:8080/api/v1/webhooks/momo"),
		},
		Job: JobConfig{
			ExpiredCouponBatch:  getEnvInt("JOB_EXPIRED_COUPON_BATCH", 500),
			ExpiredPaymentBatch: getEnvInt("JOB_EXPIRED_PAYMENT_BATCH", 100),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.App.Environment == "production" {
		if c.JWT.Secret == "your-secret-key-change-in-production" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}

		if c.VNPay.TmnCode == "" {
			fmt.Println("WARNING: VNPay TmnCode not set - VNPay payment will not work")
		}
		if c.Momo.PartnerCode == "" {
			fmt.Println("WARNING: Momo PartnerCode not set - Momo payment will not work")
		}
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
