package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	PromptPay PromptPayConfig
	Storage   StorageConfig
	SMTP      SMTPConfig
	Broadcast BroadcastConfig
}

type AppConfig struct {
	Addr    string
	BaseURL string
	Env     string // dev|prod
}

type DBConfig struct {
	DSN string
}

type PromptPayConfig struct {
	// MerchantID is the PromptPay target (phone number or national id).
	// Empty means payments are not configured; order creation must refuse.
	MerchantID string
	BaseURL    string
	// ShippingSatang is a flat shipping fee added to every order.
	ShippingSatang int
}

type StorageConfig struct {
	Driver string // local|s3

	LocalDir       string
	LocalURLPrefix string

	S3Region        string
	S3Bucket        string
	S3Prefix        string
	S3PublicBaseURL string
}

type SMTPConfig struct {
	Host          string
	Port          string
	User          string
	Pass          string
	TLSMode       string // none|tls|starttls
	SkipVerifyTLS bool

	FromAddr string
	FromName string
}

type BroadcastConfig struct {
	Workers int
}

func Load() Config {
	return Config{
		App: AppConfig{
			Addr:    envOr("APP_ADDR", ":8080"),
			BaseURL: envOr("APP_BASE_URL", "http://localhost:8080"),
			Env:     envOr("APP_ENV", "dev"),
		},
		DB: DBConfig{
			DSN: os.Getenv("DB_DSN"),
		},
		PromptPay: PromptPayConfig{
			MerchantID:     strings.TrimSpace(os.Getenv("PROMPTPAY_ID")),
			BaseURL:        envOr("PROMPTPAY_BASE_URL", "https://promptpay.io"),
			ShippingSatang: envInt("SHIPPING_FEE_SATANG", 0),
		},
		Storage: StorageConfig{
			Driver:          envOr("STORAGE_DRIVER", "local"),
			LocalDir:        envOr("LOCAL_UPLOAD_DIR", "./storage/uploads"),
			LocalURLPrefix:  envOr("LOCAL_UPLOAD_URL_PREFIX", "/uploads"),
			S3Region:        os.Getenv("S3_REGION"),
			S3Bucket:        os.Getenv("S3_BUCKET"),
			S3Prefix:        envOr("S3_PREFIX", "slips"),
			S3PublicBaseURL: os.Getenv("S3_PUBLIC_BASE_URL"),
		},
		SMTP: SMTPConfig{
			Host:          envOr("SMTP_HOST", "localhost"),
			Port:          envOr("SMTP_PORT", "1025"),
			User:          os.Getenv("SMTP_USER"),
			Pass:          os.Getenv("SMTP_PASS"),
			TLSMode:       envOr("SMTP_TLS_MODE", "none"),
			SkipVerifyTLS: envBool("SMTP_SKIP_VERIFY_TLS", false),
			FromAddr:      envOr("MAIL_FROM_ADDR", "no-reply@kittisap.shop"),
			FromName:      envOr("MAIL_FROM_NAME", "Kittisap Shop"),
		},
		Broadcast: BroadcastConfig{
			Workers: envInt("BROADCAST_WORKERS", 6),
		},
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envBool(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
