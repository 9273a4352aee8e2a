package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Rhymond/go-money"

	"github.com/hongminglow/erp-api/internal/ledger"
)

// Document store kinds.
const (
	DocumentStoreDynamo = "dynamodb"
	DocumentStoreMemory = "memory"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port         string
	DatabaseURL  string
	JWTSecret    string
	JWTIssuer    string
	JWTTTL       time.Duration
	CORSOrigins  []string
	AuthRequired bool

	DocumentStore  string
	AWSRegion      string
	DynamoEndpoint string
	DynamoPrefix   string

	BackendTimeout  time.Duration
	FallbackOnEmpty bool
	BalancePolicy   ledger.BalancePolicy

	UploadDir     string
	PublicBaseURL string
	Currency      string

	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Port:         fallback(os.Getenv("PORT"), "8080"),
		DatabaseURL:  strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:    strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:    fallback(os.Getenv("JWT_ISSUER"), "erp-api"),
		CORSOrigins:  parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),
		AuthRequired: parseBool(os.Getenv("AUTH_REQUIRED"), true),

		DocumentStore:  strings.ToLower(fallback(os.Getenv("DOCUMENT_STORE"), DocumentStoreDynamo)),
		AWSRegion:      fallback(os.Getenv("AWS_REGION"), "ap-south-1"),
		DynamoEndpoint: strings.TrimSpace(os.Getenv("DYNAMODB_ENDPOINT")),
		DynamoPrefix:   fallback(os.Getenv("DYNAMODB_TABLE_PREFIX"), "erp_"),

		FallbackOnEmpty: parseBool(os.Getenv("FALLBACK_ON_EMPTY"), true),

		UploadDir:     fallback(os.Getenv("UPLOAD_DIR"), ".uploads"),
		PublicBaseURL: strings.TrimRight(strings.TrimSpace(os.Getenv("PUBLIC_BASE_URL")), "/"),
		Currency:      strings.ToUpper(fallback(os.Getenv("CURRENCY"), "USD")),

		KafkaTopic: fallback(os.Getenv("KAFKA_TOPIC"), "erp-events"),
	}
	if brokers := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); brokers != "" {
		cfg.KafkaBrokers = parseCSV(brokers)
	}

	minutes := fallback(os.Getenv("JWT_TTL_MINUTES"), "60")
	if ttlMinutes, err := strconv.Atoi(minutes); err == nil && ttlMinutes > 0 {
		cfg.JWTTTL = time.Duration(ttlMinutes) * time.Minute
	} else {
		cfg.JWTTTL = 60 * time.Minute
	}

	timeoutMS := fallback(os.Getenv("BACKEND_TIMEOUT_MS"), "3000")
	if ms, err := strconv.Atoi(timeoutMS); err == nil && ms > 0 {
		cfg.BackendTimeout = time.Duration(ms) * time.Millisecond
	} else {
		cfg.BackendTimeout = 3 * time.Second
	}

	policy, err := ledger.ParseBalancePolicy(os.Getenv("DAYBOOK_BALANCE_POLICY"))
	if err != nil {
		return Config{}, err
	}
	cfg.BalancePolicy = policy

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}
	if money.GetCurrency(cfg.Currency) == nil {
		return Config{}, fmt.Errorf("CURRENCY %q is not a known ISO 4217 code", cfg.Currency)
	}
	if cfg.DocumentStore != DocumentStoreDynamo && cfg.DocumentStore != DocumentStoreMemory {
		return Config{}, fmt.Errorf("DOCUMENT_STORE must be %q or %q", DocumentStoreDynamo, DocumentStoreMemory)
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func parseBool(value string, def bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return b
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
