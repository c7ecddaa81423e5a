package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"
)

var (
	// DefaultDBName is the default name of the database.
	DefaultDBName = "inkwell"

	// DefaultDBTestName is the default name of the test database.
	DefaultDBTestName = "inkwell_test"

	// DefaultPort is the default port to expose the API server.
	DefaultPort int = 8080

	// DBHost is the host machine running the postgres instance.
	DBHost string

	// DBPort is the port that exposes the db server.
	DBPort string

	// DBName is the postgres database name.
	DBName string

	// DBUser is the postgres user account.
	DBUser string

	// DBPassword is the password for the DBUser postgres account.
	DBPassword string

	// DBSSLMode sets the SSL mode of the postgres client.
	DBSSLMode string

	// LogLevel is the level of logging for the application.
	LogLevel string

	// VerifyURL is the endpoint of the license verification service.
	VerifyURL string

	// ProxyURL is the endpoint of the remote AI generation proxy.
	ProxyURL string

	// AIQuotaTokens is the token allowance used for usage warnings.
	AIQuotaTokens int64

	// WarnThresholdPercent is the usage percentage that triggers a warning.
	WarnThresholdPercent float64

	// StripeKey is for making Stripe API requests.
	StripeKey string

	// Stripe webhook secret.
	StripeWebhookSecret string

	// SendgridAPIKey is for sending emails.
	SendgridAPIKey string

	// Name on email license delivery.
	EmailName string

	// From address for email license delivery.
	EmailFrom string
)

func Init() error {
	DBHost = getEnvWithDefault("INKWELL_DB_HOST", "localhost")
	DBPort = getEnvWithDefault("INKWELL_DB_PORT", "5432")
	DBName = getEnvWithDefault("INKWELL_DB_NAME", DefaultDBName)
	DBUser = getEnvWithDefault("INKWELL_DB_USER", "postgres")
	DBPassword = getEnvWithDefault("INKWELL_DB_PASS", "")
	DBSSLMode = getEnvWithDefault("INKWELL_DB_SSL_MODE", "disable")

	LogLevel = getEnvWithDefault("INKWELL_LOG_LEVEL", strconv.Itoa(int(zerolog.InfoLevel)))

	missingEnvErr := func(envVar string) error {
		return fmt.Errorf("%s not found in environment", envVar)
	}

	if VerifyURL = os.Getenv("INKWELL_VERIFY_URL"); VerifyURL == "" {
		return missingEnvErr("INKWELL_VERIFY_URL")
	}

	if ProxyURL = os.Getenv("INKWELL_PROXY_URL"); ProxyURL == "" {
		return missingEnvErr("INKWELL_PROXY_URL")
	}

	var err error

	quota := getEnvWithDefault("INKWELL_AI_QUOTA_TOKENS", "5000000")
	if AIQuotaTokens, err = strconv.ParseInt(quota, 10, 64); err != nil {
		return fmt.Errorf("INKWELL_AI_QUOTA_TOKENS must be an integer: %v", err)
	}

	threshold := getEnvWithDefault("INKWELL_WARN_THRESHOLD_PERCENT", "75")
	if WarnThresholdPercent, err = strconv.ParseFloat(threshold, 64); err != nil {
		return fmt.Errorf("INKWELL_WARN_THRESHOLD_PERCENT must be a number: %v", err)
	}

	if StripeKey = os.Getenv("STRIPE_KEY"); StripeKey == "" {
		return missingEnvErr("STRIPE_KEY")
	}

	if StripeWebhookSecret = os.Getenv("STRIPE_WEBHOOK_SECRET"); StripeWebhookSecret == "" {
		return missingEnvErr("STRIPE_WEBHOOK_SECRET")
	}

	if SendgridAPIKey = os.Getenv("SENDGRID_API_KEY"); SendgridAPIKey == "" {
		return missingEnvErr("SENDGRID_API_KEY")
	}

	if EmailName = getEnvWithDefault("EMAIL_NAME", "John Doe"); EmailName == "" {
		return missingEnvErr("EMAIL_NAME")
	}

	if EmailFrom = getEnvWithDefault("EMAIL_FROM", "test@example.com"); EmailFrom == "" {
		return missingEnvErr("EMAIL_FROM")
	}

	return nil
}

func getEnvWithDefault(name string, def string) string {
	res, found := os.LookupEnv(name)
	if !found {
		return def
	}
	return res
}
