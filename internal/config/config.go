package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values. Each field corresponds to an
// environment variable. The types reflect how the values are used in the
// application: strings for identifiers and secrets, ints for durations and
// costs.
type Config struct {
	Env             string // application environment (e.g. "dev", "prod")
	Port            string // HTTP port to listen on
	DBUser          string // database username
	DBPass          string // database password (optional)
	DBHost          string // database host address
	DBPort          string // database port number
	DBName          string // database name
	JWTSecret       string // secret used to sign session JWTs
	SessionTTLDays  int    // session token time-to-live in days
	BcryptCost      int    // bcrypt cost for password hashing
	OTPTTLMinutes   int    // one-time code lifetime in minutes
	SMSAPIKey       string // API key for the SMS gateway
	SMSSenderID     string // sender id presented on outgoing SMS
	SMSTemplateID   string // DLT template id required by the gateway
	SMSGatewayURL   string // base URL of the SMS gateway
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values cause
// the program to exit with a fatal log message. SMS settings fall back to
// defaults so local development works without a gateway account.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		SessionTTLDays: intOr("SESSION_TOKEN_TTL_DAYS", 30),
		BcryptCost:     intOr("BCRYPT_COST", 10),
		OTPTTLMinutes:  intOr("OTP_TTL_MIN", 5),
		SMSAPIKey:      os.Getenv("SMS_API_KEY"),
		SMSSenderID:    strOr("SMS_SENDER_ID", "DRAFT4"),
		SMSTemplateID:  os.Getenv("SMS_TEMPLATE_ID"),
		SMSGatewayURL:  strOr("SMS_GATEWAY_URL", "https://text.draft4sms.com/vb/apikey.php"),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// strOr returns the environment value or a default when unset.
func strOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// intOr returns the environment value parsed as int, or a default when the
// variable is unset or malformed.
func intOr(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}
