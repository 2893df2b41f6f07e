package config

import (
	"fmt"     // Error formatting
	"net/url" // URL validation
	"os"      // For environment variables
	"slices"  // Membership checks
	"strconv" // For string to int conversion
	"strings" // String manipulation
	"time"    // Durations

	"github.com/joho/godotenv" // For loading .env files
)

// Store backends
const (
	BackendFirestore = "firestore"
	BackendMySQL     = "mysql"
	BackendSQLite    = "sqlite"
	BackendPostgres  = "postgres"
	BackendMemory    = "memory"
)

// Cache backends
const (
	CacheNone   = "none"
	CacheRedis  = "redis"
	CacheMemory = "memory"
)

// Key sources for token verification
const (
	KeySourceGoogle         = "google"
	KeySourceServiceAccount = "service-account"
)

// Config holds the application configuration
type Config struct {
	AppPort  string // Application port
	IsProd   bool   // Is production environment
	LogLevel string // logrus level name

	ServiceAccountPath string // Firebase service account key file
	AuthKeySource      string // google or service-account
	GoogleCertsURL     string // Certificates used with the google key source

	StoreBackend        string // firestore, mysql, sqlite, postgres or memory
	FirestoreCollection string // Firestore collection holding transactions
	DBUser              string // Database user
	DBPassword          string // Database password
	DBHost              string // Database host
	DBPort              string // Database port
	DBName              string // Database name
	SQLitePath          string // SQLite database file
	DatabaseURL         string // Postgres connection string

	CacheBackend string        // none, redis or memory
	RedisAddr    string        // Redis server address
	RedisPass    string        // Redis password
	RedisDB      int           // Redis database number
	CacheTTL     time.Duration // List cache TTL

	AMQPURL      string // RabbitMQ URL, empty disables events
	AMQPExchange string // Topic exchange for transaction events

	CORSAllowedOrigins []string // Allowed CORS origins
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	return &Config{
		AppPort:  getEnv("PORT", "5000"),         // Application port
		IsProd:   os.Getenv("IS_PROD") == "true", // Is production environment
		LogLevel: getEnv("LOG_LEVEL", "info"),    // Log level

		ServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", "serviceAccountKey.json"),
		AuthKeySource:      getEnv("AUTH_KEY_SOURCE", KeySourceGoogle),
		GoogleCertsURL:     getEnv("GOOGLE_CERTS_URL", "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"),

		StoreBackend:        getEnv("STORE_BACKEND", BackendFirestore),
		FirestoreCollection: getEnv("FIRESTORE_COLLECTION", "transactions"),
		DBUser:              os.Getenv("DB_USER"),
		DBPassword:          os.Getenv("DB_PASSWORD"),
		DBHost:              getEnv("DB_HOST", "127.0.0.1"),
		DBPort:              getEnv("DB_PORT", "3306"),
		DBName:              os.Getenv("DB_NAME"),
		SQLitePath:          getEnv("SQLITE_DB_PATH", "./data/transactions.db"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),

		CacheBackend: getEnv("CACHE_BACKEND", CacheNone),
		RedisAddr:    getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPass:    os.Getenv("REDIS_PASS"),
		RedisDB:      getEnvInt("REDIS_DB", 0),
		CacheTTL:     getEnvDuration("CACHE_TTL", 60*time.Second),

		AMQPURL:      os.Getenv("AMQP_URL"),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "finance.events"),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}
}

// MySQLDSN builds the Data Source Name used by the mysql backend
func (c *Config) MySQLDSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true"
}

// Validate checks the configuration and returns every problem found
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.AppPort); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.AppPort))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// The verifier can't work without the service account
	if c.ServiceAccountPath == "" {
		errs = append(errs, "FIREBASE_SERVICE_ACCOUNT_PATH is required")
	} else if _, err := os.Stat(c.ServiceAccountPath); err != nil {
		errs = append(errs, fmt.Sprintf("service account file not readable: %s", c.ServiceAccountPath))
	}

	keySources := []string{KeySourceGoogle, KeySourceServiceAccount}
	if !slices.Contains(keySources, c.AuthKeySource) {
		errs = append(errs, fmt.Sprintf("invalid auth key source '%s': must be one of %v", c.AuthKeySource, keySources))
	}
	if c.AuthKeySource == KeySourceGoogle {
		if _, err := url.ParseRequestURI(c.GoogleCertsURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid certificates URL '%s'", c.GoogleCertsURL))
		}
	}

	backends := []string{BackendFirestore, BackendMySQL, BackendSQLite, BackendPostgres, BackendMemory}
	switch c.StoreBackend {
	case BackendFirestore:
		if c.FirestoreCollection == "" {
			errs = append(errs, "FIRESTORE_COLLECTION cannot be empty when using firestore backend")
		}
	case BackendMySQL:
		if c.DBUser == "" || c.DBName == "" {
			errs = append(errs, "DB_USER and DB_NAME are required when using mysql backend")
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, "SQLITE_DB_PATH cannot be empty when using sqlite backend")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, "DATABASE_URL is required when using postgres backend")
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Sprintf("invalid store backend '%s': must be one of %v", c.StoreBackend, backends))
	}

	caches := []string{CacheNone, CacheRedis, CacheMemory}
	if !slices.Contains(caches, c.CacheBackend) {
		errs = append(errs, fmt.Sprintf("invalid cache backend '%s': must be one of %v", c.CacheBackend, caches))
	}
	if c.CacheBackend == CacheRedis && c.RedisAddr == "" {
		errs = append(errs, "REDIS_ADDR is required when using redis cache")
	}
	if c.CacheBackend != CacheNone && c.CacheTTL <= 0 {
		errs = append(errs, fmt.Sprintf("invalid cache TTL %v: must be positive", c.CacheTTL))
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
