package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	LogLevel    string

	// ConfigDir is searched first for the business profile (billdesk.yml).
	ConfigDir    string
	WatchProfile bool

	OutputRoot string
	SpoolDir   string

	DBType            string
	DBPath            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:      getenv("APP_SERVICE", "billdesk"),
		AppVersion:   getenv("APP_VERSION", "0.1.0"),
		Environment:  getenv("ENVIRONMENT", "development"),
		LogLevel:     strings.ToLower(strings.TrimSpace(getenv("LOG_LEVEL", "warn"))),
		ConfigDir:    strings.TrimSpace(getenv("BILLDESK_CONFIG_DIR", "")),
		WatchProfile: getenvBool("BILLDESK_WATCH_PROFILE", true),
		OutputRoot:   strings.TrimSpace(getenv("INVOICE_OUTPUT_ROOT", "invoices")),
		SpoolDir:     strings.TrimSpace(getenv("INVOICE_SPOOL_DIR", filepath.Join(os.TempDir(), "billdesk"))),

		DBType:            strings.ToLower(getenv("DATABASE_TYPE", DBTypeSQLite)),
		DBPath:            getenv("DATABASE_PATH", "billing_app.db"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "billdesk"),
		DBUser:            getenv("DATABASE_USER", "billdesk"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 1),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 1),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 0),
	}

	return cfg
}

const (
	DBTypeSQLite   = "sqlite"
	DBTypePostgres = "postgres"
	DBTypeMySQL    = "mysql"
)

// IsSQLite reports whether the local single-file store is in use.
func (c Config) IsSQLite() bool {
	return c.DBType == DBTypeSQLite
}

// Module provides Config and the hot-reloaded business profile.
var Module = fx.Module("config",
	fx.Provide(
		Load,
		NewProfileHolder,
	),
)
