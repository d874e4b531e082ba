package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types

    "github.com/joho/godotenv" // godotenv preloads variables from a .env file

    "github.com/iliyamo/exam-seating/internal/database" // connection options
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
    Env            string // application environment (e.g. "dev", "prod")
    Port           string // HTTP port to listen on
    DBUser         string // database username
    DBPass         string // database password (optional)
    DBHost         string // database host address
    DBPort         string // database port number
    DBName         string // database name
    JWTSecret      string // secret used to sign JWTs
    AccessTTLMin   int    // access token time‑to‑live in minutes
    RefreshTTLDays int    // refresh token time‑to‑live in days
    BcryptCost     int    // bcrypt cost for password hashing

    Log   LogConfig   // logger level and encoding
    Chart ChartConfig // seating chart layout and upload limits
}

// LogConfig selects the zap logger level ("debug", "info", "warn", "error")
// and format ("json" or "console").
type LogConfig struct {
    Level  string
    Format string
}

// ChartConfig controls chart generation.
type ChartConfig struct {
    GroupWidth       int    // grid columns per physical row; 0 = positions + 1
    TitleSpacing     int    // blank grid rows under the room title
    ReplenishDrained bool   // also refill queues used up exactly
    MaxUploadBytes   int64  // limit for multipart uploads
    LogDir           string // directory of the event log written by the consumer
    EventsEnabled    bool   // publish chart events and run the consumer
}

// Load reads configuration values from the environment, after merging a
// .env file from the working directory when one exists.  Required variables
// are enforced by must() and missing values stop the program.
func Load() Config {
    _ = godotenv.Load() // a missing .env file is not an error
    return Config{
        Env:            must("APP_ENV"),                   // environment (dev/test/prod)
        Port:           must("APP_PORT"),                  // port to bind the HTTP server
        DBUser:         must("DB_USER"),                   // database user
        DBPass:         os.Getenv("DB_PASS"),              // database password (empty allowed)
        DBHost:         must("DB_HOST"),                   // database host
        DBPort:         must("DB_PORT"),                   // database port
        DBName:         must("DB_NAME"),                   // database name
        JWTSecret:      must("JWT_SECRET"),                // secret used for signing JWTs
        AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),   // TTL for access tokens in minutes
        RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"), // TTL for refresh tokens in days
        BcryptCost:     mustInt("BCRYPT_COST"),            // bcrypt cost factor
        Log:            LoadLogConfig(),
        Chart:          LoadChartConfig(),
    }
}

// DBOptions returns the MySQL connection options.
func (c Config) DBOptions() database.Options {
    return database.Options{User: c.DBUser, Pass: c.DBPass, Host: c.DBHost, Port: c.DBPort, Name: c.DBName}
}

// LoadLogConfig reads LOG_LEVEL and LOG_FORMAT with info/json defaults.
func LoadLogConfig() LogConfig {
    return LogConfig{
        Level:  envStr("LOG_LEVEL", "info"),
        Format: envStr("LOG_FORMAT", "json"),
    }
}

// LoadChartConfig reads the CHART_* and UPLOAD_MAX_BYTES variables.
func LoadChartConfig() ChartConfig {
    c := ChartConfig{
        GroupWidth:       envInt("CHART_GROUP_WIDTH", 0),
        TitleSpacing:     envInt("CHART_TITLE_SPACING", 1),
        ReplenishDrained: envBool("CHART_REPLENISH_DRAINED", false),
        MaxUploadBytes:   int64(envInt("UPLOAD_MAX_BYTES", 10<<20)),
        LogDir:           envStr("CHART_LOG_DIR", "logs"),
        EventsEnabled:    envBool("CHART_EVENTS_ENABLED", true),
    }
    if c.GroupWidth < 0 { c.GroupWidth = 0 }
    if c.TitleSpacing < 0 { c.TitleSpacing = 0 }
    if c.MaxUploadBytes <= 0 { c.MaxUploadBytes = 10 << 20 }
    return c
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}
