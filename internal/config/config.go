package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"time"
)

// Config holds the runtime values every process needs: where to listen,
// which database to use, how to log and which calendar zone "today" is
// evaluated in.
type Config struct {
	Env      string // application environment (e.g. "dev", "prod")
	Port     string // HTTP port to listen on
	DBUser   string // database username
	DBPass   string // database password (optional)
	DBHost   string // database host address
	DBPort   string // database port number
	DBName   string // database name
	Timezone string // IANA zone of the inn; check-in/check-out days are local to it
	LogLevel string // logrus level name
	LogFile  string // rotated log file; empty logs to stdout only
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:      must("APP_ENV"),      // environment (dev/test/prod)
		Port:     must("APP_PORT"),     // port to bind the HTTP server
		DBUser:   must("DB_USER"),      // database user
		DBPass:   os.Getenv("DB_PASS"), // database password (empty allowed)
		DBHost:   must("DB_HOST"),      // database host
		DBPort:   must("DB_PORT"),      // database port
		DBName:   must("DB_NAME"),      // database name
		Timezone: os.Getenv("APP_TIMEZONE"),
		LogLevel: envStr("LOG_LEVEL", "info"),
		LogFile:  os.Getenv("LOG_FILE"),
	}
}

// Location resolves Timezone.  An empty or unknown zone falls back to the
// server's local zone.
func (c Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("config: unknown APP_TIMEZONE %q, using server local time", c.Timezone)
		return time.Local
	}
	return loc
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
