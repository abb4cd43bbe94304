// Package config provides centralized default values for FormWeave
package config

import (
	"bufio"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var envLoaded sync.Once

func loadEnvFile() {
	envLoaded.Do(func() {
		file, err := os.Open(".env")
		if err != nil {
			return
		}
		defer file.Close()

		log.Println("Loading configuration overrides from .env file...")
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())

			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				continue
			}

			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])

			if os.Getenv(key) == "" {
				os.Setenv(key, value)
			}
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.ParseBool(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%t (default: %t)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

var (
	// Server Configuration
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration

	// Database Configuration
	DBDriver                 string
	DBPath                   string
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeMinutes int

	// Form Engine Configuration
	FormsDir           string
	MaxSessions        int
	SessionTTL         time.Duration
	SessionSweepPeriod time.Duration

	// Auth Configuration
	JWTSecret      string
	EditorPassword string
	TokenLifetime  time.Duration

	// Websocket Configuration
	WSWriteTimeout    time.Duration
	WSPingInterval    time.Duration
	WSSendBufferSize  int
	WSReadBufferSize  int
	WSWriteBufferSize int

	// Logging Configuration
	LogDirectory  string
	LogToFile     bool
	LogJSONFormat bool

	// Engine Thresholds
	SlowEvalWarning    time.Duration
	SlowQueryThreshold time.Duration
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)

	// Database
	DBDriver = getEnvString("DB_DRIVER", "sqlite3")
	DBPath = getEnvString("DB_PATH", "formweave.db")
	DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 3)
	DBConnMaxLifetimeMinutes = getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)

	// Form Engine
	FormsDir = getEnvString("FORMS_DIR", "forms")
	MaxSessions = getEnvInt("MAX_SESSIONS", 5000)
	SessionTTL = time.Duration(getEnvInt("SESSION_TTL_HOURS", 24)) * time.Hour
	SessionSweepPeriod = time.Duration(getEnvInt("SESSION_SWEEP_MINUTES", 15)) * time.Minute

	// Auth
	JWTSecret = getEnvString("JWT_SECRET", "")
	EditorPassword = getEnvString("EDITOR_PASSWORD", "")
	TokenLifetime = time.Duration(getEnvInt("TOKEN_LIFETIME_HOURS", 12)) * time.Hour

	// Websocket
	WSWriteTimeout = getEnvDuration("WS_WRITE_TIMEOUT", 10*time.Second)
	WSPingInterval = getEnvDuration("WS_PING_INTERVAL", 30*time.Second)
	WSSendBufferSize = getEnvInt("WS_SEND_BUFFER_SIZE", 16)
	WSReadBufferSize = getEnvInt("WS_READ_BUFFER_SIZE", 1024)
	WSWriteBufferSize = getEnvInt("WS_WRITE_BUFFER_SIZE", 1024)

	// Logging
	LogDirectory = getEnvString("LOG_DIRECTORY", "logs")
	LogToFile = getEnvBool("LOG_TO_FILE", true)
	LogJSONFormat = getEnvBool("LOG_JSON_FORMAT", true)

	// Engine Thresholds
	SlowEvalWarning = getEnvDuration("SLOW_EVAL_WARNING", 50*time.Millisecond)
	SlowQueryThreshold = getEnvDuration("SLOW_QUERY_THRESHOLD", 100*time.Millisecond)
}
