package pairwatch

import (
	"os"
	"strconv"

	"github.com/raykavin/pairwatch/core"
	"github.com/raykavin/pairwatch/logger/zerolog"
)

const (
	// Default configuration values
	defaultLogLevel      = "info"
	defaultLogTimeFormat = "2006-01-02 15:04:05"
	defaultLogColored    = "true"
	defaultLogJSON       = "false"
)

// Environment variable names
const (
	envLogLevel      = "PAIRWATCH_LOG_LEVEL"
	envLogTimeFormat = "PAIRWATCH_LOG_TIME_FORMAT"
	envLogColor      = "PAIRWATCH_LOG_COLOR"
	envLogJSON       = "PAIRWATCH_LOG_JSON"
)

// DefaultLog is the default logger instance
var DefaultLog core.Logger

func init() {
	// Initialize the logger with configuration from environment variables
	log, err := initLogger()
	if err != nil {
		panic(err)
	}

	DefaultLog = zerolog.NewAdapter(log.Logger)
}

// initLogger creates a new logger instance configured from environment variables
func initLogger() (*zerolog.ZerologLogger, error) {
	logLevel := getEnvWithDefault(envLogLevel, defaultLogLevel)
	logTimeFormat := getEnvWithDefault(envLogTimeFormat, defaultLogTimeFormat)

	logColored, err := parseBoolEnv(envLogColor, defaultLogColored)
	if err != nil {
		return nil, err
	}

	logJSON, err := parseBoolEnv(envLogJSON, defaultLogJSON)
	if err != nil {
		return nil, err
	}

	return zerolog.New(logLevel, logTimeFormat, logColored, logJSON)
}

// getEnvWithDefault returns the value of the environment variable or the default if not set
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// parseBoolEnv gets a boolean environment variable with a default value
func parseBoolEnv(key, defaultValue string) (bool, error) {
	value := getEnvWithDefault(key, defaultValue)
	return strconv.ParseBool(value)
}
