package track

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds the tracker configuration. Worlds and Characters narrow the
// stream subscription; leaving both empty tracks the configured events
// everywhere, which on a busy night is a lot of rows.
type Config struct {
	ServiceID     string   `validate:"required"`
	Environment   string   `validate:"required"`
	DatabaseURL   string   `validate:"required"`
	ListenAddr    string   `validate:"required"`
	Events        []string `validate:"required,min=1,dive,required"`
	Worlds        []int64
	Characters    []int64
	RetentionDays int      `validate:"min=1"`
	LogLevel      string
	LogFormat     string
}

// LoadConfig reads the tracker configuration from the environment. A .env
// file is loaded first when present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServiceID:   os.Getenv("CENSUS_SERVICE_ID"),
		Environment: getEnv("ESS_ENVIRONMENT", "ps2"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		ListenAddr:  getEnv("TRACK_LISTEN_ADDR", ":8080"),
		Events:      splitList(getEnv("TRACK_EVENTS", "Death")),
		LogLevel:    getEnv("LOG_LEVEL", "INFO"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
	}

	worlds, err := parseIDList(os.Getenv("TRACK_WORLDS"))
	if err != nil {
		return nil, fmt.Errorf("invalid TRACK_WORLDS: %w", err)
	}
	cfg.Worlds = worlds

	characters, err := parseIDList(os.Getenv("TRACK_CHARACTERS"))
	if err != nil {
		return nil, fmt.Errorf("invalid TRACK_CHARACTERS: %w", err)
	}
	cfg.Characters = characters

	retention := getEnv("TRACK_RETENTION_DAYS", strconv.Itoa(DefaultRetentionDays))
	days, err := strconv.Atoi(retention)
	if err != nil {
		return nil, fmt.Errorf("invalid TRACK_RETENTION_DAYS: %w", err)
	}
	cfg.RetentionDays = days

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgInvalidConfig, err)
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// splitList splits a comma separated list, trimming blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseIDList parses a comma separated list of numeric ids.
func parseIDList(s string) ([]int64, error) {
	var out []int64
	for _, part := range splitList(s) {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("not a numeric id: %q", part)
		}
		out = append(out, id)
	}
	return out, nil
}
