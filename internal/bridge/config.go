package bridge

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds the killfeed configuration. The roster comes from either an
// outfit tag or an explicit character name list; both may be set, in which
// case the union is tracked.
type Config struct {
	DiscordToken string   `validate:"required"`
	ChannelID    string   `validate:"required"`
	ServiceID    string   `validate:"required"`
	Environment  string   `validate:"required"`
	Characters   []string `validate:"required_without=OutfitTag"`
	OutfitTag    string   `validate:"required_without=Characters"`
	LogLevel     string
	LogFormat    string
}

// LoadConfig reads the killfeed configuration from the environment. A .env
// file is loaded first when present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DiscordToken: os.Getenv("DISCORD_TOKEN"),
		ChannelID:    os.Getenv("DISCORD_CHANNEL_ID"),
		ServiceID:    os.Getenv("CENSUS_SERVICE_ID"),
		Environment:  getEnv("ESS_ENVIRONMENT", "ps2"),
		Characters:   splitList(os.Getenv("KILLFEED_CHARACTERS")),
		OutfitTag:    strings.TrimSpace(os.Getenv("KILLFEED_OUTFIT_TAG")),
		LogLevel:     getEnv("LOG_LEVEL", "INFO"),
		LogFormat:    getEnv("LOG_FORMAT", "text"),
	}

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
