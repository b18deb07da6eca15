package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"
)

type Config struct {
	// HTTP server
	Port string

	// Durable state
	StateFile string

	// Chat completion service
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	// Push gateway
	ExpoPushURL string

	// Client-facing base URL, echoed to clients; not used by the core.
	PublicBaseURL string

	// Reminder scheduler; "off" disables it.
	ReminderCron string

	// Logging
	LogLevel  string
	LogFormat string
}

func Load() *Config {
	return &Config{
		Port:      getEnv("PORT", "8080"),
		StateFile: getEnv("STATE_FILE", "./data/billkeep.json"),

		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),

		ExpoPushURL: getEnv("EXPO_PUSH_URL", "https://exp.host/--/api/v2/push/send"),

		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),

		ReminderCron: getEnv("REMINDER_CRON", "0 9 * * *"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

// ReminderEnabled reports whether the reminder scheduler should run.
func (c *Config) ReminderEnabled() bool {
	return c.ReminderCron != "" && !strings.EqualFold(c.ReminderCron, "off")
}

// Validate checks the configuration and returns all problems at once.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.StateFile == "" {
		problems = append(problems, "state file path cannot be empty")
	} else if dir := filepath.Dir(c.StateFile); dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				problems = append(problems, fmt.Sprintf("cannot create state directory '%s': %v", dir, err))
			}
		}
	}

	for name, raw := range map[string]string{
		"OPENAI_BASE_URL": c.OpenAIBaseURL,
		"EXPO_PUSH_URL":   c.ExpoPushURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			problems = append(problems, fmt.Sprintf("invalid %s '%s': must be an absolute URL", name, raw))
		}
	}

	if c.ReminderEnabled() {
		if _, err := cron.ParseStandard(c.ReminderCron); err != nil {
			problems = append(problems, fmt.Sprintf("invalid REMINDER_CRON '%s': %v", c.ReminderCron, err))
		}
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json", "pretty":
	default:
		problems = append(problems, fmt.Sprintf("invalid LOG_FORMAT '%s': must be text, json or pretty", c.LogFormat))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
