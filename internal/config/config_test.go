package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{
		Port:          "8080",
		StateFile:     filepath.Join(t.TempDir(), "state.json"),
		OpenAIModel:   "gpt-4o-mini",
		OpenAIBaseURL: "https://api.openai.com/v1",
		ExpoPushURL:   "https://exp.host/--/api/v2/push/send",
		ReminderCron:  "0 9 * * *",
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("default port = %q", cfg.Port)
	}
	if cfg.OpenAIBaseURL == "" || cfg.ExpoPushURL == "" {
		t.Error("default collaborator URLs missing")
	}
	if !cfg.ReminderEnabled() {
		t.Error("reminder should be enabled by default")
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	if err := validConfig(t).Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "non-numeric port", mutate: func(c *Config) { c.Port = "http" }, want: "invalid port"},
		{name: "port out of range", mutate: func(c *Config) { c.Port = "70000" }, want: "invalid port"},
		{name: "empty state file", mutate: func(c *Config) { c.StateFile = "" }, want: "state file"},
		{name: "relative chat url", mutate: func(c *Config) { c.OpenAIBaseURL = "/v1" }, want: "OPENAI_BASE_URL"},
		{name: "bad push url", mutate: func(c *Config) { c.ExpoPushURL = "::" }, want: "EXPO_PUSH_URL"},
		{name: "bad cron spec", mutate: func(c *Config) { c.ReminderCron = "every day" }, want: "REMINDER_CRON"},
		{name: "bad log format", mutate: func(c *Config) { c.LogFormat = "xml" }, want: "LOG_FORMAT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestReminderEnabled(t *testing.T) {
	cfg := validConfig(t)
	for _, off := range []string{"off", "OFF", ""} {
		cfg.ReminderCron = off
		if cfg.ReminderEnabled() {
			t.Errorf("ReminderEnabled() with %q = true", off)
		}
	}
	cfg.ReminderCron = "0 9 * * *"
	if !cfg.ReminderEnabled() {
		t.Error("cron spec should enable the reminder")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}
