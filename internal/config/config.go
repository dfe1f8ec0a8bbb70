// Package config assembles runtime configuration: defaults, an
// optional YAML tuning file, then environment variables (secrets live
// in the environment only).
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds everything main needs to wire the bot
type Config struct {
	TelegramToken string `yaml:"-"`
	OpenAIKey     string `yaml:"-"`
	OpenAIModel   string `yaml:"openai_model"`

	GoogleClientID     string `yaml:"-"`
	GoogleClientSecret string `yaml:"-"`
	GoogleRedirectURI  string `yaml:"google_redirect_uri"`
	CalendarID         string `yaml:"calendar_id"`

	NaverClientID     string `yaml:"-"`
	NaverClientSecret string `yaml:"-"`

	StatePath  string `yaml:"state_path"`
	Timezone   string `yaml:"timezone"`
	ReportHour int    `yaml:"report_hour"`
	HistoryCap int    `yaml:"history_cap"`
	Debug      bool   `yaml:"debug"`
}

// Load builds the configuration. path names an optional YAML file;
// a missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{
		OpenAIModel:       "gpt-4o-mini",
		GoogleRedirectURI: "urn:ietf:wg:oauth:2.0:oob",
		StatePath:         "state",
		Timezone:          "Asia/Seoul",
		ReportHour:        8,
		HistoryCap:        100,
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	envString(&cfg.TelegramToken, "TELEGRAM_TOKEN")
	envString(&cfg.OpenAIKey, "OPENAI_API_KEY")
	envString(&cfg.OpenAIModel, "OPENAI_MODEL")
	envString(&cfg.GoogleClientID, "GOOGLE_CLIENT_ID")
	envString(&cfg.GoogleClientSecret, "GOOGLE_CLIENT_SECRET")
	envString(&cfg.GoogleRedirectURI, "GOOGLE_REDIRECT_URI")
	envString(&cfg.CalendarID, "GOOGLE_CALENDAR_ID")
	envString(&cfg.NaverClientID, "NAVER_CLIENT_ID")
	envString(&cfg.NaverClientSecret, "NAVER_CLIENT_SECRET")
	envString(&cfg.StatePath, "STATE_PATH")
	envString(&cfg.Timezone, "TIMEZONE")
	envInt(&cfg.ReportHour, "REPORT_HOUR")
	envInt(&cfg.HistoryCap, "HISTORY_CAP")
	if os.Getenv("DEBUG") == "true" {
		cfg.Debug = true
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	required := map[string]string{
		"TELEGRAM_TOKEN":       c.TelegramToken,
		"OPENAI_API_KEY":       c.OpenAIKey,
		"GOOGLE_CLIENT_ID":     c.GoogleClientID,
		"GOOGLE_CLIENT_SECRET": c.GoogleClientSecret,
		"GOOGLE_CALENDAR_ID":   c.CalendarID,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}
	if c.ReportHour < 0 || c.ReportHour > 23 {
		return fmt.Errorf("report_hour must be 0-23, got %d", c.ReportHour)
	}
	return nil
}

// Location resolves the configured timezone
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func envString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
