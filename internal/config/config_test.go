package config

import (
	"os"
	"path/filepath"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_TOKEN", "tg-token")
	t.Setenv("OPENAI_API_KEY", "oa-key")
	t.Setenv("GOOGLE_CLIENT_ID", "g-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "g-secret")
	t.Setenv("GOOGLE_CALENDAR_ID", "cal@group.calendar.google.com")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.OpenAIModel != "gpt-4o-mini" {
		t.Errorf("model = %q", cfg.OpenAIModel)
	}
	if cfg.Timezone != "Asia/Seoul" {
		t.Errorf("timezone = %q", cfg.Timezone)
	}
	if cfg.ReportHour != 8 || cfg.HistoryCap != 100 {
		t.Errorf("report_hour = %d, history_cap = %d", cfg.ReportHour, cfg.HistoryCap)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TELEGRAM_TOKEN", "")

	if _, err := Load(""); err == nil {
		t.Error("expected an error for a missing required value")
	}
}

func TestYAMLThenEnvPrecedence(t *testing.T) {
	setRequiredEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("openai_model: gpt-4o\nreport_hour: 7\n"), 0644); err != nil {
		t.Fatal(err)
	}
	// Env overrides the file
	t.Setenv("REPORT_HOUR", "9")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.OpenAIModel != "gpt-4o" {
		t.Errorf("yaml value not applied, model = %q", cfg.OpenAIModel)
	}
	if cfg.ReportHour != 9 {
		t.Errorf("env must win over yaml, report_hour = %d", cfg.ReportHour)
	}
}

func TestMissingFileIsFine(t *testing.T) {
	setRequiredEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err != nil {
		t.Errorf("missing config file must not fail: %v", err)
	}
}

func TestReportHourValidation(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("REPORT_HOUR", "24")
	if _, err := Load(""); err == nil {
		t.Error("expected an error for report_hour out of range")
	}
}
