package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		DBDriver:             "sqlite",
		SQLitePath:           "data/test.db",
		PriceAPIURL:          "http://provider.example.com/prices",
		EmailServer:          "smtp.example.com",
		EmailPort:            587,
		EmailFrom:            "alerts@example.com",
		EmailRecipient:       "ops@example.com",
		JWTSecret:            "secret",
		AdminPasswordHash:    "$2a$10$hash",
		BandPeriod:           20,
		VolumeAlertThreshold: 2.5,
		SilenceDays:          3,
		RunHour:              18,
	}
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	if errs := validConfig().Validate(); len(errs) != 0 {
		t.Fatalf("unexpected violations: %v", errs)
	}
}

func TestValidateCollectsAllViolations(t *testing.T) {
	cfg := validConfig()
	cfg.EmailServer = ""
	cfg.EmailRecipient = ""
	cfg.BandPeriod = 0
	cfg.SilenceDays = 0

	errs := cfg.Validate()
	if len(errs) != 4 {
		t.Fatalf("got %d violations, want all 4: %v", len(errs), errs)
	}
	joined := strings.Join(errs, "\n")
	for _, want := range []string{"EMAIL_SERVER", "EMAIL_RECIPIENT", "BAND_PERIOD", "SILENCE_DAYS"} {
		if !strings.Contains(joined, want) {
			t.Errorf("violations missing %s: %v", want, errs)
		}
	}
}

func TestValidateRequiresSomeSchedule(t *testing.T) {
	cfg := validConfig()
	cfg.RunHour = -1
	cfg.PriceCheckMinutes = 0

	errs := cfg.Validate()
	if len(errs) != 1 || !strings.Contains(errs[0], "RUN_HOUR") {
		t.Fatalf("expected schedule violation, got %v", errs)
	}

	cfg.PriceCheckMinutes = 30
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Fatalf("interval schedule should satisfy validation: %v", errs)
	}
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	cfg := validConfig()
	cfg.DBDriver = "oracle"
	errs := cfg.Validate()
	if len(errs) != 1 || !strings.Contains(errs[0], "DB_DRIVER") {
		t.Fatalf("expected driver violation, got %v", errs)
	}
}

func TestValidateIncludesParseErrors(t *testing.T) {
	cfg := validConfig()
	cfg.parseErrors = []string{`The BAND_PERIOD configuration setting "twenty" is not a valid integer.`}
	cfg.BandPeriod = 20

	errs := cfg.Validate()
	if len(errs) != 1 || !strings.Contains(errs[0], "twenty") {
		t.Fatalf("parse errors not surfaced: %v", errs)
	}
}
