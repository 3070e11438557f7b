package main

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoadConfig_TickIntervalValidation(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		envVars     map[string]string
		expectError bool
		errorSubstr string
	}{
		{
			name:        "valid tick interval from flag",
			args:        []string{"-tick-interval", "200ms"},
			expectError: false,
		},
		{
			name:        "zero tick interval from flag",
			args:        []string{"-tick-interval", "0s"},
			expectError: true,
			errorSubstr: "tick interval must be positive",
		},
		{
			name:        "negative tick interval from flag",
			args:        []string{"-tick-interval", "-1s"},
			expectError: true,
			errorSubstr: "tick interval must be positive",
		},
		{
			name:        "valid tick interval from env",
			envVars:     map[string]string{"SMOGLIGHT_TICK_INTERVAL": "5s"},
			expectError: false,
		},
		{
			name:        "zero tick interval from env",
			envVars:     map[string]string{"SMOGLIGHT_TICK_INTERVAL": "0s"},
			expectError: true,
			errorSubstr: "SMOGLIGHT_TICK_INTERVAL must be positive",
		},
		{
			name:        "invalid tick interval format from flag",
			args:        []string{"-tick-interval", "invalid"},
			expectError: true,
			errorSubstr: "invalid tick interval",
		},
		{
			name:        "invalid tick interval format from env",
			envVars:     map[string]string{"SMOGLIGHT_TICK_INTERVAL": "invalid"},
			expectError: true,
			errorSubstr: "invalid SMOGLIGHT_TICK_INTERVAL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				os.Setenv(k, v)
				defer os.Unsetenv(k)
			}

			cfg, err := LoadConfig(tt.args)

			if tt.expectError {
				if err == nil {
					t.Errorf("expected error containing %q, got nil", tt.errorSubstr)
				} else if !strings.Contains(err.Error(), tt.errorSubstr) {
					t.Errorf("expected error containing %q, got %q", tt.errorSubstr, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadConfig() error = %v", err)
			}
			if cfg.TickInterval <= 0 {
				t.Errorf("tick interval = %v, want positive", cfg.TickInterval)
			}
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(nil)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Addr != defaultAddr {
		t.Errorf("addr = %q, want %q", cfg.Addr, defaultAddr)
	}
	if cfg.TickInterval != time.Second {
		t.Errorf("tick interval = %v, want 1s", cfg.TickInterval)
	}
	if cfg.Vehicles != 12 {
		t.Errorf("vehicles = %d, want 12", cfg.Vehicles)
	}
	if !strings.HasSuffix(cfg.DBPath, "smoglight.db") {
		t.Errorf("db path = %q, want default smoglight.db", cfg.DBPath)
	}
}

func TestLoadConfig_NegativeVehicles(t *testing.T) {
	_, err := LoadConfig([]string{"-vehicles", "-3"})
	if err == nil || !strings.Contains(err.Error(), "vehicles must be non-negative") {
		t.Errorf("LoadConfig(-vehicles -3) error = %v, want vehicles validation error", err)
	}
}

func TestLoadConfig_AddrFromPortEnv(t *testing.T) {
	os.Setenv("SMOGLIGHT_PORT", "9999")
	defer os.Unsetenv("SMOGLIGHT_PORT")

	cfg, err := LoadConfig(nil)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Addr != "127.0.0.1:9999" {
		t.Errorf("addr = %q, want 127.0.0.1:9999", cfg.Addr)
	}
}
