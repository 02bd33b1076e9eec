package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
		check   func(*testing.T, *Config)
	}{
		{
			name: "default values",
			env:  map[string]string{},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Port != "8080" {
					t.Errorf("expected port 8080, got %s", cfg.Port)
				}
				if cfg.LogLevel != "info" {
					t.Errorf("expected log level info, got %s", cfg.LogLevel)
				}
				if cfg.PollInterval != time.Second {
					t.Errorf("expected PollInterval 1s, got %v", cfg.PollInterval)
				}
				if cfg.PushInterval != 60*time.Second {
					t.Errorf("expected PushInterval 60s, got %v", cfg.PushInterval)
				}
				if len(cfg.DisallowedWorkgroups) != 0 {
					t.Errorf("expected no disallowed workgroups, got %v", cfg.DisallowedWorkgroups)
				}
			},
		},
		{
			name: "custom values",
			env: map[string]string{
				"PORT":                  "9000",
				"LOG_LEVEL":             "debug",
				"POLL_INTERVAL":         "2",
				"PUSH_INTERVAL":         "30",
				"ICWS_BASE_URL":         "http://switch:8018/icws",
				"DISALLOWED_WORKGROUPS": "Training, Internal",
				"ALLOWED_ORIGINS":       "http://example.com,http://test.com",
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Port != "9000" {
					t.Errorf("expected port 9000, got %s", cfg.Port)
				}
				if cfg.PollInterval != 2*time.Second {
					t.Errorf("expected PollInterval 2s, got %v", cfg.PollInterval)
				}
				if cfg.PushInterval != 30*time.Second {
					t.Errorf("expected PushInterval 30s, got %v", cfg.PushInterval)
				}
				if cfg.ICWSBaseURL != "http://switch:8018/icws" {
					t.Errorf("unexpected ICWSBaseURL %s", cfg.ICWSBaseURL)
				}
				if len(cfg.DisallowedWorkgroups) != 2 || cfg.DisallowedWorkgroups[1] != "Internal" {
					t.Errorf("unexpected disallowed workgroups %v", cfg.DisallowedWorkgroups)
				}
				if len(cfg.AllowedOrigins) != 2 {
					t.Errorf("expected 2 allowed origins, got %d", len(cfg.AllowedOrigins))
				}
			},
		},
		{
			name: "invalid POLL_INTERVAL",
			env: map[string]string{
				"POLL_INTERVAL": "invalid",
			},
			wantErr: true,
		},
		{
			name: "invalid WS_READ_TIMEOUT",
			env: map[string]string{
				"WS_READ_TIMEOUT": "invalid",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear environment
			os.Clearenv()

			// Set test environment variables
			for k, v := range tt.env {
				os.Setenv(k, v)
			}

			// Load config
			cfg, err := Load()

			// Check error
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			// Run custom checks
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestWebSocketConstants(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.PongWait != cfg.WSReadTimeout {
		t.Errorf("PongWait (%v) should equal WSReadTimeout (%v)", cfg.PongWait, cfg.WSReadTimeout)
	}
	if cfg.PingPeriod >= cfg.PongWait {
		t.Errorf("PingPeriod (%v) should be less than PongWait (%v)", cfg.PingPeriod, cfg.PongWait)
	}
	if cfg.WriteWait != cfg.WSWriteTimeout {
		t.Errorf("WriteWait (%v) should equal WSWriteTimeout (%v)", cfg.WriteWait, cfg.WSWriteTimeout)
	}
	if cfg.MaxMessageSize <= 0 {
		t.Errorf("MaxMessageSize should be positive, got %d", cfg.MaxMessageSize)
	}
}

func TestOriginAllowed(t *testing.T) {
	cfg := &Config{AllowedOrigins: []string{"http://example.com"}}

	if !cfg.OriginAllowed("") {
		t.Error("empty origin should be allowed")
	}
	if !cfg.OriginAllowed("http://example.com") {
		t.Error("listed origin should be allowed")
	}
	if cfg.OriginAllowed("http://evil.com") {
		t.Error("unlisted origin should be rejected")
	}

	cfg.AllowedOrigins = []string{"*"}
	if !cfg.OriginAllowed("http://anything.com") {
		t.Error("wildcard should allow any origin")
	}
}
