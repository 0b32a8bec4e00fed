package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Dataset.CSVFile != "Superstore_Enhanced.csv" {
		t.Errorf("CSVFile = %q, want Superstore_Enhanced.csv", cfg.Dataset.CSVFile)
	}
	if cfg.Dataset.MaxUploadBytes != 200<<20 {
		t.Errorf("MaxUploadBytes = %d, want %d", cfg.Dataset.MaxUploadBytes, 200<<20)
	}
	if !cfg.Dataset.Watch {
		t.Error("Watch should default to true")
	}
	if !cfg.Metrics.Enabled {
		t.Error("metrics should default to enabled")
	}
	if cfg.Address() != "localhost:8501" {
		t.Errorf("Address() = %q, want localhost:8501", cfg.Address())
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("CSV_FILE", "/data/sales.csv")
	t.Setenv("UPLOAD_MAX_BYTES", "1024")
	t.Setenv("UPLOAD_DB_PATH", "")
	t.Setenv("DATASET_WATCH", "false")
	t.Setenv("SERVER_READ_TIMEOUT", "5s")
	t.Setenv("SECURITY_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("ReadTimeout = %v, want 5s", cfg.Server.ReadTimeout)
	}
	if cfg.Dataset.CSVFile != "/data/sales.csv" {
		t.Errorf("CSVFile = %q", cfg.Dataset.CSVFile)
	}
	if cfg.Dataset.MaxUploadBytes != 1024 {
		t.Errorf("MaxUploadBytes = %d, want 1024", cfg.Dataset.MaxUploadBytes)
	}
	if cfg.Dataset.Watch {
		t.Error("Watch should be false")
	}
	// An empty env value falls back to the default.
	if cfg.Dataset.UploadDBPath != "data/uploads.db" {
		t.Errorf("UploadDBPath = %q", cfg.Dataset.UploadDBPath)
	}
	if got := cfg.Security.AllowedOrigins; len(got) != 2 || got[1] != "http://b.test" {
		t.Errorf("AllowedOrigins = %v", got)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"port out of range", "SERVER_PORT", "70000", "server port"},
		{"bad log level", "LOG_LEVEL", "verbose", "invalid log level"},
		{"bad log format", "LOG_FORMAT", "xml", "invalid log format"},
		{"zero upload limit", "UPLOAD_MAX_BYTES", "0", "upload size limit"},
		{"negative rps", "SECURITY_RATE_LIMIT_RPS", "-1", "rate limit RPS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			if err == nil {
				t.Fatal("Load() should fail")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}
