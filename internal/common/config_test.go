package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig_DefaultPort(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port default = %d, want %d", cfg.Server.Port, 8080)
	}
}

func TestConfig_Defaults(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg.Pipeline.HTTPRetries != 3 {
		t.Errorf("Pipeline.HTTPRetries default = %d, want 3", cfg.Pipeline.HTTPRetries)
	}
	if cfg.Pipeline.TextMinChars != 250 {
		t.Errorf("Pipeline.TextMinChars default = %d, want 250", cfg.Pipeline.TextMinChars)
	}
	if cfg.Pipeline.OCRMaxPages != 12 {
		t.Errorf("Pipeline.OCRMaxPages default = %d, want 12", cfg.Pipeline.OCRMaxPages)
	}
	if cfg.Clients.Gemini.Enabled {
		t.Error("Clients.Gemini.Enabled should default to false")
	}
	if cfg.Clients.News.CEID != "IN:en" {
		t.Errorf("Clients.News.CEID default = %q, want %q", cfg.Clients.News.CEID, "IN:en")
	}
}

func TestConfig_PortEnvOverride(t *testing.T) {
	t.Setenv("SENTINEL_PORT", "9090")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d after env override, want %d", cfg.Server.Port, 9090)
	}
}

func TestConfig_GeminiEnvOverrides(t *testing.T) {
	t.Setenv("SENTINEL_GEMINI_API_KEY", "override-key")
	t.Setenv("SENTINEL_GEMINI_ENABLED", "true")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Clients.Gemini.APIKey != "override-key" {
		t.Errorf("Clients.Gemini.APIKey = %q, want %q", cfg.Clients.Gemini.APIKey, "override-key")
	}
	if !cfg.Clients.Gemini.Enabled {
		t.Error("Clients.Gemini.Enabled should be true after env override")
	}
}

func TestConfig_DataPathEnvOverride(t *testing.T) {
	t.Setenv("SENTINEL_DATA_PATH", "/var/lib/sentinel")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Storage.Path != filepath.Join("/var/lib/sentinel", "db") {
		t.Errorf("Storage.Path = %q", cfg.Storage.Path)
	}
	if cfg.Storage.DataPath != filepath.Join("/var/lib/sentinel", "filings") {
		t.Errorf("Storage.DataPath = %q", cfg.Storage.DataPath)
	}
}

func TestLoadConfig_FileMerge(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sentinel.toml")
	content := []byte("[server]\nport = 7070\n\n[pipeline]\nlookback_days = 14\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d from file, want 7070", cfg.Server.Port)
	}
	if cfg.Pipeline.LookbackDays != 14 {
		t.Errorf("Pipeline.LookbackDays = %d from file, want 14", cfg.Pipeline.LookbackDays)
	}
	// Untouched sections keep defaults.
	if cfg.Pipeline.HTTPRetries != 3 {
		t.Errorf("Pipeline.HTTPRetries = %d, want default 3", cfg.Pipeline.HTTPRetries)
	}
}

func TestLoadConfig_MissingFileSkipped(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadConfig with missing file: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want default 8080", cfg.Server.Port)
	}
}

func TestConfig_IsProduction(t *testing.T) {
	cfg := &Config{Environment: "production"}
	if !cfg.IsProduction() {
		t.Error("production environment not detected")
	}
	cfg.Environment = "Prod"
	if !cfg.IsProduction() {
		t.Error("prod alias not detected")
	}
	cfg.Environment = "development"
	if cfg.IsProduction() {
		t.Error("development reported as production")
	}
}

func TestPipelineConfig_GetSchedulerInterval(t *testing.T) {
	cfg := PipelineConfig{SchedulerInterval: "15m"}
	if got := cfg.GetSchedulerInterval(); got != 15*time.Minute {
		t.Errorf("GetSchedulerInterval = %v, want 15m", got)
	}
	cfg.SchedulerInterval = "not-a-duration"
	if got := cfg.GetSchedulerInterval(); got != time.Hour {
		t.Errorf("GetSchedulerInterval fallback = %v, want 1h", got)
	}
}
