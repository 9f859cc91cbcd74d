package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("MODEL_NAME", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.Path != "data/contract_analytics.db" {
		t.Fatalf("database = %+v", cfg.Database)
	}
	if cfg.Model.Name != "facebook/bart-large-cnn" || cfg.Model.Fallback != "t5-small" {
		t.Fatalf("model = %q / %q", cfg.Model.Name, cfg.Model.Fallback)
	}
	if cfg.Model.CacheDir != "./model_cache" {
		t.Fatalf("cacheDir = %q", cfg.Model.CacheDir)
	}
	if cfg.Analysis.MaxInputLength != 10000 || cfg.Analysis.HistoryLimit != 50 {
		t.Fatalf("analysis = %+v", cfg.Analysis)
	}
	if cfg.Model.Concurrent {
		t.Fatalf("concurrent inference must be off by default")
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	t.Setenv("MODEL_NAME", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  port: 9090
  readTimeout: 5s
database:
  driver: postgres
  host: db
  port: 5432
  name: legalmind
model:
  backend: openai
  name: gpt-4o-mini
logging:
  mode: production
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 || cfg.Server.ReadTimeout != 5*time.Second {
		t.Fatalf("server = %+v", cfg.Server)
	}
	if cfg.Database.Driver != "postgres" || cfg.Database.Name != "legalmind" {
		t.Fatalf("database = %+v", cfg.Database)
	}
	if cfg.Model.Backend != "openai" || cfg.Model.Name != "gpt-4o-mini" {
		t.Fatalf("model = %+v", cfg.Model)
	}
	// untouched keys keep their defaults
	if cfg.Model.Fallback != "t5-small" || cfg.Analysis.HistoryLimit != 50 {
		t.Fatalf("defaults lost: fallback=%q historyLimit=%d", cfg.Model.Fallback, cfg.Analysis.HistoryLimit)
	}
}

func TestLoad_ModelNameFromEnv(t *testing.T) {
	t.Setenv("MODEL_NAME", "google/pegasus-xsum")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := cfg.ModelCandidates()
	if len(got) != 2 || got[0] != "google/pegasus-xsum" || got[1] != "t5-small" {
		t.Fatalf("ModelCandidates = %v", got)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"driver":  "database:\n  driver: oracle\n",
		"backend": "model:\n  backend: onnx\n",
		"logging": "logging:\n  mode: verbose\n",
		"yaml":    "server: [",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Fatalf("Load succeeded, want error")
			}
		})
	}
}
