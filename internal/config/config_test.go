package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.conf")
	data := "# server\nPORT=9090\nSERIES_FORMAT=CSV\n\nLOG_LEVEL=debug\nREAD_TIMEOUT=5s\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("FLIGHTLOG_PORT", "7070")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Port != 7070 {
		t.Fatalf("env should override file port, got %d", cfg.Port)
	}
	if cfg.SeriesFormat != "csv" || cfg.LogLevel != "debug" || cfg.ReadTimeout != 5*time.Second {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Host != "0.0.0.0" || cfg.MetricsNamespace != "flightlog" {
		t.Fatalf("defaults not kept: %+v", cfg)
	}
	if cfg.Addr() != "0.0.0.0:7070" {
		t.Fatalf("unexpected addr %q", cfg.Addr())
	}
}

func TestLoadRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"garbage":      "not a key value\n",
		"unknown key":  "COLOR=blue\n",
		"bad port":     "PORT=eighty\n",
		"port range":   "PORT=70000\n",
		"bad format":   "SERIES_FORMAT=xml\n",
		"bad duration": "IDLE_TIMEOUT=soon\n",
	}
	for name, data := range cases {
		path := filepath.Join(dir, name+".conf")
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
		if _, err := Load(path); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if _, err := Load(filepath.Join(dir, "missing.conf")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Port != 8080 || cfg.SeriesFormat != "parquet" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}
