package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/CHAND7/ETE-Robotics-App/internal/config"
)

func configPath(t *testing.T) string {
	t.Helper()
	exeDir, err := config.GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return filepath.Join(exeDir, "config.toml")
}

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()

	if cfg.Server.Port != 20351 {
		t.Fatalf("default port = %d, want 20351", cfg.Server.Port)
	}
	if cfg.Catalog.BOMHeaderRow != 12 {
		t.Fatalf("default BOM header row = %d, want 12", cfg.Catalog.BOMHeaderRow)
	}
	if cfg.Auth.Username != "admin" {
		t.Fatalf("default username = %q, want admin", cfg.Auth.Username)
	}
}

func TestLoadReportsMissingFile(t *testing.T) {
	path := configPath(t)
	_ = os.Remove(path)

	cfg, info, err := config.LoadConfigWithInfo()
	if err != nil {
		t.Fatalf("LoadConfigWithInfo failed: %v", err)
	}
	if !info.FileMissing {
		t.Fatalf("FileMissing = false for absent config.toml")
	}
	if cfg.Server.Port != 20351 {
		t.Fatalf("missing file should yield defaults, got port %d", cfg.Server.Port)
	}
}

func TestSaveAndReloadConfig(t *testing.T) {
	path := configPath(t)
	t.Cleanup(func() { _ = os.Remove(path) })

	cfg := config.DefaultConfig()
	cfg.Server.Port = 9999
	cfg.SMTP.Host = "mail.internal.example"

	if err := config.SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, info, err := config.LoadConfigWithInfo()
	if err != nil {
		t.Fatalf("LoadConfigWithInfo failed: %v", err)
	}
	if info.FileMissing {
		t.Fatalf("FileMissing = true after SaveConfig")
	}
	if !info.PortSpecified {
		t.Fatalf("PortSpecified = false for a saved config with a port")
	}
	if loaded.Server.Port != 9999 {
		t.Fatalf("reloaded port = %d, want 9999", loaded.Server.Port)
	}
	if loaded.SMTP.Host != "mail.internal.example" {
		t.Fatalf("reloaded smtp host = %q", loaded.SMTP.Host)
	}
}

func TestEnvOverrides(t *testing.T) {
	path := configPath(t)
	_ = os.Remove(path)

	t.Setenv("RFQ_SMTP_PASSWORD", "s3cret")
	t.Setenv("RFQ_ADMIN_PASSWORD", "override")

	cfg, _, err := config.LoadConfigWithInfo()
	if err != nil {
		t.Fatalf("LoadConfigWithInfo failed: %v", err)
	}
	if cfg.SMTP.Password != "s3cret" {
		t.Fatalf("smtp password override not applied, got %q", cfg.SMTP.Password)
	}
	if cfg.Auth.Password != "override" {
		t.Fatalf("admin password override not applied, got %q", cfg.Auth.Password)
	}
}

func TestGetDataPath(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Data.DataDir = "data"

	exeDir, err := config.GetExeDir()
	if err != nil {
		exeDir = "."
	}

	want := filepath.Join(exeDir, "data", "exports", "out.pdf")
	if got := config.GetDataPath(cfg, "exports", "out.pdf"); got != want {
		t.Fatalf("GetDataPath = %q, want %q", got, want)
	}
}
