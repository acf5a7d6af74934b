package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGlobalPath(t *testing.T) {
	tests := []struct {
		name        string
		xdgConfig   string
		wantContain string
	}{
		{
			name:        "with XDG_CONFIG_HOME set",
			xdgConfig:   "/custom/config",
			wantContain: "/custom/config/botsmith/botsmith.yml",
		},
		{
			name:        "without XDG_CONFIG_HOME",
			xdgConfig:   "",
			wantContain: ".config/botsmith/botsmith.yml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.xdgConfig != "" {
				t.Setenv("XDG_CONFIG_HOME", tt.xdgConfig)
			} else {
				t.Setenv("XDG_CONFIG_HOME", "")
			}

			got := GlobalPath()
			if tt.xdgConfig != "" {
				if got != tt.wantContain {
					t.Errorf("GlobalPath() = %v, want %v", got, tt.wantContain)
				}
			} else if !strings.HasSuffix(got, tt.wantContain) {
				t.Errorf("GlobalPath() = %v, want suffix %v", got, tt.wantContain)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	// Run from an empty directory so no project config is picked up
	tmp := t.TempDir()
	t.Chdir(tmp)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "xdg"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DataDir != ".botsmith" {
		t.Errorf("DataDir = %q, want .botsmith", cfg.DataDir)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.MaxAssetBytes != DefaultMaxAssetBytes {
		t.Errorf("MaxAssetBytes = %d, want %d", cfg.MaxAssetBytes, DefaultMaxAssetBytes)
	}
	if cfg.APIBaseURL != "" {
		t.Errorf("APIBaseURL = %q, want empty default", cfg.APIBaseURL)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	tmp := t.TempDir()
	t.Chdir(tmp)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "xdg"))
	t.Setenv("BOTSMITH_API_BASE_URL", "https://records.example.com/api")
	t.Setenv("BOTSMITH_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.APIBaseURL != "https://records.example.com/api" {
		t.Errorf("APIBaseURL = %q, env override not applied", cfg.APIBaseURL)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, env override not applied", cfg.LogLevel)
	}
}

func TestProjectConfigOverridesGlobal(t *testing.T) {
	tmp := t.TempDir()
	t.Chdir(tmp)
	xdg := filepath.Join(tmp, "xdg")
	t.Setenv("XDG_CONFIG_HOME", xdg)

	if err := os.MkdirAll(filepath.Join(xdg, "botsmith"), 0755); err != nil {
		t.Fatal(err)
	}
	global := "api_base_url: https://global.example.com\nchat_webhook_url: https://chat.example.com/reply\n"
	if err := os.WriteFile(filepath.Join(xdg, "botsmith", "botsmith.yml"), []byte(global), 0644); err != nil {
		t.Fatal(err)
	}
	project := "api_base_url: https://project.example.com\n"
	if err := os.WriteFile(filepath.Join(tmp, "botsmith.yml"), []byte(project), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.APIBaseURL != "https://project.example.com" {
		t.Errorf("APIBaseURL = %q, project config should win", cfg.APIBaseURL)
	}
	if cfg.ChatWebhookURL != "https://chat.example.com/reply" {
		t.Errorf("ChatWebhookURL = %q, global value should survive merge", cfg.ChatWebhookURL)
	}
}

func TestWriteProjectRoundTrip(t *testing.T) {
	tmp := t.TempDir()
	t.Chdir(tmp)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "xdg"))

	in := &Config{
		APIBaseURL:     "https://records.example.com/api",
		ChatWebhookURL: "https://chat.example.com/reply",
		DataDir:        ".botsmith",
		LogLevel:       "warn",
		MaxAssetBytes:  1024,
	}
	if err := WriteProject(in); err != nil {
		t.Fatalf("WriteProject() error: %v", err)
	}

	if !Exists() {
		t.Fatal("Exists() = false after WriteProject")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.APIBaseURL != in.APIBaseURL {
		t.Errorf("APIBaseURL = %q, want %q", cfg.APIBaseURL, in.APIBaseURL)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.LogLevel)
	}
	if cfg.MaxAssetBytes != 1024 {
		t.Errorf("MaxAssetBytes = %d, want 1024", cfg.MaxAssetBytes)
	}
}
