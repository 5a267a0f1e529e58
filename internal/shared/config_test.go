package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "trax.db" {
			t.Errorf("expected database path trax.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 8421 {
			t.Errorf("expected server port 8421, got %d", config.Server.Port)
		}

		if config.Credentials.MAL.RedirectURI != "http://localhost:8421/callback" {
			t.Errorf("expected mal redirect URI http://localhost:8421/callback, got %s", config.Credentials.MAL.RedirectURI)
		}

		if config.Credentials.MAL.Configured() {
			t.Error("expected mal credentials to be unconfigured by default")
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
path = "/custom/path.db"
max_open_conns = 20
max_idle_conns = 10

[server]
host = "0.0.0.0"
port = 9000

[credentials.mal]
client_id = "test_client_id"
client_secret = "test_secret"
redirect_uri = "http://localhost:9000/callback"

[credentials.bangumi]
client_id = "bangumi_id"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 9000 {
			t.Errorf("expected server port 9000, got %d", config.Server.Port)
		}

		if config.Credentials.MAL.ClientID != "test_client_id" {
			t.Errorf("expected mal client_id test_client_id, got %s", config.Credentials.MAL.ClientID)
		}

		if !config.Credentials.Bangumi.Configured() {
			t.Error("expected bangumi credentials to be configured")
		}
	})
}
