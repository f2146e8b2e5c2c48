package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[server]
host = "127.0.0.1"
port = 9000
log_level = "debug"

[database]
path = "/var/lib/vodarr/vodarr.db"

[playlists]
dir = "/var/lib/vodarr/playlists"
chunk_size = 50

[tmdb]
api_key = "secret"
language = "en-US"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Database.Path != "/var/lib/vodarr/vodarr.db" {
		t.Errorf("database.path = %q", cfg.Database.Path)
	}
	if cfg.Playlists.ChunkSize != 50 {
		t.Errorf("playlists.chunk_size = %d, want 50", cfg.Playlists.ChunkSize)
	}
	if cfg.TMDB.APIKey != "secret" || cfg.TMDB.Language != "en-US" {
		t.Errorf("tmdb = %+v", cfg.TMDB)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8787 {
		t.Errorf("server.port = %d, want 8787", cfg.Server.Port)
	}
	if cfg.Server.LogLevel != "info" {
		t.Errorf("server.log_level = %q, want info", cfg.Server.LogLevel)
	}
	if cfg.Playlists.ChunkSize != 100 {
		t.Errorf("playlists.chunk_size = %d, want 100", cfg.Playlists.ChunkSize)
	}
	if cfg.Playlists.Dir != "./data/playlists" {
		t.Errorf("playlists.dir = %q", cfg.Playlists.Dir)
	}
	if cfg.TMDB.Language != "pt-BR" {
		t.Errorf("tmdb.language = %q, want pt-BR", cfg.TMDB.Language)
	}
	if cfg.TMDB.BaseURL != "https://api.themoviedb.org" {
		t.Errorf("tmdb.base_url = %q", cfg.TMDB.BaseURL)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.toml"); err == nil {
		t.Fatal("Load() expected error for missing file")
	}
}

func TestEnvSubstitution(t *testing.T) {
	t.Setenv("VODARR_TEST_KEY", "from-env")
	cfg, err := Load(writeConfig(t, `
[tmdb]
api_key = "${VODARR_TEST_KEY}"
`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TMDB.APIKey != "from-env" {
		t.Errorf("tmdb.api_key = %q, want from-env", cfg.TMDB.APIKey)
	}
}

func TestEnvSubstitutionMissingVarKept(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
[tmdb]
api_key = "${VODARR_DEFINITELY_UNSET}"
`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TMDB.APIKey != "${VODARR_DEFINITELY_UNSET}" {
		t.Errorf("tmdb.api_key = %q, want placeholder kept", cfg.TMDB.APIKey)
	}

	errs := cfg.Validate()
	found := false
	for _, e := range errs {
		if strings.Contains(e, "tmdb.api_key") {
			found = true
		}
	}
	if !found {
		t.Errorf("Validate() = %v, want unresolved api_key error", errs)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("Validate() = %v, want no errors", errs)
	}

	cfg.Server.Port = 70000
	cfg.Server.LogLevel = "verbose"
	errs := cfg.Validate()
	if len(errs) != 2 {
		t.Errorf("Validate() = %v, want 2 errors", errs)
	}
}
