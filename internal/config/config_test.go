package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PEXELS_API_KEY", "test-key")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Provider.APIKey != "test-key" {
		t.Errorf("expected api key from env, got %q", cfg.Provider.APIKey)
	}
	if cfg.Provider.Timeout != 15*time.Second {
		t.Errorf("expected 15s provider timeout, got %v", cfg.Provider.Timeout)
	}
	if cfg.Provider.PerPage != 80 {
		t.Errorf("expected per_page_max 80, got %d", cfg.Provider.PerPage)
	}
	if cfg.Search.OverfetchFactor != 3 || cfg.Search.FallbackFactor != 2 {
		t.Errorf("unexpected search factors: %+v", cfg.Search)
	}
	if cfg.Search.DefaultMinDuration != 3 || cfg.Search.KeywordLimit != 6 || cfg.Search.LongPromptWords != 8 {
		t.Errorf("unexpected search limits: %+v", cfg.Search)
	}
	if cfg.Learning.SessionWindow != 1000 {
		t.Errorf("expected session window 1000, got %d", cfg.Learning.SessionWindow)
	}
	if err := cfg.Provider.ValidateWithAPIKey(); err != nil {
		t.Errorf("expected valid provider config, got %v", err)
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
search:
  tokenizer: naive
learning:
  store: database
database:
  driver: postgres
  host: db
  user: reel
  password: secret
  dbname: reels
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Search.Tokenizer != "naive" {
		t.Errorf("expected naive tokenizer, got %q", cfg.Search.Tokenizer)
	}
	if cfg.Learning.Store != "database" {
		t.Errorf("expected database store, got %q", cfg.Learning.Store)
	}

	want := "host=db port=5432 user=reel password=secret dbname=reels sslmode=disable"
	if got := cfg.Database.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

func TestProviderConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ProviderConfig
		wantErr bool
	}{
		{"valid", ProviderConfig{Name: "pexels", BaseURL: "http://x", Timeout: time.Second, PerPage: 80}, false},
		{"unknown provider", ProviderConfig{Name: "pixabay", BaseURL: "http://x", Timeout: time.Second, PerPage: 80}, true},
		{"missing base url", ProviderConfig{Name: "pexels", Timeout: time.Second, PerPage: 80}, true},
		{"zero timeout", ProviderConfig{Name: "pexels", BaseURL: "http://x", PerPage: 80}, true},
		{"staging", ProviderConfig{Name: "staging", StagingPath: "./data/staging", Catalog: "demo"}, false},
		{"staging without catalog", ProviderConfig{Name: "staging", StagingPath: "./data/staging"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestProviderConfig_StagingNeedsNoAPIKey(t *testing.T) {
	cfg := ProviderConfig{Name: "staging", StagingPath: "./data/staging", Catalog: "demo"}
	if err := cfg.ValidateWithAPIKey(); err != nil {
		t.Errorf("expected staging provider to validate without api key, got %v", err)
	}

	cfg = ProviderConfig{Name: "pexels", BaseURL: "http://x", Timeout: time.Second, PerPage: 80}
	if err := cfg.ValidateWithAPIKey(); err == nil {
		t.Error("expected pexels provider without api key to fail")
	}
}
