package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(storageDriverEnv, "")

	cfg := Load()

	if cfg.Storage.Driver != DriverMongo {
		t.Fatalf("expected mongo driver, got %s", cfg.Storage.Driver)
	}
	if cfg.Fetch.DefaultMaxArticles != 10 {
		t.Fatalf("expected default max articles 10, got %d", cfg.Fetch.DefaultMaxArticles)
	}
	if cfg.Cache.Redis.TTL != 72*time.Hour {
		t.Fatalf("expected 72h ttl, got %s", cfg.Cache.Redis.TTL)
	}
	if cfg.Scheduler.FetchInterval != 0 {
		t.Fatalf("scheduler must be disabled by default")
	}
	if cfg.Scheduler.Location().String() != "UTC" {
		t.Fatalf("unexpected location %s", cfg.Scheduler.Location())
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "newsdesk.yaml")
	raw := `
logging:
  level: debug
storage:
  driver: postgres
  postgres:
    dsn: postgres://file
fetch:
  defaultMaxArticles: 20
  timeout: 5s
htmlSites:
  - domain: example.com
    containerSelector: article
    titleSelector: h2
openai:
  model: gpt-4o
scheduler:
  fetchInterval: 1h
  cron: "0 */6 * * *"
  timezone: Europe/Berlin
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(configPathEnv, path)
	t.Setenv(databaseDSNEnv, "postgres://env")
	t.Setenv(openAIAPIKeyEnv, "sk-test")
	t.Setenv(storageDriverEnv, "")

	cfg := Load()

	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected debug level, got %s", cfg.Logging.Level)
	}
	if cfg.Storage.Driver != DriverPostgres {
		t.Fatalf("expected postgres driver, got %s", cfg.Storage.Driver)
	}
	if cfg.Storage.Postgres.DSN != "postgres://env" {
		t.Fatalf("env dsn must win, got %s", cfg.Storage.Postgres.DSN)
	}
	if cfg.Fetch.DefaultMaxArticles != 20 || cfg.Fetch.Timeout != 5*time.Second {
		t.Fatalf("unexpected fetch config: %+v", cfg.Fetch)
	}
	if len(cfg.HTMLSites) != 1 || cfg.HTMLSites[0].Domain != "example.com" {
		t.Fatalf("unexpected html sites: %+v", cfg.HTMLSites)
	}
	if cfg.OpenAI.Model != "gpt-4o" || cfg.OpenAI.APIKey != "sk-test" {
		t.Fatalf("unexpected openai config: %+v", cfg.OpenAI)
	}
	if cfg.Scheduler.Cron != "0 */6 * * *" {
		t.Fatalf("unexpected cron %q", cfg.Scheduler.Cron)
	}
	if cfg.Scheduler.FetchInterval != time.Hour {
		t.Fatalf("expected 1h interval, got %s", cfg.Scheduler.FetchInterval)
	}
	if cfg.Scheduler.Location().String() != "Europe/Berlin" {
		t.Fatalf("unexpected location %s", cfg.Scheduler.Location())
	}
}

func TestLoadUnknownDriverFallsBack(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(storageDriverEnv, "cassandra")

	if cfg := Load(); cfg.Storage.Driver != DriverMongo {
		t.Fatalf("expected fallback to mongo, got %s", cfg.Storage.Driver)
	}
}
