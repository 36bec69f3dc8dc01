package config

import (
	"strings"
	"testing"
	"time"
)

// TestLoadDefaults is not t.Parallel because it mutates process-wide environment variables.
func TestLoadDefaults(t *testing.T) {
	keys := []string{
		"DATA_DIR", "COMMIT_THRESHOLD", "INDEX_BATCH_SIZE", "SEARCH_SOFT_TIMEOUT", "MAX_MESSAGE_BYTES",
		"DATABASE_URL", "DATABASE_MAX_CONNS", "DATABASE_MIN_CONNS",
		"PERMISSION_CACHE_URL", "PERMISSION_CACHE_TTL",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.DataDir != "./data" {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, "./data")
	}
	if cfg.CommitThreshold != 10 {
		t.Errorf("CommitThreshold = %d, want 10", cfg.CommitThreshold)
	}
	if cfg.IndexBatchSize != 100 {
		t.Errorf("IndexBatchSize = %d, want 100", cfg.IndexBatchSize)
	}
	if cfg.SearchSoftTimeout != 5*time.Second {
		t.Errorf("SearchSoftTimeout = %v, want 5s", cfg.SearchSoftTimeout)
	}
	if cfg.MaxMessageBytes != 4096 {
		t.Errorf("MaxMessageBytes = %d, want 4096", cfg.MaxMessageBytes)
	}
	if cfg.DatabaseMaxConn != 25 {
		t.Errorf("DatabaseMaxConn = %d, want 25", cfg.DatabaseMaxConn)
	}
	if cfg.DatabaseMinConn != 5 {
		t.Errorf("DatabaseMinConn = %d, want 5", cfg.DatabaseMinConn)
	}
	if cfg.PermissionCacheURL != "" {
		t.Errorf("PermissionCacheURL = %q, want empty", cfg.PermissionCacheURL)
	}
	if cfg.PermissionCacheTTL != 5*time.Minute {
		t.Errorf("PermissionCacheTTL = %v, want 5m", cfg.PermissionCacheTTL)
	}
	if cfg.CacheEnabled() {
		t.Error("CacheEnabled() = true, want false when PERMISSION_CACHE_URL is empty")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATA_DIR", "/var/lib/hubline")
	t.Setenv("COMMIT_THRESHOLD", "25")
	t.Setenv("INDEX_BATCH_SIZE", "200")
	t.Setenv("SEARCH_SOFT_TIMEOUT", "2s")
	t.Setenv("MAX_MESSAGE_BYTES", "8192")
	t.Setenv("DATABASE_MAX_CONNS", "50")
	t.Setenv("PERMISSION_CACHE_URL", "redis://cache:6379/0")
	t.Setenv("PERMISSION_CACHE_TTL", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.DataDir != "/var/lib/hubline" {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, "/var/lib/hubline")
	}
	if cfg.CommitThreshold != 25 {
		t.Errorf("CommitThreshold = %d, want 25", cfg.CommitThreshold)
	}
	if cfg.IndexBatchSize != 200 {
		t.Errorf("IndexBatchSize = %d, want 200", cfg.IndexBatchSize)
	}
	if cfg.SearchSoftTimeout != 2*time.Second {
		t.Errorf("SearchSoftTimeout = %v, want 2s", cfg.SearchSoftTimeout)
	}
	if cfg.MaxMessageBytes != 8192 {
		t.Errorf("MaxMessageBytes = %d, want 8192", cfg.MaxMessageBytes)
	}
	if cfg.DatabaseMaxConn != 50 {
		t.Errorf("DatabaseMaxConn = %d, want 50", cfg.DatabaseMaxConn)
	}
	if cfg.PermissionCacheURL != "redis://cache:6379/0" {
		t.Errorf("PermissionCacheURL = %q, want %q", cfg.PermissionCacheURL, "redis://cache:6379/0")
	}
	if cfg.PermissionCacheTTL != 30*time.Second {
		t.Errorf("PermissionCacheTTL = %v, want 30s", cfg.PermissionCacheTTL)
	}
	if !cfg.CacheEnabled() {
		t.Error("CacheEnabled() = false, want true when PERMISSION_CACHE_URL is set")
	}
}

func TestLoadInvalidInt(t *testing.T) {
	t.Setenv("COMMIT_THRESHOLD", "not-a-number")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "COMMIT_THRESHOLD") {
		t.Errorf("error %q does not mention COMMIT_THRESHOLD", err.Error())
	}
	if !strings.Contains(err.Error(), "not-a-number") {
		t.Errorf("error %q does not include the invalid value", err.Error())
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("SEARCH_SOFT_TIMEOUT", "not-a-duration")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "SEARCH_SOFT_TIMEOUT") {
		t.Errorf("error %q does not mention SEARCH_SOFT_TIMEOUT", err.Error())
	}
}

func TestLoadMultipleErrors(t *testing.T) {
	t.Setenv("COMMIT_THRESHOLD", "abc")
	t.Setenv("DATABASE_MAX_CONNS", "xyz")
	t.Setenv("INDEX_BATCH_SIZE", "nope")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() returned nil error, want multiple parse errors")
	}

	errStr := err.Error()
	for _, want := range []string{"COMMIT_THRESHOLD", "DATABASE_MAX_CONNS", "INDEX_BATCH_SIZE"} {
		if !strings.Contains(errStr, want) {
			t.Errorf("error missing %s, got: %s", want, errStr)
		}
	}
}

func TestLoadEmptyDatabaseURLFallsBackToDefault(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	// Load() falls back to a default DSN rather than leaving it empty, so
	// this exercises the fallback path instead of a validation failure;
	// an explicitly empty env var is indistinguishable from unset here.
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.DatabaseURL == "" {
		t.Error("DatabaseURL is empty, want a default DSN")
	}
}

func TestLoadValidationDatabaseConnBounds(t *testing.T) {
	t.Setenv("DATABASE_MIN_CONNS", "10")
	t.Setenv("DATABASE_MAX_CONNS", "5")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() returned nil error, want validation error for min > max")
	}
	if !strings.Contains(err.Error(), "DATABASE_MIN_CONNS") {
		t.Errorf("error %q does not mention DATABASE_MIN_CONNS", err.Error())
	}
}

func TestLoadValidationCacheTTLRequiresCacheURL(t *testing.T) {
	t.Setenv("PERMISSION_CACHE_URL", "redis://cache:6379/0")
	t.Setenv("PERMISSION_CACHE_TTL", "0s")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() returned nil error, want validation error for too-short TTL")
	}
	if !strings.Contains(err.Error(), "PERMISSION_CACHE_TTL") {
		t.Errorf("error %q does not mention PERMISSION_CACHE_TTL", err.Error())
	}
}

func TestCacheEnabled(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"", false},
		{"redis://cache:6379/0", true},
	}
	for _, tt := range tests {
		cfg := &Config{PermissionCacheURL: tt.url}
		if got := cfg.CacheEnabled(); got != tt.want {
			t.Errorf("CacheEnabled() with url=%q = %v, want %v", tt.url, got, tt.want)
		}
	}
}
