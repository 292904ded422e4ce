package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultDataDirXDGOverride(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/custom/data")
	if got := DefaultDataDir(); got != "/custom/data/beacon" {
		t.Fatalf("got %s", got)
	}
}

func TestDefaultDataDirNoHome(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "")
	os.Unsetenv("XDG_DATA_HOME")
	originalHome := os.Getenv("HOME")
	os.Unsetenv("HOME")
	t.Cleanup(func() {
		if originalHome != "" {
			os.Setenv("HOME", originalHome)
		}
	})

	result := DefaultDataDir()
	if result == "" {
		t.Error("expected non-empty result even when HOME is not set")
	}
	if result != "./data" && !filepath.IsAbs(result) {
		t.Errorf("expected './data' fallback or absolute path, got %s", result)
	}
}

func TestDefaultDataDirShape(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "")
	os.Unsetenv("XDG_DATA_HOME")
	result := DefaultDataDir()
	if result == "" {
		t.Fatal("DefaultDataDir returned empty string")
	}
	if !filepath.IsAbs(result) && !strings.HasPrefix(result, "./") {
		t.Errorf("expected absolute path or ./ prefix, got %s", result)
	}
	lower := strings.ToLower(result)
	if !strings.Contains(lower, "beacon") && result != "./data" {
		t.Errorf("expected 'beacon' in path, got %s", result)
	}
	if again := DefaultDataDir(); again != result {
		t.Errorf("inconsistent results: %s vs %s", result, again)
	}
}

func TestIsDir(t *testing.T) {
	if !isDir(".") {
		t.Error("isDir(.) = false")
	}
	if isDir("/non/existent/path/that/does/not/exist") {
		t.Error("isDir on missing path = true")
	}
	if isDir(os.Args[0]) {
		t.Error("isDir on a file = true")
	}
}
