// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

func TestLoadDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	cfg := Load(v)

	if cfg.SearXNG.BaseURL != DefaultSearXNGURL {
		t.Errorf("BaseURL = %q", cfg.SearXNG.BaseURL)
	}
	if cfg.SearXNG.Category != DefaultCategory {
		t.Errorf("Category = %q", cfg.SearXNG.Category)
	}
	if cfg.SearXNG.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v", cfg.SearXNG.Timeout)
	}
	if cfg.Arxiv.DownloadDir != DefaultDownloadDir {
		t.Errorf("DownloadDir = %q", cfg.Arxiv.DownloadDir)
	}
	if cfg.Processor.Engine != DefaultEngineImage {
		t.Errorf("Engine = %q", cfg.Processor.Engine)
	}
	if cfg.Knowledge.Path != DefaultKnowledgePath {
		t.Errorf("Path = %q", cfg.Knowledge.Path)
	}
	if cfg.Knowledge.MaxResults != DefaultKnowledgeLimit {
		t.Errorf("MaxResults = %d", cfg.Knowledge.MaxResults)
	}
	if cfg.Log.Level != DefaultLogLevel {
		t.Errorf("Level = %q", cfg.Log.Level)
	}
}

func TestEnvOverrides(t *testing.T) {
	// The documented standalone names take effect without the prefix.
	t.Setenv("SEARXNG_URL", "http://searx.internal:8888")
	t.Setenv("KNOWLEDGE_DB_PATH", "/var/lib/paper_search.db")
	// Everything else is reachable through the prefix.
	t.Setenv("PAPER_SEARCH_SEARXNG_CATEGORY", "it")
	t.Setenv("PAPER_SEARCH_LOG_LEVEL", "debug")

	v := viper.New()
	SetDefaults(v)
	cfg := Load(v)

	if cfg.SearXNG.BaseURL != "http://searx.internal:8888" {
		t.Errorf("BaseURL = %q", cfg.SearXNG.BaseURL)
	}
	if cfg.Knowledge.Path != "/var/lib/paper_search.db" {
		t.Errorf("Path = %q", cfg.Knowledge.Path)
	}
	if cfg.SearXNG.Category != "it" {
		t.Errorf("Category = %q", cfg.SearXNG.Category)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Level = %q", cfg.Log.Level)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"WARN", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"trace", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
