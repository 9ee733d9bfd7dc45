// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads component configuration through viper. Every setting
// has a hardcoded default and an environment override; the documented names
// (SEARXNG_URL, KNOWLEDGE_DB_PATH) are bound explicitly, everything else is
// reachable through the PAPER_SEARCH_ prefix.
//
// See docs/ARCHITECTURE.md § Configuration.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-search/pkg/types"
)

// Defaults for every configurable setting.
const (
	DefaultSearXNGURL     = "http://localhost:8080"
	DefaultCategory       = "science"
	DefaultTimeout        = 30 * time.Second
	DefaultUserAgent      = "paper-search/0.1"
	DefaultDownloadDir    = "./downloads"
	DefaultEngineImage    = "docling:latest"
	DefaultFallbackImage  = "pdftotext:latest"
	DefaultKnowledgePath  = "./knowledge/paper_search.db"
	DefaultKnowledgeLimit = 10
	DefaultLogLevel       = "info"
)

// SetDefaults registers defaults and environment bindings on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("searxng.base_url", DefaultSearXNGURL)
	v.SetDefault("searxng.category", DefaultCategory)
	v.SetDefault("searxng.timeout", DefaultTimeout)
	v.SetDefault("searxng.user_agent", DefaultUserAgent)

	v.SetDefault("arxiv.timeout", DefaultTimeout)
	v.SetDefault("arxiv.user_agent", DefaultUserAgent)
	v.SetDefault("arxiv.download_dir", DefaultDownloadDir)

	v.SetDefault("processor.engine", DefaultEngineImage)
	v.SetDefault("processor.fallback_engine", DefaultFallbackImage)

	v.SetDefault("knowledge.path", DefaultKnowledgePath)
	v.SetDefault("knowledge.max_results", DefaultKnowledgeLimit)

	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.console", false)

	v.SetEnvPrefix("PAPER_SEARCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Documented standalone names, kept for compatibility with existing
	// deployments.
	v.BindEnv("searxng.base_url", "SEARXNG_URL")
	v.BindEnv("knowledge.path", "KNOWLEDGE_DB_PATH")
}

// Load reads the full configuration from v. SetDefaults must have been
// called on v first.
func Load(v *viper.Viper) types.Config {
	return types.Config{
		SearXNG: types.SearXNGConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   v.GetDuration("searxng.timeout"),
				UserAgent: v.GetString("searxng.user_agent"),
			},
			BaseURL:  v.GetString("searxng.base_url"),
			Category: v.GetString("searxng.category"),
		},
		Arxiv: types.ArxivConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   v.GetDuration("arxiv.timeout"),
				UserAgent: v.GetString("arxiv.user_agent"),
			},
			DownloadDir: v.GetString("arxiv.download_dir"),
		},
		Processor: types.ProcessorConfig{
			Engine:         v.GetString("processor.engine"),
			FallbackEngine: v.GetString("processor.fallback_engine"),
		},
		Knowledge: types.KnowledgeConfig{
			Path:       v.GetString("knowledge.path"),
			MaxResults: v.GetInt("knowledge.max_results"),
		},
		Log: types.LogConfig{
			Level:   v.GetString("log.level"),
			Console: v.GetBool("log.console"),
		},
	}
}

// NewLogger builds a zerolog logger from cfg, writing to stderr so command
// output on stdout stays machine-readable.
func NewLogger(cfg types.LogConfig) zerolog.Logger {
	var out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	if !cfg.Console {
		return zerolog.New(os.Stderr).With().Timestamp().Logger().Level(parseLevel(cfg.Level))
	}
	return zerolog.New(out).With().Timestamp().Logger().Level(parseLevel(cfg.Level))
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
