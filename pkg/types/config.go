// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout (default 30s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paper-search/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearXNGConfig holds settings for the SearXNG metasearch adapter.
type SearXNGConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the SearXNG instance URL (env SEARXNG_URL,
	// default "http://localhost:8080").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Category is the default backend category filter (default "science").
	Category string `json:"category" yaml:"category"`
}

// ArxivConfig holds settings for the arXiv adapter.
type ArxivConfig struct {
	HTTPConfig `yaml:",inline"`

	// DownloadDir is where DownloadPDF saves PDFs and metadata sidecars
	// (default "./downloads").
	DownloadDir string `json:"download_dir" yaml:"download_dir"`
}

// ProcessorConfig holds settings for the document processor.
type ProcessorConfig struct {
	// Engine selects the rich conversion image (default "docling:latest").
	Engine string `json:"engine" yaml:"engine"`

	// FallbackEngine selects the degraded extraction image
	// (default "pdftotext:latest").
	FallbackEngine string `json:"fallback_engine" yaml:"fallback_engine"`
}

// KnowledgeConfig holds settings for the knowledge store.
type KnowledgeConfig struct {
	// Path is the SQLite database file (env KNOWLEDGE_DB_PATH,
	// default "./knowledge/paper_search.db").
	Path string `json:"path" yaml:"path"`

	// MaxResults is the default cap for SearchPapers (default 10).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the minimum level: debug, info, warn, error (default "info").
	Level string `json:"level" yaml:"level"`

	// Console switches from JSON to human-readable console output.
	Console bool `json:"console" yaml:"console"`
}

// Config groups all component configurations.
type Config struct {
	SearXNG   SearXNGConfig   `json:"searxng" yaml:"searxng"`
	Arxiv     ArxivConfig     `json:"arxiv" yaml:"arxiv"`
	Processor ProcessorConfig `json:"processor" yaml:"processor"`
	Knowledge KnowledgeConfig `json:"knowledge" yaml:"knowledge"`
	Log       LogConfig       `json:"log" yaml:"log"`
}
