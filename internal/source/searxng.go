// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"net/http"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-search/internal/httputil"
	"github.com/pdiddy/paper-search/pkg/types"
)

// SearXNG queries a SearXNG metasearch instance. SearXNG aggregates other
// engines and delivers no documents itself, so DownloadPDF and ReadPaper
// are unsupported capabilities.
type SearXNG struct {
	client *http.Client
	cfg    types.SearXNGConfig
	log    zerolog.Logger
}

// NewSearXNG builds the adapter. Zero-value config fields fall back to the
// documented defaults (localhost instance, "science" category, 30s timeout).
func NewSearXNG(cfg types.SearXNGConfig, log zerolog.Logger) *SearXNG {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.Category == "" {
		cfg.Category = "science"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &SearXNG{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
		log:    log.With().Str("source", "searxng").Logger(),
	}
}

// Name returns the adapter identifier.
func (s *SearXNG) Name() string { return "searxng" }

// Search issues one bounded-timeout request against the instance's /search
// endpoint. Transport, HTTP, and decode failures are logged and degrade to
// an empty result set; a malformed result item is logged and skipped
// without aborting the batch.
func (s *SearXNG) Search(ctx context.Context, query string, opts SearchOptions) ([]types.Paper, error) {
	if err := validation.Validate(query, validation.Required); err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	category := opts.Category
	if category == "" {
		category = s.cfg.Category
	}

	params := url.Values{
		"q":          {query},
		"format":     {"json"},
		"categories": {category},
		"pageno":     {"1"},
	}

	reqURL := strings.TrimSuffix(s.cfg.BaseURL, "/") + "/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, s.client, req, 0)
	if err != nil {
		s.log.Warn().Err(err).Str("query", query).Msg("search request failed")
		return []types.Paper{}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.log.Warn().Int("status", resp.StatusCode).Str("query", query).Msg("search returned non-200")
		return []types.Paper{}, nil
	}

	// Items are decoded individually so one malformed result cannot
	// poison the rest of the batch.
	var body struct {
		Results []json.RawMessage `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		s.log.Warn().Err(err).Str("query", query).Msg("decoding search response failed")
		return []types.Paper{}, nil
	}

	items := body.Results
	if opts.MaxResults >= 0 && len(items) > opts.MaxResults {
		items = items[:opts.MaxResults]
	}

	papers := make([]types.Paper, 0, len(items))
	for idx, raw := range items {
		p, err := s.mapResult(idx, raw, category)
		if err != nil {
			s.log.Warn().Err(err).Int("index", idx).Msg("skipping malformed result")
			continue
		}
		papers = append(papers, p)
	}
	return papers, nil
}

// searxngResult is the per-item shape of a SearXNG JSON response. Every
// field is individually optional.
type searxngResult struct {
	Title    string   `json:"title"`
	URL      string   `json:"url"`
	Content  string   `json:"content"`
	Author   string   `json:"author"`
	Tags     []string `json:"tags"`
	Engine   string   `json:"engine"`
	Score    float64  `json:"score"`
	Category string   `json:"category"`
}

func (s *SearXNG) mapResult(idx int, raw json.RawMessage, category string) (types.Paper, error) {
	var item searxngResult
	if err := json.Unmarshal(raw, &item); err != nil {
		return types.Paper{}, fmt.Errorf("decoding result: %w", err)
	}
	if item.Title == "" && item.URL == "" {
		return types.Paper{}, fmt.Errorf("result carries neither title nor url")
	}

	title := item.Title
	if title == "" {
		title = "Untitled"
	}

	// SearXNG rarely has structured author data.
	authors := []string{"Unknown"}
	if item.Author != "" {
		authors = []string{item.Author}
	}

	itemCategory := item.Category
	if itemCategory == "" {
		itemCategory = category
	}

	return types.Paper{
		PaperID:       fmt.Sprintf("searxng_%d_%08x", idx, hashURL(item.URL)),
		Title:         title,
		Authors:       authors,
		Abstract:      types.TruncateAbstract(item.Content),
		PublishedDate: time.Now().UTC(),
		PDFURL:        guessPDFURL(item.URL),
		URL:           item.URL,
		Source:        "searxng",
		Keywords:      item.Tags,
		Extra: map[string]any{
			"engine":   item.Engine,
			"score":    item.Score,
			"category": itemCategory,
		},
	}, nil
}

// guessPDFURL returns u when it plausibly points at a PDF: the URL
// mentions "pdf" or belongs to a known open-access domain.
func guessPDFURL(u string) string {
	if strings.Contains(strings.ToLower(u), "pdf") || strings.Contains(u, "arxiv.org") {
		return u
	}
	return ""
}

func hashURL(u string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(u))
	return h.Sum32()
}

// DownloadPDF always fails: SearXNG is a metasearch aggregator, not a
// document provider.
func (s *SearXNG) DownloadPDF(_ context.Context, _, _ string) (string, error) {
	return "", &CapabilityError{
		Source:     "searxng",
		Capability: "PDF download",
		Hint:       "use the paper's url to reach the original source",
	}
}

// ReadPaper always fails for the same reason as DownloadPDF.
func (s *SearXNG) ReadPaper(_ context.Context, _, _ string) (string, error) {
	return "", &CapabilityError{
		Source:     "searxng",
		Capability: "paper content",
		Hint:       "use the paper's url to reach the original source",
	}
}
