// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-search/internal/httputil"
	"github.com/pdiddy/paper-search/pkg/types"
)

// arXiv endpoints. Declared as vars so tests can substitute httptest servers.
var (
	arxivAPIBase = "https://export.arxiv.org/api/query"
	arxivPDFBase = "https://arxiv.org/pdf/"
)

// Arxiv queries the arXiv Atom API and, unlike discovery-only backends,
// delivers documents: DownloadPDF fetches the PDF and writes a YAML
// metadata sidecar, ReadPaper extracts its text through the injected
// TextExtractor.
type Arxiv struct {
	client    *http.Client
	cfg       types.ArxivConfig
	extractor TextExtractor
	log       zerolog.Logger
}

// NewArxiv builds the adapter. extractor may be nil, in which case
// ReadPaper degrades to a capability error.
func NewArxiv(cfg types.ArxivConfig, extractor TextExtractor, log zerolog.Logger) *Arxiv {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.DownloadDir == "" {
		cfg.DownloadDir = "./downloads"
	}
	return &Arxiv{
		client:    &http.Client{Timeout: cfg.Timeout},
		cfg:       cfg,
		extractor: extractor,
		log:       log.With().Str("source", "arxiv").Logger(),
	}
}

// Name returns the adapter identifier.
func (a *Arxiv) Name() string { return "arxiv" }

// Search queries the arXiv API. Like every adapter, transport and backend
// failures soft-fail to an empty result set. The opts.Category filter maps
// to an arXiv category clause (e.g. "cs.LG").
func (a *Arxiv) Search(ctx context.Context, query string, opts SearchOptions) ([]types.Paper, error) {
	if err := validation.Validate(query, validation.Required); err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	maxResults := opts.MaxResults
	if maxResults < 0 {
		maxResults = 100
	}

	searchQuery := "all:" + strings.Join(strings.Fields(query), "+")
	if opts.Category != "" {
		searchQuery += "+AND+cat:" + opts.Category
	}

	reqURL := fmt.Sprintf("%s?search_query=%s&start=0&max_results=%d&sortBy=relevance&sortOrder=descending",
		arxivAPIBase, url.QueryEscape(searchQuery), maxResults)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", a.cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, a.client, req, 0)
	if err != nil {
		a.log.Warn().Err(err).Str("query", query).Msg("search request failed")
		return []types.Paper{}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		a.log.Warn().Int("status", resp.StatusCode).Str("query", query).Msg("search returned non-200")
		return []types.Paper{}, nil
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		a.log.Warn().Err(err).Str("query", query).Msg("decoding feed failed")
		return []types.Paper{}, nil
	}

	entries := feed.Entries
	if len(entries) > maxResults {
		entries = entries[:maxResults]
	}

	papers := make([]types.Paper, 0, len(entries))
	for _, entry := range entries {
		p, err := mapArxivEntry(entry)
		if err != nil {
			a.log.Warn().Err(err).Msg("skipping malformed entry")
			continue
		}
		papers = append(papers, p)
	}
	return papers, nil
}

func mapArxivEntry(entry arxivEntry) (types.Paper, error) {
	id := extractArxivID(entry.ID)
	if id == "" {
		return types.Paper{}, fmt.Errorf("entry %q carries no arXiv ID", entry.ID)
	}

	p := types.Paper{
		PaperID:  id,
		Title:    strings.Join(strings.Fields(entry.Title), " "),
		Abstract: strings.TrimSpace(entry.Summary),
		DOI:      entry.DOI,
		URL:      entry.ID,
		PDFURL:   arxivPDFBase + id,
		Source:   "arxiv",
	}

	for _, au := range entry.Authors {
		p.Authors = append(p.Authors, strings.TrimSpace(au.Name))
	}
	for _, c := range entry.Categories {
		p.Categories = append(p.Categories, c.Term)
	}
	for _, l := range entry.Links {
		if l.Title == "pdf" && l.Href != "" {
			p.PDFURL = l.Href
		}
	}

	if t, err := time.Parse(time.RFC3339, entry.Published); err == nil {
		p.PublishedDate = t
	} else {
		p.PublishedDate = time.Now().UTC()
	}

	if entry.PrimaryCategory.Term != "" {
		p.Extra = map[string]any{"primary_category": entry.PrimaryCategory.Term}
	}
	return p, nil
}

// DownloadPDF fetches the paper's PDF into dir (temp file, renamed on
// success) and writes a YAML metadata sidecar next to it. An existing PDF
// is not re-downloaded.
func (a *Arxiv) DownloadPDF(ctx context.Context, paperID, dir string) (string, error) {
	if err := validation.Validate(paperID, validation.Required); err != nil {
		return "", fmt.Errorf("paper id: %w", err)
	}
	if dir == "" {
		dir = a.cfg.DownloadDir
	}

	slug := strings.ReplaceAll(paperID, "/", "_")
	pdfPath := filepath.Join(dir, slug+".pdf")

	if _, err := os.Stat(pdfPath); err == nil {
		return pdfPath, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating download directory: %w", err)
	}

	if err := a.downloadFile(ctx, arxivPDFBase+paperID, pdfPath); err != nil {
		return "", fmt.Errorf("downloading %s: %w", paperID, err)
	}

	// Metadata fetch is best-effort: the PDF on disk is the contract.
	if paper, err := a.fetchMetadata(ctx, paperID); err != nil {
		a.log.Warn().Err(err).Str("paper_id", paperID).Msg("metadata fetch failed")
	} else if err := writeMetadata(paper, filepath.Join(dir, slug+".yaml")); err != nil {
		a.log.Warn().Err(err).Str("paper_id", paperID).Msg("metadata write failed")
	}

	return pdfPath, nil
}

// ReadPaper downloads the paper if needed and extracts its text through
// the injected extractor.
func (a *Arxiv) ReadPaper(ctx context.Context, paperID, dir string) (string, error) {
	if a.extractor == nil {
		return "", &CapabilityError{
			Source:     "arxiv",
			Capability: "text extraction",
			Hint:       "download the PDF and run it through the document processor",
		}
	}

	pdfPath, err := a.DownloadPDF(ctx, paperID, dir)
	if err != nil {
		return "", err
	}
	text, err := a.extractor.ExtractText(ctx, pdfPath)
	if err != nil {
		return "", fmt.Errorf("extracting text from %s: %w", pdfPath, err)
	}
	return text, nil
}

func (a *Arxiv) downloadFile(ctx context.Context, srcURL, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srcURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", a.cfg.UserAgent)
	req.Header.Set("Accept", "application/pdf")

	resp, err := httputil.DoWithRetry(ctx, a.client, req, 0)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, srcURL)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".download-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

func (a *Arxiv) fetchMetadata(ctx context.Context, paperID string) (types.Paper, error) {
	reqURL := fmt.Sprintf("%s?id_list=%s", arxivAPIBase, paperID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return types.Paper{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", a.cfg.UserAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return types.Paper{}, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.Paper{}, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return types.Paper{}, fmt.Errorf("parsing arXiv response: %w", err)
	}
	if len(feed.Entries) == 0 {
		return types.Paper{}, fmt.Errorf("no entries found for arXiv ID %s", paperID)
	}
	return mapArxivEntry(feed.Entries[0])
}

func writeMetadata(paper types.Paper, path string) error {
	data, err := yaml.Marshal(paper)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID              string          `xml:"id"`
	Title           string          `xml:"title"`
	Summary         string          `xml:"summary"`
	Published       string          `xml:"published"`
	DOI             string          `xml:"doi"`
	Authors         []arxivAuthor   `xml:"author"`
	Links           []arxivLink     `xml:"link"`
	Categories      []arxivCategory `xml:"category"`
	PrimaryCategory arxivCategory   `xml:"primary_category"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivLink struct {
	Href  string `xml:"href,attr"`
	Title string `xml:"title,attr"`
}

type arxivCategory struct {
	Term string `xml:"term,attr"`
}

// extractArxivID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" → "2301.07041").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := idURL[idx+len(prefix):]

	// Strip version suffix (e.g. "v1", "v2").
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}
