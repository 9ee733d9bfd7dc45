// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package processor implements structured document extraction over
// pluggable container-backed engines, with a degraded plain-text fallback
// chain. Implements: prd002-processing;
//
//	docs/ARCHITECTURE.md § Document Processor.
package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/pdiddy/paper-search/pkg/types"
)

// Export formats accepted by ExportDocument.
const (
	ExportMarkdown = "markdown"
	ExportHTML     = "html"
	ExportJSON     = "json"
	ExportText     = "text"
)

// Processor turns PDFs and URLs into types.Document records. The rich
// engine is tried first; on failure local files degrade through the
// fallback engine, and when that fails too the result is an error-shaped
// Document rather than a Go error, so batch callers keep going.
type Processor struct {
	engine   Engine
	fallback Engine
	log      zerolog.Logger
}

// New builds a processor. fallback may be nil, in which case engine
// failure goes straight to the error payload.
func New(engine, fallback Engine, log zerolog.Logger) *Processor {
	return &Processor{
		engine:   engine,
		fallback: fallback,
		log:      log.With().Str("component", "processor").Logger(),
	}
}

// ProcessPDF extracts a local PDF. A missing file is a caller error; every
// extraction failure degrades instead of erroring.
func (p *Processor) ProcessPDF(ctx context.Context, path string) (*types.Document, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("file not found: %s", path)
	}

	ed, richErr := p.engine.Convert(ctx, path)
	if richErr == nil {
		return p.richDocument(ed), nil
	}
	p.log.Warn().Err(richErr).Str("path", path).Str("engine", p.engine.Name()).
		Msg("rich extraction failed, trying fallback")

	if p.fallback == nil {
		return errorDocument(richErr), nil
	}

	ed, fallbackErr := p.fallback.Convert(ctx, path)
	if fallbackErr != nil {
		p.log.Warn().Err(fallbackErr).Str("path", path).Msg("fallback extraction failed")
		return errorDocument(fmt.Errorf("%v (fallback: %v)", richErr, fallbackErr)), nil
	}

	doc := &types.Document{
		Text:             ed.Markdown,
		Metadata:         ed.Metadata,
		Structure:        emptyStructure(),
		Format:           types.FormatPlainText,
		ExtractionMethod: types.ExtractionFallback,
	}
	return doc, nil
}

// ProcessURL extracts a remote document through the rich engine only; the
// degraded path needs a local file. Failures produce an error-shaped
// Document, never a Go error.
func (p *Processor) ProcessURL(ctx context.Context, url string) (*types.Document, error) {
	if err := validation.Validate(url, validation.Required); err != nil {
		return nil, fmt.Errorf("url: %w", err)
	}

	ed, err := p.engine.Convert(ctx, url)
	if err != nil {
		p.log.Warn().Err(err).Str("url", url).Msg("url extraction failed")
		doc := errorDocument(err)
		doc.Metadata.SourceURL = url
		return doc, nil
	}

	doc := p.richDocument(ed)
	doc.Metadata.SourceURL = url
	return doc, nil
}

// ExtractText extracts a local PDF and returns its text, erroring when
// extraction failed entirely. This is the surface source adapters consume.
func (p *Processor) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	doc, err := p.ProcessPDF(ctx, pdfPath)
	if err != nil {
		return "", err
	}
	if doc.Format == types.FormatError {
		return "", fmt.Errorf("extracting %s: %s", pdfPath, doc.Error)
	}
	return doc.Text, nil
}

func (p *Processor) richDocument(ed *EngineDocument) *types.Document {
	doc := &types.Document{
		Text:             ed.Markdown,
		Metadata:         ed.Metadata,
		Structure:        ed.Structure,
		Format:           types.FormatMarkdown,
		ExtractionMethod: p.engine.Name(),
	}
	// Facets are independently best-effort; absent means empty, not nil.
	if doc.Structure.Sections == nil {
		doc.Structure.Sections = []types.Section{}
	}
	if doc.Structure.Tables == nil {
		doc.Structure.Tables = []types.Table{}
	}
	if doc.Structure.Figures == nil {
		doc.Structure.Figures = []types.Figure{}
	}
	if doc.Structure.References == nil {
		doc.Structure.References = []string{}
	}
	return doc
}

func errorDocument(err error) *types.Document {
	return &types.Document{
		Structure: emptyStructure(),
		Format:    types.FormatError,
		Error:     err.Error(),
	}
}

func emptyStructure() types.DocumentStructure {
	return types.DocumentStructure{
		Sections:   []types.Section{},
		Tables:     []types.Table{},
		Figures:    []types.Figure{},
		References: []string{},
	}
}

var htmlRenderer = goldmark.New(goldmark.WithExtensions(extension.GFM))

// ExportDocument renders doc in one of the whitelisted formats. Unknown
// formats are rejected rather than passed through.
func ExportDocument(doc *types.Document, format string) (string, error) {
	err := validation.Validate(format,
		validation.Required,
		validation.In(ExportMarkdown, ExportHTML, ExportJSON, ExportText),
	)
	if err != nil {
		return "", fmt.Errorf("format: %w", err)
	}

	switch format {
	case ExportMarkdown, ExportText:
		return doc.Text, nil
	case ExportJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return "", fmt.Errorf("serializing document: %w", err)
		}
		return string(data), nil
	case ExportHTML:
		var buf bytes.Buffer
		if err := htmlRenderer.Convert([]byte(doc.Text), &buf); err != nil {
			return "", fmt.Errorf("rendering HTML: %w", err)
		}
		return buf.String(), nil
	}
	return "", fmt.Errorf("format: unsupported %q", format)
}
