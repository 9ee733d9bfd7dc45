// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// DocumentFormat marks the fidelity of a processed document. Callers must
// check it: FormatError means extraction failed entirely and Text is empty.
type DocumentFormat string

const (
	// FormatMarkdown is rich engine output.
	FormatMarkdown DocumentFormat = "markdown"
	// FormatPlainText is degraded page-by-page extraction.
	FormatPlainText DocumentFormat = "plain_text"
	// FormatError is the error payload shape returned when both the rich
	// and the degraded path failed.
	FormatError DocumentFormat = "error"
)

// ExtractionFallback is the ExtractionMethod value set on degraded output.
const ExtractionFallback = "fallback"

// DocumentMetadata describes the source document as a whole.
type DocumentMetadata struct {
	Title      string `json:"title" yaml:"title"`
	SourceURL  string `json:"source_url,omitempty" yaml:"source_url,omitempty"`
	NumPages   int    `json:"num_pages" yaml:"num_pages"`
	HasTables  bool   `json:"has_tables" yaml:"has_tables"`
	HasFigures bool   `json:"has_figures" yaml:"has_figures"`
}

// Section is one document section with its heading level.
type Section struct {
	Title   string `json:"title" yaml:"title"`
	Level   int    `json:"level" yaml:"level"`
	Content string `json:"content" yaml:"content"`
}

// Table is an extracted table. Data is row-major cell text.
type Table struct {
	Caption string     `json:"caption" yaml:"caption"`
	Data    [][]string `json:"data" yaml:"data"`
	Page    int        `json:"page" yaml:"page"`
}

// Figure is an extracted figure reference.
type Figure struct {
	Caption string `json:"caption" yaml:"caption"`
	Page    int    `json:"page" yaml:"page"`
}

// DocumentStructure holds the structural facets of a processed document.
// Each facet is independently best-effort: an engine that cannot supply one
// leaves it empty, never errors.
type DocumentStructure struct {
	Sections   []Section `json:"sections" yaml:"sections"`
	Tables     []Table   `json:"tables" yaml:"tables"`
	Figures    []Figure  `json:"figures" yaml:"figures"`
	References []string  `json:"references" yaml:"references"`
}

// Document is the structured output of the document processor.
type Document struct {
	Text      string            `json:"text" yaml:"text"`
	Metadata  DocumentMetadata  `json:"metadata" yaml:"metadata"`
	Structure DocumentStructure `json:"structure" yaml:"structure"`
	Format    DocumentFormat    `json:"format" yaml:"format"`

	// ExtractionMethod distinguishes rich engine output from the degraded
	// path (ExtractionFallback). Empty for error payloads.
	ExtractionMethod string `json:"extraction_method,omitempty" yaml:"extraction_method,omitempty"`

	// Error carries the failure message when Format is FormatError.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Degraded reports whether the document came from the fallback path or
// failed extraction entirely.
func (d Document) Degraded() bool {
	return d.Format != FormatMarkdown
}
