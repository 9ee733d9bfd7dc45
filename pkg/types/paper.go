// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paper-search components.
// Implements: prd001-sources (Paper);
//
//	prd002-processing (Document);
//	prd003-knowledge (Concept, ConceptRelation).
//
// See docs/ARCHITECTURE.md § Data Model.
package types

import "time"

// MaxAbstractLen caps abstracts derived from free-text snippets. Sources
// with structured abstracts (arXiv) are not truncated.
const MaxAbstractLen = 500

// Paper is the normalized record every source adapter produces. A Paper is
// constructed fresh per search call and never mutated afterwards; callers
// persist or discard it.
//
// PaperID is only unique within a single adapter's result set for a single
// query. Cross-adapter and repeated-query collisions are possible and must
// be tolerated downstream.
type Paper struct {
	// PaperID is a source-namespaced identifier (e.g. "searxng_3_a1b2c3"
	// or a bare arXiv ID for sources with canonical identifiers).
	PaperID string `json:"paper_id" yaml:"paper_id"`

	// Title is the paper title, or "Untitled" when the source provides none.
	Title string `json:"title" yaml:"title"`

	// Authors lists authors in source order. Sources without structured
	// author data supply a single placeholder entry.
	Authors []string `json:"authors" yaml:"authors"`

	// Abstract is the abstract or, for metasearch results, the content
	// snippet capped at MaxAbstractLen.
	Abstract string `json:"abstract" yaml:"abstract"`

	// DOI is empty when the source does not provide one.
	DOI string `json:"doi" yaml:"doi"`

	// PublishedDate is the publication date when the source provides one.
	// Otherwise it falls back to the ingestion time, which is a lossy
	// approximation callers must not treat as authoritative.
	PublishedDate time.Time `json:"published_date" yaml:"published_date"`

	// PDFURL points at a directly downloadable PDF, empty when unknown.
	PDFURL string `json:"pdf_url" yaml:"pdf_url"`

	// URL is the landing page for the paper, empty when unknown.
	URL string `json:"url" yaml:"url"`

	// Source tags which adapter produced the record (e.g. "searxng", "arxiv").
	Source string `json:"source" yaml:"source"`

	// Categories lists source-side categories (e.g. arXiv primary category).
	Categories []string `json:"categories,omitempty" yaml:"categories,omitempty"`

	// Keywords is an ordered, set-like sequence of keywords or tags.
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`

	// Extra carries adapter-specific metadata (engine name, relevance
	// score, category). The schema varies per source and is not validated.
	Extra map[string]any `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// TruncateAbstract caps s at MaxAbstractLen bytes, cutting on a rune
// boundary so multi-byte text is never split mid-character.
func TruncateAbstract(s string) string {
	if len(s) <= MaxAbstractLen {
		return s
	}
	cut := MaxAbstractLen
	for cut > 0 && s[cut]&0xC0 == 0x80 {
		cut--
	}
	return s[:cut]
}
