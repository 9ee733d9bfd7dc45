// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Concept is a knowledge-graph entity extracted from papers. Concepts are
// created on first observation and frequency-updated thereafter; this layer
// never deletes them.
type Concept struct {
	// ID is the store-assigned record identifier.
	ID string `json:"id" yaml:"id"`

	// Name is the unique concept key.
	Name string `json:"name" yaml:"name"`

	Description string `json:"description" yaml:"description"`
	Category    string `json:"category" yaml:"category"`

	// Frequency counts how many times the concept has been observed.
	Frequency int `json:"frequency" yaml:"frequency"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// ConceptRelation pairs a concept with the strength of one paper→concept edge.
type ConceptRelation struct {
	Concept  Concept `json:"concept" yaml:"concept"`
	Strength float64 `json:"strength" yaml:"strength"`
}

// SimilarPaper is a two-hop traversal result: a paper reached through
// concepts shared with the origin paper.
type SimilarPaper struct {
	// ID is the store-assigned record identifier.
	ID string `json:"id" yaml:"id"`

	// PaperID is the external, source-namespaced paper identifier.
	PaperID string `json:"paper_id" yaml:"paper_id"`

	Title string `json:"title" yaml:"title"`

	// SharedConcepts counts concepts this paper shares with the origin.
	SharedConcepts int `json:"shared_concepts" yaml:"shared_concepts"`
}

// KnowledgeStats holds aggregate row counts for the knowledge graph.
type KnowledgeStats struct {
	Papers        int `json:"papers" yaml:"papers"`
	Concepts      int `json:"concepts" yaml:"concepts"`
	Relationships int `json:"relationships" yaml:"relationships"`
}
