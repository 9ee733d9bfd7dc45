// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source implements search adapters over external paper backends.
// Each adapter translates one backend's response shape into the shared
// types.Paper record; adapters never call each other or any other
// component. Implements: prd001-sources;
//
//	docs/ARCHITECTURE.md § Source Adapters.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/pdiddy/paper-search/pkg/types"
)

// SearchOptions bounds a single search call.
type SearchOptions struct {
	// MaxResults truncates the backend's result list. Zero returns no
	// results; a negative value disables truncation.
	MaxResults int

	// Category is an opaque backend-specific filter. Empty selects the
	// adapter's default.
	Category string
}

// Source is the contract every adapter satisfies. Search soft-fails:
// transport and backend errors degrade to an empty result set, and only
// caller errors (empty query) are returned. DownloadPDF and ReadPaper
// return a *CapabilityError on discovery-only backends.
type Source interface {
	Name() string
	Search(ctx context.Context, query string, opts SearchOptions) ([]types.Paper, error)

	// DownloadPDF saves the paper's PDF under dir and returns the file path.
	DownloadPDF(ctx context.Context, paperID, dir string) (string, error)

	// ReadPaper downloads the paper if needed and returns its text.
	ReadPaper(ctx context.Context, paperID, dir string) (string, error)
}

// TextExtractor turns a local PDF into plain text. The caller wires an
// implementation (the document processor) into adapters that deliver
// documents; adapters never import the processor directly.
type TextExtractor interface {
	ExtractText(ctx context.Context, pdfPath string) (string, error)
}

// ErrUnsupported is the sentinel wrapped by every CapabilityError.
var ErrUnsupported = errors.New("unsupported capability")

// CapabilityError reports that a backend cannot perform an operation at
// all, as opposed to failing while attempting it. Hint names the fallback
// the caller should use instead.
type CapabilityError struct {
	Source     string
	Capability string
	Hint       string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("%s does not support %s: %s", e.Source, e.Capability, e.Hint)
}

func (e *CapabilityError) Unwrap() error { return ErrUnsupported }
