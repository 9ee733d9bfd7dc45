// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pdiddy/paper-search/internal/container"
	"github.com/pdiddy/paper-search/pkg/types"
)

// EngineDocument is the intermediate an extraction engine produces before
// the processor stamps format and extraction method onto it.
type EngineDocument struct {
	Markdown  string
	Metadata  types.DocumentMetadata
	Structure types.DocumentStructure
}

// Engine extracts a document from a source, which is either a local file
// path or an http(s) URL. Different backends (docling, pdftotext)
// implement this interface.
type Engine interface {
	Name() string
	Convert(ctx context.Context, source string) (*EngineDocument, error)
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// DoclingEngine runs the docling container image, which emits a JSON
// document with markdown text plus structural facets. It depends on a
// container.Runtime (docker or podman) injected at construction time.
type DoclingEngine struct {
	runtime container.Runtime
	image   string
}

// NewDoclingEngine creates the rich extraction engine. It verifies that
// the image exists locally before returning.
func NewDoclingEngine(rt container.Runtime, image string) (*DoclingEngine, error) {
	if err := rt.ImageExists(image); err != nil {
		return nil, fmt.Errorf("docling image not available in %s: %w", rt.Name(), err)
	}
	return &DoclingEngine{runtime: rt, image: image}, nil
}

// Name returns the engine identifier.
func (e *DoclingEngine) Name() string { return "docling" }

// doclingOutput is the JSON document the docling image writes to stdout.
type doclingOutput struct {
	Markdown string `json:"markdown"`
	Metadata struct {
		Title      string `json:"title"`
		NumPages   int    `json:"num_pages"`
		HasTables  bool   `json:"has_tables"`
		HasFigures bool   `json:"has_figures"`
	} `json:"metadata"`
	Sections []struct {
		Title string `json:"title"`
		Level int    `json:"level"`
		Text  string `json:"text"`
	} `json:"sections"`
	Tables []struct {
		Caption string     `json:"caption"`
		Data    [][]string `json:"data"`
		Page    int        `json:"page"`
	} `json:"tables"`
	Figures []struct {
		Caption string `json:"caption"`
		Page    int    `json:"page"`
	} `json:"figures"`
	References []string `json:"references"`
}

// Convert runs the source through the docling container. A local file is
// piped over stdin; a URL is handed to the container to fetch itself.
func (e *DoclingEngine) Convert(ctx context.Context, source string) (*EngineDocument, error) {
	args := []string{"--to", "json"}
	var stdin io.Reader
	if isRemote(source) {
		args = append(args, source)
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", source, err)
		}
		defer f.Close()
		stdin = f
	}

	var out bytes.Buffer
	if err := e.runtime.Run(ctx, e.image, args, stdin, &out); err != nil {
		return nil, fmt.Errorf("running docling on %s: %w", source, err)
	}

	var parsed doclingOutput
	if err := json.Unmarshal(out.Bytes(), &parsed); err != nil {
		return nil, fmt.Errorf("parsing docling output for %s: %w", source, err)
	}
	if parsed.Markdown == "" {
		return nil, fmt.Errorf("docling produced empty output for %s", source)
	}

	doc := &EngineDocument{
		Markdown: parsed.Markdown,
		Metadata: types.DocumentMetadata{
			Title:      parsed.Metadata.Title,
			NumPages:   parsed.Metadata.NumPages,
			HasTables:  parsed.Metadata.HasTables,
			HasFigures: parsed.Metadata.HasFigures,
		},
		Structure: types.DocumentStructure{
			Sections:   make([]types.Section, 0, len(parsed.Sections)),
			Tables:     make([]types.Table, 0, len(parsed.Tables)),
			Figures:    make([]types.Figure, 0, len(parsed.Figures)),
			References: parsed.References,
		},
	}
	if doc.Structure.References == nil {
		doc.Structure.References = []string{}
	}
	for _, s := range parsed.Sections {
		doc.Structure.Sections = append(doc.Structure.Sections, types.Section{
			Title: s.Title, Level: s.Level, Content: s.Text,
		})
	}
	for _, tb := range parsed.Tables {
		doc.Structure.Tables = append(doc.Structure.Tables, types.Table{
			Caption: tb.Caption, Data: tb.Data, Page: tb.Page,
		})
	}
	for _, fg := range parsed.Figures {
		doc.Structure.Figures = append(doc.Structure.Figures, types.Figure{
			Caption: fg.Caption, Page: fg.Page,
		})
	}
	return doc, nil
}

// PdftotextEngine runs the pdftotext container image, which emits plain
// text with form-feed page separators. It supplies the degraded path when
// the rich engine fails.
type PdftotextEngine struct {
	runtime container.Runtime
	image   string
}

// NewPdftotextEngine creates the plain-text extraction engine. It verifies
// that the image exists locally before returning.
func NewPdftotextEngine(rt container.Runtime, image string) (*PdftotextEngine, error) {
	if err := rt.ImageExists(image); err != nil {
		return nil, fmt.Errorf("pdftotext image not available in %s: %w", rt.Name(), err)
	}
	return &PdftotextEngine{runtime: rt, image: image}, nil
}

// Name returns the engine identifier.
func (e *PdftotextEngine) Name() string { return "pdftotext" }

// Convert pipes the local PDF through the pdftotext container and joins
// the pages. URL sources are not supported on the degraded path.
func (e *PdftotextEngine) Convert(ctx context.Context, source string) (*EngineDocument, error) {
	if isRemote(source) {
		return nil, fmt.Errorf("pdftotext requires a local file, got %s", source)
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", source, err)
	}
	defer f.Close()

	var out bytes.Buffer
	if err := e.runtime.Run(ctx, e.image, []string{"-", "-"}, f, &out); err != nil {
		return nil, fmt.Errorf("running pdftotext on %s: %w", source, err)
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("pdftotext produced empty output for %s", source)
	}

	// pdftotext separates pages with form feeds.
	pages := strings.Split(strings.TrimRight(out.String(), "\f"), "\f")
	for i, p := range pages {
		pages[i] = strings.TrimSpace(p)
	}

	return &EngineDocument{
		Markdown: strings.Join(pages, "\n\n"),
		Metadata: types.DocumentMetadata{NumPages: len(pages)},
	}, nil
}
