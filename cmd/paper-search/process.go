// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-search/internal/container"
	"github.com/pdiddy/paper-search/internal/processor"
	"github.com/pdiddy/paper-search/internal/source"
	"github.com/pdiddy/paper-search/pkg/types"
)

var processCmd = &cobra.Command{
	Use:   "process <pdf-path-or-url>",
	Short: "Extract a structured document from a PDF or URL",
	Long: `Process runs a local PDF or a remote URL through the extraction engine
(docling image) and renders the result. When the rich engine fails on a
local file, extraction degrades to page-by-page plain text (pdftotext
image) before giving up.

Requires a container runtime (docker or podman) with the engine images.`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().String("format", processor.ExportMarkdown, "output format: markdown, html, json, or text")
	processCmd.Flags().String("output", "", "write to file instead of stdout")

	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")

	proc, err := newProcessor()
	if err != nil {
		return err
	}

	src := args[0]
	var doc *types.Document
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		doc, err = proc.ProcessURL(cmd.Context(), src)
	} else {
		doc, err = proc.ProcessPDF(cmd.Context(), src)
	}
	if err != nil {
		return err
	}

	out, err := processor.ExportDocument(doc, format)
	if err != nil {
		return err
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, []byte(out), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", outputPath, err)
		}
		fmt.Printf("Wrote %s\n", outputPath)
		return nil
	}
	fmt.Println(out)
	return nil
}

// newProcessor wires the container-backed engines into a processor. The
// fallback engine is optional: a missing pdftotext image only disables the
// degraded path.
func newProcessor() (*processor.Processor, error) {
	rt, err := container.DetectRuntime()
	if err != nil {
		return nil, err
	}

	engine, err := processor.NewDoclingEngine(rt, cfg.Processor.Engine)
	if err != nil {
		return nil, err
	}

	var fallback processor.Engine
	if fb, err := processor.NewPdftotextEngine(rt, cfg.Processor.FallbackEngine); err != nil {
		logger.Warn().Err(err).Msg("fallback engine unavailable")
	} else {
		fallback = fb
	}

	return processor.New(engine, fallback, logger), nil
}

// newExtractor adapts the processor to the source.TextExtractor surface.
func newExtractor() (source.TextExtractor, error) {
	proc, err := newProcessor()
	if err != nil {
		return nil, err
	}
	return proc, nil
}
