// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/paper-search/internal/source"
	"github.com/pdiddy/paper-search/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Search paper backends for matching papers",
	Long: `Search queries the configured backends (SearXNG, arXiv) for papers
matching a free-text query. Backends are queried concurrently; a backend
that is down contributes no results instead of failing the search.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("sources", "searxng,arxiv", "comma-separated backends to query")
	searchCmd.Flags().String("category", "", "backend category filter (e.g. science, cs.LG)")
	searchCmd.Flags().Int("max-results", 10, "maximum results per backend")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide a search query")
	}
	query := strings.Join(args, " ")

	sourcesFlag, _ := cmd.Flags().GetString("sources")
	category, _ := cmd.Flags().GetString("category")
	maxResults, _ := cmd.Flags().GetInt("max-results")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	var adapters []source.Source
	for _, name := range strings.Split(sourcesFlag, ",") {
		adapter, err := newSource(strings.TrimSpace(name))
		if err != nil {
			return err
		}
		adapters = append(adapters, adapter)
	}

	opts := source.SearchOptions{MaxResults: maxResults, Category: category}

	// Backends are independent: query them concurrently and join. Each
	// goroutine writes its own slot, so no locking is needed.
	results := make([][]types.Paper, len(adapters))
	g, ctx := errgroup.WithContext(cmd.Context())
	for i, adapter := range adapters {
		i, adapter := i, adapter
		g.Go(func() error {
			papers, err := adapter.Search(ctx, query, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", adapter.Name(), err)
			}
			results[i] = papers
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var papers []types.Paper
	for _, r := range results {
		papers = append(papers, r...)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(papers)
	}
	printPaperTable(papers)
	return nil
}

func printPaperTable(papers []types.Paper) {
	if len(papers) == 0 {
		fmt.Println("No results found.")
		return
	}

	fmt.Fprintf(os.Stdout, "%-28s  %-8s  %-50s  %s\n", "ID", "Source", "Title", "PDF")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))

	for _, p := range papers {
		title := p.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		id := p.PaperID
		if len(id) > 28 {
			id = id[:25] + "..."
		}
		pdf := "-"
		if p.PDFURL != "" {
			pdf = "yes"
		}
		fmt.Fprintf(os.Stdout, "%-28s  %-8s  %-50s  %s\n", id, p.Source, title, pdf)
	}
	fmt.Fprintf(os.Stdout, "\n%d results\n", len(papers))
}

// newSource builds a search adapter by name. The arXiv adapter gets the
// document processor wired in as its text extractor when one can be built.
func newSource(name string) (source.Source, error) {
	switch name {
	case "searxng":
		return source.NewSearXNG(cfg.SearXNG, logger), nil
	case "arxiv":
		extractor, err := newExtractor()
		if err != nil {
			logger.Debug().Err(err).Msg("no text extractor available")
		}
		return source.NewArxiv(cfg.Arxiv, extractor, logger), nil
	default:
		return nil, fmt.Errorf("unknown source %q: use searxng or arxiv", name)
	}
}
