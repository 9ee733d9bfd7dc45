// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-search/internal/knowledge"
	"github.com/pdiddy/paper-search/pkg/types"
)

var knowledgeCmd = &cobra.Command{
	Use:   "knowledge",
	Short: "Manage the local knowledge graph",
	Long: `Knowledge maintains a local SQLite graph of papers and concepts.
Papers are stored from search results, linked to concepts with weighted
"discusses" edges, and traversed to find related work.`,
}

// --- store subcommand ---

var knowledgeStoreCmd = &cobra.Command{
	Use:   "store [file]",
	Short: "Store a paper record in the graph",
	Long: `Store reads a JSON paper record from a file (or stdin when no file is
given) and persists it. Re-storing a paper with the same paper_id updates
the existing record.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runKnowledgeStore,
}

func runKnowledgeStore(cmd *cobra.Command, args []string) error {
	var data []byte
	var err error
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return fmt.Errorf("reading paper record: %w", err)
	}

	var paper types.Paper
	if err := json.Unmarshal(data, &paper); err != nil {
		return fmt.Errorf("parsing paper record: %w", err)
	}

	store, err := knowledge.Open(cfg.Knowledge)
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := store.StorePaper(cmd.Context(), paper)
	if err != nil {
		return err
	}
	fmt.Printf("Stored %s as %s\n", paper.PaperID, id)
	return nil
}

// --- get subcommand ---

var knowledgeGetCmd = &cobra.Command{
	Use:   "get <paper-id>",
	Short: "Look up a stored paper by its paper_id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := knowledge.Open(cfg.Knowledge)
		if err != nil {
			return err
		}
		defer store.Close()

		paper, err := store.GetPaper(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(paper)
	},
}

// --- search subcommand ---

var knowledgeSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search stored papers by title and abstract",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		store, err := knowledge.Open(cfg.Knowledge)
		if err != nil {
			return err
		}
		defer store.Close()

		papers, err := store.SearchPapers(cmd.Context(), strings.Join(args, " "), limit)
		if err != nil {
			return err
		}
		printPaperTable(papers)
		return nil
	},
}

// --- concept subcommand ---

var knowledgeConceptCmd = &cobra.Command{
	Use:   "concept <name>",
	Short: "Add a concept, or bump its frequency if it exists",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		description, _ := cmd.Flags().GetString("description")
		category, _ := cmd.Flags().GetString("category")

		store, err := knowledge.Open(cfg.Knowledge)
		if err != nil {
			return err
		}
		defer store.Close()

		id, err := store.AddConcept(cmd.Context(), args[0], description, category)
		if err != nil {
			return err
		}
		fmt.Printf("Concept %s is %s\n", args[0], id)
		return nil
	},
}

// --- relate subcommand ---

var knowledgeRelateCmd = &cobra.Command{
	Use:   "relate <paper-id> <concept>",
	Short: "Link a stored paper to a concept",
	Long: `Relate creates a weighted "discusses" edge from a stored paper to a
concept. The concept is created as a stub if it does not exist yet; the
strength must lie between 0 and 1.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		strength, _ := cmd.Flags().GetFloat64("strength")

		store, err := knowledge.Open(cfg.Knowledge)
		if err != nil {
			return err
		}
		defer store.Close()

		id, err := store.RelatePaperToConcept(cmd.Context(), args[0], args[1], strength)
		if err != nil {
			return err
		}
		fmt.Printf("Related %s to %s (%s)\n", args[0], args[1], id)
		return nil
	},
}

// --- related subcommand ---

var knowledgeRelatedCmd = &cobra.Command{
	Use:   "related <paper-id>",
	Short: "List the concepts a stored paper discusses",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := knowledge.Open(cfg.Knowledge)
		if err != nil {
			return err
		}
		defer store.Close()

		relations, err := store.GetRelatedConcepts(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(relations) == 0 {
			fmt.Println("No related concepts.")
			return nil
		}
		for _, r := range relations {
			fmt.Printf("%-30s  %.2f\n", r.Concept.Name, r.Strength)
		}
		return nil
	},
}

// --- similar subcommand ---

var knowledgeSimilarCmd = &cobra.Command{
	Use:   "similar <paper-id>",
	Short: "Find papers that share concepts with a stored paper",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		store, err := knowledge.Open(cfg.Knowledge)
		if err != nil {
			return err
		}
		defer store.Close()

		similar, err := store.GetSimilarPapers(cmd.Context(), args[0], limit)
		if err != nil {
			return err
		}
		if len(similar) == 0 {
			fmt.Println("No similar papers.")
			return nil
		}
		for _, sp := range similar {
			fmt.Printf("%-28s  %-50s  %d shared\n", sp.PaperID, sp.Title, sp.SharedConcepts)
		}
		return nil
	},
}

// --- stats subcommand ---

var knowledgeStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show graph row counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := knowledge.Open(cfg.Knowledge)
		if err != nil {
			return err
		}
		defer store.Close()

		stats, err := store.Stats(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("papers: %d\nconcepts: %d\nrelationships: %d\n",
			stats.Papers, stats.Concepts, stats.Relationships)
		return nil
	},
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	knowledgeSearchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	knowledgeConceptCmd.Flags().String("description", "", "concept description")
	knowledgeConceptCmd.Flags().String("category", "", "concept category")
	knowledgeRelateCmd.Flags().Float64("strength", 1.0, "edge strength in [0, 1]")
	knowledgeSimilarCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")

	knowledgeCmd.AddCommand(knowledgeStoreCmd)
	knowledgeCmd.AddCommand(knowledgeGetCmd)
	knowledgeCmd.AddCommand(knowledgeSearchCmd)
	knowledgeCmd.AddCommand(knowledgeConceptCmd)
	knowledgeCmd.AddCommand(knowledgeRelateCmd)
	knowledgeCmd.AddCommand(knowledgeRelatedCmd)
	knowledgeCmd.AddCommand(knowledgeSimilarCmd)
	knowledgeCmd.AddCommand(knowledgeStatsCmd)

	rootCmd.AddCommand(knowledgeCmd)
}
