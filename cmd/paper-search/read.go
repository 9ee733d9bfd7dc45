// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var readCmd = &cobra.Command{
	Use:   "read <paper-id>",
	Short: "Download a paper and print its extracted text",
	Long: `Read downloads the paper's PDF if needed and runs it through the
document processor, printing the extracted text to stdout. Only backends
that serve documents (arXiv) support this.`,
	Args: cobra.ExactArgs(1),
	RunE: runRead,
}

func init() {
	readCmd.Flags().String("source", "arxiv", "backend to read from")
	readCmd.Flags().String("dir", "", "download directory (default from config)")

	rootCmd.AddCommand(readCmd)
}

func runRead(cmd *cobra.Command, args []string) error {
	sourceName, _ := cmd.Flags().GetString("source")
	dir, _ := cmd.Flags().GetString("dir")

	adapter, err := newSource(sourceName)
	if err != nil {
		return err
	}

	text, err := adapter.ReadPaper(cmd.Context(), args[0], dir)
	if err != nil {
		return err
	}

	fmt.Println(text)
	return nil
}
