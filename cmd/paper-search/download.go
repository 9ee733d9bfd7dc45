// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var downloadCmd = &cobra.Command{
	Use:   "download <paper-id>",
	Short: "Download a paper's PDF",
	Long: `Download fetches the PDF for a paper identifier from a backend that
serves documents (arXiv) and writes a metadata sidecar next to it.
Discovery-only backends (searxng) cannot download; use the result's url
to reach the original source instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().String("source", "arxiv", "backend to download from")
	downloadCmd.Flags().String("dir", "", "download directory (default from config)")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	sourceName, _ := cmd.Flags().GetString("source")
	dir, _ := cmd.Flags().GetString("dir")

	adapter, err := newSource(sourceName)
	if err != nil {
		return err
	}

	path, err := adapter.DownloadPDF(cmd.Context(), args[0], dir)
	if err != nil {
		return err
	}

	fmt.Printf("Downloaded %s\n", path)
	return nil
}
