// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-search CLI.
// Implements: prd001-sources, prd002-processing, prd003-knowledge
// (CLI surface). See docs/ARCHITECTURE.md § Command Interface.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-search/internal/config"
	"github.com/pdiddy/paper-search/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// cfg and logger are populated by initConfig before any command runs.
var (
	cfg    types.Config
	logger zerolog.Logger
)

// rootCmd is the base command for the paper-search CLI.
var rootCmd = &cobra.Command{
	Use:   "paper-search",
	Short: "Search, fetch, and organize academic papers",
	Long: `paper-search discovers academic papers through search backends (a SearXNG
metasearch instance and the arXiv API), extracts structured documents from
their PDFs, and maintains a local knowledge graph of papers and concepts.

Each stage is a subcommand: search, download, read, process, and knowledge.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paper-search.yaml or ~/.config/paper-search/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paper-search")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paper-search"))
		}
	}

	config.SetDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	cfg = config.Load(viper.GetViper())
	logger = config.NewLogger(cfg.Log)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
