package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// cfgFile is bound by every subcommand to locate an optional YAML
// config file; environment variables and flags still take precedence
// over whatever it contains.
var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "searchcrawler",
	Short: "A self-contained crawler, indexer and keyword search engine",
	Long: `searchcrawler crawls a seed set of pages, builds an inverted
index and PageRank graph over the crawled content, and serves ranked
keyword search results over HTTP.`,
}

// Execute runs the root command. Called by main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a YAML config file")
}
