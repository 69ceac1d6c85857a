package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/codepr/searchcrawler/internal/config"
	"github.com/codepr/searchcrawler/internal/indexer"
	"github.com/codepr/searchcrawler/internal/pagerank"
	"github.com/codepr/searchcrawler/internal/store"
	"github.com/codepr/searchcrawler/internal/textproc"
	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the inverted index and recompute PageRank",
	RunE:  runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	logger := log.New(os.Stderr, "index: ", log.LstdFlags)

	idx := indexer.New(st, textproc.New(cfg.UseStemming))
	if err := idx.Build(context.Background()); err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	logger.Printf("index rebuilt")

	pr := pagerank.New(st, cfg.DampingFactor, cfg.PageRankIterations)
	if err := pr.Compute(context.Background()); err != nil {
		return fmt.Errorf("compute pagerank: %w", err)
	}
	logger.Printf("pagerank computed")
	return nil
}
