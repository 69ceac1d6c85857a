package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/codepr/searchcrawler/internal/config"
	"github.com/codepr/searchcrawler/internal/httpapi"
	"github.com/codepr/searchcrawler/internal/indexer"
	"github.com/codepr/searchcrawler/internal/pagerank"
	"github.com/codepr/searchcrawler/internal/ranker"
	"github.com/codepr/searchcrawler/internal/store"
	"github.com/codepr/searchcrawler/internal/textproc"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the search API over HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "HTTP listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	logger := log.New(os.Stderr, "serve: ", log.LstdFlags)
	processor := textproc.New(cfg.UseStemming)

	rk := ranker.New(st, processor, ranker.Weights{TFIDF: cfg.TFIDFWeight, PageRank: cfg.PageRankWeight})
	idx := indexer.New(st, processor)
	pr := pagerank.New(st, cfg.DampingFactor, cfg.PageRankIterations)

	srv := httpapi.New(cfg, st, rk, idx, pr, logger)

	logger.Printf("listening on %s", serveAddr)
	return http.ListenAndServe(serveAddr, srv.Handler())
}
