package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/codepr/searchcrawler/internal/config"
	"github.com/codepr/searchcrawler/internal/crawl"
	"github.com/codepr/searchcrawler/internal/fetcher"
	"github.com/codepr/searchcrawler/internal/frontier"
	"github.com/codepr/searchcrawler/internal/robots"
	"github.com/codepr/searchcrawler/internal/store"
	"github.com/spf13/cobra"
)

var (
	crawlMaxPages int
	crawlSeeds    []string
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Run a single crawl session to completion",
	RunE:  runCrawl,
}

func init() {
	crawlCmd.Flags().IntVar(&crawlMaxPages, "max-pages", 0, "override max_pages_to_crawl (0 keeps the configured value)")
	crawlCmd.Flags().StringSliceVar(&crawlSeeds, "seed", nil, "override seed_urls (repeatable)")
	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	v, err := config.New(cfgFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("max-pages") {
		v.Set("max_pages_to_crawl", crawlMaxPages)
	}
	if cmd.Flags().Changed("seed") {
		v.Set("seed_urls", crawlSeeds)
	}
	cfg := config.FromViper(v)

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	logger := log.New(os.Stderr, "crawl: ", log.LstdFlags)

	robotsCache := robots.New(cfg.UserAgent, robots.NewHTTPClient(cfg.RequestTimeout))
	ft := fetcher.New(cfg.UserAgent, robotsCache, cfg.RequestTimeout, cfg.RetryCount)

	session := crawl.NewSession(crawl.Settings{
		SeedURLs:        cfg.SeedURLs,
		MaxPages:        cfg.MaxPagesToCrawl,
		Concurrency:     5,
		PolitenessDelay: cfg.DelayBetweenRequests,
	}, logger)

	session.Run(context.Background(), func(f *frontier.Frontier) *crawl.Worker {
		return crawl.NewWorker(f, ft, st, cfg.DelayBetweenRequests, logger)
	})

	logger.Printf("crawl session finished")
	return nil
}
