// Package config loads searchcrawler's configuration with viper, giving
// flag > environment variable > config file > default precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// envPrefix is prepended to every environment variable name, e.g.
// SEARCHCRAWLER_MAX_PAGES_TO_CRAWL.
const envPrefix = "SEARCHCRAWLER"

// Config holds the full configuration table.
type Config struct {
	SeedURLs             []string
	MaxDepth             int
	MaxPagesToCrawl      int
	UserAgent            string
	RequestTimeout       time.Duration
	RetryCount           int
	DelayBetweenRequests time.Duration
	UseStemming          bool
	DampingFactor        float64
	PageRankIterations   int
	PageRankWeight       float64
	TFIDFWeight          float64
	DatabasePath         string
}

// defaults mirrors original_source/search_engine/config.py.
func defaults() map[string]interface{} {
	return map[string]interface{}{
		"seed_urls": []string{
			"https://www.python.org",
			"https://en.wikipedia.org/wiki/Web_crawler",
			"https://fastapi.tiangolo.com/",
			"https://docs.docker.com/",
		},
		"max_depth":               2,
		"max_pages_to_crawl":      100,
		"user_agent":              "SearchCrawlerBot/1.0",
		"request_timeout_seconds": 10,
		"retry_count":             3,
		"delay_between_requests_seconds": 1.0,
		"use_stemming":                   true,
		"damping_factor":                 0.85,
		"pagerank_iterations":            20,
		"pagerank_weight":                10.0,
		"tfidf_weight":                   1.0,
		"database_path":                  "searchcrawler.db",
	}
}

// New builds a *viper.Viper with defaults, environment binding, and an
// optional config file loaded. The caller may go on to bind cobra flags
// onto it before calling FromViper, giving flag > env > file > default
// precedence (viper's own resolution order).
func New(configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, val := range defaults() {
		v.SetDefault(key, val)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", configFile, err)
		}
	}
	return v, nil
}

// FromViper extracts a Config snapshot from a populated viper instance.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		SeedURLs:             v.GetStringSlice("seed_urls"),
		MaxDepth:             v.GetInt("max_depth"),
		MaxPagesToCrawl:      v.GetInt("max_pages_to_crawl"),
		UserAgent:            v.GetString("user_agent"),
		RequestTimeout:       time.Duration(v.GetInt("request_timeout_seconds")) * time.Second,
		RetryCount:           v.GetInt("retry_count"),
		DelayBetweenRequests: time.Duration(v.GetFloat64("delay_between_requests_seconds") * float64(time.Second)),
		UseStemming:          v.GetBool("use_stemming"),
		DampingFactor:        v.GetFloat64("damping_factor"),
		PageRankIterations:   v.GetInt("pagerank_iterations"),
		PageRankWeight:       v.GetFloat64("pagerank_weight"),
		TFIDFWeight:          v.GetFloat64("tfidf_weight"),
		DatabasePath:         v.GetString("database_path"),
	}
}

// Load is a convenience wrapper combining New and FromViper for callers
// that have no flags to bind.
func Load(configFile string) (*Config, error) {
	v, err := New(configFile)
	if err != nil {
		return nil, err
	}
	return FromViper(v), nil
}
