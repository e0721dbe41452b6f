package engine

import (
	"net/http"
	"time"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	DataDir         string // root for profile.json, sqlite db, artifacts
	ApplicationsDir string // one JSON document per job application
	ReportsDir      string // inbox scan reports (latest + timestamped)
	ArtifactsDir    string // tailored resume PDFs and highlights files

	RulesPath    string // optional YAML overriding scoring/classifier tables
	StoreBackend string // "file" (default) or "sqlite"
	DatabaseURL  string // optional Postgres for the candidate profile

	TailorURL     string // external tailoring service base URL
	TailorTimeout time.Duration
	TailorRPS     float64 // rate limit for tailoring requests per second
	BatchWorkers  int     // parallel scoring workers in a batch run

	CacheMaxEntries      int
	CacheCleanupInterval time.Duration

	HTTPClient *http.Client
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (jobs, jobserver).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	if c.BatchWorkers <= 0 {
		c.BatchWorkers = 4
	}
	cfg = c
	Cfg = &cfg
}
