// go_apply — Application Pipeline Engine MCP server.
//
// Scores job postings against an uploaded candidate profile, drives tailored
// applications through a durable pending/confirmed/discarded/applied state
// machine, and classifies inbox email to advance the pipeline.
//
// Runs as stdio MCP server by default, or as HTTP MCP server with a /metrics
// endpoint when MCP_PORT is set.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/viper"

	"github.com/anatolykoptev/go_apply/internal/engine"
	"github.com/anatolykoptev/go_apply/internal/engine/jobs"
	"github.com/anatolykoptev/go_apply/internal/jobserver"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	v := loadEnv()
	if err := initEngine(ctx, v); err != nil {
		slog.Error("engine init failed", slog.Any("error", err))
		os.Exit(1)
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_apply",
		Version: version,
	}, nil)
	jobserver.RegisterTools(server)
	slog.Info("tools registered", slog.Int("count", 15))

	port := v.GetString("mcp_port")
	if port == "" {
		slog.Info("starting go_apply on stdio")
		if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
			slog.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
		return
	}

	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)

	mux := http.NewServeMux()
	mux.Handle("/mcp", handler)
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, engine.FormatMetrics())
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 600 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	slog.Info("starting go_apply", slog.String("port", port))
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// loadEnv binds configuration to environment variables with defaults.
func loadEnv() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	home, _ := os.UserHomeDir()
	dataDir := filepath.Join(home, ".go_apply")

	v.SetDefault("mcp_port", "")
	v.SetDefault("data_dir", dataDir)
	v.SetDefault("rules_path", "")
	v.SetDefault("store_backend", "file")
	v.SetDefault("database_url", "")
	v.SetDefault("redis_url", "")
	v.SetDefault("inbox_dir", "")
	v.SetDefault("tailor_url", "")
	v.SetDefault("tailor_timeout", 60*time.Second)
	v.SetDefault("tailor_rps", 1.0)
	v.SetDefault("batch_workers", 4)
	v.SetDefault("cache_ttl", time.Hour)
	v.SetDefault("cache_max_entries", 1000)
	v.SetDefault("cache_cleanup_interval", 300*time.Second)
	return v
}

// initEngine wires config, stores, rules and collaborators.
func initEngine(ctx context.Context, v *viper.Viper) error {
	dataDir := v.GetString("data_dir")
	c := engine.Config{
		DataDir:              dataDir,
		ApplicationsDir:      filepath.Join(dataDir, "applications"),
		ReportsDir:           filepath.Join(dataDir, "reports"),
		ArtifactsDir:         filepath.Join(dataDir, "artifacts"),
		RulesPath:            v.GetString("rules_path"),
		StoreBackend:         v.GetString("store_backend"),
		DatabaseURL:          v.GetString("database_url"),
		TailorURL:            v.GetString("tailor_url"),
		TailorTimeout:        v.GetDuration("tailor_timeout"),
		TailorRPS:            v.GetFloat64("tailor_rps"),
		BatchWorkers:         v.GetInt("batch_workers"),
		CacheMaxEntries:      v.GetInt("cache_max_entries"),
		CacheCleanupInterval: v.GetDuration("cache_cleanup_interval"),
		HTTPClient:           &http.Client{Timeout: 15 * time.Second},
	}
	engine.Init(c)

	engine.InitCache(v.GetString("redis_url"), v.GetDuration("cache_ttl"),
		c.CacheMaxEntries, c.CacheCleanupInterval)

	rules, err := jobs.LoadRules(c.RulesPath)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}
	jobs.SetRules(rules)

	var store jobs.Store
	switch c.StoreBackend {
	case "sqlite":
		store, err = jobs.NewSQLiteStore(filepath.Join(c.DataDir, "applications.db"))
	default:
		store, err = jobs.NewFileStore(c.ApplicationsDir)
	}
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	jobs.SetStore(store)

	artifacts, err := jobs.NewLocalArtifacts(c.ArtifactsDir)
	if err != nil {
		return fmt.Errorf("open artifacts: %w", err)
	}
	jobs.SetArtifacts(artifacts)

	pipeline := jobs.NewPipeline(store, artifacts)
	jobs.SetPipeline(pipeline)

	var tailor jobs.Tailor
	if c.TailorURL != "" {
		tailor = jobs.NewTailorClient(c.TailorURL, c.TailorTimeout)
		jobs.SetTailor(tailor)
	} else {
		slog.Warn("TAILOR_URL not set, batch runs will score without tailoring")
	}
	jobs.SetBatch(jobs.NewBatch(pipeline, tailor, rules, c.BatchWorkers, c.TailorRPS))

	if inboxDir := v.GetString("inbox_dir"); inboxDir != "" {
		fetcher := jobs.NewDirFetcher(inboxDir)
		jobs.SetScanner(jobs.NewScanner(fetcher, pipeline, store, rules.Classifier, c.ReportsDir))
	} else {
		slog.Warn("INBOX_DIR not set, email_scan is unavailable")
	}

	if c.DatabaseURL != "" {
		db, err := jobs.ConnectProfileDB(ctx, c.DatabaseURL)
		if err != nil {
			slog.Warn("profile db unavailable", slog.Any("error", err))
		} else {
			jobs.SetProfileDB(db)
		}
	}

	return nil
}
