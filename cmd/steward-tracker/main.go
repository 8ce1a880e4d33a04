package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/Thomas-Amann-IPAustralia/ai-steward-tracker/internal/config"
	"github.com/Thomas-Amann-IPAustralia/ai-steward-tracker/internal/fetcher"
	"github.com/Thomas-Amann-IPAustralia/ai-steward-tracker/internal/snapshot"
	"github.com/Thomas-Amann-IPAustralia/ai-steward-tracker/internal/summarizer"
	"github.com/Thomas-Amann-IPAustralia/ai-steward-tracker/internal/tracker"
	"github.com/Thomas-Amann-IPAustralia/ai-steward-tracker/internal/updatelog"
	"github.com/Thomas-Amann-IPAustralia/ai-steward-tracker/internal/web"
)

const (
	platformLogCapacity = 50
	policyLogCapacity   = 30
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	once := flag.Bool("once", false, "run the pipeline once and exit")
	flag.Parse()

	// Optional .env for local runs; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Summarizer.APIKey == "" {
		log.Println("No API key configured; summaries will be fallback text")
	}

	f := fetcher.New(time.Duration(cfg.FetchTimeoutSeconds) * time.Second)
	s := summarizer.NewAnthropicSummarizer(
		cfg.Summarizer.APIKey,
		cfg.Summarizer.Model,
		cfg.Summarizer.MaxTokens,
		cfg.Summarizer.MaxContentChars,
		cfg.Summarizer.MaxPreviousChars,
	)
	snaps := snapshot.NewStore(cfg.SnapshotDir)
	platformLog := updatelog.NewLog(filepath.Join(cfg.DataDir, "updates.json"), platformLogCapacity)
	policyLog := updatelog.NewLog(filepath.Join(cfg.DataDir, "policy-updates.json"), policyLogCapacity)

	tr := tracker.New(f, s, snaps, platformLog, policyLog, cfg.Platforms, cfg.PolicySources)

	// Single-run mode: run the pipeline once and exit.
	if *once {
		report := tr.Run(context.Background())
		if report.Failed() > 0 {
			log.Printf("Completed with %d failed checks", report.Failed())
		}
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var webSrv *web.Server
	if cfg.Web.Enabled {
		webSrv = web.New(cfg.Web.Addr, platformLog, policyLog)
		if err := webSrv.Start(); err != nil {
			log.Fatalf("Failed to start web server: %v", err)
		}
	}

	if cfg.RunOnStart {
		log.Println("Running initial check...")
		tr.Run(ctx)
	}

	c := cron.New()
	_, err = c.AddFunc(cfg.Schedule, func() {
		log.Println("Cron triggered, running check...")
		tr.Run(ctx)
	})
	if err != nil {
		log.Fatalf("Failed to set up cron schedule %q: %v", cfg.Schedule, err)
	}
	c.Start()
	log.Printf("Scheduled checks with cron expression: %s", cfg.Schedule)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Printf("Received signal %v, shutting down...", sig)

	cancel()
	c.Stop()

	if webSrv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := webSrv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Web server shutdown error: %v", err)
		}
	}

	log.Println("Shutdown complete")
}
