package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/gofrs/flock"

	"jobfinder/internal/config"
	"jobfinder/internal/enrich"
	"jobfinder/internal/health"
	"jobfinder/internal/notify"
	"jobfinder/internal/pipeline"
	"jobfinder/internal/scheduler"
	"jobfinder/internal/scrape"
	"jobfinder/internal/scrape/util"
	"jobfinder/internal/score"
	"jobfinder/internal/secrets"
	"jobfinder/internal/sheets"
	"jobfinder/internal/store"
)

func main() {
	every := flag.Duration("every", 0, "run continuously at this interval (default: single run)")
	configPath := flag.String("config", "", "preferences file (default: <data dir>/preferences.yml)")
	flag.Parse()

	dataDir := os.Getenv("JOBFINDER_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	// one process per data dir; a cron overlap waits for no one
	lock := flock.New(filepath.Join(dataDir, "jobfinder.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatalf("run lock: %v", err)
	}
	if !locked {
		log.Fatalf("another jobfinder run holds %s, exiting", lock.Path())
	}
	defer lock.Unlock()

	cfgPath := *configPath
	if cfgPath == "" {
		cfgPath, err = config.EnsureUserConfig(dataDir, filepath.Join("config", "preferences.yml"))
		if err != nil {
			log.Fatalf("config bootstrap: %v", err)
		}
	}

	raw, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load (%s): %v", cfgPath, err)
	}
	cfg, validation := config.NormalizeAndValidate(raw)
	for _, w := range validation.Warnings {
		log.Printf("[config] warning: %s", w)
	}
	if !validation.OK() {
		for _, e := range validation.Errors {
			log.Printf("[config] error: %s", e)
		}
		os.Exit(1)
	}

	db, err := store.Open(filepath.Join(dataDir, "jobfinder.db"))
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pl, err := buildPipeline(ctx, cfg, db)
	if err != nil {
		log.Fatal(err)
	}

	if *every > 0 {
		scheduler.Loop(ctx, *every, "jobfinder", pl.Run)
		return
	}
	if err := pl.Run(ctx); err != nil {
		log.Fatalf("run failed: %v", err)
	}
}

func buildPipeline(ctx context.Context, cfg config.Config, db *store.DB) (*pipeline.Pipeline, error) {
	pl := &pipeline.Pipeline{Cfg: cfg, DB: db}

	var imapPassword string
	if cfg.Email.Enabled {
		pw, err := secrets.Get(secrets.AccountIMAPPassword)
		if err != nil {
			log.Printf("[main] email source disabled: %v", err)
			cfg.Email.Enabled = false
		} else {
			imapPassword = pw
		}
	}
	pl.Fetchers = scrape.BuildFetchers(cfg, imapPassword)

	if apiKey, err := secrets.Get(secrets.AccountGeminiAPIKey); err != nil {
		log.Printf("[main] scoring and VC enrichment disabled: %v", err)
	} else {
		gemini, err := score.NewGemini(ctx, apiKey, cfg.Scoring.Model)
		if err != nil {
			return nil, err
		}
		pl.Scorer = score.New(gemini, cfg.Scoring)
		pl.Enricher = enrich.New(db, gemini, cfg.AllNotableVCs())
		pl.Resume = loadResume(cfg.App.ResumeFile)
	}

	pl.Checker = health.New(cfg.Health, util.NewHostLimiter(cfg.Health.RateLimit, 1))

	if cfg.Sheet.Enabled {
		syncer, err := sheets.New(ctx, cfg.Sheet)
		if err != nil {
			return nil, err
		}
		pl.Sheets = syncer
	}

	if cfg.Digest.Enabled {
		pw, err := secrets.Get(secrets.AccountSMTPPassword)
		if err != nil {
			log.Printf("[main] digest disabled: %v", err)
		} else {
			pl.Mailer = notify.New(cfg.Digest, pw, cfg.Scoring.TopN)
		}
	}

	return pl, nil
}

func loadResume(path string) string {
	if path == "" {
		return ""
	}
	b, err := os.ReadFile(path)
	if err != nil {
		log.Printf("[main] resume file: %v", err)
		return ""
	}
	return strings.TrimSpace(string(b))
}
