package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"GoldSentry/internal/config"
	"GoldSentry/internal/feed"
	"GoldSentry/internal/history"
	"GoldSentry/internal/notifier"
	"GoldSentry/internal/recorder"
	"GoldSentry/internal/scheduler"
	"GoldSentry/internal/server"
	"GoldSentry/internal/storage"
	"GoldSentry/internal/strategy"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] GoldSentry starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	symbols := []string{cfg.Symbols.Gold, cfg.Symbols.Silver}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init streaming feed
	var stream *feed.StreamFeed
	if cfg.Stream.Enabled {
		stream = feed.NewStreamFeed(cfg.Stream.URL, cfg.Proxy, symbols)
		go stream.Start(ctx)
		log.Printf("[INFO] streaming feed enabled: %s", cfg.Stream.URL)
	}

	// Init fallback providers, ranked
	var quotes []feed.QuoteProvider
	var candles []feed.CandleProvider
	if cfg.Providers.ScraperURL != "" {
		quotes = append(quotes, feed.NewGoldScraper(cfg.Providers.ScraperURL, cfg.Symbols.Gold, cfg.Proxy))
	}
	if cfg.Providers.GoldAPIKey != "" {
		quotes = append(quotes, feed.NewGoldAPIProvider(cfg.Providers.GoldAPIBaseURL, cfg.Providers.GoldAPIKey, cfg.Symbols.Gold, cfg.Proxy))
	}
	if cfg.Providers.QuoteAPIKey != "" {
		qa := feed.NewQuoteAPIProvider(cfg.Providers.QuoteAPIBase, cfg.Providers.QuoteAPIKey, cfg.Proxy)
		quotes = append(quotes, qa)
		candles = append(candles, qa)
	}

	synthetic := feed.NewSynthetic(cfg.Symbols.Gold, cfg.Symbols.Silver)
	market := feed.NewAggregator(stream, quotes, candles, synthetic)

	// Init strategy engine
	engine := strategy.NewEngine(market, strategy.DefaultParams(cfg.Symbols.Gold, cfg.Symbols.Silver))

	// Init history store
	hist := history.NewStore(storage.ForPath(cfg.History.StateFile))

	// Init Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Init scheduler
	sched := scheduler.New(market, engine, hist, tn, rec, symbols, cfg.Symbols.Gold)
	if err := sched.Start(ctx, cfg.Schedule.TickCron); err != nil {
		log.Fatalf("[FATAL] start scheduler: %v", err)
	}
	defer sched.Stop()

	// Start HTTP server
	srv := server.New(sched, market, hist, symbols)
	go func() {
		if err := srv.Run(cfg.Server.Listen); err != nil {
			log.Printf("[ERROR] HTTP server stopped: %v", err)
		}
	}()

	// Start Telegram command polling
	if cfg.Telegram.Polling {
		poller := notifier.NewPoller(tn, func(ctx context.Context, cmd string) string {
			return sched.HandleCommand(ctx, cmd)
		})
		go poller.Run(ctx)
	}

	// Optional: run a cycle immediately on start
	if cfg.Schedule.RunOnStart || os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing tick now")
		go sched.RunTick(ctx, false)
	}

	log.Println("[INFO] GoldSentry is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[WARN] HTTP shutdown: %v", err)
	}
	log.Println("[INFO] GoldSentry stopped")
}
