package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/jinbless/moelclaw/internal/authstore"
	"github.com/jinbless/moelclaw/internal/calendar"
	"github.com/jinbless/moelclaw/internal/config"
	"github.com/jinbless/moelclaw/internal/engine"
	"github.com/jinbless/moelclaw/internal/history"
	"github.com/jinbless/moelclaw/internal/llm"
	"github.com/jinbless/moelclaw/internal/naver"
	"github.com/jinbless/moelclaw/internal/navigate"
	"github.com/jinbless/moelclaw/internal/report"
	"github.com/jinbless/moelclaw/internal/telegram"
)

func main() {
	log.Println("moelclaw - shared calendar chat assistant")
	log.Println("=========================================")

	configPath := flag.String("config", "config.yaml", "path to optional config file")
	flag.Parse()

	// Load .env file (optional - won't error if missing)
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, using environment variables")
	} else {
		log.Println("[config] Loaded .env file")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("Failed to resolve timezone: %v", err)
	}

	// Persistent credential store
	auth, err := authstore.Open(cfg.StatePath)
	if err != nil {
		log.Fatalf("Failed to open token store: %v", err)
	}
	defer auth.Close()

	oauth := calendar.NewOAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI)
	cal := calendar.NewClient(cfg.CalendarID, authstore.NewTokenSource(auth, oauth), loc)

	// In-memory per-chat state
	hist := history.NewStore(cfg.HistoryCap)
	pending := navigate.NewStore()

	eng := engine.New(engine.Config{
		Calendar: cal,
		LLM:      llm.NewClient(cfg.OpenAIKey, cfg.OpenAIModel, loc),
		Geocoder: naver.NewClient(cfg.NaverClientID, cfg.NaverClientSecret),
		History:  hist,
		Pending:  pending,
		Location: loc,
	})

	bot, err := telegram.New(telegram.Config{
		Token:  cfg.TelegramToken,
		Engine: eng,
		Auth:   auth,
		OAuth:  oauth,
		Debug:  cfg.Debug,
	})
	if err != nil {
		log.Fatalf("Failed to create Telegram bot: %v", err)
	}

	// The engine sends through the bot; wire the late dependency
	eng.SetTransport(bot)

	bot.Start()

	daily := report.NewScheduler(report.Config{
		Lister:     eng,
		Recipients: auth,
		Sender:     bot,
		Hour:       cfg.ReportHour,
		Timezone:   loc,
	})
	daily.Start()

	log.Println("[main] All subsystems started. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("[main] Shutting down...")

	daily.Stop()
	bot.Stop()

	log.Println("[main] Goodbye!")
}
