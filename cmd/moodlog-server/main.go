package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "time/tzdata"

	"github.com/mrwolf/moodlog/internal/api"
	"github.com/mrwolf/moodlog/internal/config"
	"github.com/mrwolf/moodlog/internal/db"
	"github.com/mrwolf/moodlog/internal/llm"
	"github.com/mrwolf/moodlog/internal/scheduler"
	"github.com/mrwolf/moodlog/internal/vault"
	"github.com/mrwolf/moodlog/internal/wellness"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting moodlog-server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pack, err := config.LoadContent(cfg.ContentPath)
	if err != nil {
		log.Fatalf("Failed to load content pack: %v", err)
	}
	content, err := wellness.DefaultContent().WithOverrides(pack)
	if err != nil {
		log.Fatalf("Failed to apply content pack: %v", err)
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	var v *vault.Vault
	if cfg.VaultPath != "" {
		v = vault.NewVault(cfg.VaultPath)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gen, err := llm.New(ctx, cfg)
	if err != nil {
		cancel()
		log.Fatalf("Failed to create generator: %v", err)
	}
	if checker, ok := gen.(llm.HealthChecker); ok {
		log.Printf("Validating %s connection...", llm.NameOf(gen))
		if err := checker.HealthCheck(ctx); err != nil {
			log.Printf("WARNING: %s health check failed: %v", llm.NameOf(gen), err)
			log.Println("Server will start but generated text will use fallbacks")
		} else {
			log.Printf("%s connected", llm.NameOf(gen))
		}
	} else if gen == nil {
		log.Println("No generator configured, generated text will use fallbacks")
	}
	cancel()

	svc := wellness.NewService(database, gen, wellness.Options{
		Timeout:  cfg.LLMTimeout,
		Location: cfg.Location(),
		Preset:   cfg.BalancePreset,
		Content:  content,
	})

	router := api.NewRouter(cfg, database, v, svc)

	sched, err := scheduler.New(database, v, svc, scheduler.Config{
		Location: cfg.Location(),
		Owners:   cfg.Owners(),
	})
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}
	if err := sched.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	addr := ":" + cfg.Port
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down gracefully...")

	// generator calls are bounded by LLMTimeout, so allow for one in flight
	ctx, cancel = context.WithTimeout(context.Background(), cfg.LLMTimeout+10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Stopping scheduler...")
	if err := sched.Stop(); err != nil {
		log.Printf("Scheduler shutdown error: %v", err)
	}

	log.Println("Closing database...")
	if err := database.Close(); err != nil {
		log.Printf("Database close error: %v", err)
	}

	log.Println("Shutdown complete")
}
