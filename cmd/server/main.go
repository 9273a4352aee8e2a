package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hongminglow/erp-api/internal/app"
	"github.com/hongminglow/erp-api/internal/config"
	"github.com/hongminglow/erp-api/internal/server"
)

func main() {
	loadLocalEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	stores, err := app.OpenStores(ctx, cfg)
	if err != nil {
		log.Fatalf("init storage: %v", err)
	}
	defer stores.Close()

	// Either backend may be down at boot; the replicated store copes with it.
	prepCtx, cancelPrep := context.WithTimeout(ctx, 10*time.Second)
	if err := stores.Prepare(prepCtx); err != nil {
		log.Printf("warning: %v", err)
	}
	cancelPrep()

	publisher := app.NewPublisher(cfg)
	defer publisher.Close()

	srv := server.New(cfg, stores.Replicated, publisher)

	go func() {
		log.Printf("ERP backend listening on %s (document store: %s, balance policy: %s)", cfg.HTTPAddress(), cfg.DocumentStore, cfg.BalancePolicy)
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Printf("graceful shutdown error: %v", err)
	}
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}
}
