package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/hongminglow/erp-api/internal/app"
	"github.com/hongminglow/erp-api/internal/config"
)

// openStores loads .env and the configuration, then opens both backends.
func openStores(ctx context.Context) (*app.Stores, error) {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return app.OpenStores(ctx, cfg)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
