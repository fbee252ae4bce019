package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"artpay-checkout/internal/config"
	"artpay-checkout/internal/db"
	"artpay-checkout/internal/observability"
	"artpay-checkout/internal/seed"
)

func main() {
	cfg := config.FromEnv()
	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	logger = logger.Named("seed")

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	if err := seed.Apply(ctx, pool); err != nil {
		logger.Fatal("seed apply", zap.Error(err))
	}

	logger.Info("seed applied", zap.String("session_id", seed.DemoSessionID), zap.Int64("user_id", seed.DemoUserID))
}
