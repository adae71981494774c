package main

import (
	"context"
	"time"

	"digiwave-dashboard/internal/app"
	"digiwave-dashboard/internal/bootstrap"
	"digiwave-dashboard/internal/config"
	"digiwave-dashboard/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config failed", zap.Error(err))
	}

	apperror.Init()
	r := gin.Default()

	// build dependency + routes
	application, err := app.BuildApp(r, cfg, logger)
	if err != nil {
		logger.Fatal("build app failed", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go application.Run(ctx)

	err = bootstrap.StartHTTPServer(
		r,
		bootstrap.ServerConfig{
			Port:        cfg.Port,
			ReadTimeout: 5 * time.Second,
			IdleTimeout: 60 * time.Second,
		},
		bootstrap.NewZapAuditLogger(logger),
		application.Close,
	)
	if err != nil {
		logger.Error("server stopped with error", zap.Error(err))
	}
}
