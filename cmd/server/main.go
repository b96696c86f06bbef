package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"projectly/internal/config"
	"projectly/internal/handler"
	"projectly/internal/logger"
	"projectly/internal/middleware"
	"projectly/internal/model"
	"projectly/internal/service"
	"projectly/internal/storage"
)

func main() {
	configFile := flag.String("config", "", "config file path (e.g. etc/config-dev.yaml)")
	flag.Parse()

	cfg := config.Load(*configFile)
	logger.Init(cfg.Log)
	db, err := cfg.OpenGormDB()
	if err != nil {
		slog.Error("db connect failed", "driver", cfg.Database.Driver, "err", err)
		os.Exit(1)
	}
	if err := model.Migrate(db); err != nil {
		slog.Error("db migrate failed", "err", err)
		os.Exit(1)
	}

	store := storage.New(cfg.Storage.MediaRoot, cfg.Storage.MediaURL)
	srv := handler.New(handler.Deps{
		DB:       db,
		Tokens:   middleware.NewTokens(cfg.Auth),
		Store:    store,
		Identity: service.NewSocialClient(cfg.Social),
	})

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLog())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-CSRFToken"},
		ExposeHeaders:    []string{"X-New-Token", "Content-Disposition"},
		AllowCredentials: true,
	}))
	r.Static(cfg.Storage.MediaURL, store.Root())
	srv.Routes(r)

	slog.Info("server starting", "addr", cfg.Addr(), "media", store.Root())
	if err := r.Run(cfg.Addr()); err != nil {
		slog.Error("server failed", "err", err)
	}
}
