package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/flams/lore-archive/internal/accounts"
	"github.com/flams/lore-archive/internal/api"
	"github.com/flams/lore-archive/internal/api/handlers"
	"github.com/flams/lore-archive/internal/auth"
	"github.com/flams/lore-archive/internal/config"
	"github.com/flams/lore-archive/internal/database"
	"github.com/flams/lore-archive/internal/logger"
	"github.com/flams/lore-archive/internal/monitoring"
	"github.com/flams/lore-archive/internal/services"
	"github.com/flams/lore-archive/internal/session"
)

func main() {
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Build the fixed account roster
	store, err := accounts.NewStore(cfg.AccountSeeds)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build account roster")
	}

	// Session plumbing
	codec := session.NewCodec(nil)
	cookies := session.NewCookieManager(cfg.Production)
	gate := auth.NewGate(codec)

	// Set up services
	mediaService := services.NewMediaService(db)
	searchService, err := services.NewSearchService(cfg.TMDBAPIKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize search service")
	}

	// Set up and run background catalog maintenance
	maintenance := monitoring.NewMaintenance(db, "@hourly")
	go maintenance.Run()

	// Set up router
	router := api.NewRouter(
		gate,
		handlers.NewAuthHandler(store, codec, cookies, gate),
		handlers.NewMediaHandler(mediaService),
		handlers.NewSearchHandler(searchService),
	)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	maintenance.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
