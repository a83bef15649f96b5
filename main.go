package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/marcus-crane/premiumize-addon/addon"
	"github.com/marcus-crane/premiumize-addon/config"
	"github.com/marcus-crane/premiumize-addon/db"
	"github.com/marcus-crane/premiumize-addon/events"
	"github.com/marcus-crane/premiumize-addon/jobs"
	"github.com/marcus-crane/premiumize-addon/migrations"
	"github.com/marcus-crane/premiumize-addon/premiumize"
	"github.com/marcus-crane/premiumize-addon/routes"
	"github.com/marcus-crane/premiumize-addon/rpdb"
	"github.com/marcus-crane/premiumize-addon/utils"
)

func main() {
	if err := godotenv.Load(utils.GetEnv("ENV_FILE", ".env")); err != nil {
		fmt.Println(err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	setupLogging(cfg)

	upstream := premiumize.NewClient(cfg.Premiumize.APIKey)
	upstream.BaseURL = cfg.Premiumize.BaseURL
	upstream.HTTPClient = utils.NewHTTPClient(cfg.UpstreamTimeout())

	posters := rpdb.NewPosters(cfg.RPDB.APIKey)
	posters.BaseURL = cfg.RPDB.BaseURL

	eventServer := events.NewServer()

	observers := []addon.StreamObserver{events.NewPublisher(eventServer)}

	handlers := &routes.Handlers{
		AddonName: cfg.Addon.Name,
		Events:    eventServer,
	}

	if cfg.HistoryEnabled() {
		store, err := db.NewSqliteStore(cfg.History.DbPath)
		if err != nil {
			slog.Error("Failed to open history store", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer store.Close()

		if err := store.ApplyMigrations(migrations.GetMigrations()); err != nil {
			slog.Error("Failed to migrate history store", slog.String("error", err.Error()))
			os.Exit(1)
		}

		jobScheduler := jobs.SetupInBackground(store, cfg.History.RetentionDays)
		jobScheduler.StartAsync()
		defer jobScheduler.Stop()

		observers = append(observers, db.NewRecorder(store))
		handlers.History = store
		slog.Info("Stream history is enabled", slog.String("db_path", cfg.History.DbPath))
	} else {
		slog.Info("Stream history is disabled, set DB_PATH to enable it")
	}

	handlers.Addon = addon.NewService(cfg, upstream, posters, observers...)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Addon.Port),
		Handler:           routes.Register(mux.NewRouter(), handlers),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
		// No WriteTimeout as /events connections stay open indefinitely
	}

	go func() {
		slog.Info("Addon is running", slog.String("addr", fmt.Sprintf("http://localhost:%d/manifest.json", cfg.Addon.Port)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server stopped unexpectedly", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c
	slog.Info("Gracefully shutting down...")

	// Event subscribers never finish on their own so they need closing before Shutdown
	eventServer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Failed to shut down cleanly", slog.String("error", err.Error()))
	}

	slog.Info("Addon has successfully shut down.")
}

func setupLogging(cfg config.Config) {
	var out io.Writer = os.Stdout
	if cfg.Log.File != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.Log.File,
			MaxSize:    cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAge:     cfg.Log.MaxAgeDays,
		})
	}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: cfg.GetLogLevel()}))
	slog.SetDefault(logger)
}
