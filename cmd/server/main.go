package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dialview/icws-monitor/internal/api"
	"github.com/dialview/icws-monitor/internal/bi"
	"github.com/dialview/icws-monitor/internal/config"
	"github.com/dialview/icws-monitor/internal/engine"
	"github.com/dialview/icws-monitor/internal/icws"
	"github.com/dialview/icws-monitor/internal/metrics"
	"github.com/dialview/icws-monitor/internal/poller"
	"github.com/dialview/icws-monitor/internal/push"
	"github.com/dialview/icws-monitor/internal/retention"
	"github.com/dialview/icws-monitor/internal/skew"
	"github.com/dialview/icws-monitor/internal/stats"
	"github.com/dialview/icws-monitor/internal/storage"
	"github.com/dialview/icws-monitor/internal/store"
	"github.com/dialview/icws-monitor/internal/types"
	"github.com/dialview/icws-monitor/internal/websocket"
	"github.com/dialview/icws-monitor/pkg/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Configure logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Set log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("invalid log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("port", cfg.Port).
		Str("icws_url", cfg.ICWSBaseURL).
		Dur("poll_interval", cfg.PollInterval).
		Str("log_level", cfg.LogLevel).
		Msg("starting icws-monitor server")

	// Create context for services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Durable storage (DynamoDB or noop per DYNAMO_MODE)
	durable, err := storage.NewStore(ctx, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize storage")
	}

	// Working set and reconciliation engine
	interactions := store.NewCollection[types.Interaction]("interactions")
	agents := store.NewCollection[types.Agent]("agents")
	eng := engine.New(interactions, agents, skew.NewEstimator(skew.DefaultCapacity), log.Logger)
	eng.SetDisallowedWorkgroups(cfg.DisallowedWorkgroups)

	// Statistics aggregator
	agg := stats.New(interactions, agents, log.Logger)
	agg.SetDisallowedWorkgroups(cfg.DisallowedWorkgroups)

	// BI push pipeline
	sink := bi.NewClient(bi.Config{
		BaseURL:      cfg.BIBaseURL,
		DatasetID:    cfg.BIDatasetID,
		ClientID:     cfg.BIClientID,
		ClientSecret: cfg.BIClientSecret,
		TokenURL:     cfg.BITokenURL,
	}, log.Logger)
	pipeline := push.NewPipeline(push.NewLedger(), sink, log.Logger)
	pipeline.SetEntryPersist(func(entry types.PushLedgerEntry) {
		go func() {
			if err := durable.UpsertLedgerEntry(entry); err != nil {
				log.Error().Err(err).Str("interaction_id", entry.InteractionID).Msg("failed to persist ledger entry")
			}
		}()
	})
	eng.SetTerminalSink(pipeline)
	go pipeline.Run(ctx, cfg.PushInterval)

	if cfg.BIBaseURL != "" {
		if err := sink.Authenticate(ctx, false); err != nil {
			log.Warn().Err(err).Msg("initial bi authentication failed, will retry on push")
		} else {
			for _, table := range []string{push.TableAgentDaily, push.TableAgentWeekly} {
				if err := sink.EnsureTable(ctx, table, bi.AgentRowSchema()); err != nil {
					log.Warn().Err(err).Str("table", table).Msg("failed to ensure bi table")
				}
			}
		}
	}

	// WebSocket hub
	hub := websocket.NewHub(log.Logger)
	go hub.Run()
	wsHandler := websocket.NewHandler(hub, cfg, log.Logger)

	// Switch session and poll loop
	session := icws.NewSession(icws.Config{
		BaseURL:  cfg.ICWSBaseURL,
		Username: cfg.ICWSUsername,
		Password: cfg.ICWSPassword,
		Station:  cfg.ICWSStation,
	}, log.Logger)
	poll := poller.New(session, eng, agg, durable, hub, cfg.PollInterval, log.Logger)
	go poll.Run(ctx)

	// Weekly retention sweep
	retain := retention.NewJob(durable, pipeline.Ledger(), poll, log.Logger)
	if err := retain.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to schedule retention job")
	}
	defer retain.Stop()

	// REST handlers
	statsHandler := api.NewStatsHandler(agg, log.Logger)

	// Create router
	r := chi.NewRouter()

	// Add middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.Get("/health", healthHandler)
	r.Get("/metrics", metrics.Get().Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/stats", statsHandler.GetSnapshot)
		r.Get("/stats/queue", statsHandler.GetQueueStats)
		r.Get("/stats/agents", statsHandler.GetAgentStats)
	})

	r.Get("/ws", wsHandler.ServeHTTP)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Msgf("server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Stop the poll loop and push pipeline
	cancel()

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// healthHandler handles health check requests
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","service":"icws-monitor"}`)
}
