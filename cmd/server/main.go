// Command server runs the wtrfll session server: the REST API, the realtime
// websocket hub, and telemetry export.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"wtrfll/server/internal/config"
	"wtrfll/server/internal/db"
	healthhandler "wtrfll/server/internal/health/handler"
	lyricshandler "wtrfll/server/internal/lyrics/handler"
	lyricsrepo "wtrfll/server/internal/lyrics/repository"
	lyricssvc "wtrfll/server/internal/lyrics/service"
	"wtrfll/server/internal/passage"
	passagehandler "wtrfll/server/internal/passage/handler"
	"wtrfll/server/internal/realtime"
	"wtrfll/server/internal/server"
	sessionhandler "wtrfll/server/internal/session/handler"
	sessionrepo "wtrfll/server/internal/session/repository"
	sessionsvc "wtrfll/server/internal/session/service"
	"wtrfll/server/internal/telemetry"
	"wtrfll/server/internal/telemetry/loki"
	teleotel "wtrfll/server/internal/telemetry/otel"
	"wtrfll/server/internal/telemetry/producer"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOtel, err := teleotel.Setup(ctx, teleotel.Options{
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    cfg.OTLPInsecure,
		Environment: cfg.Env,
	})
	if err != nil {
		log.Fatalf("otel: %v", err)
	}

	var sinks []telemetry.Sink
	if brokers := cfg.TelemetryKafkaBrokersList(); len(brokers) > 0 {
		sinks = append(sinks, producer.NewKafkaSink(brokers, cfg.TelemetryKafkaTopic))
		log.Printf("telemetry: kafka sink enabled (topic %s)", cfg.TelemetryKafkaTopic)
	}
	if cfg.LokiURL != "" {
		sinks = append(sinks, loki.NewSink(cfg.LokiURL, map[string]string{"env": cfg.Env}))
		log.Print("telemetry: loki sink enabled")
	}
	var events telemetry.Emitter = telemetry.NopEmitter{}
	var asyncEmitter *telemetry.AsyncEmitter
	if len(sinks) > 0 {
		asyncEmitter = telemetry.NewAsyncEmitter(sinks...)
		events = asyncEmitter
	}

	var (
		sessionStore sessionsvc.Store
		lyricsStore  lyricssvc.Store
		pinger       healthhandler.Pinger
	)
	if cfg.DatabaseURL != "" {
		conn, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db: %v", err)
		}
		defer conn.Close()
		sessionStore = sessionrepo.NewPostgresRepository(conn)
		lyricsStore = lyricsrepo.NewPostgresRepository(conn)
		pinger = conn
	} else {
		log.Print("DATABASE_URL not set, using in-memory stores")
		sessionStore = sessionrepo.NewMemoryRepository()
		lyricsStore = lyricsrepo.NewMemoryRepository()
	}

	lifecycle := sessionsvc.NewLifecycleService(sessionStore).WithEvents(events)
	query := sessionsvc.NewQueryService(sessionStore)

	var sources []passage.Source
	for _, src := range cfg.TranslationSources() {
		sources = append(sources, passage.Source{Code: src.Code, File: src.File})
	}
	passages := passage.NewReadService(passage.NewFileProvider(cfg.ContentDir, sources))
	log.Printf("passages: serving translations %v", passages.Translations())

	catalog := lyricssvc.NewCatalogService(lyricsStore, cfg.LyricsFontScaleMin, cfg.LyricsFontScaleMax)
	presenter := lyricssvc.NewPresentationService(lyricsStore, cfg.LyricsFontScaleMin, cfg.LyricsFontScaleMax)

	hub := realtime.NewHub(lifecycle, passages, presenter, events)

	handler := server.NewHandler(server.Deps{
		Sessions: sessionhandler.NewHandler(lifecycle, query),
		Passages: passagehandler.NewHandler(passages),
		Lyrics:   lyricshandler.NewHandler(catalog),
		Health:   healthhandler.NewHandler(pinger, passages),
		Realtime: realtime.NewWSHandler(hub),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("server: listening on %s", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Print("server: shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server: shutdown: %v", err)
	}
	if asyncEmitter != nil {
		if err := asyncEmitter.Shutdown(shutdownCtx); err != nil {
			log.Printf("telemetry: shutdown: %v", err)
		}
	}
	if err := shutdownOtel(shutdownCtx); err != nil {
		log.Printf("otel: shutdown: %v", err)
	}
}
