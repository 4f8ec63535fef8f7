// job-matching-platform backend
//
// Connects student and employer accounts:
//   - standard matching        — attribute-overlap filtering with optional filters
//   - AI matching              — free-text ranking via the Gemini oracle
//   - application lifecycle    — create / re-apply / approve / deny
//   - real-time notifications  — WebSocket push to online users, durable store for everyone
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Activit123/job-matching-platform/internal/apps"
	"github.com/Activit123/job-matching-platform/internal/config"
	"github.com/Activit123/job-matching-platform/internal/db"
	"github.com/Activit123/job-matching-platform/internal/directory"
	"github.com/Activit123/job-matching-platform/internal/httpapi"
	"github.com/Activit123/job-matching-platform/internal/live"
	"github.com/Activit123/job-matching-platform/internal/maintenance"
	"github.com/Activit123/job-matching-platform/internal/match"
	"github.com/Activit123/job-matching-platform/internal/match/gemini"
	"github.com/Activit123/job-matching-platform/internal/notify"
	"github.com/Activit123/job-matching-platform/internal/presence"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	_ = godotenv.Load() // optional .env for local dev

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[server] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Println("[server] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[server] PostgreSQL: %v", err)
	}
	defer pool.Close()
	log.Println("[server] PostgreSQL connected ✓")

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Println("[server] Connecting to Redis…")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("[server] Redis: %v", err)
	}
	defer rdb.Close()
	log.Println("[server] Redis connected ✓")

	// ── Ranking oracle ───────────────────────────────────────────────────────
	generator, err := gemini.NewGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatalf("[server] Gemini: %v", err)
	}
	log.Printf("[server] Ranking oracle ready — model %s", generator.Model())

	// ── Core services ────────────────────────────────────────────────────────
	dir := directory.NewStore(pool)
	matcher := match.NewService(dir, generator, cfg.OracleTimeout)

	registry := presence.NewRegistry()
	channel := live.NewChannel()
	notificationStore := notify.NewStore(pool)
	dispatcher := notify.NewDispatcher(notificationStore, registry, channel, rdb)

	applications := apps.NewService(pool, dispatcher, rdb)

	liveServer := live.NewServer(registry)

	// ── Maintenance sweep ────────────────────────────────────────────────────
	sweeper := maintenance.New(notificationStore, cfg.RetentionDays)
	if err := sweeper.Start(ctx); err != nil {
		log.Fatalf("[server] Maintenance scheduler: %v", err)
	}
	defer sweeper.Stop()

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/ws", liveServer.HandleWS)

	h := httpapi.NewHandler(dir, matcher, applications, notificationStore)
	h.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
		// No WriteTimeout: the AI match call can legitimately take longer
		// than a sane global write deadline, and /ws is a long-lived stream.
	}

	go func() {
		log.Printf("[server] v%s listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[server] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[server] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	liveServer.Shutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[server] Shutdown error: %v", err)
	}
	log.Println("[server] Stopped.")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "job-matching-platform",
		"version": version,
	})
}
