// Command spammer pushes synthetic order batches into the submissions topic.
package main

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/TemirB/erp-order-bridge/internal/kafka"
	"github.com/TemirB/erp-order-bridge/internal/observability"
)

func env(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func envFloat(k string, def float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(k), 64); err == nil {
		return f
	}
	return def
}

func routes(spammer *Spammer) http.Handler {
	r := chi.NewRouter()
	r.Post("/start", func(w http.ResponseWriter, r *http.Request) {
		var req SpamRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if req.Rate <= 0 {
			req.Rate = 10
		}
		duration, err := time.ParseDuration(req.Duration)
		if err != nil || duration <= 0 {
			http.Error(w, "Invalid duration", http.StatusBadRequest)
			return
		}
		if !spammer.StartSpam(req.Rate, duration) {
			http.Error(w, "already running", http.StatusConflict)
			return
		}
		writeJSON(w, map[string]any{"status": "started", "rate": req.Rate, "duration": duration.String()})
	})
	r.Post("/stop", func(w http.ResponseWriter, _ *http.Request) {
		spammer.StopSpam()
		writeJSON(w, map[string]any{"status": "stopped", "total_sent": spammer.GetStats().TotalSent})
	})
	r.Get("/stats", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, spammer.GetStats())
	})
	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func main() {
	_ = godotenv.Load()

	logger, err := observability.NewLogger(env("LOG_LEVEL", "info"), env("APP_ENV", "dev"))
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	brokers := strings.Split(env("KAFKA_BROKERS", "kafka:9092"), ",")
	topic := env("KAFKA_TOPIC", "orders.submissions")
	batch, _ := strconv.Atoi(env("SPAMMER_BATCH", "5"))

	gen := newGenerator(
		time.Now().UnixNano(),
		env("SPAMMER_INSTANCE", "LOAD"),
		strings.Split(env("SPAMMER_PRODUCTS", "P-100,P-200,P-300"), ","),
		strings.Split(env("SPAMMER_CUSTOMERS", "C-1,C-2"), ","),
		envFloat("SPAMMER_REPLAY_RATIO", 0.1),
		envFloat("SPAMMER_CONFLICT_RATIO", 0.02),
	)
	spammer := NewSpammer(kafka.NewWriter(brokers, topic), gen, batch, logger)
	defer func() {
		if err := spammer.Close(); err != nil {
			logger.Warn("writer close failed", zap.Error(err))
		}
	}()

	addr := ":" + env("SPAMMER_PORT", "8082")
	logger.Info("spammer listening", zap.String("addr", addr), zap.String("topic", topic),
		zap.String("endpoints", "POST /start, POST /stop, GET /stats"))
	if err := http.ListenAndServe(addr, routes(spammer)); err != nil {
		logger.Fatal("listen failed", zap.Error(err))
	}
}
