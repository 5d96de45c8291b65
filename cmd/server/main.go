package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/tripdesk/tripdesk/internal/assistant"
	"github.com/tripdesk/tripdesk/internal/auth"
	"github.com/tripdesk/tripdesk/internal/server"
	"github.com/tripdesk/tripdesk/internal/service"
	"github.com/tripdesk/tripdesk/internal/storage/sqlite"
	"github.com/tripdesk/tripdesk/pkg/logging"
)

const defaultTokenTTL = 24 * time.Hour

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logging.Setup()

	port := getEnv("PORT", "8080")
	dbPath := getEnv("DB_PATH", "./data/tripdesk.db")
	apiKey := os.Getenv("OPENAI_API_KEY")
	model := os.Getenv("OPENAI_MODEL")
	jwtSecret := os.Getenv("JWT_SECRET")

	if apiKey == "" {
		slog.Error("OPENAI_API_KEY is required")
		os.Exit(1)
	}
	if jwtSecret == "" {
		slog.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	tokenTTL := defaultTokenTTL
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Error("Invalid TOKEN_TTL", "value", v, "error", err)
			os.Exit(1)
		}
		tokenTTL = d
	}

	store, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", dbPath)

	jwtManager := auth.NewJWTManager(jwtSecret, tokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store)
	completer := assistant.NewClient(apiKey, model)

	srv := server.New(
		service.NewAuthService(authenticator, jwtManager),
		service.NewChatService(store, completer),
		service.NewSplitService(store),
		service.NewTicketService(store),
		jwtManager,
	)

	// h2c allows HTTP/2 without TLS when running behind a plain proxy.
	handler := h2c.NewHandler(srv.Handler(), &http2.Server{})

	addr := ":" + port
	slog.Info("Server starting", "address", addr, "url", fmt.Sprintf("http://localhost%s", addr))
	if err := http.ListenAndServe(addr, handler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
