// cmd/server/main.go
package main

import (
	"context"
	_ "embed"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/tahcohcat/liferpg-web/config"
	"github.com/tahcohcat/liferpg-web/internal/api"
	"github.com/tahcohcat/liferpg-web/internal/auth"
	"github.com/tahcohcat/liferpg-web/internal/blobstore"
	"github.com/tahcohcat/liferpg-web/internal/llm"
	"github.com/tahcohcat/liferpg-web/internal/logger"
	"github.com/tahcohcat/liferpg-web/internal/services"
	"github.com/tahcohcat/liferpg-web/internal/websocket"
)

//go:embed index.html
var indexPage []byte

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Error("Failed to load config")
		os.Exit(1)
	}
	logger.SetGlobalLevel(logger.ParseLevel(cfg.Log.Level))

	store, closer, err := blobstore.New(&cfg.Store)
	if err != nil {
		log.WithError(err).Error("Failed to initialize store")
		os.Exit(1)
	}
	defer closer.Close()

	advisor, err := llm.NewLLMClient(cfg)
	if err != nil {
		log.WithError(err).Warn("Advisor unavailable, continuing without it")
		advisor = nil
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := advisor.IsModelAvailable(ctx); err != nil && !errors.Is(err, llm.ErrDisabled) {
			log.WithError(err).Warn("Advisor model is not reachable yet")
		}
		cancel()
	}

	hub := websocket.NewHub(cfg.Server.AllowedOrigins)
	go hub.Run()

	life := services.NewLifeService(store, cfg.Game, advisor, hub)

	users, err := services.NewUserService(cfg.Auth.Users)
	if err != nil {
		log.WithError(err).Error("Invalid auth.users")
		os.Exit(1)
	}

	a := auth.New(cfg.Auth.SessionSecret, users)
	a.OnLogin = life.Open
	a.OnLogout = life.Close

	r := mux.NewRouter()

	// Public routes
	r.HandleFunc("/login", a.LoginHandler).Methods("GET", "POST")
	r.HandleFunc("/logout", a.LogoutHandler).Methods("GET", "POST")

	// Authenticated routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(a.AuthMiddleware)

	apiRouter := authRouter.PathPrefix("/api/v1").Subrouter()
	api.RegisterRoutes(apiRouter, life, users)

	hub.RegisterRoutes(authRouter)

	authRouter.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(indexPage)
	}).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	port := cfg.Server.Port
	if port == "" {
		port = "8080"
	}

	log.Infof("⚔️ LifeRPG server starting on port %s", port)
	log.Infof("📍 Open http://localhost:%s in your browser", port)
	log.Infof("🗄️ Store backend: %s", cfg.Store.Backend)

	if err := http.ListenAndServe(":"+port, c.Handler(r)); err != nil {
		log.WithError(err).Error("Server stopped")
		os.Exit(1)
	}
}
