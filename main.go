package main

import (
	"fmt"
	"net/http"

	"github.com/EmpoweredVote/constituency-core/internal/auth"
	"github.com/EmpoweredVote/constituency-core/internal/boundary"
	"github.com/EmpoweredVote/constituency-core/internal/config"
	"github.com/EmpoweredVote/constituency-core/internal/constituency"
	"github.com/EmpoweredVote/constituency-core/internal/db"
	"github.com/EmpoweredVote/constituency-core/internal/logger"
	"github.com/EmpoweredVote/constituency-core/internal/metrics"
	"github.com/EmpoweredVote/constituency-core/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "Server is up!")
}

func main() {
	cfg, err := config.Load()
	log := logger.Init(logger.Config{Level: cfg.LogLevel, Development: cfg.LogDev})
	defer log.Sync()
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid config", zap.Error(err))
	}

	db.Connect(cfg.DatabaseURL)

	// Boundaries load in the background; until they are published,
	// resolution leaves reports pending.
	boundary.LoadAsync(cfg.Boundaries)

	svc, err := constituency.Init(cfg, db.DB)
	if err != nil {
		log.Fatal("Failed to initialize constituency module", zap.Error(err))
	}
	sessions := auth.SessionInfo{DB: db.DB}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Get("/", RootHandler)
	r.Handle("/metrics", metrics.Handler())

	r.Mount("/constituency", constituency.SetupRoutes(svc, sessions, sessions))

	log.Info("Server listening", zap.String("port", cfg.Port))
	if err := http.ListenAndServe("0.0.0.0:"+cfg.Port, r); err != nil {
		log.Fatal("Server stopped", zap.Error(err))
	}
}
