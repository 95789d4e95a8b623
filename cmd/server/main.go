package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/go-chi/chi/v5"

	"github.com/Jaspreet000/remotify-sub001/internal/auth"
	"github.com/Jaspreet000/remotify-sub001/internal/config"
	"github.com/Jaspreet000/remotify-sub001/internal/httpapi"
	"github.com/Jaspreet000/remotify-sub001/internal/leaderboard"
	"github.com/Jaspreet000/remotify-sub001/internal/logging"
	"github.com/Jaspreet000/remotify-sub001/internal/progression"
	"github.com/Jaspreet000/remotify-sub001/internal/server"
)

func main() {
	ctx := context.Background()
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("config error: %w", err))
	}

	logger := logging.NewLogger("progression-service")

	var (
		progressionRepo progression.Repository
		boardRepo       leaderboard.Repository
	)

	switch cfg.DataStore {
	case config.DataStoreFirestore:
		client, err := firestore.NewClient(ctx, cfg.GCPProjectID)
		if err != nil {
			panic(fmt.Errorf("firestore client: %w", err))
		}
		defer client.Close()

		progressionRepo = progression.NewFirestoreRepository(client)
		boardRepo = leaderboard.NewFirestoreRepository(client)
	default:
		progressionRepo = progression.NewMemoryRepository()
		boardRepo = leaderboard.NewMemoryRepository()
	}

	service := progression.NewService(progressionRepo, boardRepo, progression.NewStaticCatalog())

	verifier, err := auth.NewVerifier(auth.Config{
		Mode:     cfg.Auth.Mode,
		JWKSURL:  cfg.Auth.JWKSURL,
		Audience: cfg.Auth.Audience,
		Issuer:   cfg.Auth.Issuer,
	})
	if err != nil {
		panic(fmt.Errorf("auth verifier error: %w", err))
	}

	router := server.NewRouter("progression-service", logger, func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(verifier))

			httpapi.RegisterRoutes(r, service)
		})
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	if err := server.Run(ctx, srv, logger); err != nil && !errors.Is(err, http.ErrServerClosed) {
		panic(err)
	}
}
