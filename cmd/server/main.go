package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/go-chi/chi/v5"

	"github.com/skillfolio/profile-service/internal/assessment"
	"github.com/skillfolio/profile-service/internal/config"
	"github.com/skillfolio/profile-service/internal/httpapi"
	"github.com/skillfolio/profile-service/internal/logging"
	"github.com/skillfolio/profile-service/internal/platforms"
	"github.com/skillfolio/profile-service/internal/profile"
	"github.com/skillfolio/profile-service/internal/server"
)

func main() {
	ctx := context.Background()
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("config error: %w", err))
	}

	logger := logging.NewLogger("profile-service")

	var profileRepo profile.Repository
	var assessmentStore assessment.Store

	if cfg.DataStore == "memory" {
		logger.Warn("using in-memory datastore, data will not survive restarts")
		profileRepo = profile.NewMemoryRepository()
		assessmentStore = assessment.NewMemoryStore()
	} else {
		// The firestore client picks the emulator up from the environment;
		// surface it so a misconfigured deploy is obvious in the logs.
		if cfg.Firestore.EmulatorHost != "" {
			logger.Info("using firestore emulator", "host", cfg.Firestore.EmulatorHost)
		}
		client, err := firestore.NewClient(ctx, cfg.GCPProjectID)
		if err != nil {
			panic(fmt.Errorf("firestore client: %w", err))
		}
		defer client.Close()
		profileRepo = profile.NewFirestoreRepository(client)
		assessmentStore = assessment.NewFirestoreStore(client)
	}

	profileService, err := profile.NewService(profileRepo)
	if err != nil {
		panic(fmt.Errorf("profile service: %w", err))
	}

	// No API key means the deterministic template generator serves assessments.
	var generator assessment.Generator
	if cfg.Gemini.APIKey != "" {
		generator, err = assessment.NewGeminiGenerator(ctx, assessment.GeneratorConfig{
			APIKey: cfg.Gemini.APIKey,
			Model:  cfg.Gemini.Model,
		})
		if err != nil {
			logger.Warn("gemini unavailable, falling back to template questions", "error", err)
			generator = nil
		}
	}

	assessmentService, err := assessment.NewService(assessmentStore, generator, profileService, cfg.Assessment.MaxQuestions)
	if err != nil {
		panic(fmt.Errorf("assessment service: %w", err))
	}

	platformService, err := platforms.NewService(
		profileRepo,
		platforms.NewCodeChefClient(cfg.Platforms.CodeChefBaseURL, nil),
		platforms.NewLeetCodeClient(cfg.Platforms.LeetCodeURL, nil),
	)
	if err != nil {
		panic(fmt.Errorf("platform service: %w", err))
	}

	// Abandoned assessments (generated but never graded) expire after a day.
	go purgeStaleAssessments(ctx, assessmentStore, logger)

	handler := httpapi.NewHandler(logger, profileService, assessmentService, platformService)

	router := server.NewRouter("profile-service", cfg.CORS.AllowedOrigins, func(r chi.Router) {
		handler.RegisterRoutes(r)
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

func purgeStaleAssessments(ctx context.Context, store assessment.Store, logger *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := store.PurgeOlderThan(ctx, time.Now().Add(-24*time.Hour))
			if err != nil {
				logger.Error("assessment purge failed", "error", err)
				continue
			}
			if purged > 0 {
				logger.Info("purged stale assessments", "count", purged)
			}
		}
	}
}
