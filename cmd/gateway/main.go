package main

import (
	"context"
	"log"
	"net/http"
	"time"

	api "github.com/prepdesk/prepdesk/internal/api/http"
	auth "github.com/prepdesk/prepdesk/internal/auth/middleware"
	"github.com/prepdesk/prepdesk/internal/config"
	"github.com/prepdesk/prepdesk/internal/db"
	"github.com/prepdesk/prepdesk/internal/events"
	"github.com/prepdesk/prepdesk/internal/exam"
	"github.com/prepdesk/prepdesk/internal/rbac"
	"github.com/prepdesk/prepdesk/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	store := exam.NewSQLStore(dbh)
	evlog := events.NewLog(dbh)

	authSvc := auth.NewAuthService(cfg.AuthSecret, cfg.TokenTTL)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.EnableLocalAuth {
		r.Post("/auth/signup", auth.SignupHandler(authSvc, dbh))
		r.Post("/auth/login", auth.LoginHandler(authSvc, dbh))
	}

	bs, err := storage.NewFSStore(cfg.AssetBasePath)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		// Admin: author tests and upload question images
		pr.With(rbac.Require("test:create")).
			Post("/tests", api.CreateTestHandler(store, evlog))
		pr.With(rbac.Require("asset:upload")).
			Post("/assets", api.UploadAssetHandler(bs))

		// Student/Admin: browse the catalog
		pr.With(rbac.Require("test:view")).
			Get("/tests", api.ListTestsHandler(store))
		pr.With(rbac.Require("test:view")).
			Get("/tests/{testID}", api.GetTestHandler(store))

		// Student flow
		pr.With(rbac.Require("submission:create")).
			Post("/submissions", api.CreateSubmissionHandler(store, evlog))
		pr.With(rbac.RequireAny("submission:view-own", "submission:view-all")).
			Get("/submissions/user/{userID}", api.ListUserSubmissionsHandler(store))

		pr.With(rbac.Require("history:view")).
			Get("/history", api.GetHistoryHandler(store))
		pr.With(rbac.Require("history:record")).
			Post("/history", api.AddHistoryHandler(store))

		pr.With(rbac.Require("bookmark:manage")).
			Post("/bookmarks", api.AddBookmarkHandler(store))
		pr.With(rbac.Require("bookmark:manage")).
			Delete("/bookmarks/{bookmarkID}", api.RemoveBookmarkHandler(store))

		pr.With(rbac.Require("test:view")).
			Get("/assets/*", api.GetAssetHandler(bs))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
