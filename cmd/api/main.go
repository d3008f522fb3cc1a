package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Mart1n-S/WatchListy-sub001/internal/auth"
	"github.com/Mart1n-S/WatchListy-sub001/internal/handlers"
	httpserver "github.com/Mart1n-S/WatchListy-sub001/internal/http"
	"github.com/Mart1n-S/WatchListy-sub001/internal/store"
	"github.com/Mart1n-S/WatchListy-sub001/internal/tmdb"
)

type Config struct {
	Port          string        `envconfig:"PORT" default:"8080"`
	DatabaseURL   string        `envconfig:"DATABASE_URL" required:"true"`
	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"720h"`
	CookieSecure  bool          `envconfig:"COOKIE_SECURE" default:"true"`
	TMDBAPIKey    string        `envconfig:"TMDB_API_KEY" required:"true"`
	TMDBBaseURL   string        `envconfig:"TMDB_BASE_URL" default:"https://api.themoviedb.org/3"`
	SeedDemo      bool          `envconfig:"SEED_DEMO" default:"false"`
	LogDev        bool          `envconfig:"LOG_DEV" default:"false"`
}

func mustLoadEnv() Config {
	_ = godotenv.Load()
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		panic(err)
	}
	return c
}

func mustLogger(dev bool) *zap.Logger {
	var (
		log *zap.Logger
		err error
	)
	if dev {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	return log
}

func mustDB(dsn string, log *zap.Logger) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("db connect error", zap.Error(err))
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	sqlDB, _ := db.DB()
	if err := sqlDB.PingContext(ctx); err != nil {
		log.Fatal("db ping error", zap.Error(err))
	}
	return db
}

func main() {
	cfg := mustLoadEnv()
	log := mustLogger(cfg.LogDev)
	defer func() { _ = log.Sync() }()

	db := mustDB(cfg.DatabaseURL, log)
	st := store.NewGorm(db)
	if err := st.Migrate(); err != nil {
		log.Fatal("migrate error", zap.Error(err))
	}

	hasher := auth.BcryptHasher{}
	if cfg.SeedDemo {
		hash, err := hasher.Hash("password123")
		if err != nil {
			log.Fatal("seed hash error", zap.Error(err))
		}
		if err := store.SeedDemo(context.Background(), st, hash); err != nil {
			log.Fatal("seed error", zap.Error(err))
		}
	}

	sessions := auth.NewSessions(cfg.SessionSecret, "watchlisty", cfg.SessionTTL)
	meta := tmdb.New(cfg.TMDBAPIKey, cfg.TMDBBaseURL)

	authHandler := handlers.NewAuthHandler(st, sessions, hasher, log)
	authHandler.CookieSecure = cfg.CookieSecure
	listsHandler := handlers.NewListsHandler(st, meta, log)
	reviewsHandler := handlers.NewReviewsHandler(st, log)
	usersHandler := handlers.NewUsersHandler(st, log)
	catalogHandler := handlers.NewCatalogHandler(meta, log)

	mounter := func(r chi.Router) {
		// Public routes; an identity is attached when a session is present
		// but none is required.
		r.Group(func(r chi.Router) {
			r.Use(sessions.Optional)
			r.Route("/auth", authHandler.Routes)
			r.Get("/genres", catalogHandler.Genres)
			r.Get("/search", catalogHandler.Search)
			r.Get("/media/{mediaId}/reviews", reviewsHandler.ForItem)
		})
		// Authed routes
		r.Group(func(r chi.Router) {
			r.Use(sessions.Middleware)
			r.Get("/me", usersHandler.Me)
			r.Route("/lists", listsHandler.Routes)
			r.Route("/reviews", reviewsHandler.Routes)
			r.Route("/users", usersHandler.Routes)
		})
	}

	srv := httpserver.NewServer(log, mounter)

	addr := ":" + cfg.Port
	server := &http.Server{Addr: addr, Handler: srv.Router, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		log.Info("listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("graceful shutdown failed", zap.Error(err))
	}
}
