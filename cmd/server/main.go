package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"task-manager-backend/internal/auth"
	"task-manager-backend/internal/config"
	"task-manager-backend/internal/database"
	"task-manager-backend/internal/handlers"
	"task-manager-backend/internal/oauth"
	"task-manager-backend/internal/realtime"
	"task-manager-backend/internal/server"
	"task-manager-backend/internal/services"
	"task-manager-backend/internal/store/memstore"
	"task-manager-backend/internal/store/postgres"
)

func main() {
	cfg := config.Load()

	var (
		users services.UserRepository
		tasks services.TaskRepository
		ready handlers.Pinger
	)

	switch cfg.StorageDriver {
	case "memory":
		mem := memstore.New()
		users, tasks, ready = mem.Users(), mem.Tasks(), mem
		log.Println("using in-memory store; data is lost on restart")
	case "postgres":
		db, err := database.Connect(cfg)
		if err != nil {
			log.Fatalf("cannot connect to database: %v", err)
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = database.RunMigrations(ctx, db)
		cancel()
		if err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
		log.Println("migrations completed")

		users, tasks, ready = postgres.NewUserStore(db), postgres.NewTaskStore(db), db
	default:
		log.Fatalf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	hub := realtime.NewHub()

	providers := map[string]handlers.OAuthProvider{}
	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		providers["google"] = oauth.NewGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.APIURL)
	}
	if cfg.MicrosoftClientID != "" && cfg.MicrosoftClientSecret != "" {
		providers["microsoft"] = oauth.NewMicrosoft(cfg.MicrosoftClientID, cfg.MicrosoftClientSecret, cfg.MicrosoftTenant, cfg.APIURL)
	}

	handler := server.NewRouter(server.Deps{
		Auth:        services.NewAuthService(users, tokens),
		Tasks:       services.NewTaskService(tasks, hub),
		Tokens:      tokens,
		Hub:         hub,
		Providers:   providers,
		DB:          ready,
		FrontendURL: cfg.FrontendURL,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      log.Default(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("server running on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
