package server

import (
	"log"
	"net/http"

	"task-manager-backend/internal/auth"
	"task-manager-backend/internal/handlers"
	"task-manager-backend/internal/middleware"
	"task-manager-backend/internal/realtime"
	"task-manager-backend/internal/services"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

type Deps struct {
	Auth        *services.AuthService
	Tasks       *services.TaskService
	Tokens      *auth.TokenManager
	Hub         *realtime.Hub
	Providers   map[string]handlers.OAuthProvider
	DB          handlers.Pinger
	FrontendURL string
	CORSOrigins []string
	Logger      *log.Logger
}

func NewRouter(d Deps) http.Handler {
	r := mux.NewRouter()

	authHandler := handlers.NewAuthHandler(d.Auth)
	oauthHandler := handlers.NewOAuthHandler(d.Auth, d.Providers, d.FrontendURL)
	taskHandler := handlers.NewTaskHandler(d.Tasks)
	eventsHandler := handlers.NewEventsHandler(d.Hub, d.Tokens)

	r.HandleFunc("/health", handlers.Health).Methods(http.MethodGet)
	r.HandleFunc("/readyz", handlers.Ready(d.DB)).Methods(http.MethodGet)

	// Public auth endpoints
	r.HandleFunc("/api/auth/signup", authHandler.Signup).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/login", authHandler.Login).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/{provider:google|microsoft}", oauthHandler.Begin).Methods(http.MethodGet)
	r.HandleFunc("/api/auth/{provider:google|microsoft}/callback", oauthHandler.Callback).Methods(http.MethodGet)

	r.HandleFunc("/api/ws/tasks", eventsHandler.TaskEvents).Methods(http.MethodGet)

	requireAuth := middleware.Auth(d.Tokens)

	r.Handle("/api/auth/me", requireAuth(http.HandlerFunc(authHandler.Me))).Methods(http.MethodGet)

	tasks := r.PathPrefix("/api/tasks").Subrouter()
	tasks.Use(requireAuth)
	tasks.HandleFunc("", taskHandler.CreateTask).Methods(http.MethodPost)
	tasks.HandleFunc("", taskHandler.ListTasks).Methods(http.MethodGet)
	tasks.HandleFunc("/{id:[0-9]+}", taskHandler.UpdateTask).Methods(http.MethodPut)
	tasks.HandleFunc("/{id:[0-9]+}", taskHandler.DeleteTask).Methods(http.MethodDelete)
	tasks.HandleFunc("/{id:[0-9]+}/toggle", taskHandler.ToggleTask).Methods(http.MethodPut)

	c := cors.New(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
	})

	return middleware.RequestID(middleware.Logging(d.Logger)(c.Handler(r)))
}
