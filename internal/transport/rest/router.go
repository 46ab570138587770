package rest

import (
	"net/http"

	"github.com/gorilla/mux"

	"surveyeditor/internal/config"
	"surveyeditor/internal/metrics"
	"surveyeditor/internal/service"
	"surveyeditor/internal/transport/rest/handler"
	"surveyeditor/internal/transport/rest/middleware"
	"surveyeditor/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	Config          *config.Config
	AuthService     *service.AuthService
	SurveyService   *service.SurveyService
	EditorService   *service.EditorService
	ResponseService *service.ResponseService
	ResultsService  *service.ResultsService
	Metrics         *metrics.Metrics
	WSHub           *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	surveyHandler := handler.NewSurveyHandler(c.SurveyService)
	editorHandler := handler.NewEditorHandler(c.EditorService)
	formHandler := handler.NewFormHandler(c.SurveyService, c.ResponseService)
	resultsHandler := handler.NewResultsHandler(c.ResultsService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.SurveyService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.Config))

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// WebSocket routes (public with token in query param)
	v1.HandleFunc("/ws/surveys/{surveyId}/results", wsHandler.ResultsWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")
	r.Handle("/metrics", c.Metrics.Handler()).Methods("GET")

	// Respondent routes (guests allowed)
	formRoutes := v1.PathPrefix("/forms").Subrouter()
	formRoutes.Use(authMW.OptionalUser)

	formRoutes.HandleFunc("", formHandler.List).Methods("GET", "OPTIONS")
	formRoutes.HandleFunc("/{surveyId}", formHandler.Get).Methods("GET", "OPTIONS")
	formRoutes.HandleFunc("/{surveyId}/responses", formHandler.Submit).Methods("POST", "OPTIONS")

	// Owner routes (require owner auth)
	ownerRoutes := v1.NewRoute().Subrouter()
	ownerRoutes.Use(authMW.RequireOwner)

	ownerRoutes.HandleFunc("/surveys", surveyHandler.Create).Methods("POST", "OPTIONS")
	ownerRoutes.HandleFunc("/surveys", surveyHandler.List).Methods("GET", "OPTIONS")
	ownerRoutes.HandleFunc("/surveys/{surveyId}", surveyHandler.Get).Methods("GET", "OPTIONS")
	ownerRoutes.HandleFunc("/surveys/{surveyId}", surveyHandler.Update).Methods("PUT", "OPTIONS")
	ownerRoutes.HandleFunc("/surveys/{surveyId}", surveyHandler.Delete).Methods("DELETE", "OPTIONS")
	ownerRoutes.HandleFunc("/surveys/{surveyId}/toggle", surveyHandler.Toggle).Methods("POST", "OPTIONS")

	// Editing session
	ownerRoutes.HandleFunc("/surveys/{surveyId}/draft", editorHandler.Open).Methods("POST", "OPTIONS")
	ownerRoutes.HandleFunc("/surveys/{surveyId}/draft", editorHandler.Get).Methods("GET", "OPTIONS")
	ownerRoutes.HandleFunc("/surveys/{surveyId}/draft", editorHandler.Discard).Methods("DELETE", "OPTIONS")
	ownerRoutes.HandleFunc("/surveys/{surveyId}/draft/mutations", editorHandler.Apply).Methods("POST", "OPTIONS")
	ownerRoutes.HandleFunc("/surveys/{surveyId}/draft/triggers/{index}", editorHandler.Triggers).Methods("GET", "OPTIONS")
	ownerRoutes.HandleFunc("/surveys/{surveyId}/draft/preview", editorHandler.Preview).Methods("POST", "OPTIONS")
	ownerRoutes.HandleFunc("/surveys/{surveyId}/draft/commit", editorHandler.Commit).Methods("POST", "OPTIONS")

	// Results (owner only)
	ownerRoutes.HandleFunc("/surveys/{surveyId}/results", resultsHandler.Get).Methods("GET", "OPTIONS")
	ownerRoutes.HandleFunc("/surveys/{surveyId}/results.csv", resultsHandler.ExportCSV).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(cfg *config.Config) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", cfg.CORSAllowedMethods)
			w.Header().Set("Access-Control-Allow-Headers", cfg.CORSAllowedHeaders)

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
