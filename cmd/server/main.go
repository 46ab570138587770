package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"surveyeditor/internal/app"
	"surveyeditor/internal/config"
	"surveyeditor/internal/metrics"
	"surveyeditor/internal/service"
	"surveyeditor/internal/transport/rest"
	"surveyeditor/internal/transport/ws"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	stores, err := app.Open(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to open storage:", err)
	}
	defer stores.Close(context.Background())

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	m := metrics.New()

	// Initialize services
	authSvc := service.NewAuthService(cfg.OwnerUsername, cfg.OwnerPassword, cfg.JWTSecret)
	surveySvc := service.NewSurveyService(stores.SurveyRepo, stores.ResponseRepo, stores.OperationLogRepo, stores.Drafts, stores.Results)
	editorSvc := service.NewEditorService(surveySvc, stores.Drafts, m)
	responseSvc := service.NewResponseService(surveySvc, stores.ResponseRepo, stores.Results, m)
	resultsSvc := service.NewResultsService(surveySvc, stores.ResponseRepo, stores.Results)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	surveySvc.SetBroadcaster(wsHub)
	responseSvc.SetBroadcaster(wsHub)

	router := rest.NewRouter(&rest.Container{
		Config:          cfg,
		AuthService:     authSvc,
		SurveyService:   surveySvc,
		EditorService:   editorSvc,
		ResponseService: responseSvc,
		ResultsService:  resultsSvc,
		Metrics:         m,
		WSHub:           wsHub,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s (storage=%s)", cfg.HTTPPort, cfg.Storage)
		log.Printf("Owner auth: username=%s", cfg.OwnerUsername)
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/login")
		log.Println("  POST/GET /v1/surveys")
		log.Println("  GET/PUT/DELETE /v1/surveys/{id}")
		log.Println("  POST/GET/DELETE /v1/surveys/{id}/draft")
		log.Println("  GET  /v1/surveys/{id}/results[.csv]")
		log.Println("  GET  /v1/forms, POST /v1/forms/{id}/responses")
		log.Println("  WS   /v1/ws/surveys/{id}/results")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
