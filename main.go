package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"djp.chapter42.de/beeper/internal/backoff"
	"djp.chapter42.de/beeper/internal/config"
	"djp.chapter42.de/beeper/internal/dispatcher"
	"djp.chapter42.de/beeper/internal/handlers"
	"djp.chapter42.de/beeper/internal/logger"
	"djp.chapter42.de/beeper/internal/notifier"
	"djp.chapter42.de/beeper/internal/reconcile"
	"djp.chapter42.de/beeper/internal/store"
	"djp.chapter42.de/beeper/internal/subscribers"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Logger initialisieren
	logger.InitLogger(false)
	defer logger.Log.Sync()

	// Konfiguration laden
	config.InitConfig(logger.Log)

	// Setzt den Debug Mode
	if config.Config.Debug {
		logger.InitLogger(true)
	}

	registry := subscribers.NewRegistry()
	st := store.New(config.Config.PendingFile, registry)
	mailer := notifier.NewMailer(config.Config)
	disp := dispatcher.New(st, mailer, backoff.NoRetry{})

	// SMTP-Erreichbarkeit beim Start prüfen (reine Diagnose)
	go func() {
		if err := mailer.Verify(); err != nil {
			logger.Log.Warn("SMTP-Verifikation fehlgeschlagen:", zap.Error(err))
		} else {
			logger.Log.Info("SMTP-Verbindung in Ordnung")
		}
	}()

	// Persistierte Jobs reparieren und neu einplanen, bevor der Server
	// Anfragen annimmt
	reconcile.Run(st, disp)

	// Gin-Router initialisieren
	if !config.Config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(cors.Default())

	api := router.Group("/api")
	api.POST("/schedule-reminder", handlers.NewScheduleHandler(st, disp))
	api.POST("/pending-save", handlers.NewSaveHandler(st, disp))
	api.GET("/pending-list", handlers.NewListHandler(st))
	api.POST("/pending-remove", handlers.NewRemoveHandler(st, disp))
	api.GET("/pending-events", handlers.NewEventsHandler(registry))
	api.GET("/smtp-info", handlers.NewSMTPInfoHandler(config.Config))
	api.GET("/smtp-verify", handlers.NewSMTPVerifyHandler(mailer))

	// Server starten
	port := config.Config.Port
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: router,
	}

	// Goroutine für das Abfangen von Shutdown-Signalen
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		logger.Log.Info("Server wird heruntergefahren...")

		// Timer stoppen und offene Event-Streams schließen
		disp.StopAll()
		registry.CloseAll()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Log.Fatal("Server-Shutdown fehlgeschlagen:", zap.Error(err))
		}

		logger.Log.Info("Server heruntergefahren.")
	}()

	// Server starten (blockierend)
	logger.Log.Info("Server startet...", zap.String("port", port))
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logger.Log.Fatal("Fehler beim Starten des Servers:", zap.Error(err))
	}
}
