package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pepsifleet/fleet-maintenance/internal/auth"
	"github.com/pepsifleet/fleet-maintenance/internal/config"
	"github.com/pepsifleet/fleet-maintenance/internal/db"
	"github.com/pepsifleet/fleet-maintenance/internal/fotos"
	"github.com/pepsifleet/fleet-maintenance/internal/notify"
	"github.com/pepsifleet/fleet-maintenance/internal/server"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	cfg.SetupLogging()

	client, err := db.ConnectMongo(cfg.MongoURI)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	log.Info("Connected to MongoDB")

	collections := db.NewCollections(client, cfg.MongoDB)
	authService := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry)

	publisher, err := notify.NewMQTTPublisher(cfg.MQTTBroker, cfg.MQTTClientID)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MQTT broker")
	}
	defer publisher.Close()

	fotoStore, err := fotos.NewDiskStore(cfg.FotosDir, cfg.FotosBaseURL)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize photo store")
	}

	router := server.NewRouter(server.Deps{
		Config:      cfg,
		Collections: collections,
		AuthService: authService,
		Publisher:   publisher,
		FotoStore:   fotoStore,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Info("Shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.WithError(err).Error("Server shutdown error")
		}
		if err := client.Disconnect(ctx); err != nil {
			log.WithError(err).Error("Mongo disconnect error")
		}
	}()

	log.WithField("port", cfg.Port).Info("HTTP server listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("Server error")
	}
}
