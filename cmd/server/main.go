// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/placement-backend/internal/app"
	"github.com/javajoker/placement-backend/internal/config"
	"github.com/javajoker/placement-backend/internal/database"
	"github.com/javajoker/placement-backend/internal/i18n"
	"github.com/javajoker/placement-backend/internal/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatal("Failed to load configuration: ", err)
	}
	app.SetupLogging(cfg.Logging)

	// Open the record store
	st, err := app.OpenStore(cfg, true)
	if err != nil {
		logrus.Fatal("Failed to open record store: ", err)
	}
	defer st.Close()

	if cfg.SeedFile != "" {
		seed, err := database.LoadSeedFile(cfg.SeedFile)
		if err != nil {
			logrus.Fatal("Failed to load seed file: ", err)
		}
		if err := database.SeedInitialData(context.Background(), st, seed); err != nil {
			logrus.Fatal("Failed to seed data: ", err)
		}
	}

	// Initialize i18n
	if err := i18n.Initialize(cfg.I18n.DefaultLocale); err != nil {
		logrus.Fatal("Failed to initialize i18n: ", err)
	}

	redisClient, err := app.NewRedisClient(context.Background(), cfg.Redis)
	if err != nil {
		logrus.Fatal(err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r, err := router.Initialize(router.Dependencies{Store: st, Redis: redisClient}, cfg)
	if err != nil {
		logrus.Fatal("Failed to initialize router: ", err)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		logrus.WithFields(logrus.Fields{
			"port":  cfg.Server.Port,
			"store": cfg.Store.Driver,
		}).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatal("Failed to start server: ", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Error("Server forced to shutdown: ", err)
	}

	logrus.Info("Server exited")
}
