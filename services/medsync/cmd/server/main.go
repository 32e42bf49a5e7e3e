package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medsync/packages/email"
	"medsync/packages/logger"
	"medsync/services/medsync/config"
	"medsync/services/medsync/internal/database"
	grpcserver "medsync/services/medsync/internal/grpc"
	"medsync/services/medsync/internal/health"
	"medsync/services/medsync/internal/model"
	"medsync/services/medsync/internal/route"
	"medsync/services/medsync/internal/session"
	"medsync/services/medsync/internal/storage"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 30 * time.Second

func main() {
	config.MustLoad("config.yaml")
	conf := config.Conf

	log := logger.Setup(conf.Log)
	gin.SetMode(conf.Server.Mode)

	if err := database.InitDatabase(); err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}
	defer database.Close()

	if err := model.InitTable(database.PostgresDB); err != nil {
		log.WithError(err).Fatal("Failed to migrate database")
	}

	checker := health.NewChecker().Add("database", health.SQL(database.PostgresDB))

	var sessions session.Store
	switch conf.Session.Store {
	case "memory":
		log.Warn("sessions are kept in memory and lost on restart")
		sessions = session.NewMemoryStore()
	default:
		sessions = session.NewRedisStore(database.RedisDB.Client)
		checker.Add("redis", health.Redis(database.RedisDB.Client))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pictures, err := storage.New(ctx, conf.Storage)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize picture storage")
	}

	mailer := email.NewMailer(email.NewClient(&conf.Smtp), conf.Smtp.From, conf.Mail.AppName)

	router := route.SetupRouter(route.Deps{
		Config:   conf,
		DB:       database.PostgresDB,
		Sessions: sessions,
		Pictures: pictures,
		Mailer:   mailer,
		Health:   checker,
		Logger:   log,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", conf.Server.Host, conf.Server.Port),
		Handler:      router,
		ReadTimeout:  conf.Server.ReadTimeout,
		WriteTimeout: conf.Server.WriteTimeout,
	}

	grpcServer, err := grpcserver.NewServer(conf.GRPC.Port, checker)
	if err != nil {
		log.WithError(err).Fatal("Failed to start gRPC server")
	}
	go grpcServer.Monitor(ctx, 15*time.Second)

	go func() {
		log.WithField("address", grpcServer.GetAddr()).Info("gRPC health server listening")
		if err := grpcServer.Start(); err != nil {
			log.WithError(err).Error("gRPC server stopped")
		}
	}()

	go func() {
		log.WithField("address", server.Addr).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("HTTP server failed")
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	grpcServer.Stop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server forced to shut down")
	}
	log.Info("Stopped")
}
