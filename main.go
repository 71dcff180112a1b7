package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pryme0/vyb-q-admin/configs"
	"github.com/pryme0/vyb-q-admin/internal/auth"
	"github.com/pryme0/vyb-q-admin/internal/db"
	"github.com/pryme0/vyb-q-admin/internal/events"
	"github.com/pryme0/vyb-q-admin/internal/handlers"
	"github.com/pryme0/vyb-q-admin/internal/logger"
	"github.com/pryme0/vyb-q-admin/internal/metrics"
	"github.com/pryme0/vyb-q-admin/internal/notifier"
	"github.com/pryme0/vyb-q-admin/internal/routes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	if err := logger.Init(cfg.Log.Level); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.L()

	db.Init(cfg.Database)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := auth.Init(ctx, cfg.Auth); err != nil {
		log.Fatal("failed to initialise OIDC", zap.Error(err))
	}
	auth.InitStaff(cfg.Auth.StaffJWTSecret, cfg.Auth.StaffTokenTTL)
	if err := auth.EnsureAdmin(db.DB, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		log.Fatal("failed to bootstrap admin", zap.Error(err))
	}

	// ── event fan-out ──
	hub := events.NewHub()
	defer hub.Close()

	publishers := events.Multi{hub}
	if cfg.RabbitMQ.URL != "" {
		mq, err := events.DialAMQP(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Fatal("failed to connect to RabbitMQ", zap.Error(err))
		}
		defer mq.Close()
		publishers = append(publishers, mq)
		log.Info("publishing events to RabbitMQ", zap.String("exchange", cfg.RabbitMQ.Exchange))
	}
	handlers.SetPublisher(publishers)
	handlers.SetNotifier(notifier.NewDefault(cfg.Email, cfg.AfricaTalking))
	handlers.SetUploadDir(cfg.HTTP.UploadDir)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), logger.Middleware(), metrics.Middleware())

	// ── session store ──
	store := cookie.NewStore([]byte(cfg.HTTP.SessionSecret))
	r.Use(sessions.Sessions(auth.SessionName, store))

	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	routes.Register(r, routes.Options{Hub: hub, UploadDir: cfg.HTTP.UploadDir})

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("http server listening", zap.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
