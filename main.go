package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "carrental/internal/config"
	intdb "carrental/internal/db"
	router "carrental/internal/http"
	"carrental/internal/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	env, err := intconfig.LoadEnv()
	if err != nil {
		utils.Log.WithError(err).Fatal("failed to load config")
	}
	utils.ConfigureLogger(env.LogLevel)
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelStart()

	db, err := intconfig.OpenDB(startCtx, env)
	if err != nil {
		utils.Log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	if env.AutoMigrate {
		created, err := intdb.Migrate(startCtx, db)
		if err != nil {
			utils.Log.WithError(err).Fatal("schema migration failed")
		}
		if len(created) > 0 {
			utils.Log.WithField("tables", created).Info("created missing tables")
		}
	}

	rdb, err := intconfig.OpenRedis(startCtx, env)
	if err != nil {
		utils.Log.WithError(err).Warn("redis unavailable, idempotency keys disabled")
		rdb = nil
	}
	if rdb != nil {
		defer rdb.Close()
	}

	r := router.NewRouter(env, router.Deps{DB: db, Redis: rdb})

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		utils.Log.WithField("addr", env.AppAddr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Log.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	utils.Log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		utils.Log.WithError(err).Fatal("server shutdown failed")
	}

	utils.Log.Info("server stopped")
}
