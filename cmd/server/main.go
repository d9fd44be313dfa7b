package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"skillchain/internal/api"
	"skillchain/internal/config"
	"skillchain/internal/model"
	sqlrepo "skillchain/internal/model/sql"
	"skillchain/internal/storage"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.ParseConfig()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	cfg.ConfigureLogging()

	repo, err := sqlrepo.InitRepository(&cfg)
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialise repository")
	}
	if cfg.SeedCategories {
		seedCategories(repo)
	}

	store, err := storage.NewStorage(cfg)
	if err != nil {
		logrus.WithError(err).WithField("storage_type", cfg.StorageType).Fatal("failed to initialise storage")
	}
	handler, err := api.NewHTTPHandler(cfg, repo, store)
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialise http handler")
	}

	server := &http.Server{
		Addr:         net.JoinHostPort("0.0.0.0", cfg.HTTPPort),
		Handler:      newRouter(cfg, handler, store),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logrus.WithFields(logrus.Fields{
			"addr":    server.Addr,
			"env":     cfg.Environment,
			"db_type": cfg.DBType,
			"storage": cfg.StorageType,
		}).Info("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Error("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("graceful shutdown interrupted")
	}
	logrus.Info("server exited")
}

func newRouter(cfg config.Config, handler *api.HTTPHandler, store storage.Storage) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	binding.EnableDecoderDisallowUnknownFields = true

	r := gin.New()
	r.Use(LoggingMiddleware(), CORSMiddleware(cfg), gin.Recovery())
	handler.RegisterRoutes(r)

	if local, ok := store.(storage.LocalBaseDirProvider); ok {
		if mount := handler.StaticMountPath(); mount != "" {
			r.Static(mount, local.LocalBaseDir())
		}
	}
	return r
}

func seedCategories(repo model.Repository) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	created, err := model.SeedDefaultCategories(ctx, repo)
	if err != nil {
		logrus.WithError(err).Warn("failed to seed default categories")
		return
	}
	if created > 0 {
		logrus.WithField("created", created).Info("seeded default categories")
	}
}

// CORSMiddleware echoes allowed origins so browser clients can send bearer tokens.
func CORSMiddleware(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && cfg.AllowsOrigin(origin) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Expose-Headers", "Content-Disposition")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// LoggingMiddleware writes one structured line per request.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logrus.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"duration":  time.Since(start).String(),
			"size":      c.Writer.Size(),
			"client_ip": c.ClientIP(),
		})
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			entry.Error("http_request")
		case status >= http.StatusBadRequest:
			entry.Warn("http_request")
		default:
			entry.Info("http_request")
		}
	}
}
