// Package web gin server
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/Laisky/amc-site/internal/web/auth"
	contentCtl "github.com/Laisky/amc-site/internal/web/content/controller"
	"github.com/Laisky/amc-site/internal/web/content/model"
	uploadCtl "github.com/Laisky/amc-site/internal/web/upload/controller"
)

const shutdownTimeout = 10 * time.Second

// errStorageDisabled is served by upload routes when no bucket is configured.
var errStorageDisabled = errors.New("object storage is not configured")

// Options wires the controllers of the server.
type Options struct {
	Content *contentCtl.Content
	Auth    *auth.Controller
	// Upload is nil when object storage is not configured.
	Upload         *uploadCtl.Upload
	AllowedOrigins []string
	// FrontendDist overrides the located frontend build directory.
	FrontendDist string
	// Metrics enables the prometheus endpoint.
	Metrics bool
}

// NewServer builds the gin engine with every route of the site.
func NewServer(logger logSDK.Logger, opt Options) (*gin.Engine, error) {
	if opt.Content == nil || opt.Auth == nil {
		return nil, errors.New("content and auth controllers are required")
	}

	server := gin.New()
	server.Use(
		gin.Recovery(),
		gmw.NewLoggerMiddleware(
			gmw.WithLoggerMwColored(),
			gmw.WithLogger(logger.Named("gin")),
		),
		allowCORS(newOriginMatcher(opt.AllowedOrigins)),
	)

	if opt.Metrics {
		if err := gmw.EnableMetric(server); err != nil {
			return nil, errors.Wrap(err, "enable metric server")
		}
	}

	server.Any("/health", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "hello, world")
	})

	opt.Content.RegisterPublic(server.Group("/api"))

	adminAPI := server.Group("/admin/api")
	opt.Auth.Register(adminAPI)

	guarded := adminAPI.Group("", opt.Auth.Guard())
	opt.Content.RegisterAdmin(guarded)
	if opt.Upload != nil {
		opt.Upload.Register(guarded)
	} else {
		disabled := func(ctx *gin.Context) {
			ctx.JSON(http.StatusServiceUnavailable, model.Fail[any](errStorageDisabled))
		}
		guarded.Any("/uploads", disabled)
		guarded.Any("/uploads/*path", disabled)
	}

	spa := newFrontendSPAHandler(logger.Named("spa"), opt.FrontendDist)
	server.NoRoute(pageRouter(spa, opt.Auth.HasSession))

	return server, nil
}

// RunServer serves handler on addr until ctx is done, then shuts down gracefully.
func RunServer(ctx context.Context, logger logSDK.Logger, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening on http", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "http server exit")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown http server")
	}

	logger.Info("http server stopped")
	return nil
}

func allowCORS(origins originMatcher) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		origin := ctx.Request.Header.Get("Origin")
		allowed := origin != "" && origins.allow(origin)

		if allowed {
			ctx.Header("Access-Control-Allow-Origin", origin)
			ctx.Header("Access-Control-Allow-Credentials", "true")
			ctx.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS, HEAD")
			ctx.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept, Origin, X-Requested-With")
			ctx.Header("Access-Control-Max-Age", "86400")
			ctx.Header("Vary", "Origin")

			if ctx.Request.Method == http.MethodOptions {
				ctx.AbortWithStatus(http.StatusNoContent)
				return
			}
		} else if origin != "" && ctx.Request.Method == http.MethodOptions {
			// preflight from a disallowed origin
			ctx.AbortWithStatus(http.StatusForbidden)
			return
		}

		ctx.Next()
	}
}
