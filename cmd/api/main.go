package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/johnquangdev/script-workspace/pkg/validator"

	"github.com/johnquangdev/script-workspace/internal/adapter/handler"
	"github.com/johnquangdev/script-workspace/internal/adapter/repository"
	"github.com/johnquangdev/script-workspace/internal/infrastructure/external/studio"
	httpmw "github.com/johnquangdev/script-workspace/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/script-workspace/internal/infrastructure/realtime"
	"github.com/johnquangdev/script-workspace/internal/infrastructure/storage"
	"github.com/johnquangdev/script-workspace/internal/usecase/workspace"
	pkgai "github.com/johnquangdev/script-workspace/pkg/ai"
	"github.com/johnquangdev/script-workspace/pkg/config"
	"github.com/johnquangdev/script-workspace/pkg/jwt"
	pkglogger "github.com/johnquangdev/script-workspace/pkg/logger"
)

// @title           Script Workspace API
// @version         1.0
// @description     Turns an uploaded video into a transcript, a chaptered script and synthesized speech

// @contact.name   API Support

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath  /v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := pkglogger.New(cfg.Server.Environment, cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()
	e.HTTPErrorHandler = handler.NewHTTPErrorHandler(logger)

	// Configure Echo
	e.HideBanner = true
	e.HidePort = false

	e.Use(middleware.RequestID())

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "Cookie"},
		ExposeHeaders:    []string{echo.HeaderContentDisposition, echo.HeaderXRequestID},
		AllowCredentials: true,
	}))

	startCtx, cancelStart := context.WithTimeout(context.Background(), time.Minute)
	defer cancelStart()

	logger.Info("initializing snapshot store", zap.String("driver", cfg.Store.Driver))
	repo, err := repository.OpenSnapshotRepository(startCtx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize snapshot store", zap.Error(err))
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Warn("failed to close snapshot store", zap.Error(err))
		}
	}()

	logger.Info("initializing pipeline", zap.String("mode", cfg.Pipeline.Mode))
	pipeline, err := newPipeline(startCtx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize pipeline", zap.Error(err))
	}

	hub := realtime.NewHub(cfg.Server.AllowedOrigins, logger)
	svc := workspace.NewService(repo, pipeline, hub, cfg.Pipeline.SynthesisTimeout, logger)
	svc.Load(startCtx)

	var authMW echo.MiddlewareFunc
	if cfg.AuthEnabled() {
		jwtManager := jwt.NewManager(cfg.Auth.TokenSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
		authMW = httpmw.EchoAuth(jwtManager, logger)
		logger.Info("bearer token authentication enabled", zap.String("issuer", cfg.Auth.Issuer))
	} else {
		logger.Warn("AUTH_TOKEN_SECRET is empty, the API is served without authentication")
	}

	workspaceHandler := handler.NewWorkspaceHandler(svc, hub, cfg.Server.MaxUploadBytes, logger)
	scriptHandler := handler.NewScriptHandler(logger)

	router := handler.NewRouter(cfg, workspaceHandler, scriptHandler, authMW, hub)
	router.Setup(e)

	// Start server
	go func() {
		addr := cfg.GetServerAddr()
		logger.Info("starting server",
			zap.String("addr", addr),
			zap.String("environment", cfg.Server.Environment),
			zap.String("health", fmt.Sprintf("http://%s/health", addr)),
		)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	hub.Close()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	if err := svc.Wait(ctx); err != nil {
		logger.Warn("synthesis jobs still running at shutdown", zap.Error(err))
	}

	logger.Info("server stopped gracefully")
}

// newPipeline builds the remote collaborators selected by PIPELINE_MODE.
func newPipeline(ctx context.Context, cfg *config.Config, logger *zap.Logger) (workspace.Pipeline, error) {
	switch cfg.Pipeline.Mode {
	case config.PipelineModeBackend:
		return pkgai.NewBackendClient(&cfg.Pipeline, logger), nil
	case config.PipelineModeNative:
		store, err := storage.NewMinIOClient(ctx, &cfg.Storage, logger)
		if err != nil {
			return nil, err
		}
		groq := pkgai.NewGroqClient(&cfg.Groq)
		return studio.NewPipeline(
			store,
			pkgai.NewAssemblyAIClient(&cfg.Assembly),
			groq,
			groq,
			cfg.Pipeline.BatchConcurrency,
			logger,
		), nil
	default:
		return nil, fmt.Errorf("unknown pipeline mode %q", cfg.Pipeline.Mode)
	}
}
