package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/bureauplan/bureauplan-api/api/swagger"
	"github.com/bureauplan/bureauplan-api/internal/handler"
	internalmiddleware "github.com/bureauplan/bureauplan-api/internal/middleware"
	"github.com/bureauplan/bureauplan-api/internal/repository"
	"github.com/bureauplan/bureauplan-api/internal/service"
	"github.com/bureauplan/bureauplan-api/pkg/cache"
	"github.com/bureauplan/bureauplan-api/pkg/config"
	"github.com/bureauplan/bureauplan-api/pkg/database"
	"github.com/bureauplan/bureauplan-api/pkg/llm"
	"github.com/bureauplan/bureauplan-api/pkg/logger"
	corsmiddleware "github.com/bureauplan/bureauplan-api/pkg/middleware/cors"
	reqidmiddleware "github.com/bureauplan/bureauplan-api/pkg/middleware/requestid"
)

// @title BureauPlan API
// @version 0.1.0
// @description AI assisted shift scheduling for multi-bureau newsrooms
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	var previews service.PreviewStore
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, previews held in memory", "error", err)
		previews = service.NewMemoryPreviewStore(cfg.Planner.PreviewTTL)
	} else {
		defer redisClient.Close()
		previews = service.NewRedisPreviewStore(redisClient, cfg.Planner.PreviewTTL, logr)
	}

	bureauRepo := repository.NewBureauRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	shiftRepo := repository.NewShiftRepository(db)
	userRepo := repository.NewUserRepository(db)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, cfg.JWT, logr)
	exportSvc := service.NewExportService()

	modelClient := llm.NewGeminiClient(llm.GeminiConfig{
		APIKey:       cfg.Model.APIKey,
		BaseURL:      cfg.Model.BaseURL,
		Model:        cfg.Model.Model,
		Timeout:      cfg.Model.Timeout,
		TokenCeiling: cfg.Model.TokenCeiling,
	})

	saveSvc := service.NewScheduleSaveService(db, bureauRepo, employeeRepo, shiftRepo, logr).
		WithMetrics(metricsSvc)
	generationSvc := service.NewGenerationService(
		modelClient,
		service.NewPromptBuilder(cfg.Planner.Bureaus),
		service.NewScheduleParser(service.NewFailureLog(), logr),
		service.NewScheduleValidator(cfg.Planner.Bureaus),
		previews,
		employeeRepo,
		shiftRepo,
		saveSvc,
		cfg.Planner,
		logr,
	).WithMetrics(metricsSvc)

	authHandler := handler.NewAuthHandler(authSvc)
	scheduleHandler := handler.NewScheduleHandler(generationSvc, previews, exportSvc)
	shiftHandler := handler.NewShiftHandler(shiftRepo)
	rosterHandler := handler.NewRosterHandler(employeeRepo, bureauRepo)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(internalmiddleware.JWT(authSvc))
	protected.POST("/schedules/generate", scheduleHandler.Generate)
	protected.POST("/schedules/:previewId/save", scheduleHandler.Save)
	protected.GET("/schedules/:previewId/export", scheduleHandler.Export)
	protected.GET("/schedules/failures", scheduleHandler.Failures)
	protected.GET("/shifts", shiftHandler.List)
	protected.GET("/employees", rosterHandler.Employees)
	protected.GET("/bureaus", rosterHandler.Bureaus)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Info("server starting",
		zap.String("addr", addr),
		zap.String("env", cfg.Env),
		zap.Strings("bureaus", cfg.Planner.Bureaus),
		zap.String("model", cfg.Model.Model),
	)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
