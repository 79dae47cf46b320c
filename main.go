package main

import (
	"context"
	"log"
	"strconv"

	"autoapply/config"
	"autoapply/controllers"
	"autoapply/database"
	"autoapply/middleware"
	"autoapply/models"
	"autoapply/services"
	"autoapply/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.GetAppConfig()

	db, err := database.Connect(cfg.Database.Host, strconv.Itoa(cfg.Database.Port),
		cfg.Database.User, cfg.Database.Password, cfg.Database.DBName, cfg.Database.SSLMode)
	if err != nil {
		log.Fatalf("❌ Database connection failed: %v", err)
	}
	defer db.Close()

	if err := database.EnsureSchema(db); err != nil {
		log.Fatalf("❌ Schema provisioning failed: %v", err)
	}
	log.Println("✅ Database connected")

	attempts := models.NewAttemptModel(db)
	mappings := models.NewFieldMappingModel(db)

	s3Service, err := services.NewS3Service()
	if err != nil {
		log.Printf("⚠️ S3 not configured, uploads and screenshots disabled: %v", err)
		s3Service = nil
	}

	var vision services.VisionAnalyzer
	if cfg.Engine.GeminiAPIKey != "" {
		visionService, err := services.NewVisionFieldService(cfg.Engine.GeminiAPIKey, cfg.Engine.GeminiModel)
		if err != nil {
			log.Printf("⚠️ Vision service unavailable, tier 3 detection disabled: %v", err)
		} else {
			vision = visionService
		}
	}
	detection := services.NewFieldDetectionService(mappings, vision)

	var provider services.ProxyProvider
	if cfg.Engine.ProxyProviderURL != "" {
		provider = services.NewProxyProviderClient(cfg.Engine.ProxyProviderURL, cfg.Engine.ProxyProviderAPIKey)
	}
	proxies := services.NewProxyManager(provider, cfg.Engine.ProxyFailureThreshold,
		cfg.Engine.ProxyMaxPoolSize, cfg.Engine.ProxyCountry)
	proxies.Bootstrap(context.Background())

	engine, err := services.NewBrowserAutomationService(cfg.Engine.Headless, cfg.Engine.NavigationTimeout, services.EngineDeps{
		Proxies:     proxies,
		Detection:   detection,
		Checker:     services.NewSubmissionCheckerService(cfg.Engine.SettleDelay),
		Screenshots: services.NewScreenshotService(s3Service),
		Cache:       mappings,
		Fillers: services.FillerDeps{
			Questions: detection,
			Resumes:   services.NewResumeUploader(s3Service),
			Letters:   services.NewCoverLetterWriter(),
		},
		Logger: utils.GlobalLogger,
	})
	if err != nil {
		log.Fatalf("❌ Browser engine startup failed: %v", err)
	}
	defer engine.Close()

	ledger := services.NewLedgerClient(cfg.Engine.LedgerURL)
	notifier := services.NewNotificationClient(cfg.Engine.NotificationURL)

	retryCtx, cancelRetry := context.WithCancel(context.Background())
	defer cancelRetry()
	retry := services.NewRetryProcessor(attempts, engine, ledger,
		cfg.Engine.RetryCeiling, cfg.Engine.SweepBatchSize,
		cfg.Engine.RetryBaseDelay, cfg.Engine.RetryMaxDelay)
	go retry.Run(retryCtx, cfg.Engine.SweepInterval)
	log.Printf("🔁 Retry processor sweeping every %s", cfg.Engine.SweepInterval)

	applyController := controllers.NewApplyController(attempts, engine, ledger, notifier,
		cfg.Engine.RetryBaseDelay, cfg.Engine.RetryMaxDelay)

	r := gin.Default()
	r.Use(cors.Default())
	r.Use(middleware.MaxRequestSize(10 << 20))
	r.Use(middleware.SanitizeInput())

	limiters := middleware.CreateRateLimiters()

	api := r.Group("/api", middleware.AuthMiddleware(cfg.JWTSecret))
	applications := api.Group("/applications")
	applications.POST("/apply", limiters["apply"].Limit(), middleware.ValidateJSON(), applyController.HandleApply)
	applications.POST("/apply-batch", limiters["batch"].Limit(), middleware.ValidateJSON(), applyController.HandleBatchApply)
	applications.GET("/:id", limiters["general"].Limit(), applyController.HandleGetAttempt)

	log.Printf("🚀 Listening on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Server exited: %v", err)
	}
}
