package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"studybot_backend/internal/config"
	"studybot_backend/internal/controller"
	"studybot_backend/internal/middleware"
	"studybot_backend/internal/repository"
	"studybot_backend/internal/service"
	"studybot_backend/pkg/logger"
	"studybot_backend/pkg/monitoring"
	"studybot_backend/pkg/notifier"
	"studybot_backend/pkg/security"
	"studybot_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	services *services
	cron     *cron.Cron
}

type repositories struct {
	catalog *repository.CatalogRepository
	profile *repository.ProfileRepository
}

type services struct {
	catalog *service.CatalogService
	profile *service.ProfileService
	quiz    *service.QuizService
	digest  *service.DigestService
	backup  *service.BackupService
}

type controllers struct {
	catalog *controller.CatalogController
	profile *controller.ProfileController
	quiz    *controller.QuizController
	admin   *controller.AdminController
	health  *controller.HealthController
}

func (a *App) initRepositories(cfg *config.Config) (*repositories, error) {
	catalog, err := repository.NewCatalogRepository(cfg.Data.CatalogPath(), cfg.Data.Seed, logger.Log)
	if err != nil {
		return nil, err
	}
	profile, err := repository.NewProfileRepository(cfg.Data.ProfilesPath(), logger.Log)
	if err != nil {
		return nil, err
	}
	return &repositories{catalog: catalog, profile: profile}, nil
}

func (a *App) initServices(repos *repositories, cfg *config.Config, n notifier.Notifier) (*services, error) {
	s := &services{}
	s.catalog = service.NewCatalogService(repos.catalog, repos.profile)
	s.profile = service.NewProfileService(repos.profile, repos.catalog, n, logger.Log)
	if path := cfg.Data.QuizPath(); path != "" {
		s.quiz = service.NewQuizServiceWithBankFile(repos.profile, path, logger.Log)
	} else {
		s.quiz = service.NewQuizService(repos.profile)
	}
	s.digest = service.NewDigestService(repos.catalog, repos.profile, n, logger.Log)

	backup, err := service.NewBackupService(&cfg.Backup, repos.catalog, repos.profile, logger.Log)
	if err != nil {
		return nil, err
	}
	s.backup = backup
	return s, nil
}

func (a *App) initControllers(s *services, repos *repositories) *controllers {
	return &controllers{
		catalog: controller.NewCatalogController(s.catalog),
		profile: controller.NewProfileController(s.profile),
		quiz:    controller.NewQuizController(s.quiz),
		admin:   controller.NewAdminController(s.catalog, s.profile, s.digest, s.backup),
		health:  controller.NewHealthController(repos.catalog),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(middleware.RequestLogger(logger.Log))
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	if cfg.RateLimit.MaxRequests > 0 {
		window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
		if window <= 0 {
			window = time.Minute
		}
		router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, window))
	}

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startScheduler wires the daily digest to its cron trigger.
func (a *App) startScheduler(s *services, cfg *config.Config) {
	if !cfg.Digest.Enabled {
		return
	}
	c := cron.New()
	_, err := c.AddFunc(cfg.Digest.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := s.digest.RunOnce(ctx); err != nil {
			logger.Log.Error("daily digest run failed", zap.Error(err))
		}
	})
	if err != nil {
		logger.Log.Error("invalid digest schedule, digest disabled",
			zap.String("schedule", cfg.Digest.Schedule), zap.Error(err))
		return
	}
	c.Start()
	a.cron = c
	logger.Log.Info("daily digest scheduled", zap.String("schedule", cfg.Digest.Schedule))
}

func NewApp(cfg *config.Config) (*App, error) {
	logger.InitLogger(cfg.Server.Mode)
	logger.Log.Info("Logger initialized successfully")

	app := &App{Config: cfg}

	repos, err := app.initRepositories(cfg)
	if err != nil {
		return nil, err
	}

	n := notifier.NewLogNotifier(logger.Log)
	services, err := app.initServices(repos, cfg, n)
	if err != nil {
		return nil, err
	}
	app.services = services
	controllers := app.initControllers(services, repos)

	monitoring.Init()

	if cfg.Server.Mode != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("studybot", cfg.Tracing.CollectorEndpoint); err != nil {
			return nil, err
		}
	}

	app.registerRoutes(router, controllers)
	app.startScheduler(services, cfg)

	return app, nil
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	if a.cron != nil {
		<-a.cron.Stop().Done()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
