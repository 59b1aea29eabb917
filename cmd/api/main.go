package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	appcontext "github.com/SeakMengs/AutoTermo/internal/app_context"
	"github.com/SeakMengs/AutoTermo/internal/auth"
	"github.com/SeakMengs/AutoTermo/internal/config"
	"github.com/SeakMengs/AutoTermo/internal/controller"
	"github.com/SeakMengs/AutoTermo/internal/database"
	"github.com/SeakMengs/AutoTermo/internal/env"
	filestorage "github.com/SeakMengs/AutoTermo/internal/file_storage"
	"github.com/SeakMengs/AutoTermo/internal/mailer"
	"github.com/SeakMengs/AutoTermo/internal/middleware"
	"github.com/SeakMengs/AutoTermo/internal/queue"
	ratelimiter "github.com/SeakMengs/AutoTermo/internal/rate_limiter"
	"github.com/SeakMengs/AutoTermo/internal/repository"
	"github.com/SeakMengs/AutoTermo/internal/route"
	"github.com/SeakMengs/AutoTermo/internal/service"
	"github.com/SeakMengs/AutoTermo/internal/util"
	"github.com/SeakMengs/AutoTermo/pkg/termo"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// this function run before main
func init() {
	env.LoadEnv(".env")
}

const SHUTDOWN_TIMEOUT = 30 * time.Second

func main() {
	cfg := config.GetConfig()

	logger := util.NewLogger(cfg.ENV, "api")
	defer logger.Sync()

	db, err := database.ConnectReturnGormDB(cfg.DB)
	if err != nil {
		logger.Panic(err)
	}

	sqlDb, err := db.DB()
	if err != nil {
		logger.Panic(err)
	}
	defer sqlDb.Close()
	logger.Info("Database connected")

	storage, err := filestorage.NewDocumentStore(context.Background(), &cfg, logger)
	if err != nil {
		logger.Error("Error connecting to document storage")
		logger.Panic(err)
	}
	logger.Infof("Document storage driver: %s", cfg.Storage.DRIVER)

	if err := util.RegisterValidators(); err != nil {
		logger.Panic(err)
	}

	rateLimiter := ratelimiter.NewRateLimiter(cfg.RateLimiter, logger)
	mail, err := mailer.NewClient(&cfg, logger)
	if err != nil {
		logger.Panic(err)
	}
	jwtService := auth.NewJwt(cfg.Auth, logger)
	repo := repository.NewRepository(db, logger)

	frontendURL := strings.TrimRight(cfg.Termo.FrontendURL, "/")

	var notifier service.Notifier = service.NewMailNotifier(mail, frontendURL, logger)
	if cfg.Termo.NotifyDriver == config.NotifyDriverQueue {
		rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQ.GetConnectionString())
		if err != nil {
			logger.Panic("Error connecting to RabbitMQ: ", err)
		}
		defer func() {
			if err := rabbitMQ.Close(); err != nil {
				logger.Errorf("Failed to close RabbitMQ connection: %v", err)
			}
		}()
		logger.Info("RabbitMQ connected, reminders are queued")

		notifier = queue.NewQueueNotifier(rabbitMQ, logger)
	}

	termos := service.NewTermoService(service.TermoServiceOptions{
		Logger:     logger,
		Vacancies:  repo.Vacancy,
		Projects:   repo.Project,
		Signatures: repo.TermSignature,
		Documents:  repo.TermDocument,
		Storage:    storage,
		Renderer: termo.NewRenderer(termo.RenderOptions{
			InstitutionName: cfg.Termo.InstitutionName,
			QrURLPattern:    frontendURL + "/termos/verificar/%s",
		}),
		Overlayer:  termo.NewOverlayer(),
		Notifier:   notifier,
		PresignTTL: cfg.Termo.PresignTTL,
	})

	app := appcontext.Application{
		Config:     &cfg,
		Logger:     logger,
		Repository: repo,
		Termos:     termos,
	}

	if cfg.IsProduction() {
		logger.Info("Running in production mode")
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           newRouter(&app, middleware.NewMiddleware(jwtService, rateLimiter, logger)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Infof("Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Panicf("Error running server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down api server")

	// Let in-flight sign requests finish their storage writes
	shutdownCtx, cancel := context.WithTimeout(context.Background(), SHUTDOWN_TIMEOUT)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Forced shutdown: %v", err)
	}
}

func newRouter(app *appcontext.Application, mw *middleware.Middleware) *gin.Engine {
	r := gin.Default()

	// docs: https://github.com/gin-contrib/cors?tab=readme-ov-file#using-defaultconfig-as-start-point
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Requested-With", "Accept"}
	corsConfig.ExposeHeaders = []string{"Retry-After"}
	r.Use(cors.New(corsConfig))
	r.Use(mw.RateLimiterMiddleware)

	c := controller.NewController(app)
	r.GET("/", c.Index.Index)
	r.GET("/healthz", c.Index.Health)
	route.RegisterV1(r.Group("/api"), c, mw)

	return r
}
