package bootstrap

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/krswitch/backend/internal/app/controllers"
	appRepos "github.com/krswitch/backend/internal/app/repositories"
	appRoutes "github.com/krswitch/backend/internal/app/routes"
	appServices "github.com/krswitch/backend/internal/app/services"
	"github.com/krswitch/backend/internal/config"
	"github.com/krswitch/backend/internal/db"
	appMiddleware "github.com/krswitch/backend/internal/middleware"
	"github.com/krswitch/backend/internal/pkg/logger"
	"github.com/krswitch/backend/internal/pkg/websocket"
	"github.com/krswitch/backend/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	BarterService     appServices.BarterService
	CatalogService    appServices.CatalogService
	BarterController  *appControllers.BarterController
	CatalogController *appControllers.CatalogController
	Hub               *websocket.Hub
	WSHandler         *websocket.Handler
	Repos             *appRepos.Repositories
	Logger            zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, applies the schema and
// seeds default data.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbPool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		dbPool.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Applying database schema...")
	if err := database.EnsureSchema(context.Background()); err != nil {
		lgr.Error().Err(err).Msg("Failed to apply database schema")
		dbPool.Close()
		return nil, err
	}

	if err := seed.CreateDefaultData(context.Background(), dbPool, lgr); err != nil {
		// Log the error but don't fail the startup
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return dbPool, nil
}

// BuildDependencies initializes repositories, services, controllers and the
// websocket hub. The hub's Run loop is started here.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)

	deps.Hub = websocket.NewHub(lgr)
	go deps.Hub.Run()
	notifier := websocket.NewHubNotifier(deps.Hub, lgr)

	deps.CatalogService = appServices.NewCatalogService(
		deps.Repos.UserRepository,
		deps.Repos.SectionRepository,
		deps.Repos.EnrollmentRepository,
		lgr,
	)
	deps.BarterService = appServices.NewBarterService(
		deps.Repos.OfferRepository,
		deps.Repos.SectionRepository,
		deps.Repos.EnrollmentRepository,
		deps.Repos.UserRepository,
		notifier,
		lgr,
	)

	deps.BarterController = appControllers.NewBarterController(deps.BarterService)
	deps.CatalogController = appControllers.NewCatalogController(deps.CatalogService)
	deps.WSHandler = websocket.NewHandler(deps.Hub, deps.Repos.UserRepository, lgr)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestID())
	router.Use(appMiddleware.RequestLogger(lgr))
	router.Use(appMiddleware.CORS(cfg.Server.AllowedOrigin))

	appRoutes.SetupRouter(router,
		deps.BarterController,
		deps.CatalogController,
		deps.WSHandler,
	)

	return router
}
