package bootstrap

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	httpapi "github.com/realestate-cinematic/cinematic-backend/internal/api/http"
	"github.com/realestate-cinematic/cinematic-backend/internal/api/http/middleware"
	"github.com/realestate-cinematic/cinematic-backend/internal/metrics"
	projecthttp "github.com/realestate-cinematic/cinematic-backend/internal/projects/http"
	"github.com/realestate-cinematic/cinematic-backend/internal/projects/repository"
	"github.com/realestate-cinematic/cinematic-backend/internal/projects/service"
	"github.com/realestate-cinematic/cinematic-backend/internal/storage/docstore"
	"github.com/realestate-cinematic/cinematic-backend/internal/uploads"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	Store          docstore.Store
	DatabaseURLSet bool
	PublicBaseURL  string
	RenderRate     float64
	RenderBurst    int
	CORSOrigins    []string
	Metrics        *metrics.Metrics
	Logger         *zap.Logger
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	logger := dep.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog(logger))
	r.Use(middleware.Metrics(dep.Metrics))
	r.Use(cors.New(corsConfig(dep.CORSOrigins)))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Store)
	healthHandler.RegisterRoutes(r)
	httpapi.NewDiagnosticsHandler(dep.Store, dep.DatabaseURLSet).RegisterRoutes(r)
	r.GET("/schema", httpapi.SchemaHandler)
	r.GET("/metrics", gin.WrapH(dep.Metrics.Handler()))

	api := r.Group("/api")

	uploads.NewHandler(uploads.NewService(dep.PublicBaseURL)).Register(api)

	projectSvc := service.NewProjectService(repository.NewProjectRepository(dep.Store), service.Options{
		PublicBaseURL: dep.PublicBaseURL,
		Logger:        logger,
		Metrics:       dep.Metrics,
	})

	projectsGroup := api.Group("")
	projectsGroup.Use(middleware.StoreRequired(dep.Store != nil))
	projecthttp.New(projectSvc).Register(projectsGroup,
		middleware.RateLimit(rate.Limit(dep.RenderRate), dep.RenderBurst),
	)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, middleware.RequestIDHeader)
	cfg.ExposeHeaders = []string{middleware.RequestIDHeader}

	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
