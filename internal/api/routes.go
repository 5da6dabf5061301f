package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mehrbod2002/coinboard/docs"
	"github.com/mehrbod2002/coinboard/internal/metrics"
	"github.com/mehrbod2002/coinboard/internal/middleware"
	"github.com/mehrbod2002/coinboard/internal/service"
	"github.com/mehrbod2002/coinboard/internal/ws"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Dependencies struct {
	AssetService service.AssetService
	LogService   service.LogService
	WSHandler    *ws.WebSocketHandler
	Metrics      *metrics.Prometheus
	JWTSecret    string
}

func SetupRoutes(r *gin.Engine, deps Dependencies) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
	}))

	assetHandler := NewAssetHandler(deps.AssetService, deps.LogService)
	logHandler := NewLogHandler(deps.LogService)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/docs/swagger.json")))
	r.GET("/docs/swagger.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", docs.SwaggerJSON)
	})

	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	if deps.WSHandler != nil {
		r.GET("/ws", deps.WSHandler.HandleConnection)
	}

	v1 := r.Group("/api")
	{
		v1.GET("/assets", assetHandler.ListAssets)
		v1.GET("/assets/:id", assetHandler.GetAsset)
		v1.GET("/history/:id", assetHandler.GetHistory)

		admin := v1.Group("/admin").Use(middleware.AdminAuthMiddleware(deps.JWTSecret))
		{
			admin.GET("/logs", logHandler.GetAllLogs)
		}
	}
}
