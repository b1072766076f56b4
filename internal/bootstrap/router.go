package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	httpapi "github.com/penguin-works/kouji-backend/internal/api/http"
	"github.com/penguin-works/kouji-backend/internal/api/http/middleware"
	"github.com/penguin-works/kouji-backend/internal/fsys"
	koujihttp "github.com/penguin-works/kouji-backend/internal/kouji/http"
	"github.com/penguin-works/kouji-backend/internal/timeparse"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	CORSOrigins []string
	RateRPS     float64
	RateBurst   int
	App         *App
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()
	r.Use(corsMiddleware(dep.CORSOrigins))
	r.Use(middleware.RequestIDMiddleware())

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.App.StoreKind, dep.App.Store)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api")

	fsys.NewHandler(dep.App.FS).RegisterRoutes(api)
	timeparse.NewHandler(dep.App.Kouji.Location()).RegisterRoutes(api)
	koujihttp.New(dep.App.Kouji).RegisterRoutes(api, middleware.RateLimit(dep.RateRPS, dep.RateBurst))

	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
