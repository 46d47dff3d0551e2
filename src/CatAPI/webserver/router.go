package webserver

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/stake-plus/spycat-agency/src/CatAPI/config"
)

func attachRoutes(r *gin.Engine, cfg config.Config, deps Deps) {
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	if cfg.RateLimit > 0 {
		r.Use(RateLimitMiddleware(NewRateLimiter(cfg.RateLimit, time.Minute)))
	}

	r.GET("/", welcome(cfg.AppName))
	r.GET("/healthz", health(deps.DB, deps.Redis))

	// Reads stay public; writes need a bearer token once JWT_SECRET is set.
	var guard []gin.HandlerFunc
	if cfg.JWTSecret != "" {
		guard = append(guard, JWTMiddleware([]byte(cfg.JWTSecret)))
	}
	secured := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, guard...), h)
	}

	catH := NewCats(deps.Service, deps.Log)
	cats := r.Group("/cats")
	collection(cats, http.MethodGet, catH.List)
	collection(cats, http.MethodPost, secured(catH.Create)...)
	cats.GET("/:id", catH.Get)
	cats.PATCH("/:id", secured(catH.UpdateSalary)...)
	cats.DELETE("/:id", secured(catH.Delete)...)

	missionH := NewMissions(deps.Service, deps.Log)
	missions := r.Group("/missions")
	collection(missions, http.MethodGet, missionH.List)
	collection(missions, http.MethodPost, secured(missionH.Create)...)
	missions.GET("/:id", missionH.Get)
	missions.POST("/:id/assign", secured(missionH.Assign)...)
	missions.DELETE("/:id", secured(missionH.Delete)...)

	r.PATCH("/targets/:id", secured(missionH.UpdateTarget)...)
}

// collection serves a group root with and without the trailing slash so
// POST bodies are never lost to a redirect.
func collection(g *gin.RouterGroup, method string, handlers ...gin.HandlerFunc) {
	g.Handle(method, "", handlers...)
	g.Handle(method, "/", handlers...)
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", headerRequestID, "If-None-Match"},
		ExposeHeaders: []string{"Content-Length", "ETag", headerRequestID},
		MaxAge:        12 * time.Hour,
	}
	// Origins arrive validated by config.Load.
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

// Version is reported by the welcome endpoint; release builds set it with
// -ldflags "-X github.com/stake-plus/spycat-agency/src/CatAPI/webserver.Version=...".
var Version = "1.0.0"

func welcome(appName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Welcome to " + appName + " API",
			"docs":    "see /cats/, /missions/, /targets/{id} and /healthz",
			"service": appName,
			"version": Version,
		})
	}
}
