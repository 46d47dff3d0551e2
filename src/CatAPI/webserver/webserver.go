package webserver

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/stake-plus/spycat-agency/src/CatAPI/agency"
	"github.com/stake-plus/spycat-agency/src/CatAPI/config"
)

// Deps are the collaborators the handlers need. Redis may be nil.
type Deps struct {
	Service *agency.Service
	DB      *gorm.DB
	Redis   *redis.Client
	Log     *slog.Logger
}

func New(cfg config.Config, deps Deps) *gin.Engine {
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	g := gin.New()
	g.Use(gin.Recovery(), RequestID(), RequestLogger(deps.Log))
	attachRoutes(g, cfg, deps)
	return g
}
