package handler

import (
	"net/http"
	"time"

	"github.com/Mikele-Kochas/SmartNotebook/internal/config"
	"github.com/Mikele-Kochas/SmartNotebook/internal/middleware"
	"github.com/Mikele-Kochas/SmartNotebook/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter wires the proxy routes. mcpHandler is mounted at cfg.MCP.Path
// when non-nil.
func NewRouter(cfg *config.Config, noteHandler *NoteHandler, mcpHandler http.Handler) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog())
	if cfg.Security.Enabled {
		router.Use(middleware.Secure(cfg.Security.IsDevelopment))
	}
	router.Use(cors.New(corsConfig(cfg.CORS)))

	router.NoMethod(MethodNotAllowed)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Unix(),
		})
	})

	router.POST("/revise", noteHandler.Revise)
	router.POST("/synthesize", noteHandler.Synthesize)

	api := router.Group("/api")
	{
		api.POST("/revise", noteHandler.Revise)
		api.POST("/synthesize", noteHandler.Synthesize)
	}

	if mcpHandler != nil {
		router.Any(cfg.MCP.Path, gin.WrapH(mcpHandler))
		logger.Infof("MCP endpoint mounted at %s", cfg.MCP.Path)
	}

	return router
}

// The allow-list holds non-http schemes (capacitor://, ionic://) that the
// cors origin validator rejects, so matching is done in AllowOriginFunc.
func corsConfig(c config.CORSConfig) cors.Config {
	allowed := make(map[string]struct{}, len(c.AllowedOrigins))
	allowAll := false
	for _, o := range c.AllowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = struct{}{}
	}

	return cors.Config{
		AllowOriginFunc: func(origin string) bool {
			if _, ok := allowed[origin]; ok || allowAll {
				return true
			}
			logger.WithFields(logger.Fields{"origin": origin}).Warn("CORS: origin not allowed")
			return false
		},
		AllowMethods:     c.AllowedMethods,
		AllowHeaders:     c.AllowedHeaders,
		ExposeHeaders:    c.ExposedHeaders,
		AllowCredentials: c.AllowCredentials,
		MaxAge:           time.Duration(c.MaxAge) * time.Second,
	}
}

// NewFunctionEngine serves a single operation the way a function-as-a-service
// trigger does: any path, POST only, any origin.
func NewFunctionEngine(handle gin.HandlerFunc) *gin.Engine {
	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.AccessLog())
	engine.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodPost, http.MethodOptions},
		AllowHeaders:    []string{"Content-Type"},
		MaxAge:          time.Hour,
	}))

	engine.NoMethod(MethodNotAllowed)
	engine.POST("/*path", handle)

	return engine
}
