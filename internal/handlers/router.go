package handlers

import (
	"github.com/gin-gonic/gin"
	cachecontrol "go.eigsys.de/gin-cachecontrol/v2"

	ginGzip "github.com/gin-contrib/gzip"

	constants "github.com/CodeAndHammer/tradukilo/internal/constants"
	util "github.com/CodeAndHammer/tradukilo/internal/util"
)

// NewRouter wires middleware and routes. Admission runs first on every route
// that reaches a provider.
func NewRouter(app *App) *gin.Engine {
	router := gin.New()

	router.Use(requestIDMiddleware())
	router.Use(requestLogMiddleware())
	router.Use(gin.Recovery())
	router.Use(securityHeadersMiddleware())

	router.Use(ginGzip.Gzip(ginGzip.DefaultCompression,
		ginGzip.WithExcludedPaths([]string{constants.SpeakPathPrefix})))

	router.Use(cachecontrol.New(cachecontrol.Config{
		NoStore:        true,
		NoCache:        true,
		MustRevalidate: true,
	}))

	if err := router.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		util.LogWarn("Failed to set trusted proxies: %v", err)
	}

	router.GET(constants.RouteHome, func(c *gin.Context) { HomeHandler(app, c) })
	router.POST(constants.RouteHome, RateLimit(app), func(c *gin.Context) { TranslateHandler(app, c) })
	router.GET(constants.RouteHistory, func(c *gin.Context) { HistoryHandler(app, c) })
	router.GET(constants.RouteSpeak, RateLimit(app), func(c *gin.Context) { SpeakHandler(app, c) })
	router.GET(constants.RouteHealthz, func(c *gin.Context) { HealthzHandler(app, c) })

	return router
}
