package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NewRouter builds the gin engine with every route registered
func NewRouter(h *Handler, logger *logrus.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	router.GET("/", h.root)
	router.GET("/container/status", h.containerStatus)
	router.GET("/hostname", h.getHostname)
	router.POST("/hostname", h.setHostname)
	router.GET("/system/info", h.systemInfo)

	network := router.Group("/network")
	{
		network.GET("/config-type", h.backendKind)
		network.POST("/config-type/redetect", h.redetect)

		network.GET("/interfaces", h.listPublic)
		network.GET("/interfaces/all", h.listAll)
		network.GET("/interfaces/:name", h.getInterface)
		network.POST("/interfaces/:name/configure", h.configure)
		network.POST("/interfaces/:name/restart", h.control(h.services.Control.Restart))
		network.POST("/interfaces/:name/enable", h.control(h.services.Control.Enable))
		network.POST("/interfaces/:name/disable", h.control(h.services.Control.Disable))

		network.GET("/artifacts", h.listArtifacts)
		network.GET("/artifacts/generated", h.listGenerated)
		network.POST("/artifacts/validate", h.validateAll)
		network.POST("/artifacts/:name/validate", h.validateArtifact)
		network.DELETE("/artifacts/:name", h.cleanup)

		network.POST("/apply-config", h.applyConfig)
		network.GET("/status", h.networkStatus)
		network.GET("/dns", h.dns)
		network.GET("/routes", h.routes)
		network.GET("/history/:name", h.history)
	}

	return router
}

// requestLogger logs one line per request, errors at warn level
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
		})
		if name := c.Param("name"); name != "" {
			entry = entry.WithField("interface", name)
		}
		if len(c.Errors) > 0 {
			entry.WithError(c.Errors.Last().Err).Warn("Request failed")
			return
		}
		entry.Debug("Request served")
	}
}
