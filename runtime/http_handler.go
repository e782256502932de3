package runtime

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewHttpHandler builds the gin engine that triggers flows over HTTP.
//
//	POST /flows/:id/run   JSON body becomes the flow input
//	GET  /flows           lists loaded flow ids
//	GET  /health          liveness probe
//	GET  /metrics         Prometheus metrics
func NewHttpHandler(app *App) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	g := gin.New()
	g.Use(gin.Recovery(), requestLogger(app.Logger))

	g.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	g.GET("/metrics", gin.WrapH(promhttp.Handler()))
	g.GET("/flows", listFlows(app))
	g.POST("/flows/:id/run", runFlow(app))

	return g
}

func listFlows(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		ids := make([]string, 0, len(app.Flows))
		for id := range app.Flows {
			ids = append(ids, id)
		}
		c.JSON(http.StatusOK, gin.H{"flows": ids})
	}
}

var wrongBodyFormatRes = gin.H{"message": "Wrong request body format"}

func runFlow(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if _, ok := app.Flows[id]; !ok {
			c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("flow %s not found", id)})
			return
		}

		input := map[string]any{}
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&input); err != nil {
				c.JSON(http.StatusBadRequest, wrongBodyFormatRes)
				return
			}
		}

		executionID, output, err := app.RunFlow(c.Request.Context(), id, input)
		if err != nil {
			app.Logger.Error("Flow execution failed",
				"flow", id,
				"execution_id", executionID,
				"path", c.Request.URL.Path,
				"error", err.Error())
			c.JSON(flowErrorStatus(err), gin.H{
				"execution_id": executionID,
				"error":        toErrorMap(err),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"execution_id": executionID,
			"output":       output,
		})
	}
}

func toErrorMap(err error) map[string]any {
	var flowErr *FlowError
	if errors.As(err, &flowErr) {
		return flowErr.ToMap()
	}
	return map[string]any{"message": err.Error()}
}

// flowErrorStatus maps a failed flow to the trigger's HTTP status.
func flowErrorStatus(err error) int {
	var flowErr *FlowError
	if !errors.As(err, &flowErr) {
		return http.StatusInternalServerError
	}

	switch {
	case flowErr.Type == ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	case flowErr.Code == string(ErrorCodeOperationError):
		return http.StatusUnprocessableEntity
	case flowErr.Code == string(ErrorCodeAPIError):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// requestLogger logs each request at debug level.
func requestLogger(l *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		l.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status())
	}
}
