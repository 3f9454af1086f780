// Package httpapi exposes the upload, listing and aggregation entry points
// over HTTP.
package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/nguyentantai21042004/voice-insights/internal/logger"
	"github.com/nguyentantai21042004/voice-insights/internal/metrics"
	"github.com/nguyentantai21042004/voice-insights/internal/processor"
	"github.com/nguyentantai21042004/voice-insights/internal/store"
	"github.com/nguyentantai21042004/voice-insights/internal/summarizer"
)

// Deps are the collaborators the handlers call into.
type Deps struct {
	Processor     processor.Processor
	Store         store.Reader
	Insights      summarizer.Insights
	Metrics       *metrics.Metrics
	Logger        logger.Logger
	UploadLimitMB int
}

type handler struct {
	proc     processor.Processor
	store    store.Reader
	insights summarizer.Insights
	metrics  *metrics.Metrics
	logger   logger.Logger
}

// New builds the echo server with every route registered.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(d.Logger)

	if d.UploadLimitMB > 0 {
		e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", d.UploadLimitMB)))
	}
	e.Use(requestLogger(d.Logger))
	e.Use(middleware.Recover())

	h := &handler{
		proc:     d.Processor,
		store:    d.Store,
		insights: d.Insights,
		metrics:  d.Metrics,
		logger:   d.Logger,
	}

	e.GET("/healthz", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}

	e.POST("/upload", h.upload)
	e.GET("/transcriptions", h.listTranscriptions)
	e.GET("/Transcriptions", h.listTranscriptions)
	e.GET("/generate-insights", h.generateInsights)

	return e
}

func requestLogger(log logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			req := c.Request()
			log.Info(req.Context(), "HTTP %s %s -> %d (%s)",
				req.Method, req.URL.Path, c.Response().Status, time.Since(start).Round(time.Millisecond))
			return nil
		}
	}
}
