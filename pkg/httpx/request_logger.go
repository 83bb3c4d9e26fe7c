package httpx

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Gunvolt24/kbridge/internal/ports"
	"github.com/Gunvolt24/kbridge/pkg/ctxmeta"
	"github.com/Gunvolt24/kbridge/pkg/metrics"
)

// RequestLogger — журнал и метрики запросов админского API.
// Уровень зависит от статуса: 5xx → Error, 4xx → Warn, остальное → Info.
// Служебные маршруты (/metrics, /ping) не пишутся ни в лог, ни в метрики.
func RequestLogger(log ports.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		switch route {
		case "/metrics", "/ping":
			return
		case "":
			route = "unmatched"
		}

		status := c.Writer.Status()
		elapsed := time.Since(start)
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status/100)+"xx").Inc()
		metrics.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(elapsed.Seconds())

		ctx := c.Request.Context()
		rid, _ := ctxmeta.RequestIDFromContext(ctx)
		tr, _ := ctxmeta.TraceIDFromContext(ctx)

		logf := log.Infof
		switch {
		case status >= 500:
			logf = log.Errorf
		case status >= 400:
			logf = log.Warnf
		}
		logf(ctx, "request id=%s trace=%s %s %s status=%d duration=%s size=%d",
			rid, tr, c.Request.Method, c.Request.URL.Path, status, elapsed, c.Writer.Size())
	}
}
