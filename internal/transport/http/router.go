package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Gunvolt24/kbridge/internal/manifest"
	"github.com/Gunvolt24/kbridge/internal/ports"
	"github.com/Gunvolt24/kbridge/internal/registry"
	"github.com/Gunvolt24/kbridge/internal/subscription"
	"github.com/Gunvolt24/kbridge/pkg/httpx"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Handler — админский API моста.
type Handler struct {
	subs       ports.SubscriptionAdmin
	deliveries ports.DeliveryReadService // nil — архив выключен
	log        ports.Logger
	timeout    time.Duration
}

func NewHandler(
	subs ports.SubscriptionAdmin,
	deliveries ports.DeliveryReadService,
	log ports.Logger,
	timeout time.Duration,
) *Handler {
	return &Handler{subs: subs, deliveries: deliveries, log: log, timeout: timeout}
}

// NewRouter — gin-роутер; otelServiceName пустой — без otelgin.
func NewRouter(h *Handler, otelServiceName string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if otelServiceName != "" {
		r.Use(otelgin.Middleware(otelServiceName))
	}
	r.Use(httpx.RequestIDMiddleware())
	r.Use(httpx.RequestLogger(h.log))

	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/subscriptions", h.listSubscriptions)
	r.POST("/subscriptions/:name", h.activate)
	r.DELETE("/subscriptions/:name", h.deactivate)

	r.GET("/deliveries", h.listDeliveries)

	return r
}

func (h *Handler) listSubscriptions(c *gin.Context) {
	c.JSON(http.StatusOK, h.subs.Subscriptions(c.Request.Context()))
}

func (h *Handler) activate(c *gin.Context) {
	name := c.Param("name")
	ctx, cancel := h.requestContext(c)
	defer cancel()

	if err := h.subs.ActivateByName(ctx, name); err != nil {
		status := activationStatus(err)
		if status == http.StatusInternalServerError {
			h.log.Errorf(ctx, "ActivateByName failed name=%s err=%v", name, err)
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"name": name, "status": "active"})
}

func (h *Handler) deactivate(c *gin.Context) {
	name := c.Param("name")
	ctx, cancel := h.requestContext(c)
	defer cancel()

	n, err := h.subs.DeactivateByName(ctx, name)
	if err != nil {
		if errors.Is(err, manifest.ErrUnknownSubscription) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.log.Errorf(ctx, "DeactivateByName failed name=%s err=%v", name, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "cancelled": n})
}

func (h *Handler) listDeliveries(c *gin.Context) {
	if h.deliveries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "delivery archive is disabled"})
		return
	}

	// limit/offset с безопасными дефолтами и границами
	page, err := httpx.ParsePage(c, defaultLimit, maxLimit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	endpoint := c.Query("endpoint")

	ctx, cancel := h.requestContext(c)
	defer cancel()

	records, err := h.deliveries.RecentDeliveries(ctx, endpoint, page.Limit, page.Offset)
	if err != nil {
		h.log.Errorf(ctx, "RecentDeliveries failed endpoint=%s err=%v", endpoint, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, records)
}

// requestContext — контекст запроса с таймаутом обработчика.
func (h *Handler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

func activationStatus(err error) int {
	switch {
	case errors.Is(err, manifest.ErrUnknownSubscription):
		return http.StatusNotFound
	case errors.Is(err, registry.ErrAlreadyActive):
		return http.StatusConflict
	case errors.Is(err, subscription.ErrMissingRequiredProperty),
		errors.Is(err, subscription.ErrInvalidTopicPattern),
		errors.Is(err, subscription.ErrInvalidPoolSize):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
