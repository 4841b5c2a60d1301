package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/talentotech/storefront/internal/catalog"
	"github.com/talentotech/storefront/internal/inventory"
	"github.com/talentotech/storefront/internal/stats"
)

// HandleListProducts handles GET /products
func HandleListProducts(svc *catalog.Service, recorder *stats.Recorder, pageSize int, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		params := inventory.ListParams{
			Page:     intQuery(c, "page", 1),
			PageSize: intQuery(c, "page_size", pageSize),
			Search:   c.Query("search"),
			Category: c.Query("categoria"),
		}

		page, err := svc.Products(c.Request.Context(), params)
		if err != nil {
			writeUpstreamError(c, err, logger)
			return
		}

		// Visit counter is best-effort; a storage hiccup never breaks browsing.
		if err := recorder.RecordVisit(c.Request.Context()); err != nil {
			logger.Warn("Failed to record visit", zap.Error(err))
		}

		c.JSON(http.StatusOK, page)
	}
}

// HandleListCategories handles GET /categories
func HandleListCategories(svc *catalog.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := svc.Categories(c.Request.Context())
		if err != nil {
			writeUpstreamError(c, err, logger)
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": categories})
	}
}

func intQuery(c *gin.Context, key string, fallback int) int {
	if raw := c.Query(key); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// writeUpstreamError maps inventory client failures onto the response.
func writeUpstreamError(c *gin.Context, err error, logger *zap.Logger) {
	if errors.Is(err, inventory.ErrSessionExpired) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
		return
	}
	if errors.Is(err, inventory.ErrConnection) {
		c.JSON(http.StatusBadGateway, gin.H{"error": "connection error"})
		return
	}
	var rejection *inventory.RejectionError
	if errors.As(err, &rejection) {
		c.JSON(http.StatusBadGateway, gin.H{"error": rejection.Reason()})
		return
	}
	logger.Error("Upstream request failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
