package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/talentotech/storefront/internal/catalog"
	"github.com/talentotech/storefront/internal/inventory"
	"github.com/talentotech/storefront/internal/stats"
)

// ProductRequest is the staff product create/update payload.
type ProductRequest struct {
	Name        string  `json:"nombre" binding:"required"`
	Description string  `json:"descripcion"`
	Price       float64 `json:"precio" binding:"required,min=0"`
	Stock       int     `json:"stock" binding:"min=0"`
	CategoryID  int64   `json:"categoria"`
	Image       string  `json:"imagen"`
}

// CategoryRequest is the staff category create payload.
type CategoryRequest struct {
	Name        string `json:"nombre" binding:"required"`
	Description string `json:"descripcion"`
}

func (r ProductRequest) input() inventory.ProductInput {
	return inventory.ProductInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Stock:       r.Stock,
		CategoryID:  r.CategoryID,
		Image:       r.Image,
	}
}

// HandleCreateProduct handles POST /admin/products
func HandleCreateProduct(client *inventory.Client, cache *catalog.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		product, err := client.CreateProduct(c.Request.Context(), req.input())
		if err != nil {
			writeUpstreamError(c, err, logger)
			return
		}

		cache.Invalidate()
		c.JSON(http.StatusCreated, product)
	}
}

// HandleUpdateProduct handles PUT /admin/products/:id
func HandleUpdateProduct(client *inventory.Client, cache *catalog.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
			return
		}

		var req ProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		product, err := client.UpdateProduct(c.Request.Context(), productID, req.input())
		if err != nil {
			writeUpstreamError(c, err, logger)
			return
		}

		cache.Invalidate()
		c.JSON(http.StatusOK, product)
	}
}

// HandleDeleteProduct handles DELETE /admin/products/:id
func HandleDeleteProduct(client *inventory.Client, cache *catalog.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
			return
		}

		if err := client.DeleteProduct(c.Request.Context(), productID); err != nil {
			writeUpstreamError(c, err, logger)
			return
		}

		cache.Invalidate()
		c.JSON(http.StatusOK, gin.H{"status": "deleted"})
	}
}

// HandleCreateCategory handles POST /admin/categories
func HandleCreateCategory(client *inventory.Client, cache *catalog.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		category, err := client.CreateCategory(c.Request.Context(), inventory.CategoryInput{
			Name:        req.Name,
			Description: req.Description,
		})
		if err != nil {
			writeUpstreamError(c, err, logger)
			return
		}

		cache.Invalidate()
		c.JSON(http.StatusCreated, category)
	}
}

// HandleGetStats handles GET /admin/stats. Defaults to today; accepts a
// ?date=YYYY-MM-DD override.
func HandleGetStats(recorder *stats.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		date := time.Now()
		if raw := c.Query("date"); raw != "" {
			parsed, err := time.Parse("2006-01-02", raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
				return
			}
			date = parsed
		}

		s := recorder.ForDate(c.Request.Context(), date)
		c.JSON(http.StatusOK, gin.H{
			"date":    date.Format("2006-01-02"),
			"visitas": s.Visits,
			"ventas":  s.Sales,
		})
	}
}
