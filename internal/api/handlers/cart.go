package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/talentotech/storefront/internal/cart"
	"github.com/talentotech/storefront/internal/domain"
)

// AddItemRequest carries the rendered product snapshot plus the chosen
// quantity. The snapshot is trusted only for display; prices are
// recomputed by the inventory service at purchase time.
type AddItemRequest struct {
	Product  domain.Product `json:"product" binding:"required"`
	Quantity int            `json:"cantidad"`
}

// UpdateItemRequest sets a line quantity; zero removes the line.
type UpdateItemRequest struct {
	Quantity *int `json:"cantidad" binding:"required"`
}

// CartResponse is the cart summary returned by every cart endpoint.
type CartResponse struct {
	Items     []domain.CartLine `json:"items"`
	Total     float64           `json:"total"`
	ItemCount int               `json:"item_count"`
}

func cartResponse(store *cart.Store) CartResponse {
	return CartResponse{
		Items:     store.Lines(),
		Total:     store.Total(),
		ItemCount: store.ItemCount(),
	}
}

// HandleGetCart handles GET /cart
func HandleGetCart(store *cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, cartResponse(store))
	}
}

// HandleAddItem handles POST /cart/items
func HandleAddItem(store *cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AddItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		if ok := store.Add(c.Request.Context(), req.Product, req.Quantity); !ok {
			c.JSON(http.StatusConflict, gin.H{"error": "cantidad inválida o stock insuficiente"})
			return
		}

		c.JSON(http.StatusOK, cartResponse(store))
	}
}

// HandleUpdateItem handles PUT /cart/items/:id. A quantity above the
// line's stock ceiling leaves the line unchanged; the response is the
// resulting cart either way.
func HandleUpdateItem(store *cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
			return
		}

		var req UpdateItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		store.UpdateQuantity(c.Request.Context(), productID, *req.Quantity)
		c.JSON(http.StatusOK, cartResponse(store))
	}
}

// HandleRemoveItem handles DELETE /cart/items/:id
func HandleRemoveItem(store *cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
			return
		}

		store.Remove(c.Request.Context(), productID)
		c.JSON(http.StatusOK, cartResponse(store))
	}
}

// HandleClearCart handles DELETE /cart
func HandleClearCart(store *cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		store.Clear(c.Request.Context())
		c.JSON(http.StatusOK, cartResponse(store))
	}
}
