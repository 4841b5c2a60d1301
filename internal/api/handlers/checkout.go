package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/talentotech/storefront/internal/checkout"
	"github.com/talentotech/storefront/internal/inventory"
)

// HandleCheckout handles POST /checkout. The coordinator owns the cart
// reconciliation; this handler only translates its outcome.
func HandleCheckout(coord *checkout.Coordinator, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := coord.Checkout(c.Request.Context())
		if err == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "mensaje": "Compra realizada exitosamente"})
			return
		}

		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			c.JSON(http.StatusBadRequest, gin.H{"error": "El carrito está vacío"})
		case errors.Is(err, checkout.ErrInFlight):
			c.JSON(http.StatusConflict, gin.H{"error": "checkout already in progress"})
		case errors.Is(err, inventory.ErrSessionExpired):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
		case errors.Is(err, inventory.ErrConnection):
			c.JSON(http.StatusBadGateway, gin.H{"error": "connection error"})
		default:
			var rejection *inventory.RejectionError
			if errors.As(err, &rejection) {
				c.JSON(http.StatusUnprocessableEntity, gin.H{
					"error":    rejection.Reason(),
					"detalles": rejection.Details,
				})
				return
			}
			logger.Error("Checkout failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
	}
}
