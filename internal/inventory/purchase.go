package inventory

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/talentotech/storefront/internal/domain"
)

// purchaseRequest is the wire shape of the purchase endpoint.
type purchaseRequest struct {
	Items []domain.PurchaseItem `json:"items"`
}

// Purchase submits a purchase for the given items. The service validates
// stock authoritatively; a rejection comes back as a RejectionError with
// the service's own message or per-line details.
func (c *Client) Purchase(ctx context.Context, items []domain.PurchaseItem) error {
	body, status, err := c.do(ctx, http.MethodPost, "/comprar/", nil, purchaseRequest{Items: items})
	if err != nil {
		return err
	}

	if status != http.StatusOK && status != http.StatusCreated {
		rejection := rejectionFromBody(body, "purchase rejected")
		c.logger.Info("Purchase rejected",
			zap.Int("status", status),
			zap.Int("items", len(items)),
		)
		return rejection
	}

	c.logger.Info("Purchase accepted", zap.Int("items", len(items)))
	return nil
}
