package checkout

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/talentotech/storefront/internal/domain"
)

// ErrEmptyCart is returned when checkout is attempted on an empty cart;
// no remote call is made.
var ErrEmptyCart = errors.New("empty cart")

// ErrInFlight is returned when a checkout is already outstanding for this
// cart. The coordinator allows at most one at a time.
var ErrInFlight = errors.New("checkout already in progress")

// Cart is the slice of the cart store the coordinator needs.
type Cart interface {
	Lines() []domain.CartLine
	Clear(ctx context.Context)
}

// Purchaser submits a purchase to the inventory service.
type Purchaser interface {
	Purchase(ctx context.Context, items []domain.PurchaseItem) error
}

// SaleRecorder records a completed sale in the local analytics counters.
type SaleRecorder interface {
	RecordSale(ctx context.Context) error
}

// Coordinator converts the cart into a purchase request and reconciles
// local state with the service's verdict. The service is authoritative:
// on rejection the cart is left untouched for the shopper to adjust, and
// no retry happens here.
type Coordinator struct {
	cart   Cart
	svc    Purchaser
	stats  SaleRecorder
	logger *zap.Logger

	mu       sync.Mutex
	inFlight bool
}

func NewCoordinator(cart Cart, svc Purchaser, stats SaleRecorder, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		cart:   cart,
		svc:    svc,
		stats:  stats,
		logger: logger,
	}
}

// Checkout submits the current cart. On success the cart is cleared and
// today's sale counter is incremented best-effort; on any failure the cart
// is untouched and the error carries the reason (the service's own message
// when it provided one).
func (c *Coordinator) Checkout(ctx context.Context) error {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return ErrInFlight
	}
	c.inFlight = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.mu.Unlock()
	}()

	lines := c.cart.Lines()
	if len(lines) == 0 {
		return ErrEmptyCart
	}

	// Only (id, cantidad) goes over the wire; the service recomputes
	// prices authoritatively.
	items := make([]domain.PurchaseItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, domain.PurchaseItem{
			ID:       line.ProductID,
			Quantity: line.Quantity,
		})
	}

	if err := c.svc.Purchase(ctx, items); err != nil {
		c.logger.Info("Checkout failed", zap.Int("lines", len(lines)), zap.Error(err))
		return err
	}

	c.cart.Clear(ctx)

	// Best-effort: a stats failure must never turn a completed purchase
	// into a reported failure.
	if err := c.stats.RecordSale(ctx); err != nil {
		c.logger.Warn("Failed to record sale counter", zap.Error(err))
	}

	c.logger.Info("Checkout completed", zap.Int("lines", len(lines)))
	return nil
}
