package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/talentotech/storefront/internal/domain"
	"github.com/talentotech/storefront/internal/storage"
)

// Store owns the cart state for one session. Lines are keyed by product id;
// each line freezes the product's price, name and category at add time and
// carries a stock ceiling that bounds further quantity increases.
//
// Mutations are serialized by a mutex and the snapshot is written to the
// persistence adapter after every successful mutation. A persistence failure
// is logged and swallowed; it never fails the mutation itself.
type Store struct {
	mu     sync.Mutex
	kv     storage.KV
	key    string
	logger *zap.Logger

	lines map[int64]*domain.CartLine
	order []int64 // insertion order, kept for display
}

// NewStore creates a cart store bound to a snapshot key, restoring any
// prior snapshot. A snapshot that fails to parse or violates the line
// invariants is discarded and the cart starts empty.
func NewStore(ctx context.Context, kv storage.KV, key string, logger *zap.Logger) *Store {
	s := &Store{
		kv:     kv,
		key:    key,
		logger: logger,
		lines:  make(map[int64]*domain.CartLine),
	}
	s.restore(ctx)
	return s
}

func (s *Store) restore(ctx context.Context) {
	data, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return
	}
	if err != nil {
		s.logger.Warn("Failed to read cart snapshot", zap.Error(err))
		return
	}

	var lines []domain.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		s.logger.Warn("Discarding malformed cart snapshot", zap.Error(err))
		if err := s.kv.Delete(ctx, s.key); err != nil {
			s.logger.Warn("Failed to delete malformed cart snapshot", zap.Error(err))
		}
		return
	}

	for i := range lines {
		line := lines[i]
		if line.Quantity < 1 || line.Quantity > line.StockCeiling {
			s.logger.Warn("Discarding cart snapshot with invalid line",
				zap.Int64("product_id", line.ProductID),
				zap.Int("quantity", line.Quantity),
			)
			s.lines = make(map[int64]*domain.CartLine)
			s.order = nil
			return
		}
		if _, ok := s.lines[line.ProductID]; ok {
			// Duplicate product id, snapshot is not trustworthy.
			s.lines = make(map[int64]*domain.CartLine)
			s.order = nil
			return
		}
		line.Subtotal = float64(line.Quantity) * line.UnitPrice
		s.lines[line.ProductID] = &line
		s.order = append(s.order, line.ProductID)
	}
}

// Add puts quantity units of the product into the cart. It reports false,
// leaving the cart unchanged, when quantity is not positive or when the
// merged quantity would exceed the available stock. On a successful merge
// the stock ceiling is refreshed from the product snapshot.
func (s *Store) Add(ctx context.Context, product domain.Product, quantity int) bool {
	if quantity <= 0 {
		return false
	}
	if quantity > product.Stock {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if line, ok := s.lines[product.ID]; ok {
		merged := line.Quantity + quantity
		if merged > product.Stock {
			return false
		}
		line.Quantity = merged
		line.Subtotal = float64(merged) * line.UnitPrice
		line.StockCeiling = product.Stock
	} else {
		s.lines[product.ID] = &domain.CartLine{
			ProductID:    product.ID,
			Name:         product.Name,
			Category:     product.Category.String(),
			UnitPrice:    float64(product.Price),
			Quantity:     quantity,
			Subtotal:     float64(product.Price) * float64(quantity),
			StockCeiling: product.Stock,
		}
		s.order = append(s.order, product.ID)
	}

	s.persist(ctx)
	return true
}

// UpdateQuantity sets a line's quantity. A quantity of zero or less removes
// the line. A quantity above the line's stock ceiling is silently ignored;
// unlike Add, this path does not report failure.
func (s *Store) UpdateQuantity(ctx context.Context, productID int64, quantity int) {
	if quantity <= 0 {
		s.Remove(ctx, productID)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	line, ok := s.lines[productID]
	if !ok {
		return
	}
	if quantity > line.StockCeiling {
		return
	}

	line.Quantity = quantity
	line.Subtotal = float64(quantity) * line.UnitPrice
	s.persist(ctx)
}

// Remove deletes the line for productID if present. Removing an absent
// product is a no-op.
func (s *Store) Remove(ctx context.Context, productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lines[productID]; ok {
		delete(s.lines, productID)
		for i, id := range s.order {
			if id == productID {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	s.persist(ctx)
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = make(map[int64]*domain.CartLine)
	s.order = nil
	s.persist(ctx)
}

// Lines returns a copy of the cart lines in insertion order.
func (s *Store) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := make([]domain.CartLine, 0, len(s.order))
	for _, id := range s.order {
		lines = append(lines, *s.lines[id])
	}
	return lines
}

// Total returns the sum of all line subtotals.
func (s *Store) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total float64
	for _, line := range s.lines {
		total += line.Subtotal
	}
	return total
}

// ItemCount returns the sum of all line quantities (the badge counter).
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	for _, line := range s.lines {
		count += line.Quantity
	}
	return count
}

// persist writes the current snapshot. Callers must hold s.mu.
func (s *Store) persist(ctx context.Context) {
	lines := make([]domain.CartLine, 0, len(s.order))
	for _, id := range s.order {
		lines = append(lines, *s.lines[id])
	}

	data, err := json.Marshal(lines)
	if err != nil {
		s.logger.Warn("Failed to marshal cart snapshot", zap.Error(err))
		return
	}
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		s.logger.Warn("Failed to persist cart snapshot", zap.Error(err))
	}
}
