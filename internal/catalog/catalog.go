package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/talentotech/storefront/internal/domain"
	"github.com/talentotech/storefront/internal/inventory"
)

// Lister is the slice of the inventory client the catalog reads through.
type Lister interface {
	ListProducts(ctx context.Context, params inventory.ListParams) (*inventory.ProductPage, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

// Service serves paginated catalog reads through a short-TTL cache,
// coalescing identical concurrent requests so a burst of page loads
// produces a single upstream call. Cart lines never read through here;
// their snapshots stay frozen.
type Service struct {
	client Lister
	ttl    time.Duration
	logger *zap.Logger
	sfg    singleflight.Group // prevents cache stampede
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	value   interface{}
	expires time.Time
}

func NewService(client Lister, ttl time.Duration, logger *zap.Logger) *Service {
	return &Service{
		client:  client,
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// Products returns one catalog page, served from cache when fresh.
func (s *Service) Products(ctx context.Context, params inventory.ListParams) (*inventory.ProductPage, error) {
	key := fmt.Sprintf("products:%d:%d:%s:%s", params.Page, params.PageSize, params.Search, params.Category)

	if page, ok := s.cached(key); ok {
		return page.(*inventory.ProductPage), nil
	}

	v, err, shared := s.sfg.Do(key, func() (interface{}, error) {
		page, err := s.client.ListProducts(ctx, params)
		if err != nil {
			return nil, err
		}
		s.store(key, page)
		return page, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug("Catalog read coalesced", zap.String("key", key))
	}
	return v.(*inventory.ProductPage), nil
}

// Categories returns the category list, cached like product pages.
func (s *Service) Categories(ctx context.Context) ([]domain.Category, error) {
	const key = "categories"

	if cats, ok := s.cached(key); ok {
		return cats.([]domain.Category), nil
	}

	v, err, _ := s.sfg.Do(key, func() (interface{}, error) {
		cats, err := s.client.ListCategories(ctx)
		if err != nil {
			return nil, err
		}
		s.store(key, cats)
		return cats, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Category), nil
}

// Invalidate drops all cached entries; called after staff CRUD writes so
// the next read reflects the change.
func (s *Service) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]cacheEntry)
}

func (s *Service) cached(key string) (interface{}, bool) {
	if s.ttl <= 0 {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok || s.now().After(entry.expires) {
		return nil, false
	}
	return entry.value, true
}

func (s *Service) store(key string, value interface{}) {
	if s.ttl <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = cacheEntry{value: value, expires: s.now().Add(s.ttl)}
}
