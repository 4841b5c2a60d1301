package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/talentotech/storefront/internal/cart"
	"github.com/talentotech/storefront/internal/domain"
	"github.com/talentotech/storefront/internal/inventory"
	"github.com/talentotech/storefront/internal/storage"
)

type mapKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMapKV() *mapKV {
	return &mapKV{data: make(map[string][]byte)}
}

func (m *mapKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if data, ok := m.data[key]; ok {
		return data, nil
	}
	return nil, storage.ErrNotFound
}

func (m *mapKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mapKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// mockPurchaser implements Purchaser for testing
type mockPurchaser struct {
	mu      sync.Mutex
	err     error
	calls   int
	got     []domain.PurchaseItem
	release chan struct{} // when set, Purchase blocks until closed
}

func (m *mockPurchaser) Purchase(_ context.Context, items []domain.PurchaseItem) error {
	m.mu.Lock()
	m.calls++
	m.got = items
	release := m.release
	m.mu.Unlock()

	if release != nil {
		<-release
	}
	return m.err
}

type mockStats struct {
	sales int
	err   error
}

func (m *mockStats) RecordSale(context.Context) error {
	if m.err != nil {
		return m.err
	}
	m.sales++
	return nil
}

func threeLineCart(t *testing.T) *cart.Store {
	t.Helper()
	ctx := context.Background()
	s := cart.NewStore(ctx, newMapKV(), "carrito", zap.NewNop())

	products := []domain.Product{
		{ID: 1, Name: "Empanada", Price: 1200, Stock: 10},
		{ID: 2, Name: "Sopaipilla", Price: 500, Stock: 20},
		{ID: 3, Name: "Completo", Price: 2500, Stock: 5},
	}
	for i, p := range products {
		require.True(t, s.Add(ctx, p, i+1))
	}
	return s
}

func TestCheckout_SuccessClearsCartAndRecordsSale(t *testing.T) {
	store := threeLineCart(t)
	svc := &mockPurchaser{}
	stats := &mockStats{}
	coord := NewCoordinator(store, svc, stats, zap.NewNop())

	require.NoError(t, coord.Checkout(context.Background()))

	assert.Empty(t, store.Lines())
	assert.Equal(t, 0, store.ItemCount())
	assert.Equal(t, 1, stats.sales)

	// Only id and quantity cross the wire.
	assert.Equal(t, []domain.PurchaseItem{
		{ID: 1, Quantity: 1},
		{ID: 2, Quantity: 2},
		{ID: 3, Quantity: 3},
	}, svc.got)
}

func TestCheckout_RejectionPreservesCart(t *testing.T) {
	store := threeLineCart(t)
	before := store.Lines()
	svc := &mockPurchaser{err: &inventory.RejectionError{Details: []string{"Completo: quedan 2"}}}
	stats := &mockStats{}
	coord := NewCoordinator(store, svc, stats, zap.NewNop())

	err := coord.Checkout(context.Background())

	var rejection *inventory.RejectionError
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, "Completo: quedan 2", rejection.Reason())

	assert.Equal(t, before, store.Lines())
	assert.Equal(t, 0, stats.sales)
}

func TestCheckout_TransportErrorPreservesCart(t *testing.T) {
	store := threeLineCart(t)
	before := store.Lines()
	svc := &mockPurchaser{err: inventory.ErrConnection}
	coord := NewCoordinator(store, svc, &mockStats{}, zap.NewNop())

	err := coord.Checkout(context.Background())
	assert.ErrorIs(t, err, inventory.ErrConnection)
	assert.Equal(t, before, store.Lines())
}

func TestCheckout_EmptyCartNeverCallsService(t *testing.T) {
	store := cart.NewStore(context.Background(), newMapKV(), "carrito", zap.NewNop())
	svc := &mockPurchaser{}
	coord := NewCoordinator(store, svc, &mockStats{}, zap.NewNop())

	err := coord.Checkout(context.Background())
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, 0, svc.calls)
}

func TestCheckout_StatsFailureDoesNotFailCheckout(t *testing.T) {
	store := threeLineCart(t)
	svc := &mockPurchaser{}
	stats := &mockStats{err: errors.New("disk full")}
	coord := NewCoordinator(store, svc, stats, zap.NewNop())

	require.NoError(t, coord.Checkout(context.Background()))
	assert.Empty(t, store.Lines())
}

func TestCheckout_SecondCallWhileInFlightFails(t *testing.T) {
	store := threeLineCart(t)
	release := make(chan struct{})
	svc := &mockPurchaser{release: release}
	coord := NewCoordinator(store, svc, &mockStats{}, zap.NewNop())

	first := make(chan error, 1)
	go func() { first <- coord.Checkout(context.Background()) }()

	// Wait for the first call to reach the service.
	for {
		svc.mu.Lock()
		started := svc.calls == 1
		svc.mu.Unlock()
		if started {
			break
		}
		time.Sleep(time.Millisecond)
	}

	err := coord.Checkout(context.Background())
	assert.ErrorIs(t, err, ErrInFlight)
	assert.Equal(t, 3, len(store.Lines()))

	close(release)
	require.NoError(t, <-first)
	assert.Equal(t, 1, svc.calls)
}
