package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/talentotech/storefront/internal/storage"
)

type mapKV struct {
	data map[string][]byte
}

func (m *mapKV) Get(_ context.Context, key string) ([]byte, error) {
	if data, ok := m.data[key]; ok {
		return data, nil
	}
	return nil, storage.ErrNotFound
}

func (m *mapKV) Set(_ context.Context, key string, value []byte) error {
	m.data[key] = value
	return nil
}

func (m *mapKV) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func newTestRecorder() (*Recorder, *mapKV) {
	kv := &mapKV{data: make(map[string][]byte)}
	r := NewRecorder(kv, zap.NewNop())
	r.now = func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) }
	return r, kv
}

func TestRecordSale_Increments(t *testing.T) {
	r, _ := newTestRecorder()
	ctx := context.Background()

	require.NoError(t, r.RecordSale(ctx))
	require.NoError(t, r.RecordSale(ctx))
	require.NoError(t, r.RecordVisit(ctx))

	stats := r.Today(ctx)
	assert.Equal(t, 2, stats.Sales)
	assert.Equal(t, 1, stats.Visits)
}

func TestCounters_ScopedByDate(t *testing.T) {
	r, _ := newTestRecorder()
	ctx := context.Background()

	require.NoError(t, r.RecordSale(ctx))

	other := r.ForDate(ctx, time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 0, other.Sales)
}

func TestCorruptBlobReadsAsZeros(t *testing.T) {
	r, kv := newTestRecorder()
	ctx := context.Background()

	kv.data["analytics_2026-08-30"] = []byte("garbage")
	assert.Equal(t, 0, r.Today(ctx).Sales)

	// An increment over a corrupt blob restarts from zero rather than failing.
	require.NoError(t, r.RecordSale(ctx))
	assert.Equal(t, 1, r.Today(ctx).Sales)
}
