package alerts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mbazira/agrostock/internal/domain/models"
)

type fakeAlertStore struct {
	alerts []models.StockAlert
}

func (f *fakeAlertStore) Insert(_ context.Context, alert models.StockAlert) (models.StockAlert, error) {
	alert.ID = primitive.NewObjectID()
	f.alerts = append(f.alerts, alert)
	return alert, nil
}

func (f *fakeAlertStore) ListRecent(_ context.Context, branch string, limit int64) ([]models.StockAlert, error) {
	var out []models.StockAlert
	for i := len(f.alerts) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		if f.alerts[i].Branch == branch {
			out = append(out, f.alerts[i])
		}
	}
	return out, nil
}

var key = models.LedgerKey{ProduceName: "Beans", ProduceType: "Grain", Branch: "Maganjo"}

func TestDedupeCacheSuppressesWithinWindow(t *testing.T) {
	clock := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	cache := newDedupeCache(30 * time.Minute)
	cache.now = func() time.Time { return clock }

	assert.True(t, cache.shouldEmit("out|Beans|Grain|Maganjo"))
	assert.False(t, cache.shouldEmit("out|Beans|Grain|Maganjo"))

	clock = clock.Add(29 * time.Minute)
	assert.False(t, cache.shouldEmit("out|Beans|Grain|Maganjo"), "still inside the window")

	clock = clock.Add(2 * time.Minute)
	assert.True(t, cache.shouldEmit("out|Beans|Grain|Maganjo"), "window elapsed")
}

func TestDedupeCacheKeysSubjectsIndependently(t *testing.T) {
	cache := newDedupeCache(30 * time.Minute)

	assert.True(t, cache.shouldEmit("out|Beans|Grain|Maganjo"))
	assert.True(t, cache.shouldEmit("out|Beans|Grain|Matugga"), "other branch is a distinct subject")
}

func TestOutOfStockWritesOnceWithinWindow(t *testing.T) {
	store := &fakeAlertStore{}
	svc := NewService(store, nil)

	require.NoError(t, svc.OutOfStock(context.Background(), key))
	require.NoError(t, svc.OutOfStock(context.Background(), key))

	require.Len(t, store.alerts, 1)
	assert.Equal(t, models.AlertOutOfStock, store.alerts[0].Kind)
	assert.Equal(t, "Maganjo", store.alerts[0].Branch)
}

func TestLowStockBlockCarriesRemainingQuantity(t *testing.T) {
	store := &fakeAlertStore{}
	svc := NewService(store, nil)

	require.NoError(t, svc.LowStockBlock(context.Background(), key, 400, 300))

	require.Len(t, store.alerts, 1)
	alert := store.alerts[0]
	assert.Equal(t, models.AlertLowStockBlock, alert.Kind)
	assert.Equal(t, 300.0, alert.QuantityKg)
	assert.Contains(t, alert.Message, "400.00 kg")
}

func TestStockUnavailableNamesProduceAndBranch(t *testing.T) {
	store := &fakeAlertStore{}
	svc := NewService(store, nil)

	require.NoError(t, svc.StockUnavailable(context.Background(), "Millet", "Matugga"))

	require.Len(t, store.alerts, 1)
	assert.Equal(t, models.AlertStockUnavailable, store.alerts[0].Kind)
	assert.Contains(t, store.alerts[0].Message, "Millet")
	assert.Contains(t, store.alerts[0].Message, "Matugga")
}

func TestDistinctAlertKindsDoNotSuppressEachOther(t *testing.T) {
	store := &fakeAlertStore{}
	svc := NewService(store, nil)

	require.NoError(t, svc.LowStockBlock(context.Background(), key, 400, 300))
	require.NoError(t, svc.OutOfStock(context.Background(), key))

	assert.Len(t, store.alerts, 2)
}
