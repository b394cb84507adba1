package memory_test

import (
	"context"
	"testing"

	"github.com/SscSPs/resale_settlement/internal/apperrors"
	"github.com/SscSPs/resale_settlement/internal/core/domain"
	"github.com/SscSPs/resale_settlement/internal/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestInventory_TrySellAndRelease(t *testing.T) {
	ctx := context.Background()
	inv := memory.NewInventory()
	inv.Put("imei-1", domain.ItemReserved)

	ticket, err := inv.TrySell(ctx, "imei-1", "actor")
	require.NoError(t, err)
	assert.Equal(t, domain.ItemReserved, ticket.PriorStatus)

	item, err := inv.GetItem(ctx, "imei-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ItemSold, item.Status)

	_, err = inv.TrySell(ctx, "imei-1", "actor")
	assert.Equal(t, apperrors.KindInventoryConflict, apperrors.KindOf(err))

	require.NoError(t, inv.ReleaseSale(ctx, ticket))
	item, err = inv.GetItem(ctx, "imei-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ItemReserved, item.Status)

	// A second release with the stale ticket is a no-op.
	require.NoError(t, inv.ReleaseSale(ctx, ticket))
	item, err = inv.GetItem(ctx, "imei-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ItemReserved, item.Status)
}

func TestInventory_UnknownItemConflicts(t *testing.T) {
	_, err := memory.NewInventory().TrySell(context.Background(), "ghost", "actor")
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindInventoryConflict, appErr.Kind)
	assert.Equal(t, []string{"ghost"}, appErr.Items)
}

func TestInventory_ConcurrentSellOnlyOneWins(t *testing.T) {
	inv := memory.NewInventory()
	inv.Put("imei-1", domain.ItemAvailable)

	results := make([]error, 16)
	var g errgroup.Group
	for i := range results {
		i := i
		g.Go(func() error {
			_, results[i] = inv.TrySell(context.Background(), "imei-1", "actor")
			return nil
		})
	}
	require.NoError(t, g.Wait())

	wins := 0
	for _, err := range results {
		if err == nil {
			wins++
			continue
		}
		assert.Equal(t, apperrors.KindInventoryConflict, apperrors.KindOf(err))
	}
	assert.Equal(t, 1, wins)
}
