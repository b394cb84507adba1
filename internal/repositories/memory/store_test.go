package memory_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SscSPs/resale_settlement/internal/apperrors"
	"github.com/SscSPs/resale_settlement/internal/core/domain"
	"github.com/SscSPs/resale_settlement/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const client = "client-1"

func seedOrderWithDebt(t *testing.T, store *memory.Store, orderID, debtID string, createdAt time.Time, remaining string) {
	t.Helper()
	order := domain.Order{
		OrderID:       orderID,
		ClientID:      client,
		CustomerRef:   "cust-1",
		TotalUSD:      decimal.RequireFromString("1000"),
		TotalPaidUSD:  decimal.RequireFromString("600"),
		PaymentStatus: domain.PaymentPartial,
		LineItems:     []domain.LineItem{{LineItemID: "li-" + orderID, OrderID: orderID, InventoryItemRef: "imei-" + orderID, SalePriceUSD: decimal.RequireFromString("1000")}},
		AuditFields:   domain.NewAuditFields("actor", createdAt),
	}
	debt := &domain.Debt{
		DebtID:       debtID,
		OrderID:      orderID,
		ClientID:     client,
		CustomerRef:  "cust-1",
		OriginalUSD:  decimal.RequireFromString(remaining),
		RemainingUSD: decimal.RequireFromString(remaining),
		Status:       domain.DebtActive,
		AuditFields:  domain.NewAuditFields("actor", createdAt),
	}
	require.NoError(t, store.SaveOrder(context.Background(), order, nil, debt))
}

func TestStore_ExchangeRates(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	_, err := store.FindExchangeRate(ctx, client, domain.MethodCashARS)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	entry := domain.ExchangeRateEntry{ClientID: client, MethodCode: domain.MethodCashARS, Rate: decimal.NewFromInt(1100)}
	inserted, err := store.InsertExchangeRateIfAbsent(ctx, entry)
	require.NoError(t, err)
	assert.True(t, inserted)

	entry.Rate = decimal.NewFromInt(900)
	inserted, err = store.InsertExchangeRateIfAbsent(ctx, entry)
	require.NoError(t, err)
	assert.False(t, inserted)

	got, err := store.FindExchangeRate(ctx, client, domain.MethodCashARS)
	require.NoError(t, err)
	assert.Equal(t, "1100", got.Rate.String())

	require.NoError(t, store.SaveExchangeRate(ctx, entry))
	got, err = store.FindExchangeRate(ctx, client, domain.MethodCashARS)
	require.NoError(t, err)
	assert.Equal(t, "900", got.Rate.String())

	_, err = store.FindExchangeRate(ctx, "other-client", domain.MethodCashARS)
	assert.Error(t, err)

	require.NoError(t, store.SaveExchangeRate(ctx, domain.ExchangeRateEntry{ClientID: client, MethodCode: domain.MethodCashUSD, Rate: decimal.NewFromInt(1)}))
	rates, err := store.ListExchangeRates(ctx, client)
	require.NoError(t, err)
	require.Len(t, rates, 2)
	assert.Equal(t, domain.MethodCashARS, rates[0].MethodCode)
	assert.Equal(t, domain.MethodCashUSD, rates[1].MethodCode)
}

func TestStore_FindOrder_ScopedByClient(t *testing.T) {
	store := memory.NewStore()
	seedOrderWithDebt(t, store, "o-1", "d-1", time.Now(), "400")

	order, err := store.FindOrderByID(context.Background(), client, "o-1")
	require.NoError(t, err)
	assert.Len(t, order.LineItems, 1)

	_, err = store.FindOrderByID(context.Background(), "other", "o-1")
	assert.Equal(t, apperrors.KindOrderNotFound, apperrors.KindOf(err))

	debt, err := store.FindDebtByOrderID(context.Background(), client, "o-1")
	require.NoError(t, err)
	assert.Equal(t, "d-1", debt.DebtID)
}

func TestStore_SaveOrder_RejectsDuplicate(t *testing.T) {
	store := memory.NewStore()
	seedOrderWithDebt(t, store, "o-1", "d-1", time.Now(), "400")

	err := store.SaveOrder(context.Background(), domain.Order{OrderID: "o-1", ClientID: client}, nil, nil)
	assert.Equal(t, apperrors.KindDuplicate, apperrors.KindOf(err))
}

func TestStore_ListOrders_Paginates(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedOrderWithDebt(t, store, fmt.Sprintf("o-%d", i), fmt.Sprintf("d-%d", i), base.Add(time.Duration(i)*time.Minute), "400")
	}

	page, next, err := store.ListOrders(ctx, client, domain.OrderFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.NotNil(t, next)
	assert.Equal(t, "o-4", page[0].OrderID)
	assert.Equal(t, "o-3", page[1].OrderID)

	page, next, err = store.ListOrders(ctx, client, domain.OrderFilter{Limit: 2, NextToken: next})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "o-2", page[0].OrderID)

	page, next, err = store.ListOrders(ctx, client, domain.OrderFilter{Limit: 2, NextToken: next})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Nil(t, next)
	assert.Equal(t, "o-0", page[0].OrderID)

	bad := "%%%"
	_, _, err = store.ListOrders(ctx, client, domain.OrderFilter{NextToken: &bad})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestStore_ListDebts_FiltersByStatus(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedOrderWithDebt(t, store, "o-1", "d-1", time.Now(), "400")
	seedOrderWithDebt(t, store, "o-2", "d-2", time.Now().Add(time.Second), "100")
	_, err := store.CancelDebt(ctx, client, "d-2", "actor", time.Now())
	require.NoError(t, err)

	active := domain.DebtActive
	debts, next, err := store.ListDebts(ctx, client, domain.DebtFilter{Status: &active})
	require.NoError(t, err)
	assert.Nil(t, next)
	require.Len(t, debts, 1)
	assert.Equal(t, "d-1", debts[0].DebtID)
}

func TestStore_SettleDebt_UpdatesOrderAndRecords(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedOrderWithDebt(t, store, "o-1", "d-1", time.Now(), "400")

	settlement, err := store.SettleDebt(ctx, client, "d-1", func(_ context.Context, locked domain.Debt) (*domain.DebtSettlement, error) {
		locked.RemainingUSD = decimal.Zero
		locked.Status = domain.DebtSettled
		return &domain.DebtSettlement{
			Debt:               locked,
			Records:            []domain.SettlementRecord{{RecordID: "r-1", ClientID: client, TargetType: domain.TargetDebt, TargetRef: "d-1"}},
			AppliedUSD:         decimal.RequireFromString("400"),
			OrderPaymentStatus: domain.PaymentPaid,
		}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DebtSettled, settlement.Debt.Status)

	order, err := store.FindOrderByID(ctx, client, "o-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, order.PaymentStatus)
	assert.Equal(t, "1000", order.TotalPaidUSD.String())

	records, err := store.ListSettlementRecords(ctx, client, domain.TargetDebt, "d-1")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestStore_SettleDebt_ApplyErrorLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedOrderWithDebt(t, store, "o-1", "d-1", time.Now(), "400")

	boom := errors.New("boom")
	_, err := store.SettleDebt(ctx, client, "d-1", func(context.Context, domain.Debt) (*domain.DebtSettlement, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	debt, err := store.FindDebtByID(ctx, client, "d-1")
	require.NoError(t, err)
	assert.Equal(t, "400", debt.RemainingUSD.String())

	_, err = store.SettleDebt(ctx, client, "missing", nil)
	assert.Equal(t, apperrors.KindDebtNotFound, apperrors.KindOf(err))
}

func TestStore_SettleDebt_SerializesPerDebt(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedOrderWithDebt(t, store, "o-1", "d-1", time.Now(), "400")

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.SettleDebt(ctx, client, "d-1", func(_ context.Context, locked domain.Debt) (*domain.DebtSettlement, error) {
				n := atomic.AddInt32(&inside, 1)
				for {
					old := atomic.LoadInt32(&maxInside)
					if n <= old || atomic.CompareAndSwapInt32(&maxInside, old, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inside, -1)
				locked.RemainingUSD = locked.RemainingUSD.Sub(decimal.NewFromInt(10))
				return &domain.DebtSettlement{Debt: locked, AppliedUSD: decimal.NewFromInt(10), OrderPaymentStatus: domain.PaymentPartial}, nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	debt, err := store.FindDebtByID(ctx, client, "d-1")
	require.NoError(t, err)
	assert.Equal(t, "320", debt.RemainingUSD.String())
}

func TestStore_CancelDebt(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedOrderWithDebt(t, store, "o-1", "d-1", time.Now(), "400")

	debt, err := store.CancelDebt(ctx, client, "d-1", "actor-2", time.Now())
	require.NoError(t, err)
	assert.Equal(t, domain.DebtCancelled, debt.Status)
	assert.Equal(t, "actor-2", debt.LastUpdatedBy)

	_, err = store.CancelDebt(ctx, client, "d-1", "actor-2", time.Now())
	assert.Equal(t, apperrors.KindDebtAlreadySettled, apperrors.KindOf(err))
}
