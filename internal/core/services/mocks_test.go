package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/SscSPs/resale_settlement/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

// --- Mock ExchangeRateRepository ---
type MockExchangeRateRepository struct {
	mock.Mock
}

func (m *MockExchangeRateRepository) FindExchangeRate(ctx context.Context, clientID string, method domain.PaymentMethodCode) (*domain.ExchangeRateEntry, error) {
	args := m.Called(ctx, clientID, method)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRateEntry), args.Error(1)
}

func (m *MockExchangeRateRepository) ListExchangeRates(ctx context.Context, clientID string) ([]domain.ExchangeRateEntry, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExchangeRateEntry), args.Error(1)
}

func (m *MockExchangeRateRepository) SaveExchangeRate(ctx context.Context, rate domain.ExchangeRateEntry) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *MockExchangeRateRepository) InsertExchangeRateIfAbsent(ctx context.Context, rate domain.ExchangeRateEntry) (bool, error) {
	args := m.Called(ctx, rate)
	return args.Bool(0), args.Error(1)
}

// --- Mock RateCache ---
type MockRateCache struct {
	mock.Mock
}

func (m *MockRateCache) Get(ctx context.Context, clientID string, method domain.PaymentMethodCode) (*domain.ExchangeRateEntry, bool, error) {
	args := m.Called(ctx, clientID, method)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.ExchangeRateEntry), args.Bool(1), args.Error(2)
}

func (m *MockRateCache) Set(ctx context.Context, rate domain.ExchangeRateEntry, ttl time.Duration) error {
	args := m.Called(ctx, rate, ttl)
	return args.Error(0)
}

func (m *MockRateCache) Delete(ctx context.Context, clientID string, method domain.PaymentMethodCode) error {
	args := m.Called(ctx, clientID, method)
	return args.Error(0)
}

// --- In-process RateCache keeping the newest version per key ---
type versionedRateCache struct {
	mu      sync.Mutex
	entries map[string]domain.ExchangeRateEntry
}

func newVersionedRateCache() *versionedRateCache {
	return &versionedRateCache{entries: map[string]domain.ExchangeRateEntry{}}
}

func (c *versionedRateCache) Get(_ context.Context, clientID string, method domain.PaymentMethodCode) (*domain.ExchangeRateEntry, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[clientID+":"+string(method)]
	if !ok {
		return nil, false, nil
	}
	return &e, true, nil
}

func (c *versionedRateCache) Set(_ context.Context, rate domain.ExchangeRateEntry, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := rate.ClientID + ":" + string(rate.MethodCode)
	if cur, ok := c.entries[key]; ok && cur.Version() > rate.Version() {
		return nil
	}
	c.entries[key] = rate
	return nil
}

func (c *versionedRateCache) Delete(_ context.Context, clientID string, method domain.PaymentMethodCode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, clientID+":"+string(method))
	return nil
}

// --- Mock OrderRepository ---
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindOrderByID(ctx context.Context, clientID, orderID string) (*domain.Order, error) {
	args := m.Called(ctx, clientID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) ListOrders(ctx context.Context, clientID string, filter domain.OrderFilter) ([]domain.Order, *string, error) {
	args := m.Called(ctx, clientID, filter)
	var next *string
	if args.Get(1) != nil {
		next = args.Get(1).(*string)
	}
	if args.Get(0) == nil {
		return nil, next, args.Error(2)
	}
	return args.Get(0).([]domain.Order), next, args.Error(2)
}

func (m *MockOrderRepository) SaveOrder(ctx context.Context, order domain.Order, records []domain.SettlementRecord, debt *domain.Debt) error {
	args := m.Called(ctx, order, records, debt)
	return args.Error(0)
}

// --- Mock SettlementRecordReader ---
type MockSettlementRecordReader struct {
	mock.Mock
}

func (m *MockSettlementRecordReader) ListSettlementRecords(ctx context.Context, clientID string, target domain.SettlementTarget, targetRef string) ([]domain.SettlementRecord, error) {
	args := m.Called(ctx, clientID, target, targetRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SettlementRecord), args.Error(1)
}

// --- Mock InventoryGateway ---
type MockInventoryGateway struct {
	mock.Mock
}

func (m *MockInventoryGateway) GetItem(ctx context.Context, itemRef string) (*domain.InventoryItem, error) {
	args := m.Called(ctx, itemRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InventoryItem), args.Error(1)
}

func (m *MockInventoryGateway) TrySell(ctx context.Context, itemRef, actorID string) (domain.SaleTicket, error) {
	args := m.Called(ctx, itemRef, actorID)
	return args.Get(0).(domain.SaleTicket), args.Error(1)
}

func (m *MockInventoryGateway) ReleaseSale(ctx context.Context, ticket domain.SaleTicket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

// --- Recording EventPublisher ---
type recordingPublisher struct {
	mu     sync.Mutex
	orders []domain.OrderCommittedEvent
	debts  []domain.DebtSettledEvent
}

func (p *recordingPublisher) PublishOrderCommitted(_ context.Context, e domain.OrderCommittedEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.orders = append(p.orders, e)
}

func (p *recordingPublisher) PublishDebtSettled(_ context.Context, e domain.DebtSettledEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.debts = append(p.debts, e)
}
