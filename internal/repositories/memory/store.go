// Package memory holds in-process implementations of the repository ports
// and the inventory gateway. They back STORAGE_DRIVER=memory and the
// workflow tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/resale_settlement/internal/apperrors"
	"github.com/SscSPs/resale_settlement/internal/core/domain"
	portsrepo "github.com/SscSPs/resale_settlement/internal/core/ports/repositories"
	"github.com/SscSPs/resale_settlement/internal/utils/pagination"
)

type rateKey struct {
	clientID string
	method   domain.PaymentMethodCode
}

// Store implements every repository port over maps guarded by one RWMutex.
// Debt settlement additionally takes a per-debt lock so the data mutex is not
// held while the settlement callback runs.
type Store struct {
	mu      sync.RWMutex
	rates   map[rateKey]domain.ExchangeRateEntry
	orders  map[string]domain.Order
	debts   map[string]domain.Debt
	records []domain.SettlementRecord

	debtLocks sync.Map // debtID -> *sync.Mutex
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		rates:  make(map[rateKey]domain.ExchangeRateEntry),
		orders: make(map[string]domain.Order),
		debts:  make(map[string]domain.Debt),
	}
}

// NewRepositoryProvider exposes the store through the repository ports.
func NewRepositoryProvider(store *Store) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		ExchangeRateRepo:     store,
		OrderRepo:            store,
		DebtRepo:             store,
		SettlementRecordRepo: store,
	}
}

var (
	_ portsrepo.ExchangeRateRepositoryFacade = (*Store)(nil)
	_ portsrepo.OrderRepositoryFacade        = (*Store)(nil)
	_ portsrepo.DebtRepositoryFacade         = (*Store)(nil)
	_ portsrepo.SettlementRecordReader       = (*Store)(nil)
)

func (s *Store) debtLock(debtID string) *sync.Mutex {
	lock, _ := s.debtLocks.LoadOrStore(debtID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// --- exchange rates ---

func (s *Store) FindExchangeRate(ctx context.Context, clientID string, method domain.PaymentMethodCode) (*domain.ExchangeRateEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rate, ok := s.rates[rateKey{clientID, method}]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &rate, nil
}

func (s *Store) ListExchangeRates(ctx context.Context, clientID string) ([]domain.ExchangeRateEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rates := make([]domain.ExchangeRateEntry, 0)
	for key, rate := range s.rates {
		if key.clientID == clientID {
			rates = append(rates, rate)
		}
	}
	sort.Slice(rates, func(i, j int) bool { return rates[i].MethodCode < rates[j].MethodCode })
	return rates, nil
}

func (s *Store) SaveExchangeRate(ctx context.Context, rate domain.ExchangeRateEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates[rateKey{rate.ClientID, rate.MethodCode}] = rate
	return nil
}

func (s *Store) InsertExchangeRateIfAbsent(ctx context.Context, rate domain.ExchangeRateEntry) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := rateKey{rate.ClientID, rate.MethodCode}
	if _, exists := s.rates[key]; exists {
		return false, nil
	}
	s.rates[key] = rate
	return true, nil
}

// --- orders ---

func (s *Store) FindOrderByID(ctx context.Context, clientID, orderID string) (*domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	order, ok := s.orders[orderID]
	if !ok || order.ClientID != clientID {
		return nil, apperrors.NewOrderNotFoundError(orderID)
	}
	out := cloneOrder(order)
	return &out, nil
}

func (s *Store) ListOrders(ctx context.Context, clientID string, filter domain.OrderFilter) ([]domain.Order, *string, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	cursor, err := decodeCursor(filter.NextToken)
	if err != nil {
		return nil, nil, err
	}

	s.mu.RLock()
	matches := make([]domain.Order, 0)
	for _, o := range s.orders {
		if o.ClientID != clientID {
			continue
		}
		if filter.PaymentStatus != nil && o.PaymentStatus != *filter.PaymentStatus {
			continue
		}
		if filter.CustomerRef != nil && o.CustomerRef != *filter.CustomerRef {
			continue
		}
		if cursor != nil && !cursor.After(o.CreatedAt, o.OrderID) {
			continue
		}
		matches = append(matches, cloneOrder(o))
	}
	s.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		return newestFirst(matches[i].CreatedAt, matches[i].OrderID, matches[j].CreatedAt, matches[j].OrderID)
	})
	page, next := paginate(matches, filter.Limit, func(o domain.Order) (time.Time, string) { return o.CreatedAt, o.OrderID })
	return page, next, nil
}

func (s *Store) SaveOrder(ctx context.Context, order domain.Order, records []domain.SettlementRecord, debt *domain.Debt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.orders[order.OrderID]; exists {
		return apperrors.NewDuplicateError("order already exists: " + order.OrderID)
	}
	if debt != nil {
		if _, exists := s.debts[debt.DebtID]; exists {
			return apperrors.NewDuplicateError("debt already exists: " + debt.DebtID)
		}
		s.debts[debt.DebtID] = *debt
	}
	s.orders[order.OrderID] = cloneOrder(order)
	s.records = append(s.records, records...)
	return nil
}

// --- debts ---

func (s *Store) FindDebtByID(ctx context.Context, clientID, debtID string) (*domain.Debt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	debt, ok := s.debts[debtID]
	if !ok || debt.ClientID != clientID {
		return nil, apperrors.NewDebtNotFoundError(debtID)
	}
	return &debt, nil
}

func (s *Store) FindDebtByOrderID(ctx context.Context, clientID, orderID string) (*domain.Debt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, debt := range s.debts {
		if debt.OrderID == orderID && debt.ClientID == clientID {
			d := debt
			return &d, nil
		}
	}
	return nil, apperrors.NewDebtNotFoundError(orderID)
}

func (s *Store) ListDebts(ctx context.Context, clientID string, filter domain.DebtFilter) ([]domain.Debt, *string, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	cursor, err := decodeCursor(filter.NextToken)
	if err != nil {
		return nil, nil, err
	}

	s.mu.RLock()
	matches := make([]domain.Debt, 0)
	for _, d := range s.debts {
		if d.ClientID != clientID {
			continue
		}
		if filter.Status != nil && d.Status != *filter.Status {
			continue
		}
		if filter.CustomerRef != nil && d.CustomerRef != *filter.CustomerRef {
			continue
		}
		if cursor != nil && !cursor.After(d.CreatedAt, d.DebtID) {
			continue
		}
		matches = append(matches, d)
	}
	s.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		return newestFirst(matches[i].CreatedAt, matches[i].DebtID, matches[j].CreatedAt, matches[j].DebtID)
	})
	page, next := paginate(matches, filter.Limit, func(d domain.Debt) (time.Time, string) { return d.CreatedAt, d.DebtID })
	return page, next, nil
}

func (s *Store) SettleDebt(ctx context.Context, clientID, debtID string, apply domain.DebtSettlementFunc) (*domain.DebtSettlement, error) {
	lock := s.debtLock(debtID)
	lock.Lock()
	defer lock.Unlock()

	locked, err := s.FindDebtByID(ctx, clientID, debtID)
	if err != nil {
		return nil, err
	}
	settlement, err := apply(ctx, *locked)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.debts[debtID] = settlement.Debt
	s.records = append(s.records, settlement.Records...)
	if order, ok := s.orders[locked.OrderID]; ok {
		order.PaymentStatus = settlement.OrderPaymentStatus
		order.TotalPaidUSD = order.TotalPaidUSD.Add(settlement.AppliedUSD)
		order.Touch(settlement.Debt.LastUpdatedBy, settlement.Debt.LastUpdatedAt)
		s.orders[locked.OrderID] = order
	}
	return settlement, nil
}

func (s *Store) CancelDebt(ctx context.Context, clientID, debtID, actorID string, at time.Time) (*domain.Debt, error) {
	lock := s.debtLock(debtID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	debt, ok := s.debts[debtID]
	if !ok || debt.ClientID != clientID {
		return nil, apperrors.NewDebtNotFoundError(debtID)
	}
	if !debt.IsOpen() {
		return nil, apperrors.NewDebtAlreadySettledError(debtID, string(debt.Status))
	}
	debt.Status = domain.DebtCancelled
	debt.Touch(actorID, at)
	s.debts[debtID] = debt
	return &debt, nil
}

// --- settlement records ---

func (s *Store) ListSettlementRecords(ctx context.Context, clientID string, target domain.SettlementTarget, targetRef string) ([]domain.SettlementRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SettlementRecord, 0)
	for _, r := range s.records {
		if r.ClientID == clientID && r.TargetType == target && r.TargetRef == targetRef {
			out = append(out, r)
		}
	}
	return out, nil
}

// --- helpers ---

func cloneOrder(o domain.Order) domain.Order {
	o.LineItems = append([]domain.LineItem(nil), o.LineItems...)
	o.Allocations = append([]domain.PaymentAllocation(nil), o.Allocations...)
	return o
}

func decodeCursor(token *string) (*pagination.Cursor, error) {
	if token == nil || *token == "" {
		return nil, nil
	}
	cursor, err := pagination.DecodeToken(*token)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	return &cursor, nil
}

func newestFirst(at1 time.Time, id1 string, at2 time.Time, id2 string) bool {
	if at1.Equal(at2) {
		return id1 > id2
	}
	return at1.After(at2)
}

func paginate[T any](rows []T, limit int, key func(T) (time.Time, string)) ([]T, *string) {
	limit = pagination.ClampLimit(limit)
	if len(rows) <= limit {
		return rows, nil
	}
	page := rows[:limit]
	at, id := key(page[len(page)-1])
	token := pagination.EncodeToken(at, id)
	return page, &token
}
