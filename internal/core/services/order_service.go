package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/resale_settlement/internal/apperrors"
	"github.com/SscSPs/resale_settlement/internal/core/domain"
	"github.com/SscSPs/resale_settlement/internal/core/ports/gateways"
	portsrepo "github.com/SscSPs/resale_settlement/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/resale_settlement/internal/core/ports/services"
	"github.com/SscSPs/resale_settlement/internal/dto"
	"github.com/SscSPs/resale_settlement/internal/utils/accounting"
	"github.com/SscSPs/resale_settlement/internal/utils/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const defaultDebtDueDays = 30

type orderService struct {
	BaseService
	orderRepo      portsrepo.OrderRepositoryFacade
	recordRepo     portsrepo.SettlementRecordReader
	validator      portssvc.AllocationValidatorSvc
	inventory      gateways.InventoryGateway
	directory      gateways.PartyDirectory
	publisher      gateways.EventPublisher
	debtDueDays    int
	releaseTimeout time.Duration
}

// OrderServiceOption is a functional option for configuring the order service
type OrderServiceOption func(*orderService)

// WithPartyDirectory resolves customer and vendor display names.
func WithPartyDirectory(directory gateways.PartyDirectory) OrderServiceOption {
	return func(s *orderService) {
		s.directory = directory
	}
}

// WithOrderPublisher emits order.committed events.
func WithOrderPublisher(publisher gateways.EventPublisher) OrderServiceOption {
	return func(s *orderService) {
		s.publisher = publisher
	}
}

// WithDebtDueDays sets how far out a new debt's due date is.
func WithDebtDueDays(days int) OrderServiceOption {
	return func(s *orderService) {
		if days > 0 {
			s.debtDueDays = days
		}
	}
}

// WithReleaseTimeout bounds compensation after a failed order.
func WithReleaseTimeout(d time.Duration) OrderServiceOption {
	return func(s *orderService) {
		s.releaseTimeout = d
	}
}

// WithOrderClock overrides time.Now.
func WithOrderClock(now func() time.Time) OrderServiceOption {
	return func(s *orderService) {
		s.now = now
	}
}

// NewOrderService creates the order settlement workflow.
func NewOrderService(
	orderRepo portsrepo.OrderRepositoryFacade,
	recordRepo portsrepo.SettlementRecordReader,
	validator portssvc.AllocationValidatorSvc,
	inventory gateways.InventoryGateway,
	options ...OrderServiceOption,
) portssvc.OrderSvcFacade {
	svc := &orderService{
		orderRepo:      orderRepo,
		recordRepo:     recordRepo,
		validator:      validator,
		inventory:      inventory,
		directory:      passthroughDirectory{},
		publisher:      noopPublisher{},
		debtDueDays:    defaultDebtDueDays,
		releaseTimeout: defaultReleaseTimeout,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.OrderSvcFacade = (*orderService)(nil)

// GetOrder returns one order with its line items and allocations.
func (s *orderService) GetOrder(ctx context.Context, clientID, orderID string) (*domain.Order, error) {
	order, err := s.orderRepo.FindOrderByID(ctx, clientID, orderID)
	if err != nil {
		return nil, storageErr(ctx, err, "failed to load order")
	}
	return order, nil
}

// ListOrders returns a newest-first page of orders.
func (s *orderService) ListOrders(ctx context.Context, clientID string, params dto.ListOrdersParams) (*dto.ListOrdersResponse, error) {
	if params.NextToken != nil && *params.NextToken != "" {
		if _, err := pagination.DecodeToken(*params.NextToken); err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
	}
	filter := domain.OrderFilter{
		CustomerRef: params.CustomerRef,
		Limit:       pagination.ClampLimit(params.Limit),
		NextToken:   params.NextToken,
	}
	if params.PaymentStatus != nil {
		status := domain.PaymentStatus(*params.PaymentStatus)
		filter.PaymentStatus = &status
	}

	orders, nextToken, err := s.orderRepo.ListOrders(ctx, clientID, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list orders", slog.String("client_id", clientID))
		return nil, storageErr(ctx, err, "failed to list orders")
	}
	return dto.ToListOrdersResponse(orders, nextToken), nil
}

// ListOrderSettlements returns the payment records written with the order.
func (s *orderService) ListOrderSettlements(ctx context.Context, clientID, orderID string) ([]domain.SettlementRecord, error) {
	if _, err := s.GetOrder(ctx, clientID, orderID); err != nil {
		return nil, err
	}
	records, err := s.recordRepo.ListSettlementRecords(ctx, clientID, domain.TargetOrder, orderID)
	if err != nil {
		return nil, storageErr(ctx, err, "failed to list order settlements")
	}
	return records, nil
}

// CreateOrder runs the order settlement workflow: validate, sell every item,
// persist, then announce. Tickets are released on any failure after selling.
func (s *orderService) CreateOrder(ctx context.Context, clientID string, req dto.CreateOrderRequest, actorID string) (*domain.OrderResult, error) {
	itemRefs, prices, total, err := s.validateLineItems(clientID, req)
	if err != nil {
		return nil, err
	}

	result, err := s.allocate(ctx, clientID, req, total)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	orderID := uuid.NewString()
	order := domain.Order{
		OrderID:         orderID,
		ClientID:        clientID,
		CustomerRef:     strings.TrimSpace(req.CustomerRef),
		CustomerDisplay: s.displayName(ctx, domain.PartyCustomer, req.CustomerRef),
		VendorRef:       strings.TrimSpace(req.VendorRef),
		VendorDisplay:   s.displayName(ctx, domain.PartyVendor, req.VendorRef),
		TotalUSD:        total,
		TotalPaidUSD:    decimal.Min(result.TotalPaidUSD, total),
		PaymentStatus:   accounting.PaymentStatusFor(result.Outcome, result.TotalPaidUSD),
		Allocations:     result.Allocations,
		ShippingInfo:    req.ShippingInfo,
		Observations:    req.Observations,
		AuditFields:     domain.NewAuditFields(actorID, now),
	}
	order.LineItems = make([]domain.LineItem, len(req.LineItems))
	for i := range req.LineItems {
		order.LineItems[i] = domain.LineItem{
			LineItemID:       uuid.NewString(),
			OrderID:          orderID,
			InventoryItemRef: itemRefs[i],
			SalePriceUSD:     prices[i],
		}
	}
	surplus := accounting.Surplus(result.TotalPaidUSD, total)
	records := buildRecords(clientID, domain.TargetOrder, orderID, result.Allocations, surplus, req.Notes, actorID, now)

	var debt *domain.Debt
	if result.Outcome == domain.OutcomeShortfall {
		debt = &domain.Debt{
			DebtID:       uuid.NewString(),
			OrderID:      orderID,
			ClientID:     clientID,
			CustomerRef:  order.CustomerRef,
			OriginalUSD:  total,
			RemainingUSD: result.ShortfallUSD,
			Status:       domain.DebtActive,
			DueDate:      now.AddDate(0, 0, s.debtDueDays),
			AuditFields:  domain.NewAuditFields(actorID, now),
		}
	}

	arena := newTicketArena(s.inventory, s.releaseTimeout)
	committed := false
	defer func() {
		if !committed {
			arena.releaseAll(ctx)
		}
	}()

	if err := arena.acquire(ctx, itemRefs, actorID); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewTimeoutError("order creation timed out", err)
	}
	if err := s.orderRepo.SaveOrder(ctx, order, records, debt); err != nil {
		s.LogError(ctx, err, "Failed to persist order",
			slog.String("client_id", clientID),
			slog.String("order_id", orderID))
		return nil, storageErr(ctx, err, "failed to persist order")
	}
	committed = true

	s.LogInfo(ctx, "Order created",
		slog.String("client_id", clientID),
		slog.String("order_id", orderID),
		slog.String("total_usd", total.StringFixed(domain.MoneyPlaces)),
		slog.String("payment_status", string(order.PaymentStatus)))

	event := domain.OrderCommittedEvent{
		OrderID:       orderID,
		ClientID:      clientID,
		TotalUSD:      order.TotalUSD,
		TotalPaidUSD:  order.TotalPaidUSD,
		PaymentStatus: order.PaymentStatus,
		ItemRefs:      arena.itemRefs(),
		OccurredAt:    now,
	}
	if debt != nil {
		event.DebtID = &debt.DebtID
	}
	s.publisher.PublishOrderCommitted(ctx, event)

	return &domain.OrderResult{Order: order, Debt: debt}, nil
}

// validateLineItems returns the trimmed refs, the cent-rounded USD prices and
// their total.
func (s *orderService) validateLineItems(clientID string, req dto.CreateOrderRequest) ([]string, []decimal.Decimal, decimal.Decimal, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, nil, decimal.Zero, apperrors.NewValidationError("client id is required")
	}
	if strings.TrimSpace(req.CustomerRef) == "" || strings.TrimSpace(req.VendorRef) == "" {
		return nil, nil, decimal.Zero, apperrors.NewValidationError("customer and vendor are required")
	}
	if len(req.LineItems) == 0 {
		return nil, nil, decimal.Zero, apperrors.NewEmptyOrderError()
	}

	seen := make(map[string]struct{}, len(req.LineItems))
	refs := make([]string, len(req.LineItems))
	prices := make([]decimal.Decimal, len(req.LineItems))
	total := decimal.Zero
	for i, li := range req.LineItems {
		ref := strings.TrimSpace(li.InventoryItemRef)
		if ref == "" {
			return nil, nil, decimal.Zero, apperrors.NewValidationError("inventory item ref is required")
		}
		if _, dup := seen[ref]; dup {
			return nil, nil, decimal.Zero, apperrors.NewDuplicateLineItemError(ref)
		}
		seen[ref] = struct{}{}
		if domain.CurrencyCode(li.SalePrice.Currency) != domain.CurrencyUSD {
			return nil, nil, decimal.Zero, apperrors.NewInvalidAmountError(ref,
				fmt.Sprintf("sale price must be in USD, got %q", li.SalePrice.Currency))
		}
		price := accounting.RoundMoney(li.SalePrice.Amount)
		if !price.IsPositive() {
			return nil, nil, decimal.Zero, apperrors.NewInvalidAmountError(ref, "sale price must be at least 0.01")
		}
		refs[i] = ref
		prices[i] = price
		total = total.Add(price)
	}
	return refs, prices, accounting.RoundMoney(total), nil
}

// allocate validates the payment. An order on credit may carry no
// allocations, in which case the whole total becomes debt.
func (s *orderService) allocate(ctx context.Context, clientID string, req dto.CreateOrderRequest, total decimal.Decimal) (*domain.AllocationResult, error) {
	if len(req.Allocations) == 0 {
		if !req.OnCredit {
			return nil, apperrors.NewNoPaymentMethodSelectedError()
		}
		return &domain.AllocationResult{
			AmountDueUSD: total,
			TotalPaidUSD: decimal.Zero,
			Outcome:      domain.OutcomeShortfall,
			ShortfallUSD: total,
			OverpayUSD:   decimal.Zero,
		}, nil
	}
	return s.validator.Validate(ctx, clientID, dto.ToAllocationInputs(req.Allocations), total)
}

func (s *orderService) displayName(ctx context.Context, kind domain.PartyKind, ref string) string {
	ref = strings.TrimSpace(ref)
	name, err := s.directory.DisplayName(ctx, kind, ref)
	if err != nil || name == "" {
		if err != nil {
			s.LogWarn(ctx, "Party directory lookup failed",
				slog.String("kind", string(kind)),
				slog.String("ref", ref),
				slog.String("error", err.Error()))
		}
		return ref
	}
	return name
}

// buildRecords turns validated allocations into settlement records. Any
// surplus is noted on the last record.
func buildRecords(clientID string, target domain.SettlementTarget, targetRef string, allocations []domain.PaymentAllocation, surplus decimal.Decimal, notes, actorID string, at time.Time) []domain.SettlementRecord {
	records := make([]domain.SettlementRecord, len(allocations))
	for i, a := range allocations {
		records[i] = domain.SettlementRecord{
			RecordID:      uuid.NewString(),
			ClientID:      clientID,
			TargetType:    target,
			TargetRef:     targetRef,
			MethodCode:    a.MethodCode,
			NativeAmount:  a.NativeAmount.Amount,
			Currency:      a.NativeAmount.Currency,
			RateSnapshot:  a.RateSnapshot,
			USDEquivalent: a.USDEquivalent.Amount,
			SurplusUSD:    decimal.Zero,
			Notes:         notes,
			CreatedAt:     at,
			CreatedBy:     actorID,
		}
	}
	if n := len(records); n > 0 && surplus.IsPositive() {
		records[n-1].SurplusUSD = surplus
	}
	return records
}

// passthroughDirectory uses the ref itself as the display name.
type passthroughDirectory struct{}

func (passthroughDirectory) DisplayName(_ context.Context, _ domain.PartyKind, ref string) (string, error) {
	return ref, nil
}

type noopPublisher struct{}

func (noopPublisher) PublishOrderCommitted(context.Context, domain.OrderCommittedEvent) {}

func (noopPublisher) PublishDebtSettled(context.Context, domain.DebtSettledEvent) {}
