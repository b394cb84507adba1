package services

import (
	"context"
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
	"github.com/shopspring/decimal"
)

type debtService struct {
	BaseService
	debtRepo   portsrepo.DebtRepositoryFacade
	recordRepo portsrepo.SettlementRecordReader
	validator  portssvc.AllocationValidatorSvc
	publisher  gateways.EventPublisher
}

// DebtServiceOption is a functional option for configuring the debt service
type DebtServiceOption func(*debtService)

// WithDebtPublisher emits debt.settled events.
func WithDebtPublisher(publisher gateways.EventPublisher) DebtServiceOption {
	return func(s *debtService) {
		s.publisher = publisher
	}
}

// WithDebtClock overrides time.Now.
func WithDebtClock(now func() time.Time) DebtServiceOption {
	return func(s *debtService) {
		s.now = now
	}
}

// NewDebtService creates the debt ledger and settlement workflow.
func NewDebtService(
	debtRepo portsrepo.DebtRepositoryFacade,
	recordRepo portsrepo.SettlementRecordReader,
	validator portssvc.AllocationValidatorSvc,
	options ...DebtServiceOption,
) portssvc.DebtSvcFacade {
	svc := &debtService{
		debtRepo:   debtRepo,
		recordRepo: recordRepo,
		validator:  validator,
		publisher:  noopPublisher{},
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.DebtSvcFacade = (*debtService)(nil)

func (s *debtService) GetDebt(ctx context.Context, clientID, debtID string) (*domain.Debt, error) {
	debt, err := s.debtRepo.FindDebtByID(ctx, clientID, debtID)
	if err != nil {
		return nil, storageErr(ctx, err, "failed to load debt")
	}
	return debt, nil
}

func (s *debtService) GetDebtByOrder(ctx context.Context, clientID, orderID string) (*domain.Debt, error) {
	debt, err := s.debtRepo.FindDebtByOrderID(ctx, clientID, orderID)
	if err != nil {
		return nil, storageErr(ctx, err, "failed to load debt")
	}
	return debt, nil
}

func (s *debtService) ListDebts(ctx context.Context, clientID string, params dto.ListDebtsParams) (*dto.ListDebtsResponse, error) {
	if params.NextToken != nil && *params.NextToken != "" {
		if _, err := pagination.DecodeToken(*params.NextToken); err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
	}
	filter := domain.DebtFilter{
		CustomerRef: params.CustomerRef,
		Limit:       pagination.ClampLimit(params.Limit),
		NextToken:   params.NextToken,
	}
	if params.Status != nil {
		status := domain.DebtStatus(*params.Status)
		filter.Status = &status
	}

	debts, nextToken, err := s.debtRepo.ListDebts(ctx, clientID, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list debts", slog.String("client_id", clientID))
		return nil, storageErr(ctx, err, "failed to list debts")
	}
	return dto.ToListDebtsResponse(debts, nextToken), nil
}

func (s *debtService) ListDebtSettlements(ctx context.Context, clientID, debtID string) ([]domain.SettlementRecord, error) {
	if _, err := s.GetDebt(ctx, clientID, debtID); err != nil {
		return nil, err
	}
	records, err := s.recordRepo.ListSettlementRecords(ctx, clientID, domain.TargetDebt, debtID)
	if err != nil {
		return nil, storageErr(ctx, err, "failed to list debt settlements")
	}
	return records, nil
}

// SettleDebt applies a payment to an active debt. Rates are resolved and
// allocations converted before the debt is locked; under the lock only the
// converted total is compared with the current remaining balance, so
// concurrent settlements cannot drive the balance below zero.
func (s *debtService) SettleDebt(ctx context.Context, clientID, debtID string, req dto.SettleDebtRequest, actorID string) (*domain.DebtSettlementResult, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, apperrors.NewValidationError("client id is required")
	}
	current, err := s.GetDebt(ctx, clientID, debtID)
	if err != nil {
		return nil, err
	}
	if !current.IsOpen() {
		return nil, apperrors.NewDebtAlreadySettledError(current.DebtID, string(current.Status))
	}
	if len(req.Allocations) == 0 {
		return nil, apperrors.NewNoPaymentMethodSelectedError()
	}

	priced, err := s.validator.Validate(ctx, clientID, dto.ToAllocationInputs(req.Allocations), current.RemainingUSD)
	if err != nil {
		return nil, err
	}
	paid := priced.TotalPaidUSD

	var surplus decimal.Decimal
	apply := func(_ context.Context, locked domain.Debt) (*domain.DebtSettlement, error) {
		if !locked.IsOpen() {
			return nil, apperrors.NewDebtAlreadySettledError(locked.DebtID, string(locked.Status))
		}

		now := s.Now()
		applied := decimal.Min(paid, locked.RemainingUSD)
		remaining := accounting.RoundMoney(locked.RemainingUSD.Sub(applied))
		surplus = accounting.Surplus(paid, locked.RemainingUSD)

		updated := locked
		updated.Touch(actorID, now)
		orderStatus := domain.PaymentPartial
		if remaining.LessThanOrEqual(domain.MoneyTolerance) {
			remaining = decimal.Zero
			updated.Status = domain.DebtSettled
			orderStatus = domain.PaymentPaid
		}
		updated.RemainingUSD = remaining

		return &domain.DebtSettlement{
			Debt:               updated,
			Records:            buildRecords(clientID, domain.TargetDebt, locked.DebtID, priced.Allocations, surplus, req.Notes, actorID, now),
			AppliedUSD:         applied,
			OrderPaymentStatus: orderStatus,
		}, nil
	}

	settlement, err := s.debtRepo.SettleDebt(ctx, clientID, debtID, apply)
	if err != nil {
		if apperrors.KindOf(err).IsValidation() || apperrors.KindOf(err) == apperrors.KindDebtAlreadySettled {
			s.LogWarn(ctx, "Debt settlement rejected",
				slog.String("debt_id", debtID),
				slog.String("kind", string(apperrors.KindOf(err))))
			return nil, err
		}
		s.LogError(ctx, err, "Failed to settle debt", slog.String("debt_id", debtID))
		return nil, storageErr(ctx, err, "failed to settle debt")
	}

	s.LogInfo(ctx, "Debt settlement applied",
		slog.String("client_id", clientID),
		slog.String("debt_id", debtID),
		slog.String("applied_usd", settlement.AppliedUSD.StringFixed(domain.MoneyPlaces)),
		slog.String("remaining_usd", settlement.Debt.RemainingUSD.StringFixed(domain.MoneyPlaces)),
		slog.String("status", string(settlement.Debt.Status)))

	if settlement.Debt.Status == domain.DebtSettled {
		s.publisher.PublishDebtSettled(ctx, domain.DebtSettledEvent{
			DebtID:      settlement.Debt.DebtID,
			OrderID:     settlement.Debt.OrderID,
			ClientID:    clientID,
			OriginalUSD: settlement.Debt.OriginalUSD,
			OccurredAt:  settlement.Debt.LastUpdatedAt,
		})
	}

	return &domain.DebtSettlementResult{
		Debt:         settlement.Debt,
		Records:      settlement.Records,
		TotalPaidUSD: paid,
		SurplusUSD:   surplus,
	}, nil
}

// CancelDebt writes off an active debt. The order keeps its partial or unpaid status.
func (s *debtService) CancelDebt(ctx context.Context, clientID, debtID, actorID string) (*domain.Debt, error) {
	debt, err := s.debtRepo.CancelDebt(ctx, clientID, debtID, actorID, s.Now())
	if err != nil {
		return nil, storageErr(ctx, err, "failed to cancel debt")
	}
	s.LogInfo(ctx, "Debt cancelled",
		slog.String("client_id", clientID),
		slog.String("debt_id", debtID),
		slog.String("remaining_usd", debt.RemainingUSD.StringFixed(domain.MoneyPlaces)))
	return debt, nil
}
