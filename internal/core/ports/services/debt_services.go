package services

import (
	"context"

	"github.com/SscSPs/resale_settlement/internal/core/domain"
	"github.com/SscSPs/resale_settlement/internal/dto"
)

// DebtReaderSvc defines read operations on the debt ledger
type DebtReaderSvc interface {
	GetDebt(ctx context.Context, clientID, debtID string) (*domain.Debt, error)
	GetDebtByOrder(ctx context.Context, clientID, orderID string) (*domain.Debt, error)
	ListDebts(ctx context.Context, clientID string, params dto.ListDebtsParams) (*dto.ListDebtsResponse, error)
	ListDebtSettlements(ctx context.Context, clientID, debtID string) ([]domain.SettlementRecord, error)
}

// DebtWriterSvc runs the debt settlement workflow.
type DebtWriterSvc interface {
	SettleDebt(ctx context.Context, clientID, debtID string, req dto.SettleDebtRequest, actorID string) (*domain.DebtSettlementResult, error)
	CancelDebt(ctx context.Context, clientID, debtID, actorID string) (*domain.Debt, error)
}

// DebtSvcFacade combines all debt-related service interfaces
type DebtSvcFacade interface {
	DebtReaderSvc
	DebtWriterSvc
}
