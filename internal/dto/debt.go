package dto

import (
	"time"

	"github.com/SscSPs/resale_settlement/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SettleDebtRequest defines the body for applying payments to a debt.
type SettleDebtRequest struct {
	Allocations []AllocationRequest `json:"allocations" binding:"dive"`
	Notes       string              `json:"notes" binding:"max=500"`
}

// ListDebtsParams defines query parameters for listing debts.
type ListDebtsParams struct {
	Limit       int     `form:"limit" binding:"omitempty,min=1,max=100"`
	NextToken   *string `form:"nextToken"`
	Status      *string `form:"status" binding:"omitempty,oneof=active settled cancelled"`
	CustomerRef *string `form:"customerRef"`
}

// DebtResponse defines the structure for API responses containing debt details.
type DebtResponse struct {
	DebtID        string        `json:"debtId"`
	OrderID       string        `json:"orderId"`
	ClientID      string        `json:"clientId"`
	CustomerRef   string        `json:"customerRef"`
	Original      MoneyResponse `json:"original"`
	Remaining     MoneyResponse `json:"remaining"`
	Status        string        `json:"status"`
	DueDate       time.Time     `json:"dueDate"`
	CreatedAt     time.Time     `json:"createdAt"`
	LastUpdatedAt time.Time     `json:"lastUpdatedAt"`
	LastUpdatedBy string        `json:"lastUpdatedBy"`
}

// SettlementRecordResponse is one entry of payment history.
type SettlementRecordResponse struct {
	RecordID      string          `json:"recordId"`
	TargetType    string          `json:"targetType"`
	TargetRef     string          `json:"targetRef"`
	MethodCode    string          `json:"methodCode"`
	NativeAmount  MoneyResponse   `json:"nativeAmount"`
	RateSnapshot  decimal.Decimal `json:"rateSnapshot"`
	USDEquivalent MoneyResponse   `json:"usdEquivalent"`
	Surplus       *MoneyResponse  `json:"surplus,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	CreatedBy     string          `json:"createdBy"`
}

// SettleDebtResponse returns the updated debt and the records just written.
type SettleDebtResponse struct {
	Debt        DebtResponse               `json:"debt"`
	Settlements []SettlementRecordResponse `json:"settlements"`
	TotalPaid   MoneyResponse              `json:"totalPaid"`
	Surplus     MoneyResponse              `json:"surplus"`
}

// ListDebtsResponse is a page of debts.
type ListDebtsResponse struct {
	Debts     []DebtResponse `json:"debts"`
	NextToken *string        `json:"nextToken,omitempty"`
}

// ListSettlementsResponse wraps payment history for an order or debt.
type ListSettlementsResponse struct {
	Settlements []SettlementRecordResponse `json:"settlements"`
}

// ToDebtResponse converts a domain.Debt.
func ToDebtResponse(d *domain.Debt) DebtResponse {
	return DebtResponse{
		DebtID:        d.DebtID,
		OrderID:       d.OrderID,
		ClientID:      d.ClientID,
		CustomerRef:   d.CustomerRef,
		Original:      USDResponse(d.OriginalUSD),
		Remaining:     USDResponse(d.RemainingUSD),
		Status:        string(d.Status),
		DueDate:       d.DueDate,
		CreatedAt:     d.CreatedAt,
		LastUpdatedAt: d.LastUpdatedAt,
		LastUpdatedBy: d.LastUpdatedBy,
	}
}

// ToSettlementRecordResponse converts a domain.SettlementRecord.
func ToSettlementRecordResponse(r domain.SettlementRecord) SettlementRecordResponse {
	resp := SettlementRecordResponse{
		RecordID:      r.RecordID,
		TargetType:    string(r.TargetType),
		TargetRef:     r.TargetRef,
		MethodCode:    string(r.MethodCode),
		NativeAmount:  ToMoneyResponse(domain.NewMoney(r.NativeAmount, r.Currency)),
		RateSnapshot:  r.RateSnapshot,
		USDEquivalent: USDResponse(r.USDEquivalent),
		Notes:         r.Notes,
		CreatedAt:     r.CreatedAt,
		CreatedBy:     r.CreatedBy,
	}
	if r.SurplusUSD.IsPositive() {
		surplus := USDResponse(r.SurplusUSD)
		resp.Surplus = &surplus
	}
	return resp
}

// ToListSettlementsResponse converts payment history.
func ToListSettlementsResponse(records []domain.SettlementRecord) ListSettlementsResponse {
	out := make([]SettlementRecordResponse, len(records))
	for i, r := range records {
		out[i] = ToSettlementRecordResponse(r)
	}
	return ListSettlementsResponse{Settlements: out}
}

// ToSettleDebtResponse converts a settlement result.
func ToSettleDebtResponse(r *domain.DebtSettlementResult) SettleDebtResponse {
	return SettleDebtResponse{
		Debt:        ToDebtResponse(&r.Debt),
		Settlements: ToListSettlementsResponse(r.Records).Settlements,
		TotalPaid:   USDResponse(r.TotalPaidUSD),
		Surplus:     USDResponse(r.SurplusUSD),
	}
}

// ToListDebtsResponse converts a page of debts.
func ToListDebtsResponse(debts []domain.Debt, nextToken *string) *ListDebtsResponse {
	resp := &ListDebtsResponse{Debts: make([]DebtResponse, len(debts)), NextToken: nextToken}
	for i := range debts {
		resp.Debts[i] = ToDebtResponse(&debts[i])
	}
	return resp
}
