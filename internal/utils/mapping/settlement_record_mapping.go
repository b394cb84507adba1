package mapping

import (
	"github.com/SscSPs/resale_settlement/internal/core/domain"
	"github.com/SscSPs/resale_settlement/internal/models"
	"github.com/SscSPs/resale_settlement/internal/utils/accounting"
)

// ToModelSettlementRecord converts a domain.SettlementRecord, keeping its position in the batch.
func ToModelSettlementRecord(d domain.SettlementRecord, position int) models.SettlementRecord {
	return models.SettlementRecord{
		RecordID:      d.RecordID,
		ClientID:      d.ClientID,
		TargetType:    string(d.TargetType),
		TargetRef:     d.TargetRef,
		MethodCode:    string(d.MethodCode),
		NativeAmount:  d.NativeAmount,
		Currency:      string(d.Currency),
		RateSnapshot:  d.RateSnapshot,
		USDEquivalent: d.USDEquivalent,
		SurplusUSD:    d.SurplusUSD,
		Notes:         d.Notes,
		Position:      position,
		CreatedAt:     d.CreatedAt,
		CreatedBy:     d.CreatedBy,
	}
}

// ToDomainSettlementRecord converts a models.SettlementRecord to a domain.SettlementRecord
func ToDomainSettlementRecord(m models.SettlementRecord) domain.SettlementRecord {
	return domain.SettlementRecord{
		RecordID:      m.RecordID,
		ClientID:      m.ClientID,
		TargetType:    domain.SettlementTarget(m.TargetType),
		TargetRef:     m.TargetRef,
		MethodCode:    domain.PaymentMethodCode(m.MethodCode),
		NativeAmount:  m.NativeAmount,
		Currency:      domain.CurrencyCode(m.Currency),
		RateSnapshot:  m.RateSnapshot,
		USDEquivalent: m.USDEquivalent,
		SurplusUSD:    m.SurplusUSD,
		Notes:         m.Notes,
		CreatedAt:     m.CreatedAt,
		CreatedBy:     m.CreatedBy,
	}
}

// RecordsToAllocations rebuilds allocations from stored records, recomputing
// the local display amount from the pinned rate snapshot.
func RecordsToAllocations(records []domain.SettlementRecord) []domain.PaymentAllocation {
	allocations := make([]domain.PaymentAllocation, len(records))
	for i, r := range records {
		a := r.ToAllocation()
		if display, err := accounting.LocalDisplay(r.MethodCode, r.NativeAmount, r.RateSnapshot); err == nil {
			a.LocalDisplayAmount = domain.NewMoney(display, domain.LocalCurrency)
		}
		allocations[i] = a
	}
	return allocations
}
