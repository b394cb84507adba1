package mapping

import (
	"github.com/SscSPs/resale_settlement/internal/core/domain"
	"github.com/SscSPs/resale_settlement/internal/models"
)

// ToModelDebt converts a domain.Debt to a models.Debt
func ToModelDebt(d domain.Debt) models.Debt {
	return models.Debt{
		DebtID:       d.DebtID,
		OrderID:      d.OrderID,
		ClientID:     d.ClientID,
		CustomerRef:  d.CustomerRef,
		OriginalUSD:  d.OriginalUSD,
		RemainingUSD: d.RemainingUSD,
		Status:       string(d.Status),
		DueDate:      d.DueDate,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainDebt converts a models.Debt to a domain.Debt
func ToDomainDebt(m models.Debt) domain.Debt {
	return domain.Debt{
		DebtID:       m.DebtID,
		OrderID:      m.OrderID,
		ClientID:     m.ClientID,
		CustomerRef:  m.CustomerRef,
		OriginalUSD:  m.OriginalUSD,
		RemainingUSD: m.RemainingUSD,
		Status:       domain.DebtStatus(m.Status),
		DueDate:      m.DueDate,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}
