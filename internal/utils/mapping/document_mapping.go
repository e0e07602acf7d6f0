package mapping

import (
	"github.com/yaaccu/yaaccu_app/internal/core/domain"
	"github.com/yaaccu/yaaccu_app/internal/models"
)

func ToDomainDocument(m models.Document) domain.Document {
	return domain.Document{
		ID:        m.ID,
		Committed: m.Committed,
		CreatedAt: m.CreatedAt,
	}
}

func ToDomainOperation(m models.Operation) domain.Operation {
	return domain.Operation{
		ID:         m.ID,
		DocumentID: m.DocumentID,
		AccountID:  m.AccountID,
		CurrencyID: m.CurrencyID,
		Amount:     m.Amount,
	}
}

func ToDomainOperationSlice(ms []models.Operation) []domain.Operation {
	out := make([]domain.Operation, len(ms))
	for i, m := range ms {
		out[i] = ToDomainOperation(m)
	}
	return out
}
