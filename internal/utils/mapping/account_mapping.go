package mapping

import (
	"github.com/yaaccu/yaaccu_app/internal/core/domain"
	"github.com/yaaccu/yaaccu_app/internal/models"
)

// ToDomainAccount converts a DB model account to its domain representation.
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		ID:      m.ID,
		Address: m.Address,
		PubKey:  m.PubKey,
		Type:    domain.AccountType(m.Type),
	}
}

// ToModelAccount converts a domain account to its DB model representation.
func ToModelAccount(a domain.Account) models.Account {
	return models.Account{
		ID:      a.ID,
		Address: a.Address,
		PubKey:  a.PubKey,
		Type:    models.AccountType(a.Type),
	}
}
