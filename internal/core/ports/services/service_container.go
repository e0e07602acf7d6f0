package services

// ServiceContainer bundles the service facades for route registration.
type ServiceContainer struct {
	Account  AccountSvcFacade
	Currency CurrencySvcFacade
	Ledger   LedgerSvcFacade
}
