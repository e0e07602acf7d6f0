package handlers

import (
	"github.com/gin-gonic/gin"
	portssvc "github.com/yaaccu/yaaccu_app/internal/core/ports/services"
	"github.com/yaaccu/yaaccu_app/internal/middleware"
	"github.com/yaaccu/yaaccu_app/pkg/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(r *gin.Engine, cfg *config.Config, services *portssvc.ServiceContainer) {
	RegisterValidations()

	r.GET("/", getHome)

	v1 := r.Group("/api/v1")

	// Public routes: account creation and the currency registry.
	registerAccountRoutes(v1, services.Account, cfg.IsProduction)
	registerCurrencyRoutes(v1, services.Currency)

	// Authenticated routes resolve the caller from the X-Token header.
	protected := v1.Group("", middleware.TokenAuthMiddleware(services.Account, cfg.TokenExpiryDuration))
	registerBalanceRoutes(protected, services.Account)
	registerTransferRoutes(protected, services.Ledger, services.Currency, services.Account)
}
