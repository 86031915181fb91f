package stock

import (
	"go.uber.org/zap"

	"arena/internal/stock/controller"
	"arena/internal/stock/service"
	"arena/internal/store"
)

func NewModule(st *store.Store, logger *zap.Logger) *controller.MovementController {
	svc := service.NewLedgerService(st.Repos, st.Runner, logger)
	return controller.NewMovementController(svc, logger)
}
