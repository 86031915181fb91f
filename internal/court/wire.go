package court

import (
	"go.uber.org/zap"

	"arena/internal/court/controller"
	"arena/internal/court/service"
	"arena/internal/store"
)

func NewModule(st *store.Store, logger *zap.Logger) *controller.CourtController {
	svc := service.NewCourtService(st.Repos, logger)
	return controller.NewCourtController(svc, logger)
}
