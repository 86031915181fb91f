package tab

import (
	"go.uber.org/zap"

	"arena/internal/store"
	"arena/internal/tab/controller"
	"arena/internal/tab/service"
)

func NewModule(st *store.Store, logger *zap.Logger) *controller.TabController {
	svc := service.NewTabService(st.Repos, st.Runner, logger)
	return controller.NewTabController(svc, logger)
}
