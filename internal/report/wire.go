package report

import (
	"go.uber.org/zap"

	"arena/internal/report/controller"
	"arena/internal/report/service"
	"arena/internal/store"
)

func NewModule(st *store.Store, logger *zap.Logger) *controller.ReportController {
	svc := service.NewReportService(st.Repos)
	return controller.NewReportController(svc, logger)
}
