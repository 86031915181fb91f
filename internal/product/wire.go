package product

import (
	"go.uber.org/zap"

	"arena/internal/product/controller"
	"arena/internal/product/service"
	"arena/internal/store"
)

func NewModule(st *store.Store, logger *zap.Logger) *controller.ProductController {
	svc := service.NewService(st.Repos, st.Runner, logger)
	return controller.NewProductController(svc, logger)
}
