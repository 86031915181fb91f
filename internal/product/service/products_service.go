package service

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"arena/internal/domain"
	"arena/internal/domain/repository"
	apperrors "arena/internal/errors"
)

type CreateProductInput struct {
	Name         string
	Price        decimal.Decimal
	Unit         *string
	StockTracked *bool
}

type ProductService struct {
	repos  repository.Repositories
	tx     repository.TxRunner
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repos repository.Repositories, tx repository.TxRunner, logger *zap.Logger) *ProductService {
	return &ProductService{
		repos:  repos,
		tx:     tx,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *ProductService) ListProducts(ctx context.Context, active *bool) ([]domain.Product, error) {
	products, err := s.repos.Products.List(ctx, repository.ProductFilter{Active: active})
	if err != nil {
		return nil, apperrors.Wrap("listing products", err)
	}
	return products, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.repos.Products.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap("loading product", err)
	}
	return product, nil
}

// CreateProduct registers a product with zero stock. Stock only ever moves
// through the ledger.
func (s *ProductService) CreateProduct(ctx context.Context, in CreateProductInput) (*domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("nome is required", apperrors.ValidationDetail{
			Field:   "nome",
			Message: "nome is required",
		})
	}
	if in.Price.IsNegative() {
		return nil, apperrors.NewValidationError("preco must be >= 0", apperrors.ValidationDetail{
			Field:   "preco",
			Message: "preco must be >= 0",
		})
	}
	if err := domain.MoneyLimit.Check("preco", in.Price); err != nil {
		return nil, err
	}

	unit := domain.DefaultUnit
	if in.Unit != nil {
		unit = *in.Unit
	}
	tracked := true
	if in.StockTracked != nil {
		tracked = *in.StockTracked
	}

	now := s.now()
	product := &domain.Product{
		Name:         name,
		Price:        in.Price,
		Unit:         unit,
		StockTracked: tracked,
		Active:       true,
		CurrentStock: decimal.Zero,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repos.Products.Create(ctx, product); err != nil {
		s.logger.Error("creating product failed", zap.String("name", name), zap.Error(err))
		return nil, apperrors.Wrap("creating product", err)
	}

	s.logger.Info("product created", zap.String("productId", product.ID), zap.String("name", product.Name))
	return product, nil
}

// PatchProduct changes catalog fields only. Captured tab prices and recorded
// movements keep the values they were written with.
func (s *ProductService) PatchProduct(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, apperrors.NewValidationError("nome must not be empty", apperrors.ValidationDetail{
			Field:   "nome",
			Message: "nome must not be empty",
		})
	}
	if patch.Price != nil {
		if patch.Price.IsNegative() {
			return nil, apperrors.NewValidationError("preco must be >= 0", apperrors.ValidationDetail{
				Field:   "preco",
				Message: "preco must be >= 0",
			})
		}
		if err := domain.MoneyLimit.Check("preco", *patch.Price); err != nil {
			return nil, err
		}
	}

	var updated *domain.Product
	err := s.tx.Run(ctx, func(ctx context.Context, repos repository.Repositories) error {
		product, err := repos.Products.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		product.Apply(patch)
		product.UpdatedAt = s.now()
		if err := repos.Products.Update(ctx, product); err != nil {
			return err
		}
		updated = product
		return nil
	})
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); !ok {
			s.logger.Error("patching product failed", zap.String("productId", id), zap.Error(err))
		}
		return nil, apperrors.Wrap("patching product", err)
	}

	s.logger.Info("product updated", zap.String("productId", id))
	return updated, nil
}
