package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"arena/internal/domain"
	"arena/internal/domain/repository"
	apperrors "arena/internal/errors"
)

type RecordMovementInput struct {
	ProductID string
	Kind      string
	Quantity  decimal.Decimal
	Reason    *string
}

type LedgerService struct {
	repos  repository.Repositories
	tx     repository.TxRunner
	logger *zap.Logger
	now    func() time.Time
}

func NewLedgerService(repos repository.Repositories, tx repository.TxRunner, logger *zap.Logger) *LedgerService {
	return &LedgerService{
		repos:  repos,
		tx:     tx,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// RecordMovement appends a movement and moves the product's running balance
// in the same transaction.
func (s *LedgerService) RecordMovement(ctx context.Context, in RecordMovementInput) (*domain.StockMovement, error) {
	kind, ok := domain.ParseMovementKind(in.Kind)
	if !ok {
		return nil, apperrors.NewValidationError("tipo must be one of entrada, saida, ajuste", apperrors.ValidationDetail{
			Field:   "tipo",
			Message: "tipo must be one of entrada, saida, ajuste",
		})
	}
	if in.ProductID == "" {
		return nil, apperrors.NewValidationError("produtoId is required", apperrors.ValidationDetail{
			Field:   "produtoId",
			Message: "produtoId is required",
		})
	}
	if in.Quantity.IsNegative() {
		return nil, apperrors.NewValidationError("quantidade must be >= 0", apperrors.ValidationDetail{
			Field:   "quantidade",
			Message: "quantidade must be a number >= 0",
		})
	}
	if err := domain.QuantityLimit.Check("quantidade", in.Quantity); err != nil {
		return nil, err
	}

	var movement *domain.StockMovement
	err := s.tx.Run(ctx, func(ctx context.Context, repos repository.Repositories) error {
		product, err := repos.Products.FindByIDForUpdate(ctx, in.ProductID)
		if err != nil {
			return err
		}

		recorded, err := Record(ctx, repos, product, kind, in.Quantity, in.Reason, s.now())
		if err != nil {
			return err
		}

		movement, err = repos.Movements.FindByID(ctx, recorded.ID)
		return err
	})
	if err != nil {
		if apperrors.IsKnown(err) {
			s.logger.Warn("stock movement rejected",
				zap.String("productId", in.ProductID), zap.String("kind", string(kind)), zap.Error(err))
		} else {
			s.logger.Error("recording stock movement failed", zap.String("productId", in.ProductID), zap.Error(err))
		}
		return nil, apperrors.Wrap("recording stock movement", err)
	}

	s.logger.Info("stock movement recorded",
		zap.String("movementId", movement.ID),
		zap.String("productId", movement.ProductID),
		zap.String("kind", string(movement.Kind)),
		zap.String("quantity", movement.Quantity.String()),
		zap.String("stock", movement.Product.CurrentStock.String()),
	)
	return movement, nil
}

func (s *LedgerService) ListMovements(ctx context.Context, productID *string) ([]domain.StockMovement, error) {
	movements, err := s.repos.Movements.List(ctx, productID)
	if err != nil {
		return nil, apperrors.Wrap("listing stock movements", err)
	}
	return movements, nil
}

// Record applies one movement to a product the caller has already locked
// inside the current transaction. Outgoing movements that would leave the
// balance negative fail with InsufficientStock, and balances the stock
// column cannot hold fail validation, before anything is written.
// On success product.CurrentStock holds the new balance.
func Record(
	ctx context.Context,
	repos repository.Repositories,
	product *domain.Product,
	kind domain.MovementKind,
	quantity decimal.Decimal,
	reason *string,
	now time.Time,
) (*domain.StockMovement, error) {
	balance, recorded := kind.Apply(product.CurrentStock, quantity)
	if kind == domain.MovementOut && balance.IsNegative() {
		return nil, apperrors.NewInsufficientStockError(product.ID, product.CurrentStock.String(), product.Unit)
	}
	if err := domain.QuantityLimit.Check("quantidade", balance); err != nil {
		return nil, err
	}

	movement := &domain.StockMovement{
		ProductID: product.ID,
		Kind:      kind,
		Quantity:  recorded,
		Reason:    reason,
		CreatedAt: now,
	}
	if err := repos.Movements.Create(ctx, movement); err != nil {
		return nil, err
	}

	if err := repos.Products.UpdateStock(ctx, product.ID, balance); err != nil {
		return nil, err
	}

	product.CurrentStock = balance
	movement.Product = product
	return movement, nil
}
