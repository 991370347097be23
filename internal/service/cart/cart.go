package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/toolmarketplace/server/internal/models"
	"github.com/toolmarketplace/server/internal/repo"
)

var (
	ErrValidation = errors.New("validation")
	ErrNotFound   = errors.New("not found")
)

type Service struct {
	Repo *repo.GormRepo
}

// Line is a cart snapshot row with live product data joined in for display.
type Line struct {
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  uint    `json:"quantity"`
	LineTotal float64 `json:"line_total"`
}

func (s *Service) Snapshot(ctx context.Context, userID uint) ([]Line, error) {
	cartLines, err := s.Repo.CartLines(ctx, userID)
	if err != nil {
		return nil, err
	}

	lines := make([]Line, 0, len(cartLines))
	for _, cl := range cartLines {
		lines = append(lines, Line{
			ProductID: cl.Product.ID,
			Name:      cl.Product.Name,
			UnitPrice: cl.Product.Price,
			Quantity:  cl.Item.Quantity,
			LineTotal: cl.Product.Price * float64(cl.Item.Quantity),
		})
	}
	return lines, nil
}

// AddItem merges quantity into an existing line for the product, creating
// the line (and implicitly the cart) on first add.
func (s *Service) AddItem(ctx context.Context, userID, productID, quantity uint) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be >= 1", ErrValidation)
	}
	if _, err := s.Repo.GetProduct(ctx, productID); err != nil {
		if repo.IsNotFound(err) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, productID)
		}
		return nil, err
	}

	item := models.CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
	if err := s.Repo.UpsertCartItem(ctx, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Service) SetQuantity(ctx context.Context, userID, productID, quantity uint) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be >= 1", ErrValidation)
	}

	item, err := s.Repo.SetCartQuantity(ctx, userID, productID, quantity)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, fmt.Errorf("%w: product %d is not in the cart", ErrNotFound, productID)
		}
		return nil, err
	}
	return item, nil
}

func (s *Service) RemoveItem(ctx context.Context, userID, productID uint) error {
	if err := s.Repo.RemoveCartItem(ctx, userID, productID); err != nil {
		if repo.IsNotFound(err) {
			return fmt.Errorf("%w: product %d is not in the cart", ErrNotFound, productID)
		}
		return err
	}
	return nil
}

func (s *Service) Clear(ctx context.Context, userID uint) error {
	return s.Repo.ClearCart(ctx, userID)
}
