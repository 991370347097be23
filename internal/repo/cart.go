package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/toolmarketplace/server/internal/models"
)

// CartLine pairs a cart item with the live product row it references.
type CartLine struct {
	Item    models.CartItem
	Product models.Product
}

func (r *GormRepo) GetCartItems(ctx context.Context, userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// CartLines loads the cart joined with product data. A cart item whose
// product no longer exists is an error, not a silent skip.
func (r *GormRepo) CartLines(ctx context.Context, userID uint) ([]CartLine, error) {
	items, err := r.GetCartItems(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}

	ids := make([]uint, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}

	var products []models.Product
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	lines := make([]CartLine, 0, len(items))
	for _, it := range items {
		p, ok := byID[it.ProductID]
		if !ok {
			return nil, fmt.Errorf("product %d: %w", it.ProductID, gorm.ErrRecordNotFound)
		}
		lines = append(lines, CartLine{Item: it, Product: p})
	}
	return lines, nil
}

// UpsertCartItem merges quantity into an existing line or creates a new one.
func (r *GormRepo) UpsertCartItem(ctx context.Context, item *models.CartItem) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CartItem{}).
			Where("user_id = ? AND product_id = ?", item.UserID, item.ProductID).
			Update("quantity", gorm.Expr("quantity + ?", item.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return tx.Where("user_id = ? AND product_id = ?", item.UserID, item.ProductID).First(item).Error
		}
		return tx.Create(item).Error
	})
}

func (r *GormRepo) SetCartQuantity(ctx context.Context, userID, productID, quantity uint) (*models.CartItem, error) {
	res := r.DB.WithContext(ctx).Model(&models.CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("quantity", quantity)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	var item models.CartItem
	if err := r.DB.WithContext(ctx).Where("user_id = ? AND product_id = ?", userID, productID).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) RemoveCartItem(ctx context.Context, userID, productID uint) error {
	res := r.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) ClearCart(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
