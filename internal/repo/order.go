package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/toolmarketplace/server/internal/models"
)

func (r *GormRepo) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// DebitUserPoints subtracts points conditioned on a sufficient balance.
// Returns false when the balance would go negative; nothing is changed then.
func (r *GormRepo) DebitUserPoints(ctx context.Context, userID uint, points int) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND points >= ?", userID, points).
		Update("points", gorm.Expr("points - ?", points))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GormRepo) CreditUserPoints(ctx context.Context, userID uint, points int) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("points", gorm.Expr("points + ?", points)).Error
}

func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Create(order).Error
}

func (r *GormRepo) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	return r.DB.WithContext(ctx).Create(&items).Error
}

func (r *GormRepo) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) GetOrderDetailed(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.DB.WithContext(ctx).
		Preload("Items.Product").
		Preload("Review.User").
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) ListUserOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.DB.WithContext(ctx).
		Preload("Items.Product").
		Preload("Review.User").
		Where("user_id = ?", userID).
		Order("order_date DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) ListToolsellerOrders(ctx context.Context, toolsellerID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.DB.WithContext(ctx).
		Preload("Items.Product").
		Preload("User").
		Where("toolseller_id = ?", toolsellerID).
		Order("order_date DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// SetOrderStatus moves the order to status unless it is already in one of
// the excluded states. The guard and the write are a single UPDATE, so
// concurrent requests cannot both pass it.
func (r *GormRepo) SetOrderStatus(ctx context.Context, orderID uint, status string, notIn []string) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status NOT IN ?", orderID, notIn).
		Update("status", status)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteOrder removes the order's line items first, then the order itself.
func (r *GormRepo) DeleteOrder(ctx context.Context, orderID uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", orderID).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Order{}, orderID).Error
	})
}
