package repo

import (
	"context"

	"github.com/toolmarketplace/server/internal/models"
)

func (r *GormRepo) CreateReview(ctx context.Context, review *models.Review) error {
	return r.DB.WithContext(ctx).Create(review).Error
}

func (r *GormRepo) GetReview(ctx context.Context, id uint) (*models.Review, error) {
	var review models.Review
	if err := r.DB.WithContext(ctx).Preload("User").First(&review, id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *GormRepo) ReviewExistsForOrder(ctx context.Context, orderID uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.Review{}).
		Where("order_id = ?", orderID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRepo) ListReviews(ctx context.Context) ([]models.Review, error) {
	var reviews []models.Review
	err := r.DB.WithContext(ctx).
		Preload("User").
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *GormRepo) ListToolsellerReviews(ctx context.Context, toolsellerID uint) ([]models.Review, error) {
	var reviews []models.Review
	err := r.DB.WithContext(ctx).
		Preload("User").
		Where("toolseller_id = ?", toolsellerID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *GormRepo) SaveReview(ctx context.Context, review *models.Review) error {
	return r.DB.WithContext(ctx).Save(review).Error
}

func (r *GormRepo) DeleteReview(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Delete(&models.Review{}, id).Error
}
