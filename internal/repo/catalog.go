package repo

import (
	"context"

	"github.com/toolmarketplace/server/internal/models"
)

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) ListProducts(ctx context.Context, offset, limit int) ([]models.Product, int64, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []models.Product
	err := r.DB.WithContext(ctx).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *GormRepo) ListToolsellerProducts(ctx context.Context, toolsellerID uint) ([]models.Product, error) {
	var products []models.Product
	err := r.DB.WithContext(ctx).
		Where("toolseller_id = ?", toolsellerID).
		Order("id ASC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, product *models.Product) error {
	return r.DB.WithContext(ctx).Create(product).Error
}

func (r *GormRepo) SaveProduct(ctx context.Context, product *models.Product) error {
	return r.DB.WithContext(ctx).Save(product).Error
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Delete(&models.Product{}, id).Error
}

func (r *GormRepo) GetToolseller(ctx context.Context, id uint) (*models.Toolseller, error) {
	var seller models.Toolseller
	if err := r.DB.WithContext(ctx).First(&seller, id).Error; err != nil {
		return nil, err
	}
	return &seller, nil
}

// ToolsellerListing is a directory row with review aggregates joined in.
type ToolsellerListing struct {
	models.Toolseller
	AverageRating *float64 `json:"average_rating"`
	ReviewCount   int64    `json:"review_count"`
}

type ToolsellerFilter struct {
	Name      string
	Address   string
	MinRating float64
	Offset    int
	Limit     int
}

func (r *GormRepo) ListToolsellers(ctx context.Context, f ToolsellerFilter) ([]ToolsellerListing, error) {
	q := r.DB.WithContext(ctx).Model(&models.Toolseller{}).
		Select("toolsellers.*, AVG(reviews.rating) AS average_rating, COUNT(reviews.id) AS review_count").
		Joins("LEFT JOIN reviews ON reviews.toolseller_id = toolsellers.id").
		Group("toolsellers.id")

	if f.Name != "" {
		q = q.Where("lower(toolsellers.company_name) LIKE lower(?)", "%"+f.Name+"%")
	}
	if f.Address != "" {
		q = q.Where("lower(toolsellers.address) LIKE lower(?)", "%"+f.Address+"%")
	}
	if f.MinRating > 0 {
		q = q.Having("AVG(reviews.rating) >= ?", f.MinRating)
	}
	if f.Limit > 0 {
		q = q.Offset(f.Offset).Limit(f.Limit)
	}

	var listings []ToolsellerListing
	if err := q.Order("toolsellers.company_name ASC").Scan(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}
