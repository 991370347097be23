package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/toolmarketplace/server/internal/logging"
	"github.com/toolmarketplace/server/internal/models"
	"github.com/toolmarketplace/server/internal/mykafka"
	"github.com/toolmarketplace/server/internal/redisx"
	"github.com/toolmarketplace/server/internal/repo"
	"github.com/toolmarketplace/server/internal/service/search"
)

var (
	ErrValidation = errors.New("validation")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
)

type Service struct {
	Repo     *repo.GormRepo
	Cache    *redis.Client
	Indexer  *search.Indexer
	Producer *mykafka.Producer
}

type ProductInput struct {
	Name        string
	Description string
	Price       float64
	Category    string
	Brand       string
	Model       string
	Condition   string
	Warranty    string
	Stock       uint
}

func (in ProductInput) validate() error {
	if in.Name == "" {
		return fmt.Errorf("%w: name required", ErrValidation)
	}
	if in.Price < 0 {
		return fmt.Errorf("%w: price must be >= 0", ErrValidation)
	}
	if in.Condition != "" && in.Condition != "new" && in.Condition != "used" {
		return fmt.Errorf("%w: condition must be new or used", ErrValidation)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, toolsellerID uint, in ProductInput) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:         in.Name,
		Description:  in.Description,
		Price:        in.Price,
		Category:     in.Category,
		Brand:        in.Brand,
		Model:        in.Model,
		Condition:    in.Condition,
		Warranty:     in.Warranty,
		Stock:        in.Stock,
		ToolsellerID: toolsellerID,
	}
	if err := s.Repo.CreateProduct(ctx, product); err != nil {
		return nil, err
	}

	s.index(ctx, product)
	s.publish(ctx, product.ID, map[string]any{
		"type":       "product_created",
		"product_id": product.ID,
		"name":       product.Name,
	})
	return product, nil
}

// Get serves product reads through the cache; checkout price snapshots
// bypass it and read the DB inside the checkout transaction.
func (s *Service) Get(ctx context.Context, id uint) (*models.Product, error) {
	if s.Cache != nil {
		if data, err := s.Cache.Get(ctx, redisx.ProductKey(id)).Bytes(); err == nil {
			var p models.Product
			if err := json.Unmarshal(data, &p); err == nil {
				return &p, nil
			}
		}
	}

	product, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return nil, err
	}

	if s.Cache != nil {
		if data, err := json.Marshal(product); err == nil {
			if err := s.Cache.Set(ctx, redisx.ProductKey(id), data, redisx.ProductTTLSeconds*time.Second).Err(); err != nil {
				logging.FromContext(ctx).Warn("redis set error", "error", err)
			}
		}
	}
	return product, nil
}

func (s *Service) List(ctx context.Context, offset, limit int) ([]models.Product, int64, error) {
	return s.Repo.ListProducts(ctx, offset, limit)
}

func (s *Service) ListByToolseller(ctx context.Context, toolsellerID uint) ([]models.Product, error) {
	return s.Repo.ListToolsellerProducts(ctx, toolsellerID)
}

func (s *Service) Update(ctx context.Context, toolsellerID, productID uint, in ProductInput) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	product, err := s.Repo.GetProduct(ctx, productID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, productID)
		}
		return nil, err
	}
	if product.ToolsellerID != toolsellerID {
		return nil, fmt.Errorf("%w: product %d belongs to another seller", ErrForbidden, productID)
	}

	product.Name = in.Name
	product.Description = in.Description
	product.Price = in.Price
	product.Category = in.Category
	product.Brand = in.Brand
	product.Model = in.Model
	if in.Condition != "" {
		product.Condition = in.Condition
	}
	product.Warranty = in.Warranty
	product.Stock = in.Stock

	if err := s.Repo.SaveProduct(ctx, product); err != nil {
		return nil, err
	}

	s.invalidate(ctx, productID)
	s.index(ctx, product)
	s.publish(ctx, product.ID, map[string]any{
		"type":       "product_updated",
		"product_id": product.ID,
		"name":       product.Name,
	})
	return product, nil
}

func (s *Service) Delete(ctx context.Context, toolsellerID, productID uint) error {
	product, err := s.Repo.GetProduct(ctx, productID)
	if err != nil {
		if repo.IsNotFound(err) {
			return fmt.Errorf("%w: product %d", ErrNotFound, productID)
		}
		return err
	}
	if product.ToolsellerID != toolsellerID {
		return fmt.Errorf("%w: product %d belongs to another seller", ErrForbidden, productID)
	}

	if err := s.Repo.DeleteProduct(ctx, productID); err != nil {
		return err
	}

	s.invalidate(ctx, productID)
	if s.Indexer != nil {
		if err := s.Indexer.Delete(ctx, productID); err != nil {
			logging.FromContext(ctx).Warn("es delete error", "product_id", productID, "error", err)
		}
	}
	s.publish(ctx, productID, map[string]any{
		"type":       "product_deleted",
		"product_id": productID,
	})
	return nil
}

func (s *Service) index(ctx context.Context, product *models.Product) {
	if s.Indexer == nil {
		return
	}
	if err := s.Indexer.Index(ctx, product); err != nil {
		logging.FromContext(ctx).Warn("es index error", "product_id", product.ID, "error", err)
	}
}

func (s *Service) invalidate(ctx context.Context, productID uint) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Del(ctx, redisx.ProductKey(productID)).Err(); err != nil {
		logging.FromContext(ctx).Warn("redis del error", "error", err)
	}
}

func (s *Service) publish(ctx context.Context, key uint, event map[string]any) {
	if s.Producer == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.Producer.PublishEvent(pubCtx, mykafka.TopicProductEvents, fmt.Sprint(key), event); err != nil {
		logging.FromContext(ctx).Warn("kafka publish error", "topic", mykafka.TopicProductEvents, "error", err)
	}
}
