package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/toolmarketplace/server/internal/logging"
	"github.com/toolmarketplace/server/internal/models"
	"github.com/toolmarketplace/server/internal/mykafka"
	"github.com/toolmarketplace/server/internal/repo"
	"github.com/toolmarketplace/server/internal/util"
)

var (
	ErrValidation = errors.New("validation")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
)

type Service struct {
	Repo     *repo.GormRepo
	Producer *mykafka.Producer
}

type SubmitInput struct {
	OrderID     uint
	Rating      int
	ShortReview string
	ReviewText  string
}

// Submit attaches a review to a delivered order. At most one review per
// order; the seller reference is denormalized from the order.
func (s *Service) Submit(ctx context.Context, userID uint, in SubmitInput) (*models.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}
	if in.ShortReview == "" {
		return nil, fmt.Errorf("%w: short review required", ErrValidation)
	}

	order, err := s.Repo.GetOrder(ctx, in.OrderID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, in.OrderID)
		}
		return nil, err
	}

	if order.UserID != userID {
		return nil, fmt.Errorf("%w: order %d belongs to another user", ErrForbidden, in.OrderID)
	}
	if order.Status != models.OrderStatusDelivered {
		return nil, fmt.Errorf("%w: order is not yet delivered", ErrConflict)
	}

	exists, err := s.Repo.ReviewExistsForOrder(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: a review for this order already exists", ErrConflict)
	}

	rev := &models.Review{
		Rating:       in.Rating,
		ShortReview:  in.ShortReview,
		ReviewText:   in.ReviewText,
		UserID:       userID,
		OrderID:      in.OrderID,
		ToolsellerID: order.ToolsellerID,
	}
	if err := s.Repo.CreateReview(ctx, rev); err != nil {
		return nil, err
	}

	util.ReviewsCreatedTotal.Inc()
	s.publish(ctx, rev.UserID, map[string]any{
		"type":          "review_created",
		"review_id":     rev.ID,
		"order_id":      rev.OrderID,
		"toolseller_id": rev.ToolsellerID,
		"rating":        rev.Rating,
	})

	return rev, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Review, error) {
	rev, err := s.Repo.GetReview(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, fmt.Errorf("%w: review %d", ErrNotFound, id)
		}
		return nil, err
	}
	return rev, nil
}

func (s *Service) ListAll(ctx context.Context) ([]models.Review, error) {
	return s.Repo.ListReviews(ctx)
}

func (s *Service) ListByToolseller(ctx context.Context, toolsellerID uint) ([]models.Review, error) {
	return s.Repo.ListToolsellerReviews(ctx, toolsellerID)
}

type UpdateInput struct {
	Rating      int
	ShortReview string
	ReviewText  string
}

func (s *Service) Update(ctx context.Context, reviewID, userID uint, in UpdateInput) (*models.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}

	rev, err := s.Repo.GetReview(ctx, reviewID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, fmt.Errorf("%w: review %d", ErrNotFound, reviewID)
		}
		return nil, err
	}
	if rev.UserID != userID {
		return nil, fmt.Errorf("%w: review %d belongs to another user", ErrForbidden, reviewID)
	}

	rev.Rating = in.Rating
	rev.ShortReview = in.ShortReview
	rev.ReviewText = in.ReviewText
	if err := s.Repo.SaveReview(ctx, rev); err != nil {
		return nil, err
	}
	return rev, nil
}

func (s *Service) Delete(ctx context.Context, reviewID, userID uint) error {
	rev, err := s.Repo.GetReview(ctx, reviewID)
	if err != nil {
		if repo.IsNotFound(err) {
			return fmt.Errorf("%w: review %d", ErrNotFound, reviewID)
		}
		return err
	}
	if rev.UserID != userID {
		return fmt.Errorf("%w: review %d belongs to another user", ErrForbidden, reviewID)
	}
	return s.Repo.DeleteReview(ctx, reviewID)
}

func (s *Service) publish(ctx context.Context, key uint, event map[string]any) {
	if s.Producer == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.Producer.PublishEvent(pubCtx, mykafka.TopicReviewEvents, fmt.Sprint(key), event); err != nil {
		logging.FromContext(ctx).Warn("kafka publish error", "topic", mykafka.TopicReviewEvents, "error", err)
	}
}
