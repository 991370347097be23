package order

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/toolmarketplace/server/internal/logging"
	"github.com/toolmarketplace/server/internal/models"
	"github.com/toolmarketplace/server/internal/mykafka"
	"github.com/toolmarketplace/server/internal/pricing"
	"github.com/toolmarketplace/server/internal/repo"
	"github.com/toolmarketplace/server/internal/util"
)

var (
	ErrValidation = errors.New("validation") // 400
	ErrNotFound   = errors.New("not found")  // 404
	ErrForbidden  = errors.New("forbidden")  // 403
	ErrConflict   = errors.New("conflict")   // 409
)

// One loyalty point is accrued per this many currency units of order total.
const pointsAccrualDivisor = 100

type Service struct {
	Repo     *repo.GormRepo
	Producer *mykafka.Producer
}

type PlaceOrderInput struct {
	DeliveryAddress string
	PaymentMethod   string
	OrderType       string
	RentalStartDate *time.Time
	RentalEndDate   *time.Time
	DiscountPoints  int
}

// PlaceOrder converts the buyer's cart into an order. Everything after
// validation — point debit, order row, line-item snapshots, cart clear —
// commits or rolls back as one unit.
func (s *Service) PlaceOrder(ctx context.Context, userID uint, in PlaceOrderInput) (*models.Order, error) {
	if in.DeliveryAddress == "" {
		return nil, fmt.Errorf("%w: delivery address required", ErrValidation)
	}
	if in.PaymentMethod == "" {
		return nil, fmt.Errorf("%w: payment method required", ErrValidation)
	}
	ot := pricing.OrderType(in.OrderType)
	if ot != pricing.TypePurchase && ot != pricing.TypeRental {
		return nil, fmt.Errorf("%w: unknown order type %q", ErrValidation, in.OrderType)
	}
	if in.DiscountPoints < 0 {
		return nil, fmt.Errorf("%w: discount points must be >= 0", ErrValidation)
	}

	var order *models.Order

	txErr := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		user, err := tx.GetUser(ctx, userID)
		if err != nil {
			if repo.IsNotFound(err) {
				return fmt.Errorf("%w: user %d", ErrNotFound, userID)
			}
			return err
		}

		lines, err := tx.CartLines(ctx, userID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return fmt.Errorf("%w: cart is empty", ErrConflict)
		}

		toolsellerID := lines[0].Product.ToolsellerID
		for _, l := range lines[1:] {
			if l.Product.ToolsellerID != toolsellerID {
				return fmt.Errorf("%w: cart items must belong to a single seller", ErrConflict)
			}
		}

		// No partial redemption: requesting more than the balance is refused
		// outright, even though the pricing engine would clamp it.
		if in.DiscountPoints > 0 && user.Points < in.DiscountPoints {
			return fmt.Errorf("%w: insufficient points", ErrConflict)
		}

		priceLines := make([]pricing.Line, 0, len(lines))
		for _, l := range lines {
			priceLines = append(priceLines, pricing.Line{UnitPrice: l.Product.Price, Quantity: l.Item.Quantity})
		}

		var window *pricing.Window
		if ot == pricing.TypeRental {
			if in.RentalStartDate == nil || in.RentalEndDate == nil {
				return fmt.Errorf("%w: rental start and end dates required", ErrValidation)
			}
			window = &pricing.Window{Start: *in.RentalStartDate, End: *in.RentalEndDate}
		}

		quote, err := pricing.Compute(ot, priceLines, window, in.DiscountPoints, user.Points)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}

		if quote.AppliedPoints > 0 {
			ok, err := tx.DebitUserPoints(ctx, userID, quote.AppliedPoints)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: insufficient points", ErrConflict)
			}
		}

		order = &models.Order{
			UserID:          userID,
			ToolsellerID:    toolsellerID,
			DeliveryAddress: in.DeliveryAddress,
			TotalCost:       quote.Total,
			Status:          models.OrderStatusPending,
			PaymentMethod:   in.PaymentMethod,
			TrackingNumber:  newTrackingNumber(),
			OrderDate:       time.Now().UTC(),
			OrderType:       string(ot),
			RentalStartDate: in.RentalStartDate,
			RentalEndDate:   in.RentalEndDate,
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}

		items := make([]models.OrderItem, 0, len(lines))
		for _, l := range lines {
			items = append(items, models.OrderItem{
				OrderID:         order.ID,
				ProductID:       l.Product.ID,
				Quantity:        l.Item.Quantity,
				PriceAtPurchase: l.Product.Price,
			})
		}
		if err := tx.CreateOrderItems(ctx, items); err != nil {
			return err
		}
		order.Items = items

		if quote.AppliedPoints > 0 {
			util.PointsRedeemedTotal.Add(float64(quote.AppliedPoints))
		}

		return tx.ClearCart(ctx, userID)
	})
	if txErr != nil {
		util.OrdersFailedTotal.WithLabelValues(failReason(txErr)).Inc()
		return nil, txErr
	}

	util.OrdersCreatedTotal.Inc()
	s.publish(ctx, mykafka.TopicOrderEvents, order.UserID, map[string]any{
		"type":            "order_created",
		"order_id":        order.ID,
		"user_id":         order.UserID,
		"toolseller_id":   order.ToolsellerID,
		"total_cost":      order.TotalCost,
		"order_type":      order.OrderType,
		"tracking_number": order.TrackingNumber,
	})

	return order, nil
}

// UpdateStatus drives the order through the fulfillment state machine.
// The first transition into delivered credits floor(totalCost/100) points
// to the buyer; the guard and the status write are a single conditional
// UPDATE so a concurrent duplicate request cannot credit twice.
func (s *Service) UpdateStatus(ctx context.Context, orderID uint, status string) (*models.Order, error) {
	if !KnownStatus(status) {
		return nil, fmt.Errorf("%w: invalid status %q", ErrValidation, status)
	}

	var result *models.Order

	txErr := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		current, err := tx.GetOrder(ctx, orderID)
		if err != nil {
			if repo.IsNotFound(err) {
				return fmt.Errorf("%w: order %d", ErrNotFound, orderID)
			}
			return err
		}

		// Terminal orders are left untouched; re-submitting "delivered" on a
		// delivered order lands here and must not re-credit points.
		if Terminal(current.Status) {
			result = current
			return nil
		}

		if !CanTransition(current.Status, status) {
			return fmt.Errorf("%w: cannot move order from %s to %s", ErrConflict, current.Status, status)
		}

		moved, err := tx.SetOrderStatus(ctx, orderID, status, []string{
			models.OrderStatusDelivered,
			models.OrderStatusCancelled,
		})
		if err != nil {
			return err
		}

		if moved && status == models.OrderStatusDelivered {
			bonus := int(math.Floor(current.TotalCost / pointsAccrualDivisor))
			if bonus > 0 {
				if err := tx.CreditUserPoints(ctx, current.UserID, bonus); err != nil {
					return err
				}
				util.PointsAccruedTotal.Add(float64(bonus))
			}
		}

		result, err = tx.GetOrder(ctx, orderID)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	switch result.Status {
	case models.OrderStatusDelivered:
		util.OrdersDeliveredTotal.Inc()
	case models.OrderStatusCancelled:
		util.OrdersCancelledTotal.Inc()
	}
	s.publish(ctx, mykafka.TopicOrderEvents, result.UserID, map[string]any{
		"type":     "order_status_updated",
		"order_id": result.ID,
		"status":   result.Status,
	})

	return result, nil
}

// Requester identifies the caller of owner-gated operations; exactly one
// of the two ids is set.
type Requester struct {
	UserID       uint
	ToolsellerID uint
}

func (s *Service) DeleteOrder(ctx context.Context, orderID uint, req Requester) error {
	o, err := s.Repo.GetOrder(ctx, orderID)
	if err != nil {
		if repo.IsNotFound(err) {
			return fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return err
	}

	switch {
	case req.UserID != 0 && req.UserID == o.UserID:
	case req.ToolsellerID != 0 && req.ToolsellerID == o.ToolsellerID:
	default:
		return fmt.Errorf("%w: order %d belongs to another party", ErrForbidden, orderID)
	}

	if err := s.Repo.DeleteOrder(ctx, orderID); err != nil {
		return err
	}

	s.publish(ctx, mykafka.TopicOrderEvents, o.UserID, map[string]any{
		"type":     "order_deleted",
		"order_id": orderID,
	})
	return nil
}

func (s *Service) GetOrder(ctx context.Context, orderID uint) (*models.Order, error) {
	o, err := s.Repo.GetOrderDetailed(ctx, orderID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return nil, err
	}
	return o, nil
}

func (s *Service) ListUserOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	return s.Repo.ListUserOrders(ctx, userID)
}

func (s *Service) ListToolsellerOrders(ctx context.Context, toolsellerID uint) ([]models.Order, error) {
	if _, err := s.Repo.GetToolseller(ctx, toolsellerID); err != nil {
		if repo.IsNotFound(err) {
			return nil, fmt.Errorf("%w: toolseller %d", ErrNotFound, toolsellerID)
		}
		return nil, err
	}
	return s.Repo.ListToolsellerOrders(ctx, toolsellerID)
}

func (s *Service) publish(ctx context.Context, topic string, key uint, event map[string]any) {
	if s.Producer == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.Producer.PublishEvent(pubCtx, topic, fmt.Sprint(key), event); err != nil {
		logging.FromContext(ctx).Warn("kafka publish error", "topic", topic, "error", err)
	}
}

func newTrackingNumber() string {
	return fmt.Sprintf("TRK-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

func failReason(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "internal"
	}
}
