package review

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/toolmarketplace/server/internal/models"
	"github.com/toolmarketplace/server/internal/repo"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Order{}, &models.OrderItem{}, &models.Review{},
	))

	return &Service{Repo: repo.New(db)}, db
}

func seedOrder(t *testing.T, db *gorm.DB, userID uint, status string) *models.Order {
	t.Helper()
	o := &models.Order{
		UserID:          userID,
		ToolsellerID:    7,
		DeliveryAddress: "1 Main St",
		TotalCost:       100,
		Status:          status,
		PaymentMethod:   "card",
		TrackingNumber:  "TRK-test",
		OrderDate:       time.Now().UTC(),
		OrderType:       models.OrderTypePurchase,
	}
	require.NoError(t, db.Create(o).Error)
	return o
}

func validInput(orderID uint) SubmitInput {
	return SubmitInput{
		OrderID:     orderID,
		Rating:      5,
		ShortReview: "solid tool",
		ReviewText:  "survived a full season",
	}
}

func TestSubmit_RequiresDeliveredOrder(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()

	for _, status := range []string{
		models.OrderStatusPending,
		models.OrderStatusProcessing,
		models.OrderStatusShipped,
		models.OrderStatusCancelled,
	} {
		o := seedOrder(t, db, 1, status)
		_, err := svc.Submit(ctx, 1, validInput(o.ID))
		require.ErrorIs(t, err, ErrConflict, "status %s", status)
	}
}

func TestSubmit_Delivered(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	o := seedOrder(t, db, 1, models.OrderStatusDelivered)

	rev, err := svc.Submit(ctx, 1, validInput(o.ID))
	require.NoError(t, err)
	assert.Equal(t, o.ID, rev.OrderID)
	assert.Equal(t, uint(7), rev.ToolsellerID)
	assert.Equal(t, 5, rev.Rating)

	// one review per order
	_, err = svc.Submit(ctx, 1, validInput(o.ID))
	require.ErrorIs(t, err, ErrConflict)
}

func TestSubmit_OnlyBuyerMayReview(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	o := seedOrder(t, db, 1, models.OrderStatusDelivered)

	_, err := svc.Submit(context.Background(), 2, validInput(o.ID))
	require.ErrorIs(t, err, ErrForbidden)
}

func TestSubmit_Validation(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	o := seedOrder(t, db, 1, models.OrderStatusDelivered)

	in := validInput(o.ID)
	in.Rating = 0
	_, err := svc.Submit(ctx, 1, in)
	require.ErrorIs(t, err, ErrValidation)

	in = validInput(o.ID)
	in.Rating = 6
	_, err = svc.Submit(ctx, 1, in)
	require.ErrorIs(t, err, ErrValidation)

	in = validInput(o.ID)
	in.ShortReview = ""
	_, err = svc.Submit(ctx, 1, in)
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Submit(ctx, 1, validInput(999))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateAndDelete_AuthorOnly(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	o := seedOrder(t, db, 1, models.OrderStatusDelivered)

	rev, err := svc.Submit(ctx, 1, validInput(o.ID))
	require.NoError(t, err)

	_, err = svc.Update(ctx, rev.ID, 2, UpdateInput{Rating: 3, ShortReview: "meh"})
	require.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.Update(ctx, rev.ID, 1, UpdateInput{Rating: 3, ShortReview: "meh"})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Rating)

	require.ErrorIs(t, svc.Delete(ctx, rev.ID, 2), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, rev.ID, 1))
	require.ErrorIs(t, svc.Delete(ctx, rev.ID, 1), ErrNotFound)
}

func TestListByToolseller(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()

	o1 := seedOrder(t, db, 1, models.OrderStatusDelivered)
	o2 := seedOrder(t, db, 2, models.OrderStatusDelivered)

	_, err := svc.Submit(ctx, 1, validInput(o1.ID))
	require.NoError(t, err)
	_, err = svc.Submit(ctx, 2, validInput(o2.ID))
	require.NoError(t, err)

	reviews, err := svc.ListByToolseller(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, reviews, 2)

	reviews, err = svc.ListByToolseller(ctx, 8)
	require.NoError(t, err)
	assert.Empty(t, reviews)
}
