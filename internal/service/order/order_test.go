package order

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
		&models.User{}, &models.Toolseller{}, &models.Product{},
		&models.CartItem{}, &models.Order{}, &models.OrderItem{}, &models.Review{},
	))

	return &Service{Repo: repo.New(db)}, db
}

func seedUser(t *testing.T, db *gorm.DB, points int) *models.User {
	t.Helper()
	u := &models.User{
		FirstName:    "Test",
		LastName:     "Buyer",
		Phone:        "555-0100",
		Email:        "buyer@example.com",
		PasswordHash: "x",
		Points:       points,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedToolseller(t *testing.T, db *gorm.DB, email string) *models.Toolseller {
	t.Helper()
	ts := &models.Toolseller{
		CompanyName:        "Tools Inc",
		ContactPerson:      "Pat",
		RegistrationNumber: "REG-1",
		Phone:              "555-0200",
		Email:              email,
		PasswordHash:       "x",
		Address:            "1 Main St",
	}
	require.NoError(t, db.Create(ts).Error)
	return ts
}

func seedProduct(t *testing.T, db *gorm.DB, sellerID uint, price float64) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:         "Impact Driver",
		Description:  "18V",
		Price:        price,
		Category:     "power tools",
		Brand:        "Makute",
		Condition:    "new",
		Stock:        10,
		ToolsellerID: sellerID,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func addToCart(t *testing.T, db *gorm.DB, userID, productID, qty uint) {
	t.Helper()
	require.NoError(t, db.Create(&models.CartItem{UserID: userID, ProductID: productID, Quantity: qty}).Error)
}

func purchaseInput() PlaceOrderInput {
	return PlaceOrderInput{
		DeliveryAddress: "1 Main St",
		PaymentMethod:   "card",
		OrderType:       models.OrderTypePurchase,
	}
}

func TestPlaceOrder_Purchase(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()

	user := seedUser(t, db, 50)
	seller := seedToolseller(t, db, "seller@example.com")
	p1 := seedProduct(t, db, seller.ID, 100)
	p2 := seedProduct(t, db, seller.ID, 40)
	addToCart(t, db, user.ID, p1.ID, 2)
	addToCart(t, db, user.ID, p2.ID, 1)

	in := purchaseInput()
	in.DiscountPoints = 30
	ord, err := svc.PlaceOrder(ctx, user.ID, in)
	require.NoError(t, err)

	// 2*100 + 40 - 30 points
	assert.Equal(t, float64(210), ord.TotalCost)
	assert.Equal(t, models.OrderStatusPending, ord.Status)
	assert.Equal(t, seller.ID, ord.ToolsellerID)
	assert.Contains(t, ord.TrackingNumber, "TRK-")
	require.Len(t, ord.Items, 2)
	assert.Equal(t, float64(100), ord.Items[0].PriceAtPurchase)

	var fresh models.User
	require.NoError(t, db.First(&fresh, user.ID).Error)
	assert.Equal(t, 20, fresh.Points)

	var cartCount int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("user_id = ?", user.ID).Count(&cartCount).Error)
	assert.Zero(t, cartCount)
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	user := seedUser(t, db, 0)

	_, err := svc.PlaceOrder(context.Background(), user.ID, purchaseInput())
	require.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "cart is empty")
}

func TestPlaceOrder_MixedSellersRollsBack(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()

	user := seedUser(t, db, 50)
	s1 := seedToolseller(t, db, "one@example.com")
	s2 := seedToolseller(t, db, "two@example.com")
	p1 := seedProduct(t, db, s1.ID, 100)
	p2 := seedProduct(t, db, s2.ID, 40)
	addToCart(t, db, user.ID, p1.ID, 1)
	addToCart(t, db, user.ID, p2.ID, 1)

	in := purchaseInput()
	in.DiscountPoints = 10
	_, err := svc.PlaceOrder(ctx, user.ID, in)
	require.ErrorIs(t, err, ErrConflict)

	// nothing was written
	var fresh models.User
	require.NoError(t, db.First(&fresh, user.ID).Error)
	assert.Equal(t, 50, fresh.Points)
	var orderCount, cartCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	require.NoError(t, db.Model(&models.CartItem{}).Count(&cartCount).Error)
	assert.Zero(t, orderCount)
	assert.Equal(t, int64(2), cartCount)
}

func TestPlaceOrder_InsufficientPoints(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	user := seedUser(t, db, 5)
	seller := seedToolseller(t, db, "seller@example.com")
	p := seedProduct(t, db, seller.ID, 100)
	addToCart(t, db, user.ID, p.ID, 1)

	in := purchaseInput()
	in.DiscountPoints = 10
	_, err := svc.PlaceOrder(context.Background(), user.ID, in)
	require.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "insufficient points")

	var cartCount int64
	require.NoError(t, db.Model(&models.CartItem{}).Count(&cartCount).Error)
	assert.Equal(t, int64(1), cartCount)
}

func TestPlaceOrder_Rental(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	user := seedUser(t, db, 0)
	seller := seedToolseller(t, db, "seller@example.com")
	p := seedProduct(t, db, seller.ID, 100)
	addToCart(t, db, user.ID, p.ID, 1)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	ord, err := svc.PlaceOrder(context.Background(), user.ID, PlaceOrderInput{
		DeliveryAddress: "1 Main St",
		PaymentMethod:   "card",
		OrderType:       models.OrderTypeRental,
		RentalStartDate: &start,
		RentalEndDate:   &end,
	})
	require.NoError(t, err)

	// 2 days at 10% of 100 per day
	assert.Equal(t, float64(20), ord.TotalCost)
	assert.Equal(t, models.OrderTypeRental, ord.OrderType)
	require.NotNil(t, ord.RentalStartDate)
	require.NotNil(t, ord.RentalEndDate)
}

func TestPlaceOrder_RentalRejectsMultipleItems(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	user := seedUser(t, db, 0)
	seller := seedToolseller(t, db, "seller@example.com")
	p1 := seedProduct(t, db, seller.ID, 100)
	p2 := seedProduct(t, db, seller.ID, 40)
	addToCart(t, db, user.ID, p1.ID, 1)
	addToCart(t, db, user.ID, p2.ID, 1)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	_, err := svc.PlaceOrder(context.Background(), user.ID, PlaceOrderInput{
		DeliveryAddress: "1 Main St",
		PaymentMethod:   "card",
		OrderType:       models.OrderTypeRental,
		RentalStartDate: &start,
		RentalEndDate:   &end,
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestPlaceOrder_RentalRequiresDates(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	user := seedUser(t, db, 0)
	seller := seedToolseller(t, db, "seller@example.com")
	p := seedProduct(t, db, seller.ID, 100)
	addToCart(t, db, user.ID, p.ID, 1)

	in := purchaseInput()
	in.OrderType = models.OrderTypeRental
	_, err := svc.PlaceOrder(context.Background(), user.ID, in)
	require.ErrorIs(t, err, ErrValidation)
}

func TestPlaceOrder_InputValidation(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*PlaceOrderInput)
	}{
		{"missing address", func(in *PlaceOrderInput) { in.DeliveryAddress = "" }},
		{"missing payment method", func(in *PlaceOrderInput) { in.PaymentMethod = "" }},
		{"unknown order type", func(in *PlaceOrderInput) { in.OrderType = "lease" }},
		{"negative points", func(in *PlaceOrderInput) { in.DiscountPoints = -1 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := purchaseInput()
			tc.mutate(&in)
			_, err := svc.PlaceOrder(ctx, 1, in)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
}

func placeTestOrder(t *testing.T, svc *Service, db *gorm.DB, price float64) (*models.User, *models.Order) {
	t.Helper()
	user := seedUser(t, db, 0)
	seller := seedToolseller(t, db, "seller@example.com")
	p := seedProduct(t, db, seller.ID, price)
	addToCart(t, db, user.ID, p.ID, 1)
	ord, err := svc.PlaceOrder(context.Background(), user.ID, purchaseInput())
	require.NoError(t, err)
	return user, ord
}

func TestUpdateStatus_DeliveryCreditsPointsOnce(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	user, ord := placeTestOrder(t, svc, db, 250)

	for _, status := range []string{
		models.OrderStatusProcessing,
		models.OrderStatusShipped,
		models.OrderStatusDelivered,
	} {
		updated, err := svc.UpdateStatus(ctx, ord.ID, status)
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)
	}

	var fresh models.User
	require.NoError(t, db.First(&fresh, user.ID).Error)
	assert.Equal(t, 2, fresh.Points) // floor(250/100)

	// re-delivering a delivered order is a no-op and must not re-credit
	updated, err := svc.UpdateStatus(ctx, ord.ID, models.OrderStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, updated.Status)

	require.NoError(t, db.First(&fresh, user.ID).Error)
	assert.Equal(t, 2, fresh.Points)
}

func TestUpdateStatus_TerminalIsFrozen(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	_, ord := placeTestOrder(t, svc, db, 100)

	_, err := svc.UpdateStatus(ctx, ord.ID, models.OrderStatusCancelled)
	require.NoError(t, err)

	// any further request leaves the order untouched
	updated, err := svc.UpdateStatus(ctx, ord.ID, models.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, updated.Status)
}

func TestUpdateStatus_CancelDoesNotRefundPoints(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()

	user := seedUser(t, db, 40)
	seller := seedToolseller(t, db, "seller@example.com")
	p := seedProduct(t, db, seller.ID, 100)
	addToCart(t, db, user.ID, p.ID, 1)

	in := purchaseInput()
	in.DiscountPoints = 40
	ord, err := svc.PlaceOrder(ctx, user.ID, in)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, ord.ID, models.OrderStatusCancelled)
	require.NoError(t, err)

	var fresh models.User
	require.NoError(t, db.First(&fresh, user.ID).Error)
	assert.Equal(t, 0, fresh.Points)
}

func TestUpdateStatus_Errors(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	_, ord := placeTestOrder(t, svc, db, 100)

	_, err := svc.UpdateStatus(ctx, ord.ID, "misplaced")
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.UpdateStatus(ctx, 9999, models.OrderStatusShipped)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.UpdateStatus(ctx, ord.ID, models.OrderStatusShipped)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, ord.ID, models.OrderStatusProcessing)
	require.ErrorIs(t, err, ErrConflict)
}

func TestDeleteOrder_Authorization(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	user, ord := placeTestOrder(t, svc, db, 100)

	err := svc.DeleteOrder(ctx, ord.ID, Requester{UserID: user.ID + 1})
	require.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, svc.DeleteOrder(ctx, ord.ID, Requester{UserID: user.ID}))

	var itemCount int64
	require.NoError(t, db.Model(&models.OrderItem{}).Where("order_id = ?", ord.ID).Count(&itemCount).Error)
	assert.Zero(t, itemCount)

	err = svc.DeleteOrder(ctx, ord.ID, Requester{UserID: user.ID})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListToolsellerOrders_UnknownSeller(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	_, err := svc.ListToolsellerOrders(context.Background(), 42)
	require.ErrorIs(t, err, ErrNotFound)
}
