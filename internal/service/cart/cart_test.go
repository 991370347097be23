package cart

import (
	"context"
	"testing"

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
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.CartItem{}))

	return &Service{Repo: repo.New(db)}, db
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price float64) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:         name,
		Description:  "d",
		Price:        price,
		Category:     "power tools",
		Brand:        "Makute",
		Condition:    "new",
		Stock:        5,
		ToolsellerID: 1,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func TestAddItem_MergesQuantity(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	p := seedProduct(t, db, "Drill", 100)

	item, err := svc.AddItem(ctx, 1, p.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, uint(2), item.Quantity)

	item, err = svc.AddItem(ctx, 1, p.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, uint(5), item.Quantity)

	var count int64
	require.NoError(t, db.Model(&models.CartItem{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAddItem_Validation(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	p := seedProduct(t, db, "Drill", 100)

	_, err := svc.AddItem(ctx, 1, p.ID, 0)
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.AddItem(ctx, 1, 999, 1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSetQuantity(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	p := seedProduct(t, db, "Drill", 100)

	_, err := svc.AddItem(ctx, 1, p.ID, 2)
	require.NoError(t, err)

	item, err := svc.SetQuantity(ctx, 1, p.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, uint(7), item.Quantity)

	_, err = svc.SetQuantity(ctx, 1, p.ID, 0)
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.SetQuantity(ctx, 1, 999, 3)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSnapshot(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	p1 := seedProduct(t, db, "Drill", 100)
	p2 := seedProduct(t, db, "Sander", 40)

	_, err := svc.AddItem(ctx, 1, p1.ID, 2)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, 1, p2.ID, 1)
	require.NoError(t, err)

	lines, err := svc.Snapshot(ctx, 1)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "Drill", lines[0].Name)
	assert.Equal(t, float64(200), lines[0].LineTotal)
	assert.Equal(t, float64(40), lines[1].LineTotal)

	// another user's cart is empty
	lines, err = svc.Snapshot(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestRemoveAndClear(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	p1 := seedProduct(t, db, "Drill", 100)
	p2 := seedProduct(t, db, "Sander", 40)

	_, err := svc.AddItem(ctx, 1, p1.ID, 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, 1, p2.ID, 1)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveItem(ctx, 1, p1.ID))
	require.ErrorIs(t, svc.RemoveItem(ctx, 1, p1.ID), ErrNotFound)

	require.NoError(t, svc.Clear(ctx, 1))
	lines, err := svc.Snapshot(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, lines)
}
