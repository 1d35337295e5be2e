package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/rhinoeg/rhino-backend/internal/app/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupOrderTest(t *testing.T) (*gorm.DB, OrderRepository, *model.User) {
	testDB := setupRepoTest(t)
	return testDB, NewOrderRepository(testDB), createUser(t, testDB, "order@example.com")
}

func newOrder(userID uint) *model.Order {
	price := decimal.RequireFromString("45.00")
	return &model.Order{
		OrderNumber:     uuid.NewString(),
		UserID:          userID,
		Subtotal:        price.Mul(decimal.NewFromInt(2)),
		DiscountAmount:  decimal.Zero,
		TotalAmount:     price.Mul(decimal.NewFromInt(2)),
		ShippingAddress: "12 Nile St, Cairo",
		Phone:           "01000000000",
		Status:          model.OrderStatusPending,
		Items: []model.OrderItem{
			{ProductName: "Poster", Quantity: 2, UnitPrice: price},
		},
	}
}

func TestOrderRepository_CreateWithItemsAndNumber(t *testing.T) {
	_, repo, user := setupOrderTest(t)

	order := newOrder(user.ID)
	require.NoError(t, repo.Create(order))
	require.NotZero(t, order.ID)
	require.NoError(t, repo.UpdateOrderNumber(order.ID, model.FormatOrderNumber(order.ID)))

	found, err := repo.FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.FormatOrderNumber(order.ID), found.OrderNumber)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Poster", found.Items[0].ProductName)
	assert.True(t, decimal.RequireFromString("90.00").Equal(found.TotalAmount))
}

func TestOrderRepository_FindByUserID(t *testing.T) {
	testDB, repo, user := setupOrderTest(t)
	other := createUser(t, testDB, "other@example.com")

	require.NoError(t, repo.Create(newOrder(user.ID)))
	require.NoError(t, repo.Create(newOrder(user.ID)))
	require.NoError(t, repo.Create(newOrder(other.ID)))

	orders, err := repo.FindByUserID(user.ID)
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}

func TestOrderRepository_UpdateStatusIsConditional(t *testing.T) {
	_, repo, user := setupOrderTest(t)
	order := newOrder(user.ID)
	require.NoError(t, repo.Create(order))

	ok, err := repo.UpdateStatus(order.ID, model.OrderStatusPending, model.OrderStatusConfirmed)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.UpdateStatus(order.ID, model.OrderStatusPending, model.OrderStatusCancelled)
	require.NoError(t, err)
	assert.False(t, ok)

	found, err := repo.FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusConfirmed, found.Status)
}

func TestOrderRepository_FindForExport(t *testing.T) {
	_, repo, user := setupOrderTest(t)

	first := newOrder(user.ID)
	require.NoError(t, repo.Create(first))
	require.NoError(t, repo.Create(newOrder(user.ID)))
	_, err := repo.UpdateStatus(first.ID, model.OrderStatusPending, model.OrderStatusCancelled)
	require.NoError(t, err)

	all, err := repo.FindForExport(OrderExportFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	cancelled, err := repo.FindForExport(OrderExportFilter{Status: model.OrderStatusCancelled})
	require.NoError(t, err)
	require.Len(t, cancelled, 1)
	assert.Equal(t, first.ID, cancelled[0].ID)
}
