package service

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/rhinoeg/rhino-backend/internal/app/model"
	"github.com/rhinoeg/rhino-backend/internal/app/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testCheckout = CheckoutInput{ShippingAddress: "12 Nile St, Cairo", Phone: "01000000000"}

func TestOrderService_CheckoutEmptyCart(t *testing.T) {
	env := setupServiceTest(t)
	user := env.user(t, "buyer@example.com")

	_, err := env.orders.Checkout(user.ID, testCheckout)
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Zero(t, env.countOrders(t))
}

func TestOrderService_CheckoutRequiresAddressAndPhone(t *testing.T) {
	env := setupServiceTest(t)
	user := env.user(t, "buyer@example.com")

	_, err := env.orders.Checkout(user.ID, CheckoutInput{ShippingAddress: "  ", Phone: "0100"})
	assert.ErrorIs(t, err, ErrInvalidCheckoutInput)

	_, err = env.orders.Checkout(user.ID, CheckoutInput{ShippingAddress: "Cairo"})
	assert.ErrorIs(t, err, ErrInvalidCheckoutInput)
}

func TestOrderService_CheckoutSnapshotsCart(t *testing.T) {
	env := setupServiceTest(t)
	user := env.user(t, "buyer@example.com")
	poster := env.product(t, "Naruto Poster", model.SizeA4, false)
	framed := env.product(t, "Framed Poster", model.SizeA3, true)
	promo := env.promo(t, "SAVE20", model.DiscountPercentage, "20", withMinOrder("100"), withUses(50, 0))

	_, err := env.carts.AddCatalogItem(user.ID, poster.ID, 2)
	require.NoError(t, err)
	_, err = env.carts.AddCatalogItem(user.ID, framed.ID, 1)
	require.NoError(t, err)
	_, err = env.carts.ApplyPromoCode(user.ID, "SAVE20")
	require.NoError(t, err)

	order, err := env.orders.Checkout(user.ID, testCheckout)
	require.NoError(t, err)

	// 2 x 30.00 + 1 x 50.00 = 110.00, 20% off
	assert.Equal(t, model.FormatOrderNumber(order.ID), order.OrderNumber)
	assert.True(t, strings.HasPrefix(order.OrderNumber, "RHN-"))
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, "SAVE20", order.PromoCode)
	assert.True(t, dec("110.00").Equal(order.Subtotal))
	assert.True(t, dec("22.00").Equal(order.DiscountAmount))
	assert.True(t, dec("88.00").Equal(order.TotalAmount))
	require.Len(t, order.Items, 2)

	stored, err := env.orders.GetOrderByID(user.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, stored.OrderNumber)
	require.Len(t, stored.Items, 2)
	assert.Equal(t, "Naruto Poster", stored.Items[0].ProductName)
	assert.Equal(t, 2, stored.Items[0].Quantity)
	assert.True(t, dec("30.00").Equal(stored.Items[0].UnitPrice))

	cart, err := env.carts.GetCart(user.ID)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
	assert.Nil(t, cart.PromoCodeID)

	assert.Equal(t, 1, env.reloadPromo(t, promo.ID).UsedCount)
	assert.Equal(t, []string{OrderEventCreated}, env.publisher.types())
}

func TestOrderService_CheckoutWithInvalidatedPromoChargesFullPrice(t *testing.T) {
	env := setupServiceTest(t)
	user := env.user(t, "buyer@example.com")
	product := env.product(t, "Naruto Poster", model.SizeA4, false)
	promo := env.promo(t, "FLASH25", model.DiscountPercentage, "25")

	_, err := env.carts.AddCatalogItem(user.ID, product.ID, 1)
	require.NoError(t, err)
	_, err = env.carts.ApplyPromoCode(user.ID, "FLASH25")
	require.NoError(t, err)
	require.NoError(t, env.promos.SetActive(promo.ID, false))

	order, err := env.orders.Checkout(user.ID, testCheckout)
	require.NoError(t, err)
	assert.True(t, order.DiscountAmount.IsZero())
	assert.True(t, dec("30.00").Equal(order.TotalAmount))
	assert.Empty(t, order.PromoCode)
	assert.Equal(t, 0, env.reloadPromo(t, promo.ID).UsedCount)
}

// exhaustedPromoRepo loses every usage increment race
type exhaustedPromoRepo struct {
	repository.PromoCodeRepository
}

func (r exhaustedPromoRepo) WithTx(tx *gorm.DB) repository.PromoCodeRepository {
	return exhaustedPromoRepo{r.PromoCodeRepository.WithTx(tx)}
}

func (r exhaustedPromoRepo) IncrementUsage(uint) (bool, error) {
	return false, nil
}

func TestOrderService_CheckoutFailsWhenPromoExhaustedAtCommit(t *testing.T) {
	env := setupServiceTest(t)
	user := env.user(t, "buyer@example.com")
	product := env.product(t, "Naruto Poster", model.SizeA4, false)
	env.promo(t, "LASTONE", model.DiscountFixed, "5.00", withUses(1, 0))

	_, err := env.carts.AddCatalogItem(user.ID, product.ID, 1)
	require.NoError(t, err)
	_, err = env.carts.ApplyPromoCode(user.ID, "LASTONE")
	require.NoError(t, err)

	orders := NewOrderService(env.db, env.orderRepo, env.cartRepo,
		exhaustedPromoRepo{env.promoRepo}, nil, DefaultMaxAttempts)

	_, err = orders.Checkout(user.ID, testCheckout)
	assert.ErrorIs(t, err, ErrPromoCodeExhausted)

	// everything rolled back
	assert.Zero(t, env.countOrders(t))
	cart, err := env.carts.GetCart(user.ID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
	assert.NotNil(t, cart.PromoCodeID)
}

func TestOrderService_ConcurrentCheckoutsShareSingleUsePromo(t *testing.T) {
	env := setupServiceTest(t)
	product := env.product(t, "Naruto Poster", model.SizeA4, false)
	promo := env.promo(t, "ONCE", model.DiscountFixed, "10.00", withUses(1, 0))

	users := make([]*model.User, 2)
	for i := range users {
		users[i] = env.user(t, fmt.Sprintf("buyer%d@example.com", i))
		_, err := env.carts.AddCatalogItem(users[i].ID, product.ID, 1)
		require.NoError(t, err)
		_, err = env.carts.ApplyPromoCode(users[i].ID, "ONCE")
		require.NoError(t, err)
	}

	type outcome struct {
		order *model.Order
		err   error
	}
	results := make([]outcome, len(users))
	var wg sync.WaitGroup
	for i, u := range users {
		wg.Add(1)
		go func(i int, userID uint) {
			defer wg.Done()
			order, err := env.orders.Checkout(userID, testCheckout)
			results[i] = outcome{order: order, err: err}
		}(i, u.ID)
	}
	wg.Wait()

	discounted := 0
	for _, r := range results {
		if r.err != nil {
			// lost the race after re-validation
			assert.ErrorIs(t, r.err, ErrPromoCodeExhausted)
			continue
		}
		if r.order.DiscountAmount.IsPositive() {
			discounted++
			assert.True(t, dec("20.00").Equal(r.order.TotalAmount))
		} else {
			assert.True(t, dec("30.00").Equal(r.order.TotalAmount))
		}
	}
	assert.Equal(t, 1, discounted)
	assert.Equal(t, 1, env.reloadPromo(t, promo.ID).UsedCount)
}

func TestOrderService_GetOrderByIDHidesOtherUsersOrders(t *testing.T) {
	env := setupServiceTest(t)
	owner := env.user(t, "owner@example.com")
	other := env.user(t, "other@example.com")
	product := env.product(t, "Naruto Poster", model.SizeA4, false)

	_, err := env.carts.AddCatalogItem(owner.ID, product.ID, 1)
	require.NoError(t, err)
	order, err := env.orders.Checkout(owner.ID, testCheckout)
	require.NoError(t, err)

	_, err = env.orders.GetOrderByID(other.ID, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
	_, err = env.orders.GetOrderByID(owner.ID, order.ID+100)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	orders, err := env.orders.GetUserOrders(owner.ID)
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	orders, err = env.orders.GetUserOrders(other.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrderService_StatusTransitions(t *testing.T) {
	env := setupServiceTest(t)
	user := env.user(t, "buyer@example.com")
	product := env.product(t, "Naruto Poster", model.SizeA4, false)

	_, err := env.carts.AddCatalogItem(user.ID, product.ID, 1)
	require.NoError(t, err)
	order, err := env.orders.Checkout(user.ID, testCheckout)
	require.NoError(t, err)

	_, err = env.orders.UpdateOrderStatus(order.ID, model.OrderStatusShipped)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	_, err = env.orders.UpdateOrderStatus(order.ID, model.OrderStatus("lost"))
	assert.ErrorIs(t, err, ErrInvalidOrderStatus)

	_, err = env.orders.UpdateOrderStatus(order.ID+100, model.OrderStatusConfirmed)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	for _, next := range []model.OrderStatus{
		model.OrderStatusConfirmed,
		model.OrderStatusProcessing,
		model.OrderStatusShipped,
		model.OrderStatusDelivered,
	} {
		updated, err := env.orders.UpdateOrderStatus(order.ID, next)
		require.NoError(t, err)
		assert.Equal(t, next, updated.Status)
	}

	_, err = env.orders.CancelOrder(user.ID, order.ID)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	assert.Equal(t, []string{
		OrderEventCreated,
		OrderEventStatusChanged,
		OrderEventStatusChanged,
		OrderEventStatusChanged,
		OrderEventStatusChanged,
	}, env.publisher.types())
}

func TestOrderService_CancelOrder(t *testing.T) {
	env := setupServiceTest(t)
	owner := env.user(t, "owner@example.com")
	other := env.user(t, "other@example.com")
	product := env.product(t, "Naruto Poster", model.SizeA4, false)

	_, err := env.carts.AddCatalogItem(owner.ID, product.ID, 1)
	require.NoError(t, err)
	order, err := env.orders.Checkout(owner.ID, testCheckout)
	require.NoError(t, err)

	_, err = env.orders.CancelOrder(other.ID, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	cancelled, err := env.orders.CancelOrder(owner.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, cancelled.Status)

	_, err = env.orders.CancelOrder(owner.ID, order.ID)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}
