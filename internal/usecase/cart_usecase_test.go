package usecase

import (
	"context"
	"testing"

	"github.com/putrairawan992/tradoora-b2b/internal/domain/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCartFixture() (*memStore, *CartUsecase) {
	s := newMemStore()
	s.addProduct(model.Product{ID: "p1", Name: "Beras 5kg", Slug: "beras", Price: decimal.RequireFromString("65000.50"), StockQuantity: 10, MinimumOrderQuantity: 2})
	s.addProduct(model.Product{ID: "p2", Name: "Gula 1kg", Slug: "gula", Price: decimal.RequireFromString("15000"), StockQuantity: 3})
	return s, NewCartUsecase(memCart{s}, memProducts{s})
}

func TestCartUsecase_AddMergesSameProduct(t *testing.T) {
	_, uc := newCartFixture()
	ctx := context.Background()

	_, err := uc.AddToCart(ctx, "u1", AddCartInput{ProductID: "p1", Qty: 2})
	require.NoError(t, err)
	cart, err := uc.AddToCart(ctx, "u1", AddCartInput{ProductID: "p1", Qty: 3})
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(5), cart.Items[0].Qty)
	assert.Equal(t, "325002.50", cart.Items[0].Subtotal)
	assert.Equal(t, int64(5), cart.Summary.TotalItems)
	assert.Equal(t, "325002.50", cart.Summary.TotalPrice)
	assert.Equal(t, 1, cart.Summary.ItemCount)
}

func TestCartUsecase_AddRejections(t *testing.T) {
	_, uc := newCartFixture()
	ctx := context.Background()

	_, err := uc.AddToCart(ctx, "u1", AddCartInput{ProductID: "p1", Qty: 1})
	assert.ErrorIs(t, err, ErrValidation, "below minimum order quantity")

	_, err = uc.AddToCart(ctx, "u1", AddCartInput{ProductID: "p2", Qty: 4})
	assert.ErrorIs(t, err, ErrValidation, "over stock")

	_, err = uc.AddToCart(ctx, "u1", AddCartInput{ProductID: "p2", Qty: 2})
	require.NoError(t, err)
	_, err = uc.AddToCart(ctx, "u1", AddCartInput{ProductID: "p2", Qty: 2})
	assert.ErrorIs(t, err, ErrValidation, "merged qty over stock")

	_, err = uc.AddToCart(ctx, "u1", AddCartInput{ProductID: "missing", Qty: 1})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = uc.AddToCart(ctx, "", AddCartInput{ProductID: "p2", Qty: 1})
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestCartUsecase_UpdateRemoveClear(t *testing.T) {
	s, uc := newCartFixture()
	ctx := context.Background()

	_, err := uc.AddToCart(ctx, "u1", AddCartInput{ProductID: "p1", Qty: 2})
	require.NoError(t, err)
	cart, err := uc.AddToCart(ctx, "u1", AddCartInput{ProductID: "p2", Qty: 1})
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)

	// 新しい順
	assert.Equal(t, "p2", cart.Items[0].ProductID)
	itemID := cart.Items[1].ID

	_, err = uc.UpdateCartItem(ctx, "u2", itemID, UpdateCartItemInput{Qty: 3})
	assert.ErrorIs(t, err, ErrNotFound, "other user's item")

	_, err = uc.UpdateCartItem(ctx, "u1", itemID, UpdateCartItemInput{Qty: 11})
	assert.ErrorIs(t, err, ErrValidation)

	cart, err = uc.UpdateCartItem(ctx, "u1", itemID, UpdateCartItemInput{Qty: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(5), cart.Summary.TotalItems)

	count, err := uc.CountItems(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	exists, err := uc.Exists(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.True(t, exists)

	cart, err = uc.DeleteCartItem(ctx, "u1", itemID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)

	exists, err = uc.Exists(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.False(t, exists)

	s.addCartItem(model.CartItem{UserID: "u2", ProductID: "p1", Qty: 2})
	n, err := uc.ClearCart(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	count, err = uc.CountItems(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
