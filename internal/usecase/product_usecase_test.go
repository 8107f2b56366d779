package usecase

import (
	"context"
	"testing"

	"github.com/putrairawan992/tradoora-b2b/internal/domain/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProductFixture() (*memStore, *ProductUsecase) {
	s := newMemStore()
	s.categories["c1"] = model.Category{ID: "c1", Name: "Sembako", Slug: "sembako"}
	return s, NewProductUsecase(s, memProducts{s}, memCategories{s})
}

func TestProductUsecase_AdminCreate(t *testing.T) {
	_, uc := newProductFixture()
	ctx := context.Background()
	cat := "c1"

	p, err := uc.AdminCreateProduct(ctx, "admin-1", AdminProductInput{
		Name:          "  Minyak Goreng 2L ",
		CategoryID:    &cat,
		Price:         decimal.RequireFromString("38500"),
		StockQuantity: 20,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Minyak Goreng 2L", p.Name)
	assert.Equal(t, "minyak-goreng-2l", p.Slug)
	assert.Equal(t, int64(1), p.MinimumOrderQuantity)

	_, err = uc.AdminCreateProduct(ctx, "admin-1", AdminProductInput{Name: "Minyak Goreng 2L", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrConflict, "same slug")
}

func TestProductUsecase_AdminCreateValidation(t *testing.T) {
	_, uc := newProductFixture()
	missing := "nope"
	cases := map[string]AdminProductInput{
		"no name":        {Price: decimal.NewFromInt(1)},
		"zero price":     {Name: "x", Price: decimal.Zero},
		"sub-cent price": {Name: "x", Price: decimal.RequireFromString("0.001")},
		"negative stock": {Name: "x", Price: decimal.NewFromInt(1), StockQuantity: -1},
		"bad minimum":    {Name: "x", Price: decimal.NewFromInt(1), MinimumOrderQuantity: -2},
		"bad category":   {Name: "x", Price: decimal.NewFromInt(1), CategoryID: &missing},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.AdminCreateProduct(context.Background(), "admin-1", in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestProductUsecase_AdminUpdateRecordsStockChange(t *testing.T) {
	s, uc := newProductFixture()
	ctx := context.Background()
	s.addProduct(model.Product{ID: "p1", Name: "Teh", Slug: "teh", Price: decimal.NewFromInt(5000), StockQuantity: 4})

	_, err := uc.AdminUpdateProduct(ctx, "admin-1", "p1", AdminProductInput{Name: "Teh Celup", Price: decimal.NewFromInt(5500), StockQuantity: 10})
	require.NoError(t, err)

	assert.Equal(t, int64(10), s.stock("p1"))
	audits, adjustments, _ := s.counts()
	assert.Equal(t, 1, audits)
	require.Equal(t, 1, adjustments)
	assert.Equal(t, int64(6), s.adjustments[0].Delta)
	assert.Equal(t, "admin-1", s.adjustments[0].ActorID)

	_, err = uc.AdminUpdateProduct(ctx, "admin-1", "missing", AdminProductInput{Name: "x", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProductUsecase_InventoryAndDelete(t *testing.T) {
	s, uc := newProductFixture()
	ctx := context.Background()
	s.addProduct(model.Product{ID: "p1", Name: "Teh", Slug: "teh", Price: decimal.NewFromInt(5000), StockQuantity: 4})

	require.NoError(t, uc.AdminUpdateInventory(ctx, "admin-1", "p1", 1, "stock opname"))
	assert.Equal(t, int64(1), s.stock("p1"))

	assert.ErrorIs(t, uc.AdminUpdateInventory(ctx, "admin-1", "p1", -1, "x"), ErrValidation)
	assert.ErrorIs(t, uc.AdminUpdateInventory(ctx, "admin-1", "p1", 1, " "), ErrValidation)

	require.NoError(t, uc.AdminDeleteProduct(ctx, "admin-1", "p1"))
	_, err := uc.GetProductDetail(ctx, "p1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProductUsecase_ListValidation(t *testing.T) {
	_, uc := newProductFixture()
	ctx := context.Background()

	_, err := uc.ListPublicProducts(ctx, ListProductsInput{Page: 0, Limit: 10})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = uc.ListPublicProducts(ctx, ListProductsInput{Page: 1, Limit: 101})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = uc.ListPublicProducts(ctx, ListProductsInput{Page: 1, Limit: 10, Sort: "random"})
	assert.ErrorIs(t, err, ErrValidation)

	out, err := uc.ListPublicProducts(ctx, ListProductsInput{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(0), out.Total)

	cats, err := uc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "Sembako", cats[0].Name)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "kopi-gayo-1kg", slugify("Kopi Gayo (1kg)"))
	assert.Equal(t, "a-b", slugify("--A   B--"))
}

// 監査ログが書けなければ在庫も戻る
func TestProductUsecase_InventoryRollsBackOnAuditFailure(t *testing.T) {
	s, uc := newProductFixture()
	s.addProduct(model.Product{ID: "p1", Name: "Teh", Slug: "teh", Price: decimal.NewFromInt(5000), StockQuantity: 4})
	s.fail["AuditLogs.Create"] = errBoom

	err := uc.AdminUpdateInventory(context.Background(), "admin-1", "p1", 9, "stock opname")
	assert.ErrorIs(t, err, ErrDependency)
	assert.Equal(t, int64(4), s.stock("p1"))
	_, adjustments, _ := s.counts()
	assert.Zero(t, adjustments)
}

func TestProductUsecase_InventoryAuditPayload(t *testing.T) {
	s, uc := newProductFixture()
	s.addProduct(model.Product{ID: "p1", Name: "Teh", Slug: "teh", Price: decimal.NewFromInt(5000), StockQuantity: 4})

	require.NoError(t, uc.AdminUpdateInventory(context.Background(), "admin-1", "p1", 9, "restock"))
	require.Len(t, s.audits, 1)
	assert.JSONEq(t, `{"stock_quantity":4}`, s.audits[0].BeforeJSON)
	assert.JSONEq(t, `{"stock_quantity":9,"reason":"restock"}`, s.audits[0].AfterJSON)
}
