package service

import (
	"testing"

	"github.com/clepigdo/Simig-Webapps/internal/model"
	"github.com/clepigdo/Simig-Webapps/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newInventoryFixture(t *testing.T) (InventoryService, LedgerService, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	categoryRepo := repository.NewCategoryRepo(db)
	productRepo := repository.NewProductRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	return NewInventoryService(categoryRepo, productRepo),
		NewLedgerService(productRepo, txRepo, db, nil),
		db
}

func seedCategory(t *testing.T, svc InventoryService, name string) *model.Category {
	t.Helper()
	category := &model.Category{Name: name}
	require.NoError(t, svc.CreateCategory(category))
	return category
}

func TestCreateProductStartsAtZeroWeight(t *testing.T) {
	svc, _, _ := newInventoryFixture(t)
	category := seedCategory(t, svc, "Metal")

	product := &model.Product{
		CategoryID: category.ID,
		Name:       "Copper",
		Weight:     qty("999"), // must be ignored
		PricePerKg: decimal.NewFromInt(1000),
	}
	require.NoError(t, svc.CreateProduct(product))

	stored, err := svc.GetProductByID(product.ID)
	require.NoError(t, err)
	assert.True(t, stored.Weight.Equal(decimal.Zero))
}

func TestUpdateProductNeverTouchesWeight(t *testing.T) {
	svc, ledger, _ := newInventoryFixture(t)
	category := seedCategory(t, svc, "Metal")

	product := &model.Product{
		CategoryID: category.ID,
		Name:       "Copper",
		PricePerKg: decimal.NewFromInt(1000),
	}
	require.NoError(t, svc.CreateProduct(product))
	require.NoError(t, ledger.CreateIn(inboundTx(product.ID, "42", 0)))

	updated, err := svc.UpdateProduct(product.ID, &model.Product{
		CategoryID: category.ID,
		Name:       "Copper Wire",
		Color:      "#b87333",
		Weight:     qty("7"), // must be ignored
		PricePerKg: decimal.NewFromInt(1500),
	})
	require.NoError(t, err)

	assert.Equal(t, "Copper Wire", updated.Name)
	assert.True(t, updated.PricePerKg.Equal(qty("1500")))
	assert.True(t, updated.Weight.Equal(qty("42")))
}

func TestCreateProductUnknownCategory(t *testing.T) {
	svc, _, _ := newInventoryFixture(t)

	err := svc.CreateProduct(&model.Product{
		CategoryID: uuid.New(),
		Name:       "Orphan",
		PricePerKg: decimal.NewFromInt(100),
	})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestDeleteProductRemovesItsTransactions(t *testing.T) {
	svc, ledger, db := newInventoryFixture(t)
	category := seedCategory(t, svc, "Metal")

	product := &model.Product{
		CategoryID: category.ID,
		Name:       "Copper",
		PricePerKg: decimal.NewFromInt(1000),
	}
	require.NoError(t, svc.CreateProduct(product))
	require.NoError(t, ledger.CreateIn(inboundTx(product.ID, "10", 1)))
	require.NoError(t, ledger.CreateOut(outboundTx(product.ID, "3", 0)))

	require.NoError(t, svc.DeleteProduct(product.ID))

	var inCount, outCount int64
	db.Model(&model.TransactionIn{}).Count(&inCount)
	db.Model(&model.TransactionOut{}).Count(&outCount)
	assert.Equal(t, int64(0), inCount)
	assert.Equal(t, int64(0), outCount)
}

func TestDeleteCategoryCascades(t *testing.T) {
	svc, ledger, db := newInventoryFixture(t)
	category := seedCategory(t, svc, "Metal")
	other := seedCategory(t, svc, "Plastic")

	doomed := &model.Product{CategoryID: category.ID, Name: "Copper", PricePerKg: decimal.NewFromInt(1000)}
	require.NoError(t, svc.CreateProduct(doomed))
	survivor := &model.Product{CategoryID: other.ID, Name: "PVC", PricePerKg: decimal.NewFromInt(50)}
	require.NoError(t, svc.CreateProduct(survivor))

	require.NoError(t, ledger.CreateIn(inboundTx(doomed.ID, "10", 0)))
	require.NoError(t, ledger.CreateIn(inboundTx(survivor.ID, "5", 0)))

	require.NoError(t, svc.DeleteCategory(category.ID))

	_, err := svc.GetProductByID(doomed.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = svc.GetProductByID(survivor.ID)
	assert.NoError(t, err)

	var inCount int64
	db.Model(&model.TransactionIn{}).Count(&inCount)
	assert.Equal(t, int64(1), inCount)
}

func TestDeleteCategoryNotFound(t *testing.T) {
	svc, _, _ := newInventoryFixture(t)
	assert.ErrorIs(t, svc.DeleteCategory(uuid.New()), ErrCategoryNotFound)
}

func TestUpdateCategoryRename(t *testing.T) {
	svc, _, _ := newInventoryFixture(t)
	category := seedCategory(t, svc, "Metal")

	updated, err := svc.UpdateCategory(category.ID, &model.Category{Name: "Scrap Metal"})
	require.NoError(t, err)
	assert.Equal(t, "Scrap Metal", updated.Name)

	stored, err := svc.GetCategoryByID(category.ID)
	require.NoError(t, err)
	assert.Equal(t, "Scrap Metal", stored.Name)
}
