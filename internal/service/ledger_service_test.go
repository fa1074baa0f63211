package service

import (
	"testing"
	"time"

	"github.com/clepigdo/Simig-Webapps/internal/model"
	"github.com/clepigdo/Simig-Webapps/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&model.Category{}, &model.Product{}, &model.TransactionIn{}, &model.TransactionOut{}, &model.User{})
	require.NoError(t, err)

	return db
}

func newLedgerFixture(t *testing.T) (LedgerService, repository.ProductRepository, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	productRepo := repository.NewProductRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	return NewLedgerService(productRepo, txRepo, db, nil), productRepo, db
}

func seedProduct(t *testing.T, db *gorm.DB, name string, pricePerKg int64) *model.Product {
	t.Helper()

	category := &model.Category{Name: "Scrap Metal"}
	require.NoError(t, db.Create(category).Error)

	product := &model.Product{
		CategoryID: category.ID,
		Name:       name,
		Weight:     decimal.Zero,
		PricePerKg: decimal.NewFromInt(pricePerKg),
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func productWeight(t *testing.T, repo repository.ProductRepository, id uuid.UUID) decimal.Decimal {
	t.Helper()
	product, err := repo.FindByID(id)
	require.NoError(t, err)
	return product.Weight
}

func qty(v string) decimal.Decimal {
	d, _ := decimal.NewFromString(v)
	return d
}

func txDate(daysAgo int) time.Time {
	d := today().AddDate(0, 0, -daysAgo)
	return d
}

func inboundTx(productID uuid.UUID, quantity string, daysAgo int) *model.TransactionIn {
	return &model.TransactionIn{TxRecord: model.TxRecord{
		ProductID: productID,
		Date:      txDate(daysAgo),
		Quantity:  qty(quantity),
	}}
}

func outboundTx(productID uuid.UUID, quantity string, daysAgo int) *model.TransactionOut {
	return &model.TransactionOut{TxRecord: model.TxRecord{
		ProductID: productID,
		Date:      txDate(daysAgo),
		Quantity:  qty(quantity),
	}}
}

func TestCreateInboundIncreasesWeight(t *testing.T) {
	svc, productRepo, db := newLedgerFixture(t)
	product := seedProduct(t, db, "Copper", 1000)

	require.NoError(t, svc.CreateIn(inboundTx(product.ID, "12.50", 0)))

	assert.True(t, productWeight(t, productRepo, product.ID).Equal(qty("12.50")))
}

func TestCreateOutboundDecreasesWeight(t *testing.T) {
	svc, productRepo, db := newLedgerFixture(t)
	product := seedProduct(t, db, "Copper", 1000)

	require.NoError(t, svc.CreateIn(inboundTx(product.ID, "20.00", 1)))
	require.NoError(t, svc.CreateOut(outboundTx(product.ID, "7.25", 0)))

	assert.True(t, productWeight(t, productRepo, product.ID).Equal(qty("12.75")))
}

// The canonical sequence: +100, -30, edit the inbound to 50, delete the
// outbound. Weight must track 100 -> 70 -> 20 -> 50.
func TestReconciliationSequence(t *testing.T) {
	svc, productRepo, db := newLedgerFixture(t)
	product := seedProduct(t, db, "Aluminium", 500)

	txA := inboundTx(product.ID, "100", 2)
	require.NoError(t, svc.CreateIn(txA))
	assert.True(t, productWeight(t, productRepo, product.ID).Equal(qty("100")))

	txB := outboundTx(product.ID, "30", 1)
	require.NoError(t, svc.CreateOut(txB))
	assert.True(t, productWeight(t, productRepo, product.ID).Equal(qty("70")))

	_, err := svc.UpdateIn(txA.ID, inboundTx(product.ID, "50", 2))
	require.NoError(t, err)
	assert.True(t, productWeight(t, productRepo, product.ID).Equal(qty("20")))

	require.NoError(t, svc.DeleteOut(txB.ID))
	assert.True(t, productWeight(t, productRepo, product.ID).Equal(qty("50")))
}

func TestUpdateQuantityShiftsWeightByDelta(t *testing.T) {
	svc, productRepo, db := newLedgerFixture(t)
	product := seedProduct(t, db, "Brass", 800)

	// Unrelated activity on the same product
	require.NoError(t, svc.CreateIn(inboundTx(product.ID, "40", 5)))
	require.NoError(t, svc.CreateOut(outboundTx(product.ID, "10", 4)))

	tx := inboundTx(product.ID, "25", 3)
	require.NoError(t, svc.CreateIn(tx))
	before := productWeight(t, productRepo, product.ID)

	_, err := svc.UpdateIn(tx.ID, inboundTx(product.ID, "32.50", 3))
	require.NoError(t, err)

	after := productWeight(t, productRepo, product.ID)
	assert.True(t, after.Sub(before).Equal(qty("7.50")))
}

func TestUpdateOutboundQuantityShiftsWeightByNegatedDelta(t *testing.T) {
	svc, productRepo, db := newLedgerFixture(t)
	product := seedProduct(t, db, "Brass", 800)

	require.NoError(t, svc.CreateIn(inboundTx(product.ID, "100", 5)))

	tx := outboundTx(product.ID, "20", 2)
	require.NoError(t, svc.CreateOut(tx))
	before := productWeight(t, productRepo, product.ID)

	_, err := svc.UpdateOut(tx.ID, outboundTx(product.ID, "35", 2))
	require.NoError(t, err)

	after := productWeight(t, productRepo, product.ID)
	assert.True(t, after.Sub(before).Equal(qty("-15")))
}

// Reassigning a transaction to another product must move the full effect:
// the old product gets the reversal, the new one the forward amount.
func TestUpdateMovesEffectBetweenProducts(t *testing.T) {
	svc, productRepo, db := newLedgerFixture(t)
	oldProduct := seedProduct(t, db, "Iron", 300)
	newProduct := seedProduct(t, db, "Steel", 400)

	tx := inboundTx(oldProduct.ID, "60", 1)
	require.NoError(t, svc.CreateIn(tx))
	assert.True(t, productWeight(t, productRepo, oldProduct.ID).Equal(qty("60")))
	assert.True(t, productWeight(t, productRepo, newProduct.ID).Equal(qty("0")))

	_, err := svc.UpdateIn(tx.ID, inboundTx(newProduct.ID, "60", 1))
	require.NoError(t, err)

	assert.True(t, productWeight(t, productRepo, oldProduct.ID).Equal(qty("0")))
	assert.True(t, productWeight(t, productRepo, newProduct.ID).Equal(qty("60")))
}

func TestDeleteRestoresPriorWeight(t *testing.T) {
	svc, productRepo, db := newLedgerFixture(t)
	product := seedProduct(t, db, "Zinc", 200)

	require.NoError(t, svc.CreateIn(inboundTx(product.ID, "80", 3)))
	baseline := productWeight(t, productRepo, product.ID)

	tx := outboundTx(product.ID, "15", 1)
	require.NoError(t, svc.CreateOut(tx))
	require.NoError(t, svc.DeleteOut(tx.ID))

	assert.True(t, productWeight(t, productRepo, product.ID).Equal(baseline))

	// And the row is gone
	_, err := svc.GetOutByID(tx.ID)
	assert.Error(t, err)
}

func TestCreateUnknownProductRejectedWithoutEffect(t *testing.T) {
	svc, _, db := newLedgerFixture(t)
	seedProduct(t, db, "Copper", 1000)

	err := svc.CreateIn(inboundTx(uuid.New(), "10", 0))
	assert.ErrorIs(t, err, ErrProductNotFound)

	var count int64
	db.Model(&model.TransactionIn{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestUpdateToUnknownProductRollsBackEverything(t *testing.T) {
	svc, productRepo, db := newLedgerFixture(t)
	product := seedProduct(t, db, "Copper", 1000)

	tx := inboundTx(product.ID, "45", 1)
	require.NoError(t, svc.CreateIn(tx))

	_, err := svc.UpdateIn(tx.ID, inboundTx(uuid.New(), "90", 1))
	assert.ErrorIs(t, err, ErrProductNotFound)

	// Neither the row nor the weight moved
	assert.True(t, productWeight(t, productRepo, product.ID).Equal(qty("45")))
	current, err := svc.GetInByID(tx.ID)
	require.NoError(t, err)
	assert.True(t, current.Quantity.Equal(qty("45")))
}

func TestUpdateMissingTransaction(t *testing.T) {
	svc, _, db := newLedgerFixture(t)
	product := seedProduct(t, db, "Copper", 1000)

	_, err := svc.UpdateIn(uuid.New(), inboundTx(product.ID, "10", 0))
	assert.ErrorIs(t, err, ErrTransactionNotFound)

	err = svc.DeleteOut(uuid.New())
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

// Outbound beyond recorded inbound is accepted and drives the weight
// negative. There is deliberately no floor.
func TestWeightMayGoNegative(t *testing.T) {
	svc, productRepo, db := newLedgerFixture(t)
	product := seedProduct(t, db, "Tin", 900)

	require.NoError(t, svc.CreateOut(outboundTx(product.ID, "5.50", 0)))

	assert.True(t, productWeight(t, productRepo, product.ID).Equal(qty("-5.50")))
}

func TestNonPositiveQuantityRejected(t *testing.T) {
	svc, productRepo, db := newLedgerFixture(t)
	product := seedProduct(t, db, "Tin", 900)

	err := svc.CreateIn(inboundTx(product.ID, "0", 0))
	assert.Error(t, err)

	err = svc.CreateOut(outboundTx(product.ID, "-3", 0))
	assert.Error(t, err)

	assert.True(t, productWeight(t, productRepo, product.ID).Equal(decimal.Zero))
}

func TestUpdateKeepsCreatedAt(t *testing.T) {
	svc, _, db := newLedgerFixture(t)
	product := seedProduct(t, db, "Copper", 1000)

	tx := inboundTx(product.ID, "10", 1)
	require.NoError(t, svc.CreateIn(tx))

	created, err := svc.GetInByID(tx.ID)
	require.NoError(t, err)

	updated, err := svc.UpdateIn(tx.ID, inboundTx(product.ID, "12", 0))
	require.NoError(t, err)

	assert.Equal(t, created.CreatedAt.Unix(), updated.CreatedAt.Unix())
}

// The reconciliation re-read locks the product row on postgres and stays a
// plain SELECT on sqlite, which has no FOR UPDATE grammar.
func TestLockForUpdatePerDialect(t *testing.T) {
	var product model.Product

	sqliteDB := setupTestDB(t).Session(&gorm.Session{DryRun: true})
	stmt := lockForUpdate(sqliteDB).First(&product, "id = ?", uuid.New()).Statement
	assert.NotContains(t, stmt.SQL.String(), "FOR UPDATE")

	pgDB, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=simig dbname=simig",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	stmt = lockForUpdate(pgDB).First(&product, "id = ?", uuid.New()).Statement
	assert.Contains(t, stmt.SQL.String(), "FOR UPDATE")
}

func TestListOrderedByDateThenCreation(t *testing.T) {
	svc, _, db := newLedgerFixture(t)
	product := seedProduct(t, db, "Copper", 1000)

	require.NoError(t, svc.CreateIn(inboundTx(product.ID, "1", 3)))
	require.NoError(t, svc.CreateIn(inboundTx(product.ID, "2", 0)))
	require.NoError(t, svc.CreateIn(inboundTx(product.ID, "3", 1)))

	list, err := svc.GetAllIn()
	require.NoError(t, err)
	require.Len(t, list, 3)

	assert.True(t, list[0].Quantity.Equal(qty("2")))
	assert.True(t, list[1].Quantity.Equal(qty("3")))
	assert.True(t, list[2].Quantity.Equal(qty("1")))
}
