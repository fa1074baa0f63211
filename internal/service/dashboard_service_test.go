package service

import (
	"testing"

	"github.com/clepigdo/Simig-Webapps/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newDashboardFixture(t *testing.T) (DashboardService, LedgerService, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	productRepo := repository.NewProductRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	return NewDashboardService(productRepo, txRepo),
		NewLedgerService(productRepo, txRepo, db, nil),
		db
}

func TestDashboardEmptyDatabase(t *testing.T) {
	svc, _, _ := newDashboardFixture(t)

	dash, err := svc.GetDashboard()
	require.NoError(t, err)

	assert.True(t, dash.TotalAsset.Equal(decimal.Zero))
	assert.True(t, dash.TotalStock.Equal(decimal.Zero))
	assert.Equal(t, "-", dash.LowestStockItem.Name)
	assert.True(t, dash.LowestStockItem.Stock.Equal(decimal.Zero))
	assert.True(t, dash.IncomeMonth.Equal(decimal.Zero))
	assert.Empty(t, dash.RecentIn)
	assert.Empty(t, dash.RecentOut)
}

func TestDashboardTotals(t *testing.T) {
	svc, ledger, db := newDashboardFixture(t)

	copper := seedProduct(t, db, "Copper", 1000)
	zinc := seedProduct(t, db, "Zinc", 200)

	require.NoError(t, ledger.CreateIn(inboundTx(copper.ID, "10", 1)))
	require.NoError(t, ledger.CreateIn(inboundTx(zinc.ID, "50", 1)))

	dash, err := svc.GetDashboard()
	require.NoError(t, err)

	// 10*1000 + 50*200
	assert.True(t, dash.TotalAsset.Equal(qty("20000")))
	assert.True(t, dash.TotalStock.Equal(qty("60")))
	assert.Equal(t, "Copper", dash.LowestStockItem.Name)
	assert.True(t, dash.LowestStockItem.Stock.Equal(qty("10")))
}

func TestDashboardIncomeMonth(t *testing.T) {
	svc, ledger, db := newDashboardFixture(t)

	product := seedProduct(t, db, "Copper", 1000)
	require.NoError(t, ledger.CreateIn(inboundTx(product.ID, "100", 2)))
	require.NoError(t, ledger.CreateOut(outboundTx(product.ID, "10", 0)))
	require.NoError(t, ledger.CreateOut(outboundTx(product.ID, "5", 0)))

	dash, err := svc.GetDashboard()
	require.NoError(t, err)

	assert.True(t, dash.IncomeMonth.Equal(qty("15000")))
}

// Income follows the product's current price, so a price edit after the sale
// changes the reported figure.
func TestDashboardIncomeUsesCurrentPrice(t *testing.T) {
	svc, ledger, db := newDashboardFixture(t)

	product := seedProduct(t, db, "Copper", 1000)
	require.NoError(t, ledger.CreateOut(outboundTx(product.ID, "10", 0)))

	require.NoError(t, db.Model(product).Update("price_per_kg", decimal.NewFromInt(2000)).Error)

	dash, err := svc.GetDashboard()
	require.NoError(t, err)

	assert.True(t, dash.IncomeMonth.Equal(qty("20000")))
}

func TestDashboardRecentListsCappedAtFive(t *testing.T) {
	svc, ledger, db := newDashboardFixture(t)

	product := seedProduct(t, db, "Copper", 1000)
	for i := 0; i < 7; i++ {
		require.NoError(t, ledger.CreateIn(inboundTx(product.ID, "1", i)))
	}

	dash, err := svc.GetDashboard()
	require.NoError(t, err)

	assert.Len(t, dash.RecentIn, 5)
	// Newest first
	assert.Equal(t, today().Format("2006-01-02"), dash.RecentIn[0].Date)
}
