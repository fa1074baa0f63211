package service

import (
	"github.com/clepigdo/Simig-Webapps/internal/model"
	"github.com/clepigdo/Simig-Webapps/internal/repository"

	"github.com/shopspring/decimal"
)

// LowestStockItem names the product closest to running out. The sentinel
// {name: "-", stock: 0} stands in when no products exist yet.
type LowestStockItem struct {
	Name  string          `json:"name"`
	Stock decimal.Decimal `json:"stock"`
}

type DashboardResponse struct {
	TotalAsset      decimal.Decimal             `json:"total_asset"`
	TotalStock      decimal.Decimal             `json:"total_stock"`
	LowestStockItem LowestStockItem             `json:"lowest_stock_item"`
	IncomeMonth     decimal.Decimal             `json:"income_month"`
	RecentIn        []model.TransactionResponse `json:"recent_in"`
	RecentOut       []model.TransactionResponse `json:"recent_out"`
}

type DashboardService interface {
	GetDashboard() (*DashboardResponse, error)
}

type dashboardService struct {
	productRepo repository.ProductRepository
	txRepo      repository.TransactionRepository
}

func NewDashboardService(pRepo repository.ProductRepository, tRepo repository.TransactionRepository) DashboardService {
	return &dashboardService{productRepo: pRepo, txRepo: tRepo}
}

func (s *dashboardService) GetDashboard() (*DashboardResponse, error) {
	totalAsset, err := s.productRepo.TotalAsset()
	if err != nil {
		return nil, err
	}

	totalStock, err := s.productRepo.TotalWeight()
	if err != nil {
		return nil, err
	}

	lowest := LowestStockItem{Name: "-", Stock: decimal.Zero}
	if product, err := s.productRepo.FindLowestWeight(); err != nil {
		return nil, err
	} else if product != nil {
		lowest = LowestStockItem{Name: product.Name, Stock: product.Weight}
	}

	// Income for the current calendar month, valued at each product's
	// current price, not a price captured at transaction time.
	monthStart := startOfMonth(today())
	monthEnd := monthStart.AddDate(0, 1, 0)
	outMonth, err := s.txRepo.FindOutBetween(monthStart, monthEnd)
	if err != nil {
		return nil, err
	}
	incomeMonth := decimal.Zero
	for _, t := range outMonth {
		if t.Product != nil {
			incomeMonth = incomeMonth.Add(t.Quantity.Mul(t.Product.PricePerKg))
		}
	}

	recentIn, err := s.txRepo.RecentIn(5)
	if err != nil {
		return nil, err
	}
	recentOut, err := s.txRepo.RecentOut(5)
	if err != nil {
		return nil, err
	}

	inResponses := make([]model.TransactionResponse, len(recentIn))
	for i := range recentIn {
		inResponses[i] = recentIn[i].ToResponse()
	}
	outResponses := make([]model.TransactionResponse, len(recentOut))
	for i := range recentOut {
		outResponses[i] = recentOut[i].ToResponse()
	}

	return &DashboardResponse{
		TotalAsset:      totalAsset,
		TotalStock:      totalStock,
		LowestStockItem: lowest,
		IncomeMonth:     incomeMonth,
		RecentIn:        inResponses,
		RecentOut:       outResponses,
	}, nil
}
