package repository

import (
	"github.com/clepigdo/Simig-Webapps/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(product *model.Product) error
	FindAll() ([]model.Product, error)
	FindByID(id uuid.UUID) (*model.Product, error)
	Update(product *model.Product) error
	Delete(id uuid.UUID) error

	// UpdateWeight menerima *gorm.DB (tx) agar bisa berjalan dalam transaksi
	UpdateWeight(tx *gorm.DB, id uuid.UUID, newWeight decimal.Decimal) error

	// Dashboard aggregates
	TotalAsset() (decimal.Decimal, error)
	TotalWeight() (decimal.Decimal, error)
	FindLowestWeight() (*model.Product, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(product *model.Product) error {
	return r.db.Create(product).Error
}

func (r *productRepo) FindAll() ([]model.Product, error) {
	var products []model.Product
	err := r.db.Preload("Category").Order("created_at DESC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.Preload("Category").First(&product, "id = ?", id).Error
	return &product, err
}

func (r *productRepo) Update(product *model.Product) error {
	return r.db.Save(product).Error
}

// Delete removes the product along with both of its transaction ledgers.
func (r *productRepo) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var product model.Product
		if err := tx.First(&product, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&model.TransactionIn{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&model.TransactionOut{}).Error; err != nil {
			return err
		}
		return tx.Delete(&product).Error
	})
}

func (r *productRepo) UpdateWeight(tx *gorm.DB, id uuid.UUID, newWeight decimal.Decimal) error {
	return tx.Model(&model.Product{}).
		Where("id = ?", id).
		Update("weight", newWeight).Error
}

func (r *productRepo) TotalAsset() (decimal.Decimal, error) {
	var total decimal.Decimal
	row := r.db.Model(&model.Product{}).
		Select("COALESCE(SUM(weight * price_per_kg), 0)").Row()
	err := row.Scan(&total)
	return total, err
}

func (r *productRepo) TotalWeight() (decimal.Decimal, error) {
	var total decimal.Decimal
	row := r.db.Model(&model.Product{}).
		Select("COALESCE(SUM(weight), 0)").Row()
	err := row.Scan(&total)
	return total, err
}

// FindLowestWeight returns the product with the least stock on hand,
// or nil when no products exist.
func (r *productRepo) FindLowestWeight() (*model.Product, error) {
	var product model.Product
	err := r.db.Order("weight ASC, created_at ASC").First(&product).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}
