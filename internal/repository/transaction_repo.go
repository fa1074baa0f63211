package repository

import (
	"time"

	"github.com/clepigdo/Simig-Webapps/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionRepository serves reads over both transaction ledgers.
// Writes go through the ledger service so the reconciliation cycle owns them.
type TransactionRepository interface {
	FindAllIn() ([]model.TransactionIn, error)
	FindAllOut() ([]model.TransactionOut, error)
	FindInByID(id uuid.UUID) (*model.TransactionIn, error)
	FindOutByID(id uuid.UUID) (*model.TransactionOut, error)

	// Window reads for reporting. Since is inclusive of start, Between is
	// [start, end).
	FindInSince(start time.Time) ([]model.TransactionIn, error)
	FindOutSince(start time.Time) ([]model.TransactionOut, error)
	FindInBetween(start, end time.Time) ([]model.TransactionIn, error)
	FindOutBetween(start, end time.Time) ([]model.TransactionOut, error)

	RecentIn(limit int) ([]model.TransactionIn, error)
	RecentOut(limit int) ([]model.TransactionOut, error)

	SumInSince(start time.Time) (decimal.Decimal, error)
	SumOutSince(start time.Time) (decimal.Decimal, error)
}

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db}
}

func (r *transactionRepo) FindAllIn() ([]model.TransactionIn, error) {
	var transactions []model.TransactionIn
	err := r.db.Preload("Product").
		Order("date DESC, created_at DESC").
		Find(&transactions).Error
	return transactions, err
}

func (r *transactionRepo) FindAllOut() ([]model.TransactionOut, error) {
	var transactions []model.TransactionOut
	err := r.db.Preload("Product").
		Order("date DESC, created_at DESC").
		Find(&transactions).Error
	return transactions, err
}

func (r *transactionRepo) FindInByID(id uuid.UUID) (*model.TransactionIn, error) {
	var transaction model.TransactionIn
	err := r.db.Preload("Product").First(&transaction, "id = ?", id).Error
	return &transaction, err
}

func (r *transactionRepo) FindOutByID(id uuid.UUID) (*model.TransactionOut, error) {
	var transaction model.TransactionOut
	err := r.db.Preload("Product").First(&transaction, "id = ?", id).Error
	return &transaction, err
}

func (r *transactionRepo) FindInSince(start time.Time) ([]model.TransactionIn, error) {
	var transactions []model.TransactionIn
	err := r.db.Preload("Product").
		Where("date >= ?", start).
		Order("date ASC").
		Find(&transactions).Error
	return transactions, err
}

func (r *transactionRepo) FindOutSince(start time.Time) ([]model.TransactionOut, error) {
	var transactions []model.TransactionOut
	err := r.db.Preload("Product").
		Where("date >= ?", start).
		Order("date ASC").
		Find(&transactions).Error
	return transactions, err
}

func (r *transactionRepo) FindInBetween(start, end time.Time) ([]model.TransactionIn, error) {
	var transactions []model.TransactionIn
	err := r.db.Preload("Product").
		Where("date >= ? AND date < ?", start, end).
		Order("date ASC").
		Find(&transactions).Error
	return transactions, err
}

func (r *transactionRepo) FindOutBetween(start, end time.Time) ([]model.TransactionOut, error) {
	var transactions []model.TransactionOut
	err := r.db.Preload("Product").
		Where("date >= ? AND date < ?", start, end).
		Order("date ASC").
		Find(&transactions).Error
	return transactions, err
}

func (r *transactionRepo) RecentIn(limit int) ([]model.TransactionIn, error) {
	var transactions []model.TransactionIn
	err := r.db.Preload("Product").
		Order("date DESC, created_at DESC").
		Limit(limit).
		Find(&transactions).Error
	return transactions, err
}

func (r *transactionRepo) RecentOut(limit int) ([]model.TransactionOut, error) {
	var transactions []model.TransactionOut
	err := r.db.Preload("Product").
		Order("date DESC, created_at DESC").
		Limit(limit).
		Find(&transactions).Error
	return transactions, err
}

func (r *transactionRepo) SumInSince(start time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	row := r.db.Model(&model.TransactionIn{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("date >= ?", start).Row()
	err := row.Scan(&total)
	return total, err
}

func (r *transactionRepo) SumOutSince(start time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	row := r.db.Model(&model.TransactionOut{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("date >= ?", start).Row()
	err := row.Scan(&total)
	return total, err
}
