package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	BaseModel
	CategoryID uuid.UUID `gorm:"type:uuid;not null;index" json:"category" validate:"uuid_required"`
	Category   *Category `json:"-" validate:"-"`
	Name       string    `gorm:"type:varchar(100);not null" json:"name" validate:"required"`
	Color      string    `gorm:"type:varchar(50)" json:"color,omitempty"`

	// Weight is the cached net effect of this product's transactions (Kg).
	// It is mutated exclusively by the ledger reconciliation cycle.
	Weight     decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"weight"`
	PricePerKg decimal.Decimal `gorm:"type:numeric(15,0);not null" json:"price_per_kg"`

	// Relasi
	TransactionsIn  []TransactionIn  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	TransactionsOut []TransactionOut `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// ProductResponse for API responses
type ProductResponse struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Category     uuid.UUID       `json:"category"`
	CategoryName string          `json:"category_name"`
	Color        string          `json:"color,omitempty"`
	Weight       decimal.Decimal `json:"weight"`
	PricePerKg   decimal.Decimal `json:"price_per_kg"`
	TotalValue   decimal.Decimal `json:"total_value"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ToResponse converts Product to ProductResponse
func (p *Product) ToResponse() ProductResponse {
	response := ProductResponse{
		ID:         p.ID,
		Name:       p.Name,
		Category:   p.CategoryID,
		Color:      p.Color,
		Weight:     p.Weight,
		PricePerKg: p.PricePerKg,
		TotalValue: p.Weight.Mul(p.PricePerKg),
		CreatedAt:  p.CreatedAt,
	}

	if p.Category != nil {
		response.CategoryName = p.Category.Name
	}

	return response
}
