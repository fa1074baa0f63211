package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TxKind identifies the two transaction ledgers.
type TxKind string

const (
	TxIn  TxKind = "IN"
	TxOut TxKind = "OUT"
)

// Sign returns the directional effect of the kind on product weight:
// +1 for inbound, -1 for outbound.
func (k TxKind) Sign() decimal.Decimal {
	if k == TxOut {
		return decimal.NewFromInt(-1)
	}
	return decimal.NewFromInt(1)
}

// TxRecord holds the columns shared by both transaction tables.
// CreatedAt is set once on insert and never overwritten by updates.
type TxRecord struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key;" json:"id"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index" json:"product" validate:"uuid_required"`
	Product   *Product        `json:"-" validate:"-"`
	Date      time.Time       `gorm:"type:date;not null;index" json:"-" validate:"required"`
	Quantity  decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"quantity" validate:"dec_positive"`
	Notes     string          `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func (t *TxRecord) BeforeCreate(tx *gorm.DB) (err error) {
	t.ID = uuid.New()
	return
}

type TransactionIn struct {
	TxRecord
}

func (TransactionIn) TableName() string {
	return "transactions_in"
}

type TransactionOut struct {
	TxRecord
}

func (TransactionOut) TableName() string {
	return "transactions_out"
}

// TransactionResponse for API responses
type TransactionResponse struct {
	ID          uuid.UUID       `json:"id"`
	Product     uuid.UUID       `json:"product"`
	ProductName string          `json:"product_name"`
	Date        string          `json:"date"`
	Quantity    decimal.Decimal `json:"quantity"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ToResponse converts a TxRecord to TransactionResponse
func (t *TxRecord) ToResponse() TransactionResponse {
	response := TransactionResponse{
		ID:        t.ID,
		Product:   t.ProductID,
		Date:      t.Date.Format("2006-01-02"),
		Quantity:  t.Quantity,
		Notes:     t.Notes,
		CreatedAt: t.CreatedAt,
	}

	if t.Product != nil {
		response.ProductName = t.Product.Name
	}

	return response
}
