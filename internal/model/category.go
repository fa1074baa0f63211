package model

type Category struct {
	BaseModel
	Name string `gorm:"type:varchar(100);not null" json:"name" validate:"required"`

	// Relasi - deleting a category removes its products (and their transactions)
	Products []Product `gorm:"constraint:OnDelete:CASCADE" json:"products,omitempty"`
}
