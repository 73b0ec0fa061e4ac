package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry. A nil OrganizationID marks a marketplace-wide product
// that every tenant can read but only administrators can change.
type Product struct {
	BaseModel
	Name           string          `json:"name" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description    string          `json:"description" gorm:"type:text"`
	Price          decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Quantity       int             `json:"quantity" gorm:"not null;default:0;check:chk_products_quantity,quantity >= 0"`
	Category       ProductCategory `json:"category" gorm:"type:varchar(30);not null;default:'OUTRO';index"`
	ImageURL       string          `json:"image_url" gorm:"size:500"`
	OrganizationID *uuid.UUID      `json:"organization_id,omitempty" gorm:"type:uuid;index" tenant:"shared"`

	Organization *Organization `json:"organization,omitempty" gorm:"foreignKey:OrganizationID"`
}

// TableName returns the table name for Product
func (Product) TableName() string {
	return "products"
}
