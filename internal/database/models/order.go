package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is a completed checkout. OrganizationID is copied from the buyer and never changes.
type Order struct {
	BaseModel
	UserID         uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	OrganizationID *uuid.UUID `json:"organization_id,omitempty" gorm:"type:uuid;index;<-:create" tenant:"owner"`

	User  *User       `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Items []OrderItem `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for Order
func (Order) TableName() string {
	return "orders"
}

// Total sums quantity * unit price over all items
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// OrderItem is one line of an Order
type OrderItem struct {
	BaseModel
	OrderID   uuid.UUID       `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `json:"product_id" gorm:"type:uuid;not null;index"`
	Quantity  int             `json:"quantity" gorm:"not null;check:chk_order_items_quantity,quantity > 0"`
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"type:decimal(10,2);not null"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

// TableName returns the table name for OrderItem
func (OrderItem) TableName() string {
	return "order_items"
}
