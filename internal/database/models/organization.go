package models

// Organization is the tenant. It owns products, users and orders.
type Organization struct {
	BaseModel
	Name        string `json:"name" gorm:"uniqueIndex;not null;size:100" validate:"required,min=1,max=100"`
	Description string `json:"description" gorm:"type:text"`

	Products []Product `json:"products,omitempty" gorm:"foreignKey:OrganizationID;constraint:OnDelete:RESTRICT"`
	Users    []User    `json:"users,omitempty" gorm:"foreignKey:OrganizationID;constraint:OnDelete:RESTRICT"`
}

// TableName returns the table name for Organization
func (Organization) TableName() string {
	return "organizations"
}
