package models

import (
	"strings"
)

// Role is the closed set of account roles
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleMember  Role = "MEMBER"
)

// IsValid checks if the Role is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleMember:
		return true
	}
	return false
}

// ParseRole accepts "manager", "MANAGER" or "ROLE_MANAGER" in any case.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "ROLE_"))
	if !r.IsValid() {
		return "", false
	}
	return r, true
}

// ProductCategory is the closed set of catalog categories
type ProductCategory string

const (
	CategoryAlimento    ProductCategory = "ALIMENTO"
	CategoryBrinquedo   ProductCategory = "BRINQUEDO"
	CategoryAcessorio   ProductCategory = "ACESSORIO"
	CategoryHigiene     ProductCategory = "HIGIENE"
	CategoryMedicamento ProductCategory = "MEDICAMENTO"
	CategoryOutro       ProductCategory = "OUTRO"
)

// ProductCategories lists every category in display order
var ProductCategories = []ProductCategory{
	CategoryAlimento,
	CategoryBrinquedo,
	CategoryAcessorio,
	CategoryHigiene,
	CategoryMedicamento,
	CategoryOutro,
}

// IsValid checks if the ProductCategory is valid
func (c ProductCategory) IsValid() bool {
	switch c {
	case CategoryAlimento, CategoryBrinquedo, CategoryAcessorio, CategoryHigiene, CategoryMedicamento, CategoryOutro:
		return true
	}
	return false
}

// ParseCategory matches s case-insensitively against the known categories
func ParseCategory(s string) (ProductCategory, bool) {
	c := ProductCategory(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", false
	}
	return c, true
}
