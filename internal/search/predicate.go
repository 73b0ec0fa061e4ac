// Package search turns product search filters into a persistence-neutral predicate tree.
package search

import (
	"strings"

	"marketplace-backend/internal/database/models"

	"github.com/shopspring/decimal"
)

// Kind discriminates Predicate variants
type Kind string

const (
	KindAll          Kind = "all"
	KindAnd          Kind = "and"
	KindOr           Kind = "or"
	KindContains     Kind = "contains"
	KindPriceAtLeast Kind = "price_at_least"
	KindPriceAtMost  Kind = "price_at_most"
	KindCategoryIs   Kind = "category_is"
)

// Field is a text column a Contains leaf can match against
type Field string

const (
	FieldName        Field = "name"
	FieldDescription Field = "description"
	FieldCategory    Field = "category"
)

// Predicate is a node of the filter expression tree. The set of variants is closed.
type Predicate interface {
	Kind() Kind
	sealed()
}

// MatchAll matches every product
type MatchAll struct{}

// And matches when every term matches
type And struct{ Terms []Predicate }

// Or matches when any term matches
type Or struct{ Terms []Predicate }

// Contains is a case-insensitive substring match on Field
type Contains struct {
	Field Field
	Term  string
}

// PriceAtLeast is an inclusive lower price bound
type PriceAtLeast struct{ Amount decimal.Decimal }

// PriceAtMost is an inclusive upper price bound
type PriceAtMost struct{ Amount decimal.Decimal }

// CategoryIs is an exact category match
type CategoryIs struct{ Category models.ProductCategory }

func (MatchAll) Kind() Kind     { return KindAll }
func (And) Kind() Kind          { return KindAnd }
func (Or) Kind() Kind           { return KindOr }
func (Contains) Kind() Kind     { return KindContains }
func (PriceAtLeast) Kind() Kind { return KindPriceAtLeast }
func (PriceAtMost) Kind() Kind  { return KindPriceAtMost }
func (CategoryIs) Kind() Kind   { return KindCategoryIs }

func (MatchAll) sealed()     {}
func (And) sealed()          {}
func (Or) sealed()           {}
func (Contains) sealed()     {}
func (PriceAtLeast) sealed() {}
func (PriceAtMost) sealed()  {}
func (CategoryIs) sealed()   {}

// Match evaluates p against a product in memory
func Match(p Predicate, product *models.Product) bool {
	switch node := p.(type) {
	case MatchAll:
		return true
	case And:
		for _, term := range node.Terms {
			if !Match(term, product) {
				return false
			}
		}
		return true
	case Or:
		for _, term := range node.Terms {
			if Match(term, product) {
				return true
			}
		}
		return false
	case Contains:
		return strings.Contains(strings.ToLower(fieldValue(product, node.Field)), strings.ToLower(node.Term))
	case PriceAtLeast:
		return product.Price.GreaterThanOrEqual(node.Amount)
	case PriceAtMost:
		return product.Price.LessThanOrEqual(node.Amount)
	case CategoryIs:
		return product.Category == node.Category
	default:
		return false
	}
}

func fieldValue(product *models.Product, field Field) string {
	switch field {
	case FieldName:
		return product.Name
	case FieldDescription:
		return product.Description
	case FieldCategory:
		return string(product.Category)
	}
	return ""
}
