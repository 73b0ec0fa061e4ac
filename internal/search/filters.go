package search

import (
	"strings"

	"marketplace-backend/internal/database/models"

	"github.com/shopspring/decimal"
)

// SortOrder is the result ordering requested by a search
type SortOrder string

const (
	SortDefault   SortOrder = ""
	SortPriceAsc  SortOrder = "price_asc"
	SortPriceDesc SortOrder = "price_desc"
	SortNameAsc   SortOrder = "name_asc"
)

// ParseSort maps a request value to a SortOrder. Unknown values mean the default order.
func ParseSort(s string) SortOrder {
	switch SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case SortPriceAsc:
		return SortPriceAsc
	case SortPriceDesc:
		return SortPriceDesc
	case SortNameAsc:
		return SortNameAsc
	}
	return SortDefault
}

// SearchFilters is the filter set of a manual or AI-translated search. Nil means absent.
type SearchFilters struct {
	Name     *string          `json:"name"`
	Category *string          `json:"category"`
	MinPrice *decimal.Decimal `json:"minPrice"`
	MaxPrice *decimal.Decimal `json:"maxPrice"`
	Sort     *string          `json:"sort"`
}

// IsEmpty reports whether no supported filter is set
func (f SearchFilters) IsEmpty() bool {
	n := Normalize(f)
	return n.Name == nil && n.Category == nil && n.MinPrice == nil && n.MaxPrice == nil && n.Sort == nil
}

// Query is a predicate plus the order results come back in
type Query struct {
	Where Predicate
	Sort  SortOrder
}

// Build composes filters into a Query. Present leaves are ANDed together; an
// unrecognized category is dropped; no leaves yields MatchAll.
func Build(f SearchFilters) Query {
	n := Normalize(f)

	var terms []Predicate
	if n.Name != nil {
		terms = append(terms, Contains{Field: FieldName, Term: *n.Name})
	}
	if n.Category != nil {
		terms = append(terms, CategoryIs{Category: models.ProductCategory(*n.Category)})
	}
	if n.MinPrice != nil {
		terms = append(terms, PriceAtLeast{Amount: *n.MinPrice})
	}
	if n.MaxPrice != nil {
		terms = append(terms, PriceAtMost{Amount: *n.MaxPrice})
	}

	q := Query{Where: MatchAll{}}
	if n.Sort != nil {
		q.Sort = SortOrder(*n.Sort)
	}
	if len(terms) > 0 {
		q.Where = And{Terms: terms}
	}
	return q
}

// Describe reads a Query built by Build back into filters
func Describe(q Query) SearchFilters {
	var f SearchFilters

	var leaves []Predicate
	switch node := q.Where.(type) {
	case And:
		leaves = node.Terms
	case nil, MatchAll:
	default:
		leaves = []Predicate{node}
	}

	for _, leaf := range leaves {
		switch node := leaf.(type) {
		case Contains:
			if node.Field == FieldName {
				f.Name = stringPtr(node.Term)
			}
		case CategoryIs:
			f.Category = stringPtr(string(node.Category))
		case PriceAtLeast:
			f.MinPrice = decimalPtr(node.Amount)
		case PriceAtMost:
			f.MaxPrice = decimalPtr(node.Amount)
		}
	}

	if q.Sort != SortDefault {
		f.Sort = stringPtr(string(q.Sort))
	}
	return f
}

// Normalize trims the name, canonicalizes category and sort, and drops values
// Build would ignore.
func Normalize(f SearchFilters) SearchFilters {
	var n SearchFilters

	if f.Name != nil {
		if name := strings.TrimSpace(*f.Name); name != "" {
			n.Name = stringPtr(name)
		}
	}
	if f.Category != nil {
		if c, ok := models.ParseCategory(*f.Category); ok {
			n.Category = stringPtr(string(c))
		}
	}
	if f.MinPrice != nil {
		n.MinPrice = decimalPtr(*f.MinPrice)
	}
	if f.MaxPrice != nil {
		n.MaxPrice = decimalPtr(*f.MaxPrice)
	}
	if f.Sort != nil {
		if s := ParseSort(*f.Sort); s != SortDefault {
			n.Sort = stringPtr(string(s))
		}
	}
	return n
}

// Lexical is the fallback predicate: term in name, description or category
func Lexical(term string) Predicate {
	term = strings.TrimSpace(term)
	return Or{Terms: []Predicate{
		Contains{Field: FieldName, Term: term},
		Contains{Field: FieldDescription, Term: term},
		Contains{Field: FieldCategory, Term: term},
	}}
}

func stringPtr(s string) *string {
	return &s
}

func decimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}
