package search

import (
	"encoding/json"
	"fmt"

	"marketplace-backend/internal/database/models"

	"github.com/shopspring/decimal"
)

type node struct {
	Kind     Kind                   `json:"kind"`
	Terms    []node                 `json:"terms,omitempty"`
	Field    Field                  `json:"field,omitempty"`
	Term     string                 `json:"term,omitempty"`
	Amount   *decimal.Decimal       `json:"amount,omitempty"`
	Category models.ProductCategory `json:"category,omitempty"`
}

// MarshalPredicate encodes p as JSON with a "kind" discriminator on every node
func MarshalPredicate(p Predicate) ([]byte, error) {
	n, err := toNode(p)
	if err != nil {
		return nil, err
	}
	return json.Marshal(n)
}

// UnmarshalPredicate decodes JSON produced by MarshalPredicate
func UnmarshalPredicate(data []byte) (Predicate, error) {
	var n node
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("failed to decode predicate: %w", err)
	}
	return fromNode(n)
}

func toNode(p Predicate) (node, error) {
	switch v := p.(type) {
	case MatchAll:
		return node{Kind: KindAll}, nil
	case And:
		terms, err := toNodes(v.Terms)
		return node{Kind: KindAnd, Terms: terms}, err
	case Or:
		terms, err := toNodes(v.Terms)
		return node{Kind: KindOr, Terms: terms}, err
	case Contains:
		return node{Kind: KindContains, Field: v.Field, Term: v.Term}, nil
	case PriceAtLeast:
		return node{Kind: KindPriceAtLeast, Amount: decimalPtr(v.Amount)}, nil
	case PriceAtMost:
		return node{Kind: KindPriceAtMost, Amount: decimalPtr(v.Amount)}, nil
	case CategoryIs:
		return node{Kind: KindCategoryIs, Category: v.Category}, nil
	}
	return node{}, fmt.Errorf("unsupported predicate %T", p)
}

func toNodes(ps []Predicate) ([]node, error) {
	nodes := make([]node, 0, len(ps))
	for _, p := range ps {
		n, err := toNode(p)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func fromNode(n node) (Predicate, error) {
	switch n.Kind {
	case KindAll:
		return MatchAll{}, nil
	case KindAnd:
		terms, err := fromNodes(n.Terms)
		return And{Terms: terms}, err
	case KindOr:
		terms, err := fromNodes(n.Terms)
		return Or{Terms: terms}, err
	case KindContains:
		switch n.Field {
		case FieldName, FieldDescription, FieldCategory:
			return Contains{Field: n.Field, Term: n.Term}, nil
		}
		return nil, fmt.Errorf("unknown field %q", n.Field)
	case KindPriceAtLeast, KindPriceAtMost:
		if n.Amount == nil {
			return nil, fmt.Errorf("%s requires an amount", n.Kind)
		}
		if n.Kind == KindPriceAtLeast {
			return PriceAtLeast{Amount: *n.Amount}, nil
		}
		return PriceAtMost{Amount: *n.Amount}, nil
	case KindCategoryIs:
		if !n.Category.IsValid() {
			return nil, fmt.Errorf("unknown category %q", n.Category)
		}
		return CategoryIs{Category: n.Category}, nil
	}
	return nil, fmt.Errorf("unknown predicate kind %q", n.Kind)
}

func fromNodes(nodes []node) ([]Predicate, error) {
	ps := make([]Predicate, 0, len(nodes))
	for _, n := range nodes {
		p, err := fromNode(n)
		if err != nil {
			return nil, err
		}
		ps = append(ps, p)
	}
	return ps, nil
}
