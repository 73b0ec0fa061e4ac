package repository

import (
	"strings"

	"marketplace-backend/internal/search"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func column(name string) clause.Column {
	return clause.Column{Table: clause.CurrentTable, Name: name}
}

// QueryScope turns a catalog query into WHERE and ORDER BY clauses on products.
// Ties are always broken by creation time and id so paging is stable.
func QueryScope(q search.Query) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if expr := expression(q.Where); expr != nil {
			db = db.Where(expr)
		}

		switch q.Sort {
		case search.SortPriceAsc:
			db = db.Order(clause.OrderByColumn{Column: column("price")})
		case search.SortPriceDesc:
			db = db.Order(clause.OrderByColumn{Column: column("price"), Desc: true})
		case search.SortNameAsc:
			db = db.Order(clause.OrderByColumn{Column: column("name")})
		}
		return db.
			Order(clause.OrderByColumn{Column: column("created_at")}).
			Order(clause.OrderByColumn{Column: column("id")})
	}
}

// expression returns nil for predicates that match every row
func expression(p search.Predicate) clause.Expression {
	switch node := p.(type) {
	case nil, search.MatchAll:
		return nil
	case search.And:
		exprs := make([]clause.Expression, 0, len(node.Terms))
		for _, term := range node.Terms {
			if e := expression(term); e != nil {
				exprs = append(exprs, e)
			}
		}
		if len(exprs) == 0 {
			return nil
		}
		return clause.And(exprs...)
	case search.Or:
		exprs := make([]clause.Expression, 0, len(node.Terms))
		for _, term := range node.Terms {
			e := expression(term)
			if e == nil {
				return nil
			}
			exprs = append(exprs, e)
		}
		if len(exprs) == 0 {
			return clause.Expr{SQL: "1 = 0"}
		}
		return clause.Or(exprs...)
	case search.Contains:
		pattern := "%" + likeEscaper.Replace(node.Term) + "%"
		return clause.Expr{SQL: "? ILIKE ?", Vars: []interface{}{column(string(node.Field)), pattern}}
	case search.PriceAtLeast:
		return clause.Gte{Column: column("price"), Value: node.Amount}
	case search.PriceAtMost:
		return clause.Lte{Column: column("price"), Value: node.Amount}
	case search.CategoryIs:
		return clause.Eq{Column: column("category"), Value: string(node.Category)}
	}
	// unknown predicates match nothing
	return clause.Expr{SQL: "1 = 0"}
}
