package catalog

import (
	"fmt"
	"strings"
)

// Filter carries only recognized listing parameters. Unknown query keys are
// dropped at the handler, so no caller-controlled string ever reaches SQL.
type Filter struct {
	Brand    string
	Category string
	MinPrice *float64
	MaxPrice *float64
	InStock  bool
	Search   string
	Sort     string
	Limit    int
	Offset   int
}

var sortColumns = map[string]string{
	"":           "created_at DESC",
	"newest":     "created_at DESC",
	"price_asc":  "COALESCE(sale_price, price) ASC",
	"price_desc": "COALESCE(sale_price, price) DESC",
	"popular":    "sales_count DESC",
	"name":       "name ASC",
}

// buildWhere maps each recognized filter key to a parameterized predicate.
func buildWhere(f Filter) (string, []any) {
	preds := []string{"is_active"}
	var args []any

	add := func(expr string, v any) {
		args = append(args, v)
		preds = append(preds, fmt.Sprintf(expr, len(args)))
	}

	if f.Brand != "" {
		add("brand = $%d", f.Brand)
	}
	if f.Category != "" {
		add("category = $%d", f.Category)
	}
	if f.MinPrice != nil {
		add("COALESCE(sale_price, price) >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add("COALESCE(sale_price, price) <= $%d", *f.MaxPrice)
	}
	if f.InStock {
		preds = append(preds, "stock_quantity > 0")
	}
	if f.Search != "" {
		add("name ILIKE '%%' || $%d || '%%'", escapeLike(f.Search))
	}
	return strings.Join(preds, " AND "), args
}

// escapeLike neutralizes LIKE wildcards so a search term matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func orderBy(sort string) string {
	if col, ok := sortColumns[sort]; ok {
		return col
	}
	return sortColumns[""]
}

func clampPage(f *Filter) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}
