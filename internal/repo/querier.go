// Package repo loads catalog data for cart calculations from PostgreSQL.
//
// Expected tables:
//
//	products(number, name, tax_rate, stock, weight, shipping_days_min, shipping_days_max,
//	         restock_days_min, restock_days_max, last_stock, min_purchase, max_purchase, active)
//	product_prices(product_number, customer_group, from_quantity, price)
//	product_categories(product_number, category_id)  -- includes ancestor categories
//	product_attributes(product_number, name, value)
//	vouchers(code, shop_id, mode, value, tax_rate, min_spend, valid_from, valid_to,
//	         usage_limit, used_count, product_numbers, rule, active)
//	orders(customer_id, cleared_state)
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// ErrInvalidNumeric indicates a numeric column could not be parsed as a decimal.
var ErrInvalidNumeric = errors.New("invalid numeric value")

// Querier is the subset of pgxpool.Pool used by the stores.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// shopParam maps an unset shop to NULL so that only global rows match.
func shopParam(id int) pgtype.Int4 {
	if id <= 0 {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: int32(id), Valid: true}
}

func decimalValue(column, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: %v", ErrInvalidNumeric, column, err)
	}
	return d, nil
}
