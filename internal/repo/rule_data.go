package repo

import (
	"context"
	"fmt"
)

const productCategoriesSQL = `
SELECT category_id, product_number
FROM product_categories
WHERE product_number = ANY($1) AND category_id = ANY($2)
ORDER BY category_id, product_number`

const productAttributesSQL = `
SELECT DISTINCT name, value
FROM product_attributes
WHERE product_number = ANY($1) AND name = ANY($2)
ORDER BY name, value`

const orderClearedStatesSQL = `
SELECT DISTINCT cleared_state
FROM orders
WHERE customer_id = $1
ORDER BY cleared_state`

// RuleDataStore implements the rule data sources.
type RuleDataStore struct {
	Q Querier
}

// ProductCategories returns, per requested category, the products assigned to it.
func (s RuleDataStore) ProductCategories(ctx context.Context, numbers []string, categoryIDs []int) (map[int][]string, error) {
	rows, err := s.Q.Query(ctx, productCategoriesSQL, numbers, categoryIDs)
	if err != nil {
		return nil, fmt.Errorf("query product categories: %w", err)
	}
	defer rows.Close()

	out := make(map[int][]string)
	for rows.Next() {
		var id int32
		var number string
		if err := rows.Scan(&id, &number); err != nil {
			return nil, fmt.Errorf("scan product category: %w", err)
		}
		out[int(id)] = append(out[int(id)], number)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product categories: %w", err)
	}
	return out, nil
}

// ProductAttributes returns the values of the requested attributes across products.
func (s RuleDataStore) ProductAttributes(ctx context.Context, numbers []string, attributes []string) (map[string][]string, error) {
	rows, err := s.Q.Query(ctx, productAttributesSQL, numbers, attributes)
	if err != nil {
		return nil, fmt.Errorf("query product attributes: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("scan product attribute: %w", err)
		}
		out[name] = append(out[name], value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product attributes: %w", err)
	}
	return out, nil
}

// OrderClearedStates returns the distinct cleared states of the customer's orders.
func (s RuleDataStore) OrderClearedStates(ctx context.Context, customerID int) ([]int, error) {
	rows, err := s.Q.Query(ctx, orderClearedStatesSQL, customerID)
	if err != nil {
		return nil, fmt.Errorf("query order cleared states: %w", err)
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var state int32
		if err := rows.Scan(&state); err != nil {
			return nil, fmt.Errorf("scan order cleared state: %w", err)
		}
		out = append(out, int(state))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order cleared states: %w", err)
	}
	return out, nil
}
