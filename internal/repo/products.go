package repo

import (
	"context"
	"fmt"

	"github.com/noah-isme/toko-cart/internal/product"
	"github.com/noah-isme/toko-cart/internal/shop"
)

// DefaultCustomerGroup holds the prices used when a group has none of its own.
const DefaultCustomerGroup = "EK"

const productsSQL = `
SELECT number, name, tax_rate::text, stock::text, weight::text,
       shipping_days_min, shipping_days_max, restock_days_min, restock_days_max,
       last_stock, min_purchase::text, COALESCE(max_purchase::text, '')
FROM products
WHERE active AND number = ANY($1)
ORDER BY number`

const productPricesSQL = `
SELECT product_number, customer_group, from_quantity::text, price::text
FROM product_prices
WHERE product_number = ANY($1) AND customer_group = ANY($2)
ORDER BY product_number, from_quantity`

// ProductStore implements product.Source. Prices come from the customer group
// of the context, falling back to FallbackGroup per product.
type ProductStore struct {
	Q             Querier
	FallbackGroup string
}

type priceRow struct {
	group string
	from  string
	price string
}

// Products loads active products with their prices. Products without any
// price are omitted.
func (s ProductStore) Products(ctx context.Context, numbers []string, sc shop.Context) ([]product.Data, error) {
	if len(numbers) == 0 {
		return nil, nil
	}
	fallback := s.FallbackGroup
	if fallback == "" {
		fallback = DefaultCustomerGroup
	}
	group := sc.CustomerGroup.Key
	if group == "" {
		group = fallback
	}

	prices, err := s.prices(ctx, numbers, []string{group, fallback})
	if err != nil {
		return nil, err
	}

	rows, err := s.Q.Query(ctx, productsSQL, numbers)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var out []product.Data
	for rows.Next() {
		var (
			d                                  product.Data
			taxRate, stock, weight, minP, maxP string
		)
		if err := rows.Scan(
			&d.Number, &d.Name, &taxRate, &stock, &weight,
			&d.ShippingDays.Min, &d.ShippingDays.Max, &d.RestockDays.Min, &d.RestockDays.Max,
			&d.LastStock, &minP, &maxP,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		if d.TaxRate, err = decimalValue("tax_rate", taxRate); err != nil {
			return nil, err
		}
		if d.Stock, err = decimalValue("stock", stock); err != nil {
			return nil, err
		}
		if d.Weight, err = decimalValue("weight", weight); err != nil {
			return nil, err
		}
		if d.MinPurchase, err = decimalValue("min_purchase", minP); err != nil {
			return nil, err
		}
		if d.MaxPurchase, err = decimalValue("max_purchase", maxP); err != nil {
			return nil, err
		}
		tiers := prices[d.Number][group]
		if len(tiers) == 0 {
			tiers = prices[d.Number][fallback]
		}
		if len(tiers) == 0 {
			continue
		}
		if err := applyPrices(&d, tiers); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return out, nil
}

func (s ProductStore) prices(ctx context.Context, numbers, groups []string) (map[string]map[string][]priceRow, error) {
	rows, err := s.Q.Query(ctx, productPricesSQL, numbers, groups)
	if err != nil {
		return nil, fmt.Errorf("query product prices: %w", err)
	}
	defer rows.Close()

	out := make(map[string]map[string][]priceRow)
	for rows.Next() {
		var number string
		var row priceRow
		if err := rows.Scan(&number, &row.group, &row.from, &row.price); err != nil {
			return nil, fmt.Errorf("scan product price: %w", err)
		}
		if out[number] == nil {
			out[number] = make(map[string][]priceRow)
		}
		out[number][row.group] = append(out[number][row.group], row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product prices: %w", err)
	}
	return out, nil
}

// applyPrices uses the lowest starting quantity as the base price and the
// others as tiers.
func applyPrices(d *product.Data, rows []priceRow) error {
	for i, row := range rows {
		price, err := decimalValue("price", row.price)
		if err != nil {
			return err
		}
		if i == 0 {
			d.Price = price
			continue
		}
		from, err := decimalValue("from_quantity", row.from)
		if err != nil {
			return err
		}
		d.Tiers = append(d.Tiers, product.PriceTier{From: from, Price: price})
	}
	return nil
}
