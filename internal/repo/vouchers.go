package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/noah-isme/toko-cart/internal/rule"
	"github.com/noah-isme/toko-cart/internal/voucher"
)

const vouchersSQL = `
SELECT code, mode, value::text, tax_rate::text, min_spend::text, valid_from, valid_to,
       usage_limit, used_count, product_numbers, rule
FROM vouchers
WHERE active AND code = ANY($1) AND (shop_id IS NULL OR shop_id = $2)
ORDER BY code`

// VoucherStore implements voucher.Source for the vouchers of one shop.
type VoucherStore struct {
	Q      Querier
	ShopID int
}

// Vouchers loads active vouchers by code.
func (s VoucherStore) Vouchers(ctx context.Context, codes []string) ([]voucher.Data, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	rows, err := s.Q.Query(ctx, vouchersSQL, codes, shopParam(s.ShopID))
	if err != nil {
		return nil, fmt.Errorf("query vouchers: %w", err)
	}
	defer rows.Close()

	var out []voucher.Data
	for rows.Next() {
		var (
			d                     voucher.Data
			mode, value, minSpend string
			taxRate               pgtype.Text
			validFrom, validTo    pgtype.Timestamptz
			usageLimit            pgtype.Int4
			ruleJSON              []byte
		)
		if err := rows.Scan(&d.Code, &mode, &value, &taxRate, &minSpend, &validFrom, &validTo,
			&usageLimit, &d.UsedCount, &d.ProductNumbers, &ruleJSON); err != nil {
			return nil, fmt.Errorf("scan voucher: %w", err)
		}
		d.Mode = voucher.Mode(mode)
		if d.Value, err = decimalValue("value", value); err != nil {
			return nil, err
		}
		if d.MinSpend, err = decimalValue("min_spend", minSpend); err != nil {
			return nil, err
		}
		if taxRate.Valid {
			rate, err := decimalValue("tax_rate", taxRate.String)
			if err != nil {
				return nil, err
			}
			d.TaxRate = &rate
		}
		if validFrom.Valid {
			t := validFrom.Time
			d.ValidFrom = &t
		}
		if validTo.Valid {
			t := validTo.Time
			d.ValidTo = &t
		}
		if usageLimit.Valid {
			limit := usageLimit.Int32
			d.UsageLimit = &limit
		}
		if len(ruleJSON) > 0 {
			r, err := rule.Decode(ruleJSON)
			if err != nil {
				return nil, fmt.Errorf("decode rule of voucher %s: %w", d.Code, err)
			}
			d.Eligibility = rule.Document{Rule: r}
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vouchers: %w", err)
	}
	return out, nil
}
