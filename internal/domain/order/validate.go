package order

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/order-entry/internal/domain/product"
)

// Violation messages are part of the public contract; callers and tests
// match on them verbatim.
const (
	msgOutOfStock = "A product is out of stock"
	msgNotUnique  = "Products are not unique"
)

// RuleViolation describes one failed business rule in human-readable form.
type RuleViolation struct {
	Message string
	// Field names the offending property when the rule concerns one.
	Field string
}

// Validate checks an order against the business rules and returns the list
// of violations, possibly empty. Both rules run regardless of whether one
// already failed, so all applicable violations surface together. The stock
// violation, if any, is always first in the returned list.
//
// An order with zero items is vacuously valid.
func Validate(ctx context.Context, stock product.StockChecker, o *Order) ([]RuleViolation, error) {
	inStock, err := ProductsInStock(ctx, stock, o.Items)
	if err != nil {
		return nil, err
	}

	var violations []RuleViolation
	if !inStock {
		violations = append(violations, RuleViolation{Message: msgOutOfStock})
	}
	if !ProductsUnique(o.Items) {
		violations = append(violations, RuleViolation{Message: msgNotUnique})
	}
	return violations, nil
}

// ProductsInStock reports whether every item's SKU is in stock. The rule is
// existential: one out-of-stock item fails the whole set. It is a pure
// query, safe to call for pre-flight checks without placing the order.
func ProductsInStock(ctx context.Context, stock product.StockChecker, items []Item) (bool, error) {
	for _, it := range items {
		ok, err := stock.IsInStock(ctx, it.Product.SKU)
		if err != nil {
			return false, errors.Wrapf(err, "check stock for %q", it.Product.SKU)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// ProductsUnique reports whether no two items reference the same SKU.
// Uniqueness is judged on the SKU alone, independent of any other product
// attribute.
func ProductsUnique(items []Item) bool {
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, dup := seen[it.Product.SKU]; dup {
			return false
		}
		seen[it.Product.SKU] = struct{}{}
	}
	return true
}
