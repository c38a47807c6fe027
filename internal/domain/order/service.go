package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/order-entry/internal/domain/customer"
	"github.com/xenking/order-entry/internal/domain/product"
	"github.com/xenking/order-entry/internal/domain/tax"
)

// estimatedDeliveryDays is added to the placement time to produce the
// summary's estimated delivery date.
const estimatedDeliveryDays = 7

// Service orchestrates order placement: validation, customer resolution,
// fulfillment submission, tax lookup, pricing, and confirmation dispatch.
type Service struct {
	stock       product.StockChecker
	customers   customer.Repository
	fulfillment Fulfiller
	taxes       tax.Resolver
	notifier    Notifier
	now         func() time.Time
}

// NewService creates an order Service with the required collaborators.
func NewService(
	stock product.StockChecker,
	customers customer.Repository,
	fulfillment Fulfiller,
	taxes tax.Resolver,
	notifier Notifier,
) *Service {
	return &Service{
		stock:       stock,
		customers:   customers,
		fulfillment: fulfillment,
		taxes:       taxes,
		notifier:    notifier,
		now:         time.Now,
	}
}

// PlaceOrder finalizes a purchase order and returns its Summary.
//
// The customer ID presence check runs first so that no collaborator is
// contacted for an order that can never complete. Validation follows; a
// rejected order returns a *ValidationError before fulfillment is reached.
// Collaborator failures propagate with context added via wrapping, matchable
// with errors.Is/errors.As. No step is retried.
func (s *Service) PlaceOrder(ctx context.Context, o *Order) (*Summary, error) {
	if o.CustomerID == nil {
		return nil, ErrNilCustomerID
	}

	violations, err := Validate(ctx, s.stock, o)
	if err != nil {
		return nil, errors.Wrap(err, "validate order")
	}
	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	cust, err := s.customers.Get(ctx, *o.CustomerID)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve customer %d", *o.CustomerID)
	}

	conf, err := s.fulfillment.Fulfill(ctx, o)
	if err != nil {
		return nil, errors.Wrap(err, "fulfill order")
	}

	entries, err := s.taxes.Entries(ctx, cust.PostalCode, cust.Country)
	if err != nil {
		return nil, errors.Wrap(err, "resolve tax entries")
	}

	netTotal := NetTotal(o.Items)
	total := Total(entries, netTotal)

	// Best effort: a failed notification does not unwind an order that
	// fulfillment has already accepted. The IDs come from the confirmation,
	// which is authoritative once fulfillment assigns them.
	if err := s.notifier.SendOrderConfirmation(ctx, conf.CustomerID, conf.OrderID); err != nil {
		zctx.From(ctx).Warn("order confirmation not dispatched",
			zap.Int64("order_id", conf.OrderID),
			zap.Int64("customer_id", conf.CustomerID),
			zap.Error(err),
		)
	}

	return &Summary{
		OrderID:           conf.OrderID,
		OrderNumber:       conf.OrderNumber,
		CustomerID:        conf.CustomerID,
		Taxes:             entries,
		NetTotal:          netTotal,
		Total:             total,
		Items:             o.Items,
		EstimatedDelivery: s.now().AddDate(0, 0, estimatedDeliveryDays),
	}, nil
}
