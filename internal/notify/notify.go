// Package notify dispatches order confirmation events over NATS Streaming.
// An email worker outside this repository consumes the channel and performs
// the actual delivery.
package notify

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	stan "github.com/nats-io/stan.go"

	"github.com/xenking/order-entry/internal/domain/order"
)

// Config holds the NATS Streaming connection settings.
type Config struct {
	ClusterID string
	ClientID  string
	URL       string
	Subject   string
}

var _ order.Notifier = (*Notifier)(nil)

// Notifier implements order.Notifier by publishing confirmation events.
type Notifier struct {
	sc      stan.Conn
	subject string
}

// New connects to the NATS Streaming cluster and returns a Notifier.
// Close must be called when the notifier is no longer needed.
func New(cfg Config) (*Notifier, error) {
	sc, err := stan.Connect(cfg.ClusterID, cfg.ClientID, stan.NatsURL(cfg.URL))
	if err != nil {
		return nil, errors.Wrap(err, "connect to nats streaming")
	}
	return &Notifier{sc: sc, subject: cfg.Subject}, nil
}

// Close releases the underlying streaming connection.
func (n *Notifier) Close() error {
	return n.sc.Close()
}

// SendOrderConfirmation publishes one confirmation event addressed with the
// fulfillment confirmation's customer and order IDs.
func (n *Notifier) SendOrderConfirmation(_ context.Context, customerID, orderID int64) error {
	if err := n.sc.Publish(n.subject, encodeConfirmation(customerID, orderID)); err != nil {
		return errors.Wrapf(err, "publish order confirmation for order %d", orderID)
	}
	return nil
}

// Nop is a Notifier that drops every confirmation. Used when no NATS
// Streaming URL is configured.
type Nop struct{}

var _ order.Notifier = Nop{}

func (Nop) SendOrderConfirmation(context.Context, int64, int64) error { return nil }

func (Nop) Close() error { return nil }

// encodeConfirmation renders the event payload. jx writes the fields in
// declaration order, so payloads are byte-stable for a given input.
func encodeConfirmation(customerID, orderID int64) []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("type", func(e *jx.Encoder) { e.Str("order_confirmation") })
		e.Field("customer_id", func(e *jx.Encoder) { e.Int64(customerID) })
		e.Field("order_id", func(e *jx.Encoder) { e.Int64(orderID) })
	})
	return e.Bytes()
}
