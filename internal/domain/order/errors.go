package order

import (
	"strings"

	"github.com/go-faster/errors"
)

// ErrNilCustomerID is returned when placement is attempted for an order
// without a customer ID. It is distinct from a ValidationError: the check
// runs before any collaborator call and is never collected into the
// violation list.
var ErrNilCustomerID = errors.New("customer ID was null")

// ValidationError carries the ordered, immutable list of rule violations
// for a rejected order. It is never constructed with an empty list; callers
// match on it with errors.As rather than inspecting the message.
type ValidationError struct {
	Violations []RuleViolation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Message
	}
	return "order validation failed: " + strings.Join(msgs, "; ")
}
