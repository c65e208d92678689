package payment

import "context"

// AuthRequest is what a gateway needs to authorize a charge.
type AuthRequest struct {
	Amount   float64
	Currency string
	Method   string
	// Reference ties the authorization back to the checkout attempt for
	// gateway-side reconciliation.
	Reference string
}

type AuthResult struct {
	Authorized    bool
	TransactionID string
	Status        string
	Reason        string
}

// Gateway authorizes a payment synchronously. A declined charge is a normal
// result, not an error; errors are transport or gateway failures.
type Gateway interface {
	Authorize(ctx context.Context, req AuthRequest) (AuthResult, error)
}
