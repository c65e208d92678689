package payment

import (
	"context"

	"github.com/google/uuid"
)

// Sandbox approves everything. It keeps the Gateway shape honest so a real
// provider can be dropped in without touching the checkout flow.
type Sandbox struct{}

func (Sandbox) Authorize(ctx context.Context, req AuthRequest) (AuthResult, error) {
	select {
	case <-ctx.Done():
		return AuthResult{}, ctx.Err()
	default:
	}
	return AuthResult{
		Authorized:    true,
		TransactionID: "sandbox-" + uuid.NewString(),
		Status:        "approved",
	}, nil
}
