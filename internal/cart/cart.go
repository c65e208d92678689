package cart

import (
	"errors"
	"time"
)

var (
	ErrItemNotFound = errors.New("cart item not found")
	ErrBadScope     = errors.New("cart scope requires exactly one of user id or session id")
)

// Scope identifies whose cart is being touched: an authenticated user or a
// guest session, never both.
type Scope struct {
	UserID    string
	SessionID string
}

func UserScope(userID string) Scope       { return Scope{UserID: userID} }
func SessionScope(sessionID string) Scope { return Scope{SessionID: sessionID} }

func (s Scope) Validate() error {
	if (s.UserID == "") == (s.SessionID == "") {
		return ErrBadScope
	}
	return nil
}

type Item struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
