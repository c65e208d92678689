package orders

import (
	"fmt"
	"time"
)

// NewOrderNumber derives a human-readable number from the creation time:
// ORD-<year>-<last six digits of the unix millisecond clock>.
func NewOrderNumber(t time.Time) string {
	return fmt.Sprintf("ORD-%d-%06d", t.Year(), t.UnixMilli()%1_000_000)
}
