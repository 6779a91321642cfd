package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewOrderNumber builds a human-readable order reference, for example
// ORD-20260830-1A2B3C4D. The random suffix keeps it unique without a
// database sequence; the unique index on order_number is the backstop.
func NewOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), suffix[:8])
}
