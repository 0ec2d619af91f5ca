package order

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewNumber returns a human-readable order number such as ORD-20261015-3F9A1C2B.
func NewNumber(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return "ORD-" + at.UTC().Format("20060102") + "-" + suffix
}
