package restaurant

import (
	"fmt"
	"strings"
	"time"
)

// Restaurant is the settlement account holder. Rows are created lazily by the
// first processor event that references them and are never deleted while any
// event, entry or payout points at them.
type Restaurant struct {
	ID        string
	Name      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
	Metadata  map[string]any
}

const maxIDLen = 50

// ValidateID enforces the external id contract: res_ prefix, at most 50 chars.
func ValidateID(id string) error {
	if !strings.HasPrefix(id, "res_") {
		return fmt.Errorf("restaurant id must start with res_: %q", id)
	}
	if len(id) > maxIDLen {
		return fmt.Errorf("restaurant id exceeds %d chars: %q", maxIDLen, id)
	}
	return nil
}
