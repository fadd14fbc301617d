package revocation

import (
	"fmt"
	"time"

	"roster/pkg/platform/sentinel"
)

// validateTTL rejects entries that would never expire or are already gone.
func validateTTL(ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("revocation ttl %s: %w", ttl, sentinel.ErrInvalidState)
	}
	return nil
}
