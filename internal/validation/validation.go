package validation

import (
	"fmt"

	"github.com/google/uuid"
)

// ErrInvalidUUID is returned for malformed resource IDs.
var ErrInvalidUUID = fmt.Errorf("invalid UUID format")

// ValidateUUID checks if a string is a valid UUID
func ValidateUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidUUID, id)
	}
	return nil
}
