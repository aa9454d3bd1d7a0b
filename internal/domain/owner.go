package domain

import (
	"fmt"
	"strings"
	"unicode"
)

// ValidateOwnerID accepts ids usable as a single storage path element:
// non-empty, not "." or "..", without path separators or control characters.
func ValidateOwnerID(ownerID string) error {
	if ownerID == "" {
		return fmt.Errorf("ownerID is empty")
	}

	if ownerID == "." || ownerID == ".." ||
		strings.ContainsAny(ownerID, `/\`) ||
		strings.ContainsFunc(ownerID, unicode.IsControl) {
		return fmt.Errorf("ownerID[%q] is not valid", ownerID)
	}

	return nil
}
