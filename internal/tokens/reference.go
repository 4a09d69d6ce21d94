package tokens

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatReference builds the caller-visible handle for a stored grant. The
// reference is created once at issuance and never re-encoded afterwards.
func FormatReference(characterID int64, secret string) string {
	return fmt.Sprintf("%d:%s", characterID, secret)
}

// ParseReference decomposes a reference into its character id and secret.
func ParseReference(ref string) (int64, string, error) {
	parts := strings.Split(ref, ":")
	if len(parts) != 2 {
		return 0, "", ErrInvalidReference
	}
	characterID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, "", ErrInvalidReference
	}
	return characterID, parts[1], nil
}
