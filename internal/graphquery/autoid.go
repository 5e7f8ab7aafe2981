package graphquery

import "github.com/google/uuid"

// IsAutoID reports whether an identifier was generated by the store
// itself: either a syntactically valid UUID or a purely numeric string.
// User-supplied identifiers carry meaning and are preferred as labels.
func IsAutoID(id string) bool {
	if id == "" {
		return false
	}
	if _, err := uuid.Parse(id); err == nil {
		return true
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
