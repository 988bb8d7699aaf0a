package zonetree

import "errors"

// ErrInvalidHierarchy is returned when a re-parent would make a zone its own
// ancestor. The tree is left unmodified.
var ErrInvalidHierarchy = errors.New("zone cannot be moved under itself or one of its descendants")

// ErrZoneNotFound is returned when an operation references a zone id that
// does not exist.
var ErrZoneNotFound = errors.New("zone not found")
