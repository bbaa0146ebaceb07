package quotes

import (
	"errors"
)

// ErrAuthorNotFound is returned when an author lookup finds no matching record
var ErrAuthorNotFound = errors.New("quote author not found")

// IsNotFound checks if error indicates a missing author
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAuthorNotFound)
}
