package commerce

import "errors"

var (
	// ErrOrderNotFound indicates the order id is unknown to the store.
	ErrOrderNotFound = errors.New("commerce: order not found")
	// ErrInvalidStatus indicates a status literal outside the known set.
	ErrInvalidStatus = errors.New("commerce: invalid status")
)
