package header

import "errors"

var (
	ErrInvalidColor = errors.New("invalid color")
	ErrInvalidSlot  = errors.New("invalid upload slot")
)
