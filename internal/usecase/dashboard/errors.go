package dashboard

import "errors"

var (
	ErrInvalidDate   = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidStatus = errors.New("invalid order status")
)
