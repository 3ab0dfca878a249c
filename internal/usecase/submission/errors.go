package submission

import "errors"

var (
	ErrUnknownForm = errors.New("unknown form in submission")
	ErrStoreFailed = errors.New("failed to store submission data")
)
