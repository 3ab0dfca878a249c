package settings

import "errors"

var (
	ErrPersistenceReadFailed  = errors.New("failed to read settings")
	ErrPersistenceWriteFailed = errors.New("failed to write settings")
)
