package processor

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrFileTooLarge      = errors.New("file too large")
	ErrDecodeFailed      = errors.New("failed to decode image")
	ErrEncodeFailed      = errors.New("failed to encode image")
)

// FileTooLargeError carries the ceiling that was exceeded so callers can show it.
type FileTooLargeError struct {
	Size  int64
	Limit int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("file too large: %d bytes exceeds limit of %d bytes", e.Size, e.Limit)
}

func (e *FileTooLargeError) Is(target error) bool {
	return target == ErrFileTooLarge
}

// LimitMB formats the limit in megabytes without trailing zeros ("2", "1.5").
func (e *FileTooLargeError) LimitMB() string {
	return strconv.FormatFloat(float64(e.Limit)/(1024*1024), 'f', -1, 64)
}
