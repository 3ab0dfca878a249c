package blob

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrNotFound      = errors.New("blob not found")
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	ErrInvalidKey    = errors.New("invalid blob key")
	ErrStorageError  = errors.New("storage error")
)

var keyRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,127}$`)

// ValidateKey rejects namespaces and keys that could escape their directory or
// object prefix.
func ValidateKey(namespace, key string) error {
	if !keyRe.MatchString(namespace) {
		return fmt.Errorf("%w: namespace %q", ErrInvalidKey, namespace)
	}
	if !keyRe.MatchString(key) {
		return fmt.Errorf("%w: key %q", ErrInvalidKey, key)
	}
	return nil
}

// CheckQuota fails when a namespace would hold more than limit bytes after
// replacing one value: used is the size of every other value in the namespace.
func CheckQuota(limit, used, size int64) error {
	if limit > 0 && used+size > limit {
		return fmt.Errorf("%w: %d of %d bytes", ErrQuotaExceeded, used+size, limit)
	}
	return nil
}
