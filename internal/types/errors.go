// README: Cross-module error kinds surfaced to API callers.
package types

import (
	"errors"
	"fmt"
)

var (
	ErrNetwork         = errors.New("network error")
	ErrPermission      = errors.New("permission denied")
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidDocument = errors.New("invalid document")
	ErrNotConfigured   = errors.New("not configured")
)

// Network wraps an I/O failure from an external collaborator so callers can match ErrNetwork.
func Network(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrNetwork, err)
}
