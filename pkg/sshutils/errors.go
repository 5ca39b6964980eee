package sshutils

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoSession      = errors.New("ssh session not found")
	ErrAuthFailed     = errors.New("ssh authentication failed")
	ErrInvalidRequest = errors.New("invalid ssh request")
)

func invalid(field string) error {
	return fmt.Errorf("%w: %s is required", ErrInvalidRequest, field)
}

func noSession(id string) error {
	return fmt.Errorf("%w: %s", ErrNoSession, id)
}

// wrapDialError tags credential rejections with ErrAuthFailed. x/crypto/ssh
// reports them only through the handshake error text.
func wrapDialError(err error, username, addr string) error {
	if strings.Contains(err.Error(), "unable to authenticate") {
		return fmt.Errorf("%w for %s@%s: %w", ErrAuthFailed, username, addr, err)
	}
	return fmt.Errorf("failed to connect to %s@%s: %w", username, addr, err)
}
