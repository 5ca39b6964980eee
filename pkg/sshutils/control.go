package sshutils

import (
	"fmt"
	"strings"
)

// ControlKey is a terminal control character that can be sent to a session.
type ControlKey int

const (
	CtrlC ControlKey = iota + 1
	CtrlD
	CtrlU
)

// Byte returns the character written to the remote terminal.
func (k ControlKey) Byte() byte {
	switch k {
	case CtrlC:
		return 0x03
	case CtrlD:
		return 0x04
	case CtrlU:
		return 0x15
	}
	return 0
}

func (k ControlKey) String() string {
	switch k {
	case CtrlC:
		return "ctrl+c"
	case CtrlD:
		return "ctrl+d"
	case CtrlU:
		return "ctrl+u"
	}
	return fmt.Sprintf("ControlKey(%d)", int(k))
}

// ParseControlKey accepts "c", "ctrl+c", "d", "ctrl+d", "u" and "ctrl+u",
// ignoring case and surrounding space.
func ParseControlKey(name string) (ControlKey, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "c", "ctrl+c":
		return CtrlC, nil
	case "d", "ctrl+d":
		return CtrlD, nil
	case "u", "ctrl+u":
		return CtrlU, nil
	}
	return 0, fmt.Errorf("%w: unsupported control sequence %q, use one of ctrl+c, ctrl+d, ctrl+u",
		ErrInvalidRequest, strings.TrimSpace(name))
}
