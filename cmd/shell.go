package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/stratoshell/stratoshell/pkg/sshutils"
)

var errQuit = errors.New("quit")

// usageError is a mistake in a local ~command. The shell reports it and
// keeps reading input.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

// shellSession funnels input lines and forwarded signals into one session.
// The registry takes a session out while it works on it, so a second
// concurrent call would see no session at all.
type shellSession struct {
	mu       sync.Mutex
	registry *sshutils.Registry
	id       string
}

func newShellSession(registry *sshutils.Registry, id string) *shellSession {
	return &shellSession{registry: registry, id: id}
}

func (s *shellSession) exec(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.registry.Exec(s.id, line)
	return err
}

func (s *shellSession) control(key sshutils.ControlKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.SendControl(s.id, key.String())
}

func (s *shellSession) resize(cols, rows uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.registry.Resize(s.id, cols, rows, 0, 0)
	return err
}

// handleLine runs a local ~command or sends the line to the remote shell.
// Mistakes in local commands come back as usageError.
func (s *shellSession) handleLine(line string) error {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	if !strings.HasPrefix(line, "~") {
		return s.exec(line)
	}

	fields := strings.Fields(strings.TrimPrefix(line, "~"))
	if len(fields) == 0 {
		return nil
	}
	switch fields[0] {
	case "quit":
		return errQuit
	case "ctrl":
		if len(fields) != 2 {
			return usagef("usage: ~ctrl c|d|u")
		}
		key, err := sshutils.ParseControlKey(fields[1])
		if err != nil {
			return usagef("usage: ~ctrl c|d|u (got %q)", fields[1])
		}
		return s.control(key)
	case "resize":
		if len(fields) != 3 {
			return usagef("usage: ~resize COLS ROWS")
		}
		cols, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return usagef("invalid column count %q", fields[1])
		}
		rows, err := strconv.ParseUint(fields[2], 10, 32)
		if err != nil {
			return usagef("invalid row count %q", fields[2])
		}
		return s.resize(uint32(cols), uint32(rows))
	default:
		return usagef("unknown local command ~%s, use ~ctrl, ~resize or ~quit", fields[0])
	}
}
