package sshutils

import (
	"errors"
	"sort"

	"golang.org/x/crypto/ssh"
)

const (
	ptyRequestName      = "pty-req"
	windowChangeRequest = "window-change"

	ttyOpEnd = 0
)

var errPtyDenied = errors.New("pty request denied")

// ptyRequestMsg is the "pty-req" payload of RFC 4254 section 6.2.
// ssh.Session.RequestPty derives pixel sizes from the cell count; the size
// here is announced in cells only, with zero pixel dimensions.
type ptyRequestMsg struct {
	Term     string
	Columns  uint32
	Rows     uint32
	Width    uint32
	Height   uint32
	Modelist string
}

type windowChangeMsg struct {
	Columns uint32
	Rows    uint32
	Width   uint32
	Height  uint32
}

// encodeTerminalModes renders modes as opcode/uint32 pairs ending in TTY_OP_END (0).
func encodeTerminalModes(modes ssh.TerminalModes) string {
	opcodes := make([]int, 0, len(modes))
	for op := range modes {
		opcodes = append(opcodes, int(op))
	}
	sort.Ints(opcodes)

	var b []byte
	for _, op := range opcodes {
		kv := struct {
			Key byte
			Val uint32
		}{byte(op), modes[uint8(op)]}
		b = append(b, ssh.Marshal(&kv)...)
	}
	b = append(b, ttyOpEnd)
	return string(b)
}

// requestPty asks for a PTYTerm terminal of PTYCols x PTYRows cells.
func requestPty(session SSHSessioner, modes ssh.TerminalModes) error {
	payload := ssh.Marshal(&ptyRequestMsg{
		Term:     PTYTerm,
		Columns:  PTYCols,
		Rows:     PTYRows,
		Modelist: encodeTerminalModes(modes),
	})
	ok, err := session.SendRequest(ptyRequestName, true, payload)
	if err != nil {
		return err
	}
	if !ok {
		return errPtyDenied
	}
	return nil
}
