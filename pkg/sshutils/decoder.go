package sshutils

import (
	"strings"
	"unicode/utf8"
)

// utf8Decoder turns a byte stream into valid UTF-8 text chunk by chunk.
// A multi-byte sequence split across reads is held back until it completes.
type utf8Decoder struct {
	pending []byte
}

func (d *utf8Decoder) Decode(chunk []byte) string {
	data := chunk
	if len(d.pending) > 0 {
		data = append(d.pending, chunk...)
		d.pending = nil
	}

	// Only the last utf8.UTFMax-1 bytes can start an incomplete rune.
	for i := len(data) - 1; i >= 0 && i >= len(data)-(utf8.UTFMax-1); i-- {
		if !utf8.RuneStart(data[i]) {
			continue
		}
		if !utf8.FullRune(data[i:]) {
			d.pending = append([]byte(nil), data[i:]...)
			data = data[:i]
		}
		break
	}
	return strings.ToValidUTF8(string(data), string(utf8.RuneError))
}

// Flush returns whatever is still held back, with invalid bytes replaced.
func (d *utf8Decoder) Flush() string {
	if len(d.pending) == 0 {
		return ""
	}
	out := strings.ToValidUTF8(string(d.pending), string(utf8.RuneError))
	d.pending = nil
	return out
}
