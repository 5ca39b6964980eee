package signer

import (
	"sort"
	"strings"
)

const upperHex = "0123456789ABCDEF"

// SplitPathQuery splits a request target on the first '?'.
func SplitPathQuery(raw string) (string, string) {
	path, query, _ := strings.Cut(raw, "?")
	return path, query
}

// CanonicalizePath percent-encodes every byte outside the unreserved set,
// keeps '/' separators as-is and guarantees a trailing slash.
func CanonicalizePath(path string) string {
	if path == "" {
		return "/"
	}

	var b strings.Builder
	b.Grow(len(path) + 1)
	for i := 0; i < len(path); i++ {
		c := path[i]
		if c == '/' || isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		writeEscaped(&b, c)
	}

	encoded := b.String()
	if !strings.HasSuffix(encoded, "/") {
		encoded += "/"
	}
	return encoded
}

type queryPair struct {
	name  string
	value string
}

// CanonicalizeQuery encodes each name and value, sorts the pairs by name and
// then value, and joins them with '&'. A pair without '=' gets an empty value.
func CanonicalizeQuery(query string) string {
	if query == "" {
		return ""
	}

	pairs := make([]queryPair, 0, strings.Count(query, "&")+1)
	for _, part := range strings.Split(query, "&") {
		if part == "" {
			continue
		}
		name, value, _ := strings.Cut(part, "=")
		pairs = append(pairs, queryPair{
			name:  EncodeComponent(name),
			value: EncodeComponent(value),
		})
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].name != pairs[j].name {
			return pairs[i].name < pairs[j].name
		}
		return pairs[i].value < pairs[j].value
	})

	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p.name)
		b.WriteByte('=')
		b.WriteString(p.value)
	}
	return b.String()
}

// EncodeComponent percent-encodes s byte by byte, leaving only
// A-Z a-z 0-9 - . _ ~ untouched.
func EncodeComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		writeEscaped(&b, c)
	}
	return b.String()
}

func writeEscaped(b *strings.Builder, c byte) {
	b.WriteByte('%')
	b.WriteByte(upperHex[c>>4])
	b.WriteByte(upperHex[c&0x0F])
}

func isUnreserved(c byte) bool {
	switch {
	case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '.', c == '_', c == '~':
		return true
	}
	return false
}
