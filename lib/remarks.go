package lib

import (
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

const upperHex = "0123456789ABCDEF"

// EncodeRemarks joins the escaped remarks of the leaves under root in
// left-to-right order. Every field, including the last and empty ones, is
// followed by a comma.
func EncodeRemarks(root *Node) string {
	var b strings.Builder
	for _, leaf := range Leaves(root) {
		if leaf.Remark != "" {
			b.WriteString(EscapeComponent(leaf.Remark))
		}
		b.WriteByte(',')
	}
	return b.String()
}

// DecodeRemarks assigns the comma-separated fields of s to the leaves under
// root in left-to-right order. Leaves past the last field keep their remark.
// A field that fails to unescape is stored verbatim and reported.
func DecodeRemarks(root *Node, s string) error {
	fields := strings.Split(s, ",")
	var firstErr error
	for i, leaf := range Leaves(root) {
		if i >= len(fields) {
			break
		}
		if fields[i] == "" {
			leaf.Remark = ""
			continue
		}
		remark, err := url.PathUnescape(fields[i])
		if err != nil {
			if firstErr == nil {
				firstErr = errors.Wrapf(err, "bad remark for leaf #%d", i)
			}
			remark = fields[i]
		}
		leaf.Remark = remark
	}
	return firstErr
}

// EscapeComponent percent-encodes every byte of s except ASCII letters,
// digits and -_.!~*'(). The escaped text never contains ',' or '&'.
func EscapeComponent(s string) string {
	return escape(s, false)
}

// escape is EscapeComponent, optionally leaving ',' alone.
func escape(s string, keepComma bool) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if !unreserved(s[i], keepComma) {
			n++
		}
	}
	if n == 0 {
		return s
	}
	buf := make([]byte, 0, len(s)+2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c, keepComma) {
			buf = append(buf, c)
		} else {
			buf = append(buf, '%', upperHex[c>>4], upperHex[c&0xf])
		}
	}
	return string(buf)
}

func unreserved(c byte, keepComma bool) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	case ',':
		return keepComma
	}
	return false
}
