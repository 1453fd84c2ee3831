package hwdefs

import "bytes"

const maxTextLen = 255

var placeholders = []string{"<?>", "< ? >", "?", "<???>"}

// CleanText returns the text stored in a fixed-size header field: cut at the
// first NUL, capped to 255 bytes, without trailing spaces or control
// characters. Placeholders used by rippers for unknown values become empty.
func CleanText(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	if len(b) > maxTextLen {
		b = b[:maxTextLen]
	}
	for len(b) > 0 && b[len(b)-1] <= ' ' {
		b = b[:len(b)-1]
	}
	s := string(b)
	for _, p := range placeholders {
		if s == p {
			return ""
		}
	}
	return s
}
