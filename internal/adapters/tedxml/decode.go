package tedxml

import (
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// decodeNotice normalizes raw notice bytes to UTF-8. Most members are
// UTF-8; the occasional legacy one is ISO 8859-1, which maps every byte,
// so the fallback cannot fail
func decodeNotice(b []byte) ([]byte, error) {
	if utf8.Valid(b) {
		return b, nil
	}
	return charmap.ISO8859_1.NewDecoder().Bytes(b)
}

// passthroughCharset is the xml.Decoder CharsetReader. The payload is
// already normalized to UTF-8, so whatever the declaration claims, the
// bytes are handed through unchanged
func passthroughCharset(_ string, input io.Reader) (io.Reader, error) {
	return input, nil
}
