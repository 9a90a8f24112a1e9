// Package encoding turns raw response bytes into text. Target pages are
// Cyrillic and frequently mislabel or omit their charset, so the windows-1251
// paths run before any UTF-8 attempt.
package encoding

import (
	"bytes"
	"net/http"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// sniffLen bounds how far into the body the charset marker search looks.
const sniffLen = 2000

// Resolve decodes a response body to text. It never fails: every input maps
// to some usable string.
//
// Order of precedence: an explicit windows-1251 Content-Type header, a
// charset=windows-1251 marker within the first 2000 bytes, strict UTF-8,
// UTF-8 with replacement characters, and finally a byte-to-rune mapping that
// cannot fail.
func Resolve(body []byte, header http.Header) string {
	ct := strings.ToLower(header.Get("Content-Type"))
	if strings.Contains(ct, "windows-1251") || strings.Contains(ct, "cp1251") {
		return decodeWindows1251(body)
	}
	if sniffWindows1251(body) {
		return decodeWindows1251(body)
	}
	if utf8.Valid(body) {
		return string(body)
	}
	return strings.ToValidUTF8(string(body), string(utf8.RuneError))
}

func sniffWindows1251(body []byte) bool {
	prefix := body
	if len(prefix) > sniffLen {
		prefix = prefix[:sniffLen]
	}
	return bytes.Contains(bytes.ToLower(prefix), []byte("charset=windows-1251"))
}

func decodeWindows1251(body []byte) string {
	// The charmap decoder substitutes undefined bytes with U+FFFD instead of
	// erroring, which is the replacement behaviour the resolver needs.
	out, err := charmap.Windows1251.NewDecoder().Bytes(body)
	if err != nil {
		return latin1String(body)
	}
	return string(out)
}

// latin1String maps each byte to its Unicode code point. It is the last
// resort of the chain and cannot fail.
func latin1String(body []byte) string {
	runes := make([]rune, len(body))
	for i, b := range body {
		runes[i] = rune(b)
	}
	return string(runes)
}
