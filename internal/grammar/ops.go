package grammar

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isHexDigit(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func isASCIIAlnum(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// alnumAt reports whether the rune at s[at] is alphanumeric and returns
// its byte size. Malformed UTF-8 never classifies as alphanumeric.
func alnumAt(s []byte, at int, uni bool) (bool, int) {
	b := s[at]
	if b < utf8.RuneSelf {
		return isASCIIAlnum(b), 1
	}
	if !uni {
		return false, 1
	}
	r, sz := utf8.DecodeRune(s[at:])
	return unicode.IsLetter(r) || unicode.IsNumber(r), sz
}

// foldHasPrefix reports whether s[at:] starts with the ASCII
// case-insensitive prefix p. p must be lowercase.
func foldHasPrefix(s []byte, at int, p string) bool {
	if len(s)-at < len(p) {
		return false
	}
	for i := 0; i < len(p); i++ {
		b := s[at+i]
		if 'A' <= b && b <= 'Z' {
			b += 'a' - 'A'
		}
		if b != p[i] {
			return false
		}
	}
	return true
}

// hostSegEnd consumes hostname segment characters from at: '-', ASCII
// alphanumerics and, in unicode mode, any non-ASCII rune.
func hostSegEnd(s []byte, at int, uni bool) int {
	i := at
	for i < len(s) {
		b := s[i]
		if b < utf8.RuneSelf {
			if b == '-' || isASCIIAlnum(b) {
				i++
				continue
			}
			break
		}
		if !uni {
			break
		}
		_, sz := utf8.DecodeRune(s[i:])
		i += sz
	}
	return i
}

func segHasNonDigit(s []byte, start, end int) bool {
	for k := start; k < end; k++ {
		if !isDigit(s[k]) {
			return true
		}
	}
	return false
}

// punctRun consumes characters from at that are alphanumeric or members
// of the ASCII punctuation set.
func punctRun(s []byte, at int, set string, uni bool) int {
	i := at
	for i < len(s) {
		if b := s[i]; b < utf8.RuneSelf && strings.IndexByte(set, b) >= 0 {
			i++
			continue
		}
		ok, sz := alnumAt(s, i, uni)
		if !ok {
			break
		}
		i += sz
	}
	return i
}
