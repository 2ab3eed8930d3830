package scripterr

import (
	"strconv"
	"strings"
	"unicode/utf16"
)

// Unescape replaces \Uxxxx escapes in runtime error text with the characters they name.
// Consecutive escapes that form a UTF-16 surrogate pair are combined. Malformed escapes are
// left untouched.
func Unescape(s string) string {
	if !strings.Contains(s, `\U`) {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); {
		unit, ok := escapeAt(s, i)
		if !ok {
			sb.WriteByte(s[i])
			i++
			continue
		}
		i += 6
		if utf16.IsSurrogate(rune(unit)) {
			if low, ok := escapeAt(s, i); ok {
				if r := utf16.DecodeRune(rune(unit), rune(low)); r != 0xFFFD {
					sb.WriteRune(r)
					i += 6
					continue
				}
			}
		}
		sb.WriteRune(rune(unit))
	}
	return sb.String()
}

func escapeAt(s string, i int) (uint16, bool) {
	if i+6 > len(s) || s[i] != '\\' || s[i+1] != 'U' {
		return 0, false
	}
	n, err := strconv.ParseUint(s[i+2:i+6], 16, 16)
	if err != nil {
		return 0, false
	}
	return uint16(n), true
}
