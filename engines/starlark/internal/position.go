package internal

import (
	"strings"
	"unicode/utf8"

	"go.starlark.net/syntax"
)

// Offset converts a 1-based line and column position into a byte offset within src. Positions
// past the end of a line or of src are clamped.
func Offset(src string, pos syntax.Position) int {
	if pos.Line <= 0 {
		return 0
	}

	offset := 0
	for line := int32(1); line < pos.Line; line++ {
		next := strings.IndexByte(src[offset:], '\n')
		if next < 0 {
			return len(src)
		}
		offset += next + 1
	}

	for col := int32(1); col < pos.Col && offset < len(src); col++ {
		if src[offset] == '\n' {
			break
		}
		_, size := utf8.DecodeRuneInString(src[offset:])
		offset += size
	}
	return offset
}
