package sourceform

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokLBrace
	tokRBrace
	tokComma
	tokColon
	tokString
	tokNumber
	tokIdent
	tokPiped
	tokChevron
	tokOther
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokLBrace:
		return "'{'"
	case tokRBrace:
		return "'}'"
	case tokComma:
		return "','"
	case tokColon:
		return "':'"
	case tokString:
		return "string"
	case tokNumber:
		return "number"
	case tokIdent:
		return "identifier"
	case tokPiped:
		return "piped identifier"
	case tokChevron:
		return "raw code"
	}
	return "symbol"
}

// token is one lexeme. start and end are byte offsets into the source; text is the decoded
// content for strings, piped identifiers and chevrons.
type token struct {
	kind       tokenKind
	text       string
	start, end int
}

// delimits reports whether t ends a value.
func (t token) delimits() bool {
	switch t.kind {
	case tokEOF, tokComma, tokRBrace, tokColon:
		return true
	}
	return false
}

func tokenize(src string) ([]token, error) {
	var toks []token
	pos := 0
	for {
		pos = skipSpace(src, pos)
		if pos >= len(src) {
			toks = append(toks, token{kind: tokEOF, start: pos, end: pos})
			return toks, nil
		}

		r, size := utf8.DecodeRuneInString(src[pos:])
		start := pos
		var tok token
		var err error
		switch {
		case r == '{':
			tok = token{kind: tokLBrace, start: start, end: start + 1}
		case r == '}':
			tok = token{kind: tokRBrace, start: start, end: start + 1}
		case r == ',':
			tok = token{kind: tokComma, start: start, end: start + 1}
		case r == ':':
			tok = token{kind: tokColon, start: start, end: start + 1}
		case r == '"':
			tok, err = lexString(src, start)
		case r == '|':
			tok, err = lexDelimited(src, start, "|", tokPiped)
		case r == '«':
			tok, err = lexDelimited(src, start, "»", tokChevron)
		case isDigit(r) || (r == '-' && start+1 < len(src) && isDigit(rune(src[start+1]))):
			tok = lexNumber(src, start)
		case r == '_' || unicode.IsLetter(r):
			end := start + size
			for end < len(src) {
				r, size := utf8.DecodeRuneInString(src[end:])
				if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
					break
				}
				end += size
			}
			tok = token{kind: tokIdent, text: src[start:end], start: start, end: end}
		default:
			tok = token{kind: tokOther, text: string(r), start: start, end: start + size}
		}
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		pos = tok.end
	}
}

// skipSpace skips white space and the line continuation character.
func skipSpace(src string, pos int) int {
	for pos < len(src) {
		r, size := utf8.DecodeRuneInString(src[pos:])
		if !unicode.IsSpace(r) && r != '¬' {
			break
		}
		pos += size
	}
	return pos
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func lexString(src string, start int) (token, error) {
	var sb strings.Builder
	for i := start + 1; i < len(src); i++ {
		c := src[i]
		switch c {
		case '"':
			return token{kind: tokString, text: sb.String(), start: start, end: i + 1}, nil
		case '\\':
			if i+1 >= len(src) {
				break
			}
			i++
			switch src[i] {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '"', '\\':
				sb.WriteByte(src[i])
			default:
				sb.WriteByte('\\')
				sb.WriteByte(src[i])
			}
		default:
			sb.WriteByte(c)
		}
	}
	return token{}, fmt.Errorf("%w: string starting at %d", ErrUnterminated, start)
}

func lexDelimited(src string, start int, closer string, kind tokenKind) (token, error) {
	_, open := utf8.DecodeRuneInString(src[start:])
	n := strings.Index(src[start+open:], closer)
	if n < 0 {
		return token{}, fmt.Errorf("%w: %s starting at %d", ErrUnterminated, kind, start)
	}
	contentEnd := start + open + n
	return token{
		kind:  kind,
		text:  src[start+open : contentEnd],
		start: start,
		end:   contentEnd + len(closer),
	}, nil
}

func lexNumber(src string, start int) token {
	end := start
	if src[end] == '-' {
		end++
	}
	end = digits(src, end)
	if end+1 < len(src) && src[end] == '.' && isDigit(rune(src[end+1])) {
		end = digits(src, end+1)
	}
	if end < len(src) && (src[end] == 'e' || src[end] == 'E') {
		exp := end + 1
		if exp < len(src) && (src[exp] == '+' || src[exp] == '-') {
			exp++
		}
		if exp < len(src) && isDigit(rune(src[exp])) {
			end = digits(src, exp)
		}
	}
	return token{kind: tokNumber, text: src[start:end], start: start, end: end}
}

func digits(src string, pos int) int {
	for pos < len(src) && isDigit(rune(src[pos])) {
		pos++
	}
	return pos
}
