// Package sourceform parses the recompilable source text osascript prints for a script result
// (osascript -s s) into native descriptors.
package sourceform

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/robbyt/go-scriptbridge/platform/descriptor"
)

// MaxNesting bounds how deeply lists and records may nest in parsed output. The value model
// applies its own, usually smaller, depth bound during conversion.
const MaxNesting = 1024

// dateLayouts are the long date formats osascript prints, tried in order.
var dateLayouts = []string{
	"Monday, January 2, 2006 at 3:04:05 PM",
	"Monday, January 2, 2006 3:04:05 PM",
	"January 2, 2006 at 3:04:05 PM",
	"Monday, 2 January 2006 at 15:04:05",
	"Monday 2 January 2006 at 15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

type parser struct {
	src   string
	toks  []token
	pos   int
	depth int
}

// Parse turns one printed result into a descriptor. Blank output is the null descriptor.
func Parse(src string) (*descriptor.Descriptor, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, toks: toks}
	if p.peek().kind == tokEOF {
		return descriptor.Null(), nil
	}

	d, err := p.value()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, fmt.Errorf("%w: %s at %d", ErrTrailingInput, tok.kind, tok.start)
	}
	return d, nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) peekAt(n int) token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *parser) advance() token {
	tok := p.toks[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) expect(kind tokenKind) (token, error) {
	tok := p.advance()
	if tok.kind != kind {
		return tok, unexpected(tok, kind.String())
	}
	return tok, nil
}

func unexpected(tok token, want string) error {
	return fmt.Errorf("%w: got %s at %d, want %s", ErrUnexpectedToken, tok.kind, tok.start, want)
}

func (p *parser) value() (*descriptor.Descriptor, error) {
	tok := p.peek()
	switch tok.kind {
	case tokLBrace:
		return p.container()
	case tokString:
		if p.peekAt(1).delimits() {
			p.advance()
			return descriptor.Unicode(tok.text), nil
		}
	case tokNumber:
		if p.peekAt(1).delimits() {
			p.advance()
			return number(tok.text), nil
		}
	case tokChevron:
		if p.peekAt(1).delimits() {
			p.advance()
			return chevron(tok.text), nil
		}
	case tokIdent:
		if d, ok := p.keyword(); ok {
			return d, nil
		}
	case tokEOF, tokComma, tokRBrace, tokColon:
		return nil, unexpected(tok, "a value")
	}
	return p.expression()
}

// keyword recognizes the literal forms introduced by reserved words. It consumes nothing
// when the tokens do not form one of them.
func (p *parser) keyword() (*descriptor.Descriptor, bool) {
	first := p.peek()
	second := p.peekAt(1)

	if second.delimits() {
		switch first.text {
		case "true":
			p.advance()
			return descriptor.Bool(true), true
		case "false":
			p.advance()
			return descriptor.Bool(false), true
		case "null":
			p.advance()
			return descriptor.Null(), true
		}
		return nil, false
	}

	third := p.peekAt(2)
	switch {
	case first.text == "missing" && second.kind == tokIdent && second.text == "value" && third.delimits():
		p.pos += 2
		return descriptor.Missing(), true
	case second.kind == tokString && third.delimits():
		var d *descriptor.Descriptor
		switch first.text {
		case "date":
			d = date(second.text)
		case "alias":
			d = descriptor.Alias(second.text)
		case "file":
			d = descriptor.Raw(descriptor.TypeFileURL, []byte(second.text))
		default:
			return nil, false
		}
		p.pos += 2
		return d, true
	case first.text == "POSIX" && second.kind == tokIdent && second.text == "file" &&
		third.kind == tokString && p.peekAt(3).delimits():
		p.pos += 3
		return descriptor.Raw(descriptor.TypeFileURL, []byte(third.text)), true
	}
	return nil, false
}

func (p *parser) container() (*descriptor.Descriptor, error) {
	open := p.advance()
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > MaxNesting {
		return nil, fmt.Errorf("%w: at %d", ErrTooDeep, open.start)
	}

	if p.peek().kind == tokRBrace {
		p.advance()
		return descriptor.List(), nil
	}
	if p.atKey() {
		return p.record()
	}

	var items []*descriptor.Descriptor
	for {
		item, err := p.value()
		if err != nil {
			return nil, err
		}
		items = append(items, item)

		tok := p.advance()
		switch tok.kind {
		case tokComma:
			continue
		case tokRBrace:
			return descriptor.List(items...), nil
		}
		return nil, unexpected(tok, "',' or '}'")
	}
}

// atKey reports whether the next tokens are a record key followed by a colon.
func (p *parser) atKey() bool {
	switch tok := p.peek(); tok.kind {
	case tokPiped, tokChevron:
		return p.peekAt(1).kind == tokColon
	case tokIdent:
		for i := 1; ; i++ {
			switch p.peekAt(i).kind {
			case tokIdent:
				continue
			case tokColon:
				return true
			}
			return false
		}
	}
	return false
}

func (p *parser) record() (*descriptor.Descriptor, error) {
	var fields []descriptor.Field
	for {
		key, err := p.key()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokColon); err != nil {
			return nil, err
		}
		val, err := p.value()
		if err != nil {
			return nil, err
		}
		fields = append(fields, descriptor.Field{Key: key, Value: val})

		tok := p.advance()
		switch tok.kind {
		case tokComma:
			continue
		case tokRBrace:
			return descriptor.Record(fields...), nil
		}
		return nil, unexpected(tok, "',' or '}'")
	}
}

// key reads a record key: a piped identifier, a raw class code, or one or more words.
func (p *parser) key() (string, error) {
	tok := p.advance()
	switch tok.kind {
	case tokPiped:
		return tok.text, nil
	case tokChevron:
		return strings.TrimPrefix(tok.text, "class "), nil
	case tokIdent:
		words := []string{tok.text}
		for p.peek().kind == tokIdent {
			words = append(words, p.advance().text)
		}
		return strings.Join(words, " "), nil
	}
	return "", unexpected(tok, "a record key")
}

// expression consumes a reference or a constant up to the next delimiter outside brackets
// and keeps its source text.
func (p *parser) expression() (*descriptor.Descriptor, error) {
	startIdx := p.pos
	first := p.peek()
	last := first
	nesting := 0
	plainWords := true

loop:
	for {
		tok := p.peek()
		switch {
		case tok.kind == tokEOF:
			break loop
		case nesting == 0 && tok.delimits():
			break loop
		case tok.kind == tokLBrace || (tok.kind == tokOther && tok.text == "("):
			nesting++
		case tok.kind == tokRBrace || (tok.kind == tokOther && tok.text == ")"):
			nesting--
		}
		if tok.kind == tokIdent {
			if tok.text == "of" || tok.text == "in" {
				plainWords = false
			}
		} else {
			plainWords = false
		}
		last = p.advance()
	}
	if nesting != 0 {
		return nil, fmt.Errorf("%w: unbalanced brackets at %d", ErrUnexpectedToken, first.start)
	}
	if last.end <= first.start {
		return nil, unexpected(first, "a value")
	}

	text := strings.TrimSpace(p.src[first.start:last.end])
	if plainWords {
		return descriptor.Enum(text), nil
	}

	if p.pos-startIdx == 2 && first.text == "application" && p.toks[startIdx+1].kind == tokString {
		return descriptor.Application(p.toks[startIdx+1].text), nil
	}

	class := "reference"
	switch first.kind {
	case tokIdent:
		class = first.text
	case tokChevron:
		class = strings.TrimPrefix(first.text, "class ")
	}
	return descriptor.Object(class, descriptor.FormText, descriptor.UTF8(text), nil), nil
}

// number keeps integers that fit 32 bits as "long", wider integers as "comp", and everything
// else as a double. Integer literals beyond 64 bits are kept as raw text.
func number(text string) *descriptor.Descriptor {
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		if i >= math.MinInt32 && i <= math.MaxInt32 {
			return descriptor.Int32(int32(i))
		}
		return descriptor.Int64(i)
	}
	if !strings.ContainsAny(text, ".eE") {
		return descriptor.Raw(descriptor.NormalizeCode("nmbr"), []byte(text))
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return descriptor.Raw(descriptor.NormalizeCode("nmbr"), []byte(text))
	}
	return descriptor.Float64(f)
}

// chevron interprets raw «...» forms: «data xxxxHEX», «class xxxx» and «constant ****xxxx».
func chevron(text string) *descriptor.Descriptor {
	word, rest, _ := strings.Cut(text, " ")
	switch word {
	case "data":
		if len(rest) < 4 {
			return descriptor.Raw(descriptor.NormalizeCode("data"), []byte(rest))
		}
		code := descriptor.NormalizeCode(rest[:4])
		payload, err := hex.DecodeString(rest[4:])
		if err != nil {
			return descriptor.Raw(code, []byte(rest[4:]))
		}
		return descriptor.Raw(code, payload)
	case "class":
		return descriptor.TypeCode(rest)
	case "constant":
		return descriptor.Enum(strings.TrimPrefix(rest, "****"))
	}
	return descriptor.Raw(descriptor.NormalizeCode(word), []byte(rest))
}

// date converts a printed date. Formats outside dateLayouts keep their text in a date
// descriptor, which converts to an unrepresentable value carrying that text.
func date(text string) *descriptor.Descriptor {
	normalized := strings.NewReplacer("\u202f", " ", "\u00a0", " ").Replace(text)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, normalized); err == nil {
			return descriptor.Date(t)
		}
	}
	return descriptor.Raw(descriptor.TypeDate, []byte(text))
}
