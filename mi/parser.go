package mi

import (
	"strconv"
	"strings"
)

// ParseLine parses one MI output line into a Record.
//
// The line may carry a trailing "\n" or "\r\n"; it is stripped before
// parsing. Every failure returns a *ParseError; ParseLine never panics on
// untrusted input.
func ParseLine(line string) (Record, error) {
	p := &parser{input: trimEOL(line)}
	rec, ok := p.parseRecord()
	if !ok || !p.atEnd() {
		return nil, &ParseError{Line: p.input}
	}
	return rec, nil
}

func trimEOL(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}

// parser is a single-use recursive descent parser over one line.
type parser struct {
	input string
	pos   int
}

func (p *parser) atEnd() bool {
	return p.pos >= len(p.input)
}

func (p *parser) peek() (byte, bool) {
	if p.atEnd() {
		return 0, false
	}
	return p.input[p.pos], true
}

// eat consumes c if it is next.
func (p *parser) eat(c byte) bool {
	if b, ok := p.peek(); ok && b == c {
		p.pos++
		return true
	}
	return false
}

func (p *parser) parseRecord() (Record, bool) {
	// GDB emits the prompt with a trailing space: "(gdb) ".
	if strings.TrimRight(p.input, " \t") == "(gdb)" {
		p.pos = len(p.input)
		return Prompt{}, true
	}

	token, hasToken := p.parseToken()

	b, ok := p.peek()
	if !ok {
		return nil, false
	}
	switch b {
	case '^':
		p.pos++
		return p.parseResult(token, hasToken)
	case '*', '+', '=':
		p.pos++
		return p.parseAsync(asyncKindFor(b))
	case '~', '@', '&':
		if hasToken {
			// Stream records never carry tokens.
			return nil, false
		}
		p.pos++
		return p.parseStream(streamKindFor(b))
	default:
		return nil, false
	}
}

func asyncKindFor(b byte) AsyncKind {
	switch b {
	case '*':
		return AsyncExec
	case '+':
		return AsyncStatus
	default:
		return AsyncNotify
	}
}

func streamKindFor(b byte) StreamKind {
	switch b {
	case '~':
		return StreamConsole
	case '@':
		return StreamTarget
	default:
		return StreamLog
	}
}

// parseToken consumes an optional leading decimal token.
func (p *parser) parseToken() (uint64, bool) {
	start := p.pos
	for !p.atEnd() && p.input[p.pos] >= '0' && p.input[p.pos] <= '9' {
		p.pos++
	}
	if p.pos == start {
		return 0, false
	}
	token, err := strconv.ParseUint(p.input[start:p.pos], 10, 64)
	if err != nil {
		// Digit run too long for uint64; rewind and let the caller fail.
		p.pos = start
		return 0, false
	}
	return token, true
}

func (p *parser) parseResult(token uint64, hasToken bool) (Record, bool) {
	class := ResultClass(p.parseClassName())
	if !class.valid() {
		return nil, false
	}
	data, ok := p.parsePairs()
	if !ok {
		return nil, false
	}
	return &Result{Token: token, HasToken: hasToken, Class: class, Data: data}, true
}

func (p *parser) parseAsync(kind AsyncKind) (Record, bool) {
	class := p.parseClassName()
	if class == "" {
		return nil, false
	}
	data, ok := p.parsePairs()
	if !ok {
		return nil, false
	}
	return &Async{Kind: kind, Class: class, Data: data}, true
}

func (p *parser) parseStream(kind StreamKind) (Record, bool) {
	text, ok := p.parseQuoted()
	if !ok {
		return nil, false
	}
	return &Stream{Kind: kind, Text: text}, true
}

// parseClassName consumes a class name: letters and hyphens.
func (p *parser) parseClassName() string {
	start := p.pos
	for !p.atEnd() {
		b := p.input[p.pos]
		if b == '-' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') {
			p.pos++
			continue
		}
		break
	}
	return p.input[start:p.pos]
}

// parsePairs consumes zero or more ",name=value" pairs until end of line.
func (p *parser) parsePairs() (*Tuple, bool) {
	data := NewTuple()
	for !p.atEnd() {
		if !p.eat(',') {
			return nil, false
		}
		name, value, ok := p.parsePair()
		if !ok {
			return nil, false
		}
		data.Set(name, value)
	}
	return data, true
}

// parsePair consumes one "name=value".
func (p *parser) parsePair() (string, Value, bool) {
	name := p.parseVarName()
	if name == "" {
		return "", nil, false
	}
	if !p.eat('=') {
		return "", nil, false
	}
	value, ok := p.parseValue()
	if !ok {
		return "", nil, false
	}
	return name, value, true
}

// parseVarName consumes a variable name: [a-zA-Z_][a-zA-Z0-9_-]*.
func (p *parser) parseVarName() string {
	start := p.pos
	for !p.atEnd() {
		b := p.input[p.pos]
		letter := (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_'
		digit := b >= '0' && b <= '9'
		if p.pos == start {
			if !letter {
				break
			}
		} else if !letter && !digit && b != '-' {
			break
		}
		p.pos++
	}
	return p.input[start:p.pos]
}

func (p *parser) parseValue() (Value, bool) {
	b, ok := p.peek()
	if !ok {
		return nil, false
	}
	switch b {
	case '"':
		text, ok := p.parseQuoted()
		if !ok {
			return nil, false
		}
		return String(text), true
	case '{':
		return p.parseTuple()
	case '[':
		return p.parseList()
	default:
		return nil, false
	}
}

func (p *parser) parseTuple() (Value, bool) {
	if !p.eat('{') {
		return nil, false
	}
	t := NewTuple()
	if p.eat('}') {
		return t, true
	}
	for {
		name, value, ok := p.parsePair()
		if !ok {
			return nil, false
		}
		t.Set(name, value)
		if p.eat('}') {
			return t, true
		}
		if !p.eat(',') {
			return nil, false
		}
	}
}

// parseList consumes "[...]". Elements are either bare values or
// "name=value" pairs; pair names are discarded since MI is inconsistent
// about which form it emits.
func (p *parser) parseList() (Value, bool) {
	if !p.eat('[') {
		return nil, false
	}
	list := List{}
	if p.eat(']') {
		return list, true
	}
	for {
		value, ok := p.parseListElement()
		if !ok {
			return nil, false
		}
		list = append(list, value)
		if p.eat(']') {
			return list, true
		}
		if !p.eat(',') {
			return nil, false
		}
	}
}

func (p *parser) parseListElement() (Value, bool) {
	if b, ok := p.peek(); ok {
		switch b {
		case '"', '{', '[':
			return p.parseValue()
		}
	}
	_, value, ok := p.parsePair()
	return value, ok
}

// parseQuoted consumes a quoted constant and decodes its C escapes.
func (p *parser) parseQuoted() (string, bool) {
	if !p.eat('"') {
		return "", false
	}
	var sb strings.Builder
	for {
		if p.atEnd() {
			// Unterminated string.
			return "", false
		}
		b := p.input[p.pos]
		p.pos++
		switch b {
		case '"':
			return sb.String(), true
		case '\\':
			if p.atEnd() {
				return "", false
			}
			e := p.input[p.pos]
			p.pos++
			switch e {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '"':
				sb.WriteByte('"')
			case '\\':
				sb.WriteByte('\\')
			default:
				// Unknown escape: keep it verbatim.
				sb.WriteByte('\\')
				sb.WriteByte(e)
			}
		default:
			sb.WriteByte(b)
		}
	}
}
