package cdc

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/voltlab/cdckit/pkg/circuit"
	"github.com/voltlab/cdckit/pkg/errors"
)

// ParseError describes a syntax error in circuit description text.
// Pos is the byte offset of the first character that could not be
// consumed, and Offending holds a short snippet starting there.
type ParseError struct {
	Reason    string
	Offending string
	Pos       int
}

func (e *ParseError) Error() string {
	if e.Offending == "" {
		return fmt.Sprintf("invalid circuit description at offset %d: %s", e.Pos, e.Reason)
	}
	return fmt.Sprintf("invalid circuit description at offset %d near %q: %s", e.Pos, e.Offending, e.Reason)
}

// Parse reads circuit description text and returns the circuit tree.
// Element mnemonics are resolved against the registry using longest-prefix
// matching. Whitespace between units is ignored. The outermost unit must
// be a series ("[...]"), and parallel groups need at least two members.
func Parse(text string, reg *circuit.Registry) (*Circuit, error) {
	if err := errors.ValidateCDCInput(text); err != nil {
		return nil, err
	}

	p := &parser{src: text, reg: reg}
	p.skipSpace()
	if p.peek() != '[' {
		return nil, p.errorf("circuit must start with '['")
	}
	root, err := p.parseSeries()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("trailing characters after circuit")
	}
	return &Circuit{Root: root}, nil
}

var positiveInf = math.Inf(1)

type parser struct {
	src string
	pos int
	reg *circuit.Registry
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) errorf(format string, args ...any) *ParseError {
	snippet := p.src[p.pos:]
	if len(snippet) > 8 {
		snippet = snippet[:8]
	}
	return &ParseError{
		Reason:    fmt.Sprintf(format, args...),
		Offending: snippet,
		Pos:       p.pos,
	}
}

// parseSeries consumes "[unit+]". Nested series are spliced into the
// parent so the tree comes out in canonical shape.
func (p *parser) parseSeries() (*Series, error) {
	open := p.pos
	p.pos++ // '['
	s := &Series{}
	for {
		p.skipSpace()
		switch p.peek() {
		case ']':
			p.pos++
			if len(s.Items) == 0 {
				p.pos = open
				return nil, p.errorf("series group is empty")
			}
			return s, nil
		case 0:
			p.pos = open
			return nil, p.errorf("unclosed '['")
		default:
			unit, err := p.parseUnit()
			if err != nil {
				return nil, err
			}
			if inner, ok := unit.(*Series); ok {
				s.Items = append(s.Items, inner.Items...)
			} else {
				s.Items = append(s.Items, unit)
			}
		}
	}
}

func (p *parser) parseParallel() (*Parallel, error) {
	open := p.pos
	p.pos++ // '('
	par := &Parallel{}
	for {
		p.skipSpace()
		switch p.peek() {
		case ')':
			p.pos++
			if len(par.Items) < 2 {
				p.pos = open
				return nil, p.errorf("parallel group needs at least two members")
			}
			return par, nil
		case 0:
			p.pos = open
			return nil, p.errorf("unclosed '('")
		default:
			unit, err := p.parseUnit()
			if err != nil {
				return nil, err
			}
			par.Items = append(par.Items, unit)
		}
	}
}

func (p *parser) parseUnit() (Node, error) {
	switch p.peek() {
	case '[':
		return p.parseSeries()
	case '(':
		return p.parseParallel()
	default:
		return p.parseElement()
	}
}

func (p *parser) parseElement() (Node, error) {
	def, n := p.reg.MatchPrefix(p.src[p.pos:])
	if def == nil {
		return nil, p.errorf("unknown element")
	}
	p.pos += n
	el := def.New()
	if p.peek() == '{' {
		if err := p.parseBlock(el); err != nil {
			return nil, err
		}
	}
	return &Element{El: el}, nil
}

// parseBlock consumes "{entry, entry, ...}" and applies each entry to the
// element. An entry is either ":label" or "sym=value[f][/lower[/upper]]".
func (p *parser) parseBlock(el *circuit.Element) error {
	open := p.pos
	p.pos++ // '{'
	sawLabel := false
	for {
		p.skipSpace()
		switch p.peek() {
		case '}':
			p.pos++
			return nil
		case 0:
			p.pos = open
			return p.errorf("unclosed '{'")
		case ',':
			p.pos++
		case ':':
			if sawLabel {
				return p.errorf("duplicate label")
			}
			sawLabel = true
			p.pos++
			label := strings.TrimSpace(p.readUntil(",}"))
			if err := el.SetLabel(label); err != nil {
				return p.errorf("%s", err.Error())
			}
		default:
			if err := p.parseEntry(el); err != nil {
				return err
			}
		}
	}
}

func (p *parser) parseEntry(el *circuit.Element) error {
	start := p.pos
	symbol := strings.TrimSpace(p.readUntil("=,}"))
	if p.peek() != '=' {
		p.pos = start
		return p.errorf("parameter entry needs '='")
	}
	p.pos++ // '='

	value, fixed, err := parseValueToken(strings.TrimSpace(p.readUntil("/,}")))
	if err != nil {
		p.pos = start
		return p.errorf("parameter %s: %s", symbol, err.Error())
	}

	hasLimits := false
	var lower, upper float64
	if p.peek() == '/' {
		hasLimits = true
		p.pos++
		lower, err = strconv.ParseFloat(strings.TrimSpace(p.readUntil("/,}")), 64)
		if err != nil {
			p.pos = start
			return p.errorf("parameter %s: bad lower limit", symbol)
		}
		upper = positiveInf
		if p.peek() == '/' {
			p.pos++
			upper, err = strconv.ParseFloat(strings.TrimSpace(p.readUntil(",}")), 64)
			if err != nil {
				p.pos = start
				return p.errorf("parameter %s: bad upper limit", symbol)
			}
		}
	}

	// Limits first so an explicit value outside the definition defaults
	// is accepted when the entry widens them.
	if hasLimits {
		if err := el.SetLimits(symbol, lower, upper); err != nil {
			p.pos = start
			return p.errorf("%s", err.Error())
		}
	}
	if err := el.SetValue(symbol, value); err != nil {
		p.pos = start
		return p.errorf("%s", err.Error())
	}
	if fixed {
		if err := el.SetFixed(symbol, true); err != nil {
			p.pos = start
			return p.errorf("%s", err.Error())
		}
	}
	return nil
}

// readUntil consumes and returns characters up to (not including) the
// first byte found in stops, or the rest of the input.
func (p *parser) readUntil(stops string) string {
	start := p.pos
	for p.pos < len(p.src) && !strings.ContainsRune(stops, rune(p.src[p.pos])) {
		p.pos++
	}
	return p.src[start:p.pos]
}

// parseValueToken parses a numeric value with an optional 'f' suffix
// marking the parameter fixed. A bare "inf" is a value, not a fixed "in".
func parseValueToken(tok string) (float64, bool, error) {
	if tok == "" {
		return 0, false, fmt.Errorf("missing value")
	}
	if v, err := strconv.ParseFloat(tok, 64); err == nil {
		return v, false, nil
	}
	if strings.HasSuffix(tok, "f") {
		if v, err := strconv.ParseFloat(tok[:len(tok)-1], 64); err == nil {
			return v, true, nil
		}
	}
	return 0, false, fmt.Errorf("bad value %q", tok)
}
