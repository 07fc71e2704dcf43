// Package cdc implements the circuit description code text format.
//
// CDC is a nested-bracket encoding of series/parallel equivalent
// circuits: square brackets enclose a series combination, parentheses a
// parallel one, and element mnemonics name leaf components. The extended
// form attaches a brace-delimited parameter block to an element:
//
//	[R{R=100f}(RW{Y=0.001/0/1, :diff})C]
//
// Parse builds a Circuit tree from text; the tree serializes back through
// CDC and Extended. The codec package produces and consumes the same
// trees when converting to and from the editable graph.
package cdc

import (
	"math"
	"strconv"
	"strings"

	"github.com/voltlab/cdckit/pkg/circuit"
)

// Node is one unit of a circuit tree: a Series, a Parallel, or an Element.
type Node interface {
	// units returns how many leaf elements the subtree contains.
	units() int
	appendText(b *strings.Builder, extended bool)
}

// Circuit is a parsed or generated circuit description.
// Root is never nil and holds at least one unit.
type Circuit struct {
	Root *Series
}

// Series is an ordered series combination. Canonical trees never nest a
// Series directly inside another Series; the parser and the encoder both
// splice such nestings into the parent.
type Series struct {
	Items []Node
}

// Parallel is a parallel combination of at least two units.
type Parallel struct {
	Items []Node
}

// Element is a leaf node wrapping an instantiated circuit element.
type Element struct {
	El *circuit.Element
}

func (s *Series) units() int {
	n := 0
	for _, it := range s.Items {
		n += it.units()
	}
	return n
}

func (p *Parallel) units() int {
	n := 0
	for _, it := range p.Items {
		n += it.units()
	}
	return n
}

func (e *Element) units() int { return 1 }

func (s *Series) appendText(b *strings.Builder, extended bool) {
	b.WriteByte('[')
	for _, it := range s.Items {
		it.appendText(b, extended)
	}
	b.WriteByte(']')
}

func (p *Parallel) appendText(b *strings.Builder, extended bool) {
	b.WriteByte('(')
	for _, it := range p.Items {
		it.appendText(b, extended)
	}
	b.WriteByte(')')
}

func (e *Element) appendText(b *strings.Builder, extended bool) {
	b.WriteString(FormatElement(e.El, extended))
}

// CDC returns the canonical basic form: mnemonics and brackets only.
func (c *Circuit) CDC() string {
	var b strings.Builder
	c.Root.appendText(&b, false)
	return b.String()
}

// Extended returns the canonical extended form with parameter blocks.
func (c *Circuit) Extended() string {
	var b strings.Builder
	c.Root.appendText(&b, true)
	return b.String()
}

// Tokens returns the circuit as a flat token list: one entry per bracket
// and one per element mnemonic, in reading order. This is the form shown
// in token-stack displays.
func (c *Circuit) Tokens() []string {
	var out []string
	var walk func(n Node)
	walk = func(n Node) {
		switch v := n.(type) {
		case *Series:
			out = append(out, "[")
			for _, it := range v.Items {
				walk(it)
			}
			out = append(out, "]")
		case *Parallel:
			out = append(out, "(")
			for _, it := range v.Items {
				walk(it)
			}
			out = append(out, ")")
		case *Element:
			out = append(out, v.El.Mnemonic())
		}
	}
	walk(c.Root)
	return out
}

// Elements returns the circuit's elements in reading order (depth-first,
// left to right).
func (c *Circuit) Elements() []*circuit.Element {
	var out []*circuit.Element
	var walk func(n Node)
	walk = func(n Node) {
		switch v := n.(type) {
		case *Series:
			for _, it := range v.Items {
				walk(it)
			}
		case *Parallel:
			for _, it := range v.Items {
				walk(it)
			}
		case *Element:
			out = append(out, v.El)
		}
	}
	walk(c.Root)
	return out
}

// FitParameter is one entry of the flat parameter vector handed to the
// fitting subsystem.
type FitParameter struct {
	Element string // element label, or mnemonic_index when unlabeled
	circuit.Parameter
}

// FitVector flattens every element parameter into a single ordered slice,
// the hand-off format expected by parameter fitting.
func (c *Circuit) FitVector() []FitParameter {
	var out []FitParameter
	for i, el := range c.Elements() {
		name := el.Label()
		if name == "" {
			name = el.DefaultLabel(i)
		}
		for _, p := range el.Parameters() {
			out = append(out, FitParameter{Element: name, Parameter: p})
		}
	}
	return out
}

// FormatElement renders a single element as CDC text. The basic form is
// just the mnemonic; the extended form appends the parameter block with
// values, fixed flags, finite limits, and the label when one is set.
func FormatElement(e *circuit.Element, extended bool) string {
	if !extended {
		return e.Mnemonic()
	}

	params := e.Parameters()
	if len(params) == 0 && e.Label() == "" {
		return e.Mnemonic()
	}

	var b strings.Builder
	b.WriteString(e.Mnemonic())
	b.WriteByte('{')
	for i, p := range params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Symbol)
		b.WriteByte('=')
		b.WriteString(formatValue(p.Value))
		if p.Fixed {
			b.WriteByte('f')
		}
		appendLimits(&b, p.Lower, p.Upper)
	}
	if label := e.Label(); label != "" {
		if len(params) > 0 {
			b.WriteString(", ")
		}
		b.WriteByte(':')
		b.WriteString(label)
	}
	b.WriteByte('}')
	return b.String()
}

// appendLimits writes "/lower" or "/lower/upper", omitting the suffix
// entirely for fully unbounded parameters.
func appendLimits(b *strings.Builder, lower, upper float64) {
	if math.IsInf(lower, -1) && math.IsInf(upper, 1) {
		return
	}
	b.WriteByte('/')
	b.WriteString(formatValue(lower))
	if !math.IsInf(upper, 1) {
		b.WriteByte('/')
		b.WriteString(formatValue(upper))
	}
}

func formatValue(v float64) string {
	if math.IsInf(v, 1) {
		return "inf"
	}
	if math.IsInf(v, -1) {
		return "-inf"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
