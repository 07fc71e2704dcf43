// Package circuit defines the equivalent-circuit element domain model.
//
// An Element is a leaf circuit component (resistor, capacitor, Warburg
// impedance, ...) identified by a short mnemonic and carrying named
// parameters. Each parameter has an initial value, a fixed flag, and
// lower/upper fitting limits. Elements are atomic from the point of view
// of the graph and codec packages: they are created from a Definition in
// the registry, attached to a graph node, and handed to the external
// fitting subsystem as value/limit/fixed triples.
package circuit

import (
	"fmt"
	"math"

	"github.com/voltlab/cdckit/pkg/errors"
)

// Parameter is a single named element parameter.
// Lower and Upper are math.Inf(-1)/math.Inf(1) when unbounded.
type Parameter struct {
	Symbol string  // Parameter symbol within the element (e.g., "R", "Y", "n")
	Value  float64 // Initial value used by the fitting subsystem
	Fixed  bool    // When true the fitter must not adjust the value
	Lower  float64 // Lower fitting limit
	Upper  float64 // Upper fitting limit
}

// Definition describes an element type available in a Registry.
// Defaults holds the parameter set a fresh Element starts from.
type Definition struct {
	Mnemonic string      // CDC mnemonic (e.g., "R", "Ws")
	Name     string      // Human-readable name (e.g., "Warburg, finite length (short)")
	Defaults []Parameter // Default parameters in canonical order
}

// New creates an Element from the definition with a copy of the defaults.
func (d *Definition) New() *Element {
	params := make([]Parameter, len(d.Defaults))
	copy(params, d.Defaults)
	return &Element{def: d, params: params}
}

// Element is an instantiated circuit component.
//
// The zero value is not usable - create elements through a Definition
// obtained from a Registry. Element is not safe for concurrent mutation.
type Element struct {
	def    *Definition
	params []Parameter
	label  string
}

// Mnemonic returns the CDC mnemonic of the element's definition.
func (e *Element) Mnemonic() string { return e.def.Mnemonic }

// Name returns the human-readable name of the element's definition.
func (e *Element) Name() string { return e.def.Name }

// Label returns the user-assigned label, or "" if none was set.
func (e *Element) Label() string { return e.label }

// SetLabel assigns a display label, rejecting reserved CDC characters.
func (e *Element) SetLabel(label string) error {
	if err := errors.ValidateLabel(label); err != nil {
		return err
	}
	e.label = label
	return nil
}

// DefaultLabel returns the label used when none was assigned: the mnemonic
// followed by the node id (e.g., "R_0").
func (e *Element) DefaultLabel(id int) string {
	if e.label != "" {
		return e.label
	}
	return fmt.Sprintf("%s_%d", e.def.Mnemonic, id)
}

// Parameters returns a copy of the element's parameters in canonical order.
func (e *Element) Parameters() []Parameter {
	params := make([]Parameter, len(e.params))
	copy(params, e.params)
	return params
}

// Parameter returns the parameter with the given symbol.
func (e *Element) Parameter(symbol string) (Parameter, bool) {
	for _, p := range e.params {
		if p.Symbol == symbol {
			return p, true
		}
	}
	return Parameter{}, false
}

// SetValue updates a parameter's initial value.
// The value must lie within the parameter's limits.
func (e *Element) SetValue(symbol string, value float64) error {
	p := e.lookup(symbol)
	if p == nil {
		return errors.New(errors.ErrCodeInvalidElement, "%s has no parameter %q", e.def.Mnemonic, symbol)
	}
	if value < p.Lower || value > p.Upper {
		return errors.New(errors.ErrCodeInvalidElement,
			"%s.%s = %g outside limits [%g, %g]", e.def.Mnemonic, symbol, value, p.Lower, p.Upper)
	}
	p.Value = value
	return nil
}

// SetFixed updates a parameter's fixed flag.
func (e *Element) SetFixed(symbol string, fixed bool) error {
	p := e.lookup(symbol)
	if p == nil {
		return errors.New(errors.ErrCodeInvalidElement, "%s has no parameter %q", e.def.Mnemonic, symbol)
	}
	p.Fixed = fixed
	return nil
}

// SetLimits updates a parameter's fitting limits.
// Use math.Inf for unbounded limits. The current value is clamped into
// the new range.
func (e *Element) SetLimits(symbol string, lower, upper float64) error {
	p := e.lookup(symbol)
	if p == nil {
		return errors.New(errors.ErrCodeInvalidElement, "%s has no parameter %q", e.def.Mnemonic, symbol)
	}
	if lower > upper {
		return errors.New(errors.ErrCodeInvalidElement,
			"%s.%s limits inverted: %g > %g", e.def.Mnemonic, symbol, lower, upper)
	}
	p.Lower = lower
	p.Upper = upper
	p.Value = math.Min(math.Max(p.Value, lower), upper)
	return nil
}

// Clone returns a deep copy of the element.
func (e *Element) Clone() *Element {
	params := make([]Parameter, len(e.params))
	copy(params, e.params)
	return &Element{def: e.def, params: params, label: e.label}
}

func (e *Element) lookup(symbol string) *Parameter {
	for i := range e.params {
		if e.params[i].Symbol == symbol {
			return &e.params[i]
		}
	}
	return nil
}
