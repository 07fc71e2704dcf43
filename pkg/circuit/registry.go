package circuit

import (
	"math"
	"slices"
	"strings"

	"github.com/voltlab/cdckit/pkg/errors"
)

// Registry holds the element definitions known to the CDC grammar.
//
// Mnemonic lookup uses longest-prefix matching so that multi-letter
// mnemonics ("Ws", "La") are never misread as a sequence of shorter ones.
// Registry is not safe for concurrent mutation; register all definitions
// before sharing it.
type Registry struct {
	byMnemonic map[string]*Definition
	maxLen     int
}

// NewRegistry creates an empty registry.
// Most callers want [Builtin] instead.
func NewRegistry() *Registry {
	return &Registry{byMnemonic: make(map[string]*Definition)}
}

// Register adds a definition to the registry.
// The mnemonic must be valid and not already registered, and every
// parameter needs a distinct non-empty symbol.
func (r *Registry) Register(def *Definition) error {
	if err := errors.ValidateMnemonic(def.Mnemonic); err != nil {
		return err
	}
	if _, exists := r.byMnemonic[def.Mnemonic]; exists {
		return errors.New(errors.ErrCodeInvalidElement, "duplicate mnemonic: %q", def.Mnemonic)
	}
	seen := make(map[string]bool, len(def.Defaults))
	for _, p := range def.Defaults {
		if p.Symbol == "" {
			return errors.New(errors.ErrCodeInvalidElement, "%s: parameter symbol cannot be empty", def.Mnemonic)
		}
		if seen[p.Symbol] {
			return errors.New(errors.ErrCodeInvalidElement, "%s: duplicate parameter symbol %q", def.Mnemonic, p.Symbol)
		}
		seen[p.Symbol] = true
	}
	r.byMnemonic[def.Mnemonic] = def
	if len(def.Mnemonic) > r.maxLen {
		r.maxLen = len(def.Mnemonic)
	}
	return nil
}

// Lookup returns the definition registered under the exact mnemonic.
func (r *Registry) Lookup(mnemonic string) (*Definition, bool) {
	def, ok := r.byMnemonic[mnemonic]
	return def, ok
}

// MatchPrefix returns the registered definition matching the longest
// prefix of s, and the length of that prefix. Returns nil, 0 when no
// mnemonic matches.
func (r *Registry) MatchPrefix(s string) (*Definition, int) {
	max := r.maxLen
	if len(s) < max {
		max = len(s)
	}
	for n := max; n > 0; n-- {
		if def, ok := r.byMnemonic[s[:n]]; ok {
			return def, n
		}
	}
	return nil, 0
}

// Definitions returns all definitions sorted by mnemonic.
func (r *Registry) Definitions() []*Definition {
	defs := make([]*Definition, 0, len(r.byMnemonic))
	for _, def := range r.byMnemonic {
		defs = append(defs, def)
	}
	slices.SortFunc(defs, func(a, b *Definition) int {
		return strings.Compare(a.Mnemonic, b.Mnemonic)
	})
	return defs
}

// Builtin returns a registry populated with the standard impedance
// spectroscopy elements. Parameter defaults and limits follow common
// equivalent-circuit fitting conventions; unbounded limits are ±Inf.
func Builtin() *Registry {
	inf := math.Inf(1)
	r := NewRegistry()
	builtins := []*Definition{
		{
			Mnemonic: "R",
			Name:     "Resistor",
			Defaults: []Parameter{{Symbol: "R", Value: 1e3, Lower: 0, Upper: inf}},
		},
		{
			Mnemonic: "C",
			Name:     "Capacitor",
			Defaults: []Parameter{{Symbol: "C", Value: 1e-6, Lower: 0, Upper: inf}},
		},
		{
			Mnemonic: "L",
			Name:     "Inductor",
			Defaults: []Parameter{{Symbol: "L", Value: 1e-3, Lower: 0, Upper: inf}},
		},
		{
			Mnemonic: "La",
			Name:     "Modified inductor",
			Defaults: []Parameter{
				{Symbol: "L", Value: 1e-3, Lower: 0, Upper: inf},
				{Symbol: "n", Value: 0.95, Lower: 0, Upper: 1},
			},
		},
		{
			Mnemonic: "Q",
			Name:     "Constant phase element",
			Defaults: []Parameter{
				{Symbol: "Y", Value: 1e-5, Lower: 0, Upper: inf},
				{Symbol: "n", Value: 0.8, Lower: 0, Upper: 1},
			},
		},
		{
			Mnemonic: "W",
			Name:     "Warburg, semi-infinite",
			Defaults: []Parameter{{Symbol: "Y", Value: 1e-3, Lower: 0, Upper: inf}},
		},
		{
			Mnemonic: "Ws",
			Name:     "Warburg, finite length (short)",
			Defaults: []Parameter{
				{Symbol: "Y", Value: 1e-3, Lower: 0, Upper: inf},
				{Symbol: "B", Value: 1, Lower: 0, Upper: inf},
			},
		},
		{
			Mnemonic: "Wo",
			Name:     "Warburg, finite length (open)",
			Defaults: []Parameter{
				{Symbol: "Y", Value: 1e-3, Lower: 0, Upper: inf},
				{Symbol: "B", Value: 1, Lower: 0, Upper: inf},
			},
		},
		{
			Mnemonic: "G",
			Name:     "Gerischer",
			Defaults: []Parameter{
				{Symbol: "Y", Value: 1e-3, Lower: 0, Upper: inf},
				{Symbol: "k", Value: 1, Lower: 0, Upper: inf},
			},
		},
		{
			Mnemonic: "H",
			Name:     "Havriliak-Negami relaxation",
			Defaults: []Parameter{
				{Symbol: "dC", Value: 1e-6, Lower: 0, Upper: inf},
				{Symbol: "tau", Value: 1, Lower: 0, Upper: inf},
				{Symbol: "a", Value: 0.9, Lower: 0, Upper: 1},
				{Symbol: "b", Value: 0.9, Lower: 0, Upper: 1},
			},
		},
		{
			Mnemonic: "K",
			Name:     "Kramers-Kronig RC pair",
			Defaults: []Parameter{
				{Symbol: "R", Value: 1e3, Lower: 0, Upper: inf},
				{Symbol: "tau", Value: 1e-3, Lower: 0, Upper: inf},
			},
		},
	}
	for _, def := range builtins {
		if err := r.Register(def); err != nil {
			panic(err) // built-in table is malformed
		}
	}
	return r
}
