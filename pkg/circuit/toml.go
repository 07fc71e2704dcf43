package circuit

import (
	"fmt"
	"math"

	"github.com/BurntSushi/toml"
)

// definitionsFile is the TOML schema for user-supplied element definitions.
//
//	[[elements]]
//	mnemonic = "Zarc"
//	name = "ZARC element"
//
//	[[elements.parameters]]
//	symbol = "R"
//	value = 1000.0
//	lower = 0.0       # optional, defaults to -inf
//	upper = inf       # optional, defaults to +inf
//	fixed = false     # optional
type definitionsFile struct {
	Elements []struct {
		Mnemonic   string `toml:"mnemonic"`
		Name       string `toml:"name"`
		Parameters []struct {
			Symbol string   `toml:"symbol"`
			Value  float64  `toml:"value"`
			Lower  *float64 `toml:"lower"`
			Upper  *float64 `toml:"upper"`
			Fixed  bool     `toml:"fixed"`
		} `toml:"parameters"`
	} `toml:"elements"`
}

// LoadDefinitions reads a TOML element definition file and registers its
// contents, extending the registry with custom element types.
func (r *Registry) LoadDefinitions(path string) error {
	var file definitionsFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	for _, el := range file.Elements {
		def := &Definition{Mnemonic: el.Mnemonic, Name: el.Name}
		for _, p := range el.Parameters {
			param := Parameter{
				Symbol: p.Symbol,
				Value:  p.Value,
				Fixed:  p.Fixed,
				Lower:  math.Inf(-1),
				Upper:  math.Inf(1),
			}
			if p.Lower != nil {
				param.Lower = *p.Lower
			}
			if p.Upper != nil {
				param.Upper = *p.Upper
			}
			def.Defaults = append(def.Defaults, param)
		}
		if err := r.Register(def); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}

	return nil
}
