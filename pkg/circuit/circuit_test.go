package circuit

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestBuiltinRegistry(t *testing.T) {
	reg := Builtin()

	for _, mnemonic := range []string{"R", "C", "L", "La", "Q", "W", "Ws", "Wo", "G", "H", "K"} {
		if _, ok := reg.Lookup(mnemonic); !ok {
			t.Errorf("Lookup(%q) missing builtin element", mnemonic)
		}
	}

	defs := reg.Definitions()
	if len(defs) != 11 {
		t.Fatalf("Definitions() returned %d elements, want 11", len(defs))
	}
	for i := 1; i < len(defs); i++ {
		if defs[i-1].Mnemonic >= defs[i].Mnemonic {
			t.Errorf("Definitions() not sorted: %q before %q", defs[i-1].Mnemonic, defs[i].Mnemonic)
		}
	}
}

func TestMatchPrefix(t *testing.T) {
	reg := Builtin()

	tests := []struct {
		input    string
		mnemonic string
		length   int
	}{
		{"R(C)", "R", 1},
		{"Ws]", "Ws", 2},   // longest match wins over "W"
		{"WsW", "Ws", 2},   // not "W" + "sW"
		{"W{Y=1}", "W", 1}, // "W{" is not a mnemonic
		{"La", "La", 2},
		{"L]", "L", 1},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			def, n := reg.MatchPrefix(tt.input)
			if def == nil {
				t.Fatalf("MatchPrefix(%q) found nothing", tt.input)
			}
			if def.Mnemonic != tt.mnemonic || n != tt.length {
				t.Errorf("MatchPrefix(%q) = %q, %d, want %q, %d",
					tt.input, def.Mnemonic, n, tt.mnemonic, tt.length)
			}
		})
	}

	if def, n := reg.MatchPrefix("xR"); def != nil || n != 0 {
		t.Errorf("MatchPrefix(\"xR\") = %v, %d, want nil, 0", def, n)
	}
}

func TestKramersKronigElement(t *testing.T) {
	reg := Builtin()
	def, ok := reg.Lookup("K")
	if !ok {
		t.Fatal("Lookup(K) missing builtin element")
	}
	e := def.New()
	if _, ok := e.Parameter("R"); !ok {
		t.Error("K is missing its R parameter")
	}
	tau, ok := e.Parameter("tau")
	if !ok {
		t.Fatal("K is missing its tau parameter")
	}
	if tau.Lower != 0 || !math.IsInf(tau.Upper, 1) {
		t.Errorf("tau limits = [%g, %g], want [0, +inf]", tau.Lower, tau.Upper)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	def := &Definition{Mnemonic: "Z", Name: "Test", Defaults: []Parameter{{Symbol: "Z", Value: 1}}}

	if err := reg.Register(def); err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if err := reg.Register(def); err == nil {
		t.Error("Register() should reject a duplicate mnemonic")
	}

	bad := &Definition{Mnemonic: "Y", Defaults: []Parameter{{Symbol: "a"}, {Symbol: "a"}}}
	if err := reg.Register(bad); err == nil {
		t.Error("Register() should reject duplicate parameter symbols")
	}
}

func TestElementValues(t *testing.T) {
	reg := Builtin()
	def, _ := reg.Lookup("R")
	e := def.New()

	if err := e.SetValue("R", 250); err != nil {
		t.Fatalf("SetValue() error: %v", err)
	}
	p, ok := e.Parameter("R")
	if !ok || p.Value != 250 {
		t.Errorf("Parameter(R).Value = %g, want 250", p.Value)
	}

	if err := e.SetValue("R", -1); err == nil {
		t.Error("SetValue() should reject a value below the lower limit")
	}
	if err := e.SetValue("Q", 1); err == nil {
		t.Error("SetValue() should reject an unknown symbol")
	}
}

func TestElementLimitsClampValue(t *testing.T) {
	reg := Builtin()
	def, _ := reg.Lookup("R")
	e := def.New() // default value 1000

	if err := e.SetLimits("R", 0, 100); err != nil {
		t.Fatalf("SetLimits() error: %v", err)
	}
	p, _ := e.Parameter("R")
	if p.Value != 100 {
		t.Errorf("value after narrowing limits = %g, want clamped to 100", p.Value)
	}

	if err := e.SetLimits("R", 10, 5); err == nil {
		t.Error("SetLimits() should reject inverted limits")
	}
}

func TestElementLabels(t *testing.T) {
	reg := Builtin()
	def, _ := reg.Lookup("C")
	e := def.New()

	if got := e.DefaultLabel(3); got != "C_3" {
		t.Errorf("DefaultLabel(3) = %q, want %q", got, "C_3")
	}
	if err := e.SetLabel("dl"); err != nil {
		t.Fatalf("SetLabel() error: %v", err)
	}
	if got := e.DefaultLabel(3); got != "dl" {
		t.Errorf("DefaultLabel(3) with label = %q, want %q", got, "dl")
	}
	if err := e.SetLabel("a{b"); err == nil {
		t.Error("SetLabel() should reject reserved characters")
	}
}

func TestElementClone(t *testing.T) {
	reg := Builtin()
	def, _ := reg.Lookup("Q")
	e := def.New()
	if err := e.SetValue("n", 0.5); err != nil {
		t.Fatal(err)
	}

	c := e.Clone()
	if err := c.SetValue("n", 0.9); err != nil {
		t.Fatal(err)
	}
	p, _ := e.Parameter("n")
	if p.Value != 0.5 {
		t.Errorf("mutating the clone changed the original: n = %g", p.Value)
	}
}

func TestLoadDefinitions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "elements.toml")
	src := `
[[elements]]
mnemonic = "Zarc"
name = "ZARC element"

[[elements.parameters]]
symbol = "R"
value = 1000.0
lower = 0.0

[[elements.parameters]]
symbol = "n"
value = 0.8
lower = 0.0
upper = 1.0
fixed = true
`
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	reg := Builtin()
	if err := reg.LoadDefinitions(path); err != nil {
		t.Fatalf("LoadDefinitions() error: %v", err)
	}

	def, ok := reg.Lookup("Zarc")
	if !ok {
		t.Fatal("Lookup(Zarc) missing loaded element")
	}
	if def.Name != "ZARC element" || len(def.Defaults) != 2 {
		t.Fatalf("loaded definition = %+v", def)
	}
	r := def.Defaults[0]
	if r.Lower != 0 || !math.IsInf(r.Upper, 1) {
		t.Errorf("R limits = [%g, %g], want [0, +inf]", r.Lower, r.Upper)
	}
	if n := def.Defaults[1]; !n.Fixed || n.Upper != 1 {
		t.Errorf("n = %+v, want fixed with upper 1", n)
	}

	// Longest-prefix matching must now prefer the custom mnemonic.
	if d, l := reg.MatchPrefix("ZarcR"); d == nil || d.Mnemonic != "Zarc" || l != 4 {
		t.Errorf("MatchPrefix(ZarcR) = %v, %d, want Zarc, 4", d, l)
	}
}

func TestLoadDefinitionsErrors(t *testing.T) {
	reg := Builtin()
	if err := reg.LoadDefinitions(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("LoadDefinitions() should fail on a missing file")
	}

	path := filepath.Join(t.TempDir(), "dup.toml")
	src := "[[elements]]\nmnemonic = \"R\"\nname = \"clash\"\n"
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
	if err := reg.LoadDefinitions(path); err == nil {
		t.Error("LoadDefinitions() should reject a mnemonic clashing with a builtin")
	}
}
