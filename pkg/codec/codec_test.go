package codec

import (
	"errors"
	"strings"
	"testing"

	"github.com/voltlab/cdckit/pkg/cdc"
	"github.com/voltlab/cdckit/pkg/circuit"
	"github.com/voltlab/cdckit/pkg/graph"
)

var reg = circuit.Builtin()

func mustParse(t *testing.T, text string) *cdc.Circuit {
	t.Helper()
	c, err := cdc.Parse(text, reg)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", text, err)
	}
	return c
}

func mustGenerate(t *testing.T, text string) *Generated {
	t.Helper()
	gen, err := Generate(mustParse(t, text))
	if err != nil {
		t.Fatalf("Generate(%q) failed: %v", text, err)
	}
	return gen
}

func addElement(t *testing.T, g *graph.Graph, mnemonic string) graph.NodeID {
	t.Helper()
	def, ok := reg.Lookup(mnemonic)
	if !ok {
		t.Fatalf("no builtin element %q", mnemonic)
	}
	n, err := g.AddElement(def.New())
	if err != nil {
		t.Fatalf("AddElement failed: %v", err)
	}
	return n.ID()
}

func connect(t *testing.T, g *graph.Graph, from, to graph.NodeID) {
	t.Helper()
	if _, err := g.Connect(from, to); err != nil {
		t.Fatalf("Connect(%d, %d) failed: %v", from, to, err)
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []string{
		"[R]",
		"[RC]",
		"[RLC]",
		"[R(RC)]",
		"[(RC)]",
		"[(RC)L]",
		"[(RC)(RC)]",
		"[R([RW]C)]",
		"[([RC][RW])]",
		"[R(Q[RWs])La]",
		"[(RC)(RC)(RC)]",
	}
	for _, text := range tests {
		t.Run(text, func(t *testing.T) {
			gen := mustGenerate(t, text)
			got, err := EncodeCDC(gen.Graph)
			if err != nil {
				t.Fatalf("EncodeCDC failed: %v", err)
			}
			if got != text {
				t.Errorf("round trip = %q, want %q", got, text)
			}
		})
	}
}

func TestRoundTripFlattensNestedParallel(t *testing.T) {
	// A parallel group nested directly inside another parallel group is
	// the same electrical topology as one flat group, and the graph has
	// no way to tell them apart. Re-encoding yields the flat form.
	gen := mustGenerate(t, "[R(C(RW))]")
	got, err := EncodeCDC(gen.Graph)
	if err != nil {
		t.Fatalf("EncodeCDC failed: %v", err)
	}
	if got != "[R(CRW)]" {
		t.Errorf("EncodeCDC() = %q, want %q", got, "[R(CRW)]")
	}
}

func TestRoundTripExtended(t *testing.T) {
	c := mustParse(t, "[R{R=5f/0/10}(C{:dl}W)]")
	want := c.Extended()

	gen, err := Generate(c)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	back, err := Encode(gen.Graph)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if got := back.Extended(); got != want {
		t.Errorf("extended round trip = %q, want %q", got, want)
	}
}

func TestGeneratePositions(t *testing.T) {
	gen := mustGenerate(t, "[R(RC)]")

	if gen.Width != 4 || gen.Height != 2 {
		t.Errorf("grid = %dx%d, want 4x2", gen.Width, gen.Height)
	}
	want := map[graph.NodeID]Point{
		graph.SourceID: {Col: 0, Row: 0},
		0:              {Col: 1, Row: 0}, // series R
		1:              {Col: 2, Row: 0}, // parallel branch R
		2:              {Col: 2, Row: 1}, // parallel branch C
		graph.SinkID:   {Col: 3, Row: 0},
	}
	for id, p := range want {
		if got := gen.Positions[id]; got != p {
			t.Errorf("position of node %d = %+v, want %+v", id, got, p)
		}
	}
}

func TestGenerateJunctions(t *testing.T) {
	// A parallel group fed by a single node needs no junction.
	gen := mustGenerate(t, "[R(RC)]")
	if n := gen.Graph.NodeCount(); n != 5 {
		t.Errorf("NodeCount() = %d, want 5 (no junction)", n)
	}

	// Adjacent parallel groups are joined through exactly one junction.
	gen = mustGenerate(t, "[(RC)(RC)]")
	if n := gen.Graph.NodeCount(); n != 7 {
		t.Fatalf("NodeCount() = %d, want 7 (one junction)", n)
	}
	j, ok := gen.Graph.Node(-3)
	if !ok || j.Kind() != graph.KindJunction {
		t.Fatal("expected junction node with id -3")
	}
	if j.InDegree() != 2 || j.OutDegree() != 2 {
		t.Errorf("junction degree = %d in, %d out, want 2/2", j.InDegree(), j.OutDegree())
	}
	// Exits of a final parallel group attach straight to the sink.
	if gen.Graph.Sink().InDegree() != 2 {
		t.Errorf("sink in-degree = %d, want 2", gen.Graph.Sink().InDegree())
	}
}

func TestEncodeBranchOrder(t *testing.T) {
	// Branch emission follows link creation order, not element ids.
	g := graph.New()
	r := addElement(t, g, "R")
	c := addElement(t, g, "C")
	connect(t, g, graph.SourceID, c)
	connect(t, g, graph.SourceID, r)
	connect(t, g, c, graph.SinkID)
	connect(t, g, r, graph.SinkID)

	got, err := EncodeCDC(g)
	if err != nil {
		t.Fatalf("EncodeCDC failed: %v", err)
	}
	if got != "[(CR)]" {
		t.Errorf("EncodeCDC() = %q, want %q", got, "[(CR)]")
	}
}

func TestEncodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func(t *testing.T) *graph.Graph
		want  error
	}{
		{
			name:  "empty graph",
			build: func(t *testing.T) *graph.Graph { return graph.New() },
			want:  ErrMissingConnection,
		},
		{
			name: "source wired to sink",
			build: func(t *testing.T) *graph.Graph {
				g := graph.New()
				connect(t, g, graph.SourceID, graph.SinkID)
				return g
			},
			want: ErrShortCircuit,
		},
		{
			name: "dangling element",
			build: func(t *testing.T) *graph.Graph {
				g := graph.New()
				r := addElement(t, g, "R")
				connect(t, g, graph.SourceID, r)
				return g
			},
			want: ErrMissingConnection,
		},
		{
			name: "pass-through junction",
			build: func(t *testing.T) *graph.Graph {
				g := graph.New()
				r := addElement(t, g, "R")
				j := g.AddJunction()
				connect(t, g, graph.SourceID, j.ID())
				connect(t, g, j.ID(), r)
				connect(t, g, r, graph.SinkID)
				return g
			},
			want: ErrJunctionFanInOut,
		},
		{
			name: "wire across a branch",
			build: func(t *testing.T) *graph.Graph {
				g := graph.New()
				a := addElement(t, g, "R")
				m := addElement(t, g, "C")
				connect(t, g, graph.SourceID, a)
				connect(t, g, graph.SourceID, m)
				connect(t, g, a, m)
				connect(t, g, m, graph.SinkID)
				return g
			},
			want: ErrShortCircuit,
		},
		{
			name: "bridge",
			build: func(t *testing.T) *graph.Graph {
				g := graph.New()
				a := addElement(t, g, "R")
				b := addElement(t, g, "R")
				c := addElement(t, g, "R")
				d := addElement(t, g, "R")
				connect(t, g, graph.SourceID, a)
				connect(t, g, graph.SourceID, b)
				connect(t, g, a, c)
				connect(t, g, a, d)
				connect(t, g, b, d)
				connect(t, g, c, graph.SinkID)
				connect(t, g, d, graph.SinkID)
				return g
			},
			want: ErrUnresolvedMerge,
		},
		{
			name: "disconnected island",
			build: func(t *testing.T) *graph.Graph {
				g := graph.New()
				r := addElement(t, g, "R")
				connect(t, g, graph.SourceID, r)
				connect(t, g, r, graph.SinkID)
				e1 := addElement(t, g, "C")
				e2 := addElement(t, g, "C")
				connect(t, g, e1, e2)
				connect(t, g, e2, e1)
				return g
			},
			want: ErrDisconnectedNode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.build(t))
			if !errors.Is(err, tt.want) {
				t.Errorf("Encode() error = %v, want %v", err, tt.want)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("Encode() error type %T, want *ValidationError", err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	gen := mustGenerate(t, "[R(RC)]")

	rep := Validate(gen.Graph, reg)
	if !rep.Valid {
		t.Fatalf("Validate() invalid: %s", rep.Status)
	}
	if rep.CDC != "[R(RC)]" {
		t.Errorf("CDC = %q, want %q", rep.CDC, "[R(RC)]")
	}
	wantTokens := []string{"[", "R", "(", "R", "C", ")", "]"}
	if len(rep.Tokens) != len(wantTokens) {
		t.Fatalf("Tokens = %v, want %v", rep.Tokens, wantTokens)
	}
	for i := range wantTokens {
		if rep.Tokens[i] != wantTokens[i] {
			t.Errorf("Tokens[%d] = %q, want %q", i, rep.Tokens[i], wantTokens[i])
		}
	}

	for id, ok := range rep.NodeFlags {
		if !ok {
			t.Errorf("NodeFlags[%d] = false on a valid graph", id)
		}
	}
	if len(rep.NodeFlags) != len(gen.Graph.Nodes()) {
		t.Errorf("NodeFlags covers %d nodes, graph has %d", len(rep.NodeFlags), len(gen.Graph.Nodes()))
	}

	// Validation is read only: a second run reports the same thing.
	rev := gen.Graph.Revision()
	again := Validate(gen.Graph, reg)
	if gen.Graph.Revision() != rev {
		t.Error("Validate mutated the graph")
	}
	if again.CDC != rep.CDC || again.Valid != rep.Valid {
		t.Error("repeated Validate gave a different report")
	}
}

func TestValidateInvalid(t *testing.T) {
	g := graph.New()
	r := addElement(t, g, "R")
	connect(t, g, graph.SourceID, r)

	rep := Validate(g, reg)
	if rep.Valid {
		t.Fatal("Validate() reported a dangling element as valid")
	}
	if rep.Problem == nil {
		t.Fatal("Problem is nil for an invalid graph")
	}
	if !errors.Is(rep.Problem, ErrMissingConnection) {
		t.Errorf("Problem = %v, want ErrMissingConnection", rep.Problem)
	}
	if rep.Problem.Node != graph.NodeID(r) {
		t.Errorf("Problem.Node = %d, want %d", rep.Problem.Node, r)
	}
	if rep.CDC != "" || rep.Circuit != nil {
		t.Error("encoding failed, yet the report carries encoded output")
	}
	if rep.NodeFlags[rep.Problem.Node] {
		t.Error("offending node not flagged invalid")
	}
	if !rep.NodeFlags[graph.SourceID] {
		t.Error("source should stay flagged valid")
	}
}

func TestValidateReparseMismatch(t *testing.T) {
	// An element the cross-check registry does not know: encoding
	// succeeds, the reparse fails, and the emitted text must still be
	// surfaced for debugging.
	custom := circuit.NewRegistry()
	def := &circuit.Definition{
		Mnemonic: "Zarc",
		Name:     "ZARC element",
		Defaults: []circuit.Parameter{{Symbol: "R", Value: 1}},
	}
	if err := custom.Register(def); err != nil {
		t.Fatal(err)
	}

	g := graph.New()
	n, err := g.AddElement(def.New())
	if err != nil {
		t.Fatal(err)
	}
	connect(t, g, graph.SourceID, n.ID())
	connect(t, g, n.ID(), graph.SinkID)

	rep := Validate(g, reg)
	if rep.Valid {
		t.Fatal("Validate() accepted text the registry cannot reparse")
	}
	if !strings.Contains(rep.Status, "does not reparse") {
		t.Errorf("Status = %q, want a reparse failure", rep.Status)
	}
	if rep.CDC != "[Zarc]" {
		t.Errorf("CDC = %q, want the emitted %q", rep.CDC, "[Zarc]")
	}
	wantTokens := []string{"[", "Zarc", "]"}
	if len(rep.Tokens) != len(wantTokens) {
		t.Fatalf("Tokens = %v, want %v", rep.Tokens, wantTokens)
	}
	for i := range wantTokens {
		if rep.Tokens[i] != wantTokens[i] {
			t.Errorf("Tokens[%d] = %q, want %q", i, rep.Tokens[i], wantTokens[i])
		}
	}
	if rep.Extended == "" {
		t.Error("extended text missing from the invalid report")
	}

	// The same graph validates cleanly against its own registry.
	if ok := Validate(g, custom); !ok.Valid {
		t.Errorf("Validate with the matching registry failed: %s", ok.Status)
	}
}
