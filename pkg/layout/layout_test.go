package layout

import (
	"bytes"
	"testing"

	"github.com/voltlab/cdckit/pkg/cdc"
	"github.com/voltlab/cdckit/pkg/circuit"
	"github.com/voltlab/cdckit/pkg/codec"
)

func build(t *testing.T, text string) *Descriptor {
	t.Helper()
	c, err := cdc.Parse(text, circuit.Builtin())
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", text, err)
	}
	gen, err := codec.Generate(c)
	if err != nil {
		t.Fatalf("Generate(%q) failed: %v", text, err)
	}
	return FromGenerated(gen, c.CDC())
}

func TestFromGenerated(t *testing.T) {
	d := build(t, "[R(RC)]")

	if d.CDC != "[R(RC)]" {
		t.Errorf("CDC = %q, want %q", d.CDC, "[R(RC)]")
	}
	if d.Width != 4 || d.Height != 2 {
		t.Errorf("grid = %dx%d, want 4x2", d.Width, d.Height)
	}
	if len(d.Nodes) != 5 {
		t.Fatalf("len(Nodes) = %d, want 5", len(d.Nodes))
	}
	if len(d.Links) != 5 {
		t.Fatalf("len(Links) = %d, want 5", len(d.Links))
	}

	src, ok := d.Source()
	if !ok {
		t.Fatal("descriptor has no source entry")
	}
	if src.Kind != "source" || src.Label != "WE" || src.Col != 0 {
		t.Errorf("source = %+v", src)
	}

	sink, ok := d.Sink()
	if !ok {
		t.Fatal("descriptor has no sink entry")
	}
	if len(sink.Inputs) != 2 {
		t.Errorf("sink inputs = %v, want two", sink.Inputs)
	}

	r0, ok := d.Node(0)
	if !ok {
		t.Fatal("descriptor has no node 0")
	}
	if r0.Mnemonic != "R" || r0.Label != "R_0" || r0.Kind != "element" {
		t.Errorf("node 0 = %+v", r0)
	}
	if len(r0.Outputs) != 2 {
		t.Errorf("node 0 outputs = %v, want two branch heads", r0.Outputs)
	}
}

func TestDescriptorDeterminism(t *testing.T) {
	a, err := build(t, "[(RC)(RC)]").Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	b, err := build(t, "[(RC)(RC)]").Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("same circuit marshaled to different bytes")
	}
}

func TestWriteRead(t *testing.T) {
	d := build(t, "[R([RW]C)]")

	var buf bytes.Buffer
	if err := d.Write(&buf); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	back, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if back.CDC != d.CDC || len(back.Nodes) != len(d.Nodes) || len(back.Links) != len(d.Links) {
		t.Errorf("round trip mismatch: %+v vs %+v", back, d)
	}
}
