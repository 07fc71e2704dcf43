// Package layout flattens a generated circuit graph into a plain
// node-link descriptor for serialization. The descriptor is what the
// HTTP API returns, what gets cached, and what drawing frontends consume;
// it carries no behavior, only json/bson-tagged data.
package layout

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/voltlab/cdckit/pkg/codec"
	"github.com/voltlab/cdckit/pkg/graph"
)

// Node is one graph node with its grid position and neighbor ids.
type Node struct {
	ID       int    `json:"id" bson:"id"`
	Kind     string `json:"kind" bson:"kind"`
	Label    string `json:"label,omitempty" bson:"label,omitempty"`
	Mnemonic string `json:"mnemonic,omitempty" bson:"mnemonic,omitempty"`
	Col      int    `json:"col" bson:"col"`
	Row      int    `json:"row" bson:"row"`
	Inputs   []int  `json:"inputs,omitempty" bson:"inputs,omitempty"`
	Outputs  []int  `json:"outputs,omitempty" bson:"outputs,omitempty"`
}

// Link is one directed connection between two node ids.
type Link struct {
	ID   int `json:"id" bson:"id"`
	From int `json:"from" bson:"from"`
	To   int `json:"to" bson:"to"`
}

// Descriptor is the complete serializable layout of a circuit.
type Descriptor struct {
	CDC    string `json:"cdc" bson:"cdc"`
	Width  int    `json:"width" bson:"width"`
	Height int    `json:"height" bson:"height"`
	Nodes  []Node `json:"nodes" bson:"nodes"`
	Links  []Link `json:"links" bson:"links"`
}

// FromGenerated builds a descriptor from a decoded circuit. Nodes come
// out sorted by id and links in creation order, so the same input always
// serializes to the same bytes.
func FromGenerated(gen *codec.Generated, cdcText string) *Descriptor {
	d := &Descriptor{
		CDC:    cdcText,
		Width:  gen.Width,
		Height: gen.Height,
	}
	for _, n := range gen.Graph.Nodes() {
		node := Node{
			ID:    int(n.ID()),
			Kind:  n.Kind().String(),
			Label: n.Label(),
			Col:   gen.Positions[n.ID()].Col,
			Row:   gen.Positions[n.ID()].Row,
		}
		if el := n.Element(); el != nil {
			node.Mnemonic = el.Mnemonic()
		}
		for _, in := range gen.Graph.InputNeighbors(n.ID()) {
			node.Inputs = append(node.Inputs, int(in))
		}
		for _, out := range gen.Graph.OutputNeighbors(n.ID()) {
			node.Outputs = append(node.Outputs, int(out))
		}
		d.Nodes = append(d.Nodes, node)
	}
	for _, l := range gen.Graph.Links() {
		d.Links = append(d.Links, Link{ID: int(l.ID), From: int(l.From), To: int(l.To)})
	}
	return d
}

// Node returns the descriptor node with the given id.
func (d *Descriptor) Node(id int) (Node, bool) {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Source returns the source terminal entry.
func (d *Descriptor) Source() (Node, bool) { return d.Node(int(graph.SourceID)) }

// Sink returns the sink terminal entry.
func (d *Descriptor) Sink() (Node, bool) { return d.Node(int(graph.SinkID)) }

// Marshal returns the descriptor as indented JSON.
func (d *Descriptor) Marshal() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// Write writes the descriptor as JSON to w.
func (d *Descriptor) Write(w io.Writer) error {
	data, err := d.Marshal()
	if err != nil {
		return fmt.Errorf("marshal layout: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write layout: %w", err)
	}
	return nil
}

// Read parses a JSON descriptor from r.
func Read(r io.Reader) (*Descriptor, error) {
	var d Descriptor
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode layout: %w", err)
	}
	return &d, nil
}
