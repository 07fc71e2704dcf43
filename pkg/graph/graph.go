// Package graph implements the mutable circuit graph edited interactively
// and serialized to circuit description code (CDC).
//
// A Graph owns a fixed pair of terminal nodes (the source and sink
// electrodes), plus element and junction nodes created by the user or by
// the CDC decoder. Directed links connect one node's output attachment
// point to another node's input attachment point. The graph itself only
// enforces local mutation invariants (no duplicate links, no links into
// the source or out of the sink, terminals cannot be deleted); whether the
// topology is a valid series/parallel circuit is decided by the codec
// package's encoder.
package graph

import (
	"errors"
	"slices"

	"github.com/voltlab/cdckit/pkg/circuit"
)

var (
	// ErrUnknownNode is returned when a node id does not exist in the graph.
	ErrUnknownNode = errors.New("unknown node")

	// ErrUnknownLink is returned when a link id does not exist in the graph.
	ErrUnknownLink = errors.New("unknown link")

	// ErrDuplicateLink is returned by [Graph.Connect] when a link with the
	// same ordered endpoint pair already exists.
	ErrDuplicateLink = errors.New("duplicate link")

	// ErrInvalidEndpoint is returned by [Graph.Connect] when the link would
	// leave the sink terminal, enter the source terminal, or form a self-loop.
	ErrInvalidEndpoint = errors.New("invalid link endpoint")

	// ErrProtectedNode is returned by [Graph.Delete] for the two terminal
	// nodes, which live for the whole editing session.
	ErrProtectedNode = errors.New("terminal nodes cannot be deleted")

	// ErrNilElement is returned by [Graph.AddElement] when no element is given.
	ErrNilElement = errors.New("element must not be nil")
)

// NodeID identifies a node. Element nodes get non-negative ids assigned in
// strictly increasing order; junction nodes get ids ≤ -2 in strictly
// decreasing order; the terminals hold the two reserved sentinel ids.
// The id is an opaque stable key for link bookkeeping - node behavior is
// decided by [Kind], never by the id's sign or range.
type NodeID int

// LinkID identifies a directed link.
type LinkID int

// Reserved terminal ids. Junction allocation starts below SinkID so the
// sentinels stay disjoint from both allocator ranges.
const (
	SourceID NodeID = -1
	SinkID   NodeID = -2

	firstJunctionID NodeID = -3
)

// Kind discriminates node behavior.
type Kind int

const (
	// KindSource is the fixed input terminal (working electrode).
	KindSource Kind = iota
	// KindSink is the fixed output terminal (counter electrode).
	KindSink
	// KindElement is a node carrying a circuit element.
	KindElement
	// KindJunction is a zero-impedance pass-through node used to fan links
	// out or in where no circuit element exists.
	KindJunction
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindSource:
		return "source"
	case KindSink:
		return "sink"
	case KindElement:
		return "element"
	case KindJunction:
		return "junction"
	default:
		return "unknown"
	}
}

// Link is a directed edge between one output attachment point and one
// input attachment point.
type Link struct {
	ID   LinkID
	From NodeID
	To   NodeID
}

// Node is a vertex of the circuit graph. Nodes are created through the
// Graph's Add* methods and must not be constructed directly.
type Node struct {
	id   NodeID
	kind Kind
	elem *circuit.Element
	ins  []LinkID // incoming links in creation order
	outs []LinkID // outgoing links in creation order
}

// ID returns the node's stable id.
func (n *Node) ID() NodeID { return n.id }

// Kind returns the node's kind.
func (n *Node) Kind() Kind { return n.kind }

// Element returns the element payload, or nil for terminals and junctions.
func (n *Node) Element() *circuit.Element { return n.elem }

// Inputs returns the ids of incoming links in creation order.
func (n *Node) Inputs() []LinkID { return slices.Clone(n.ins) }

// Outputs returns the ids of outgoing links in creation order.
func (n *Node) Outputs() []LinkID { return slices.Clone(n.outs) }

// InDegree returns the number of incoming links.
func (n *Node) InDegree() int { return len(n.ins) }

// OutDegree returns the number of outgoing links.
func (n *Node) OutDegree() int { return len(n.outs) }

// IsTerminal reports whether the node is the source or sink terminal.
func (n *Node) IsTerminal() bool { return n.kind == KindSource || n.kind == KindSink }

// Label returns the node's display label: the element label (or its
// default), "WE"/"CE" for the terminals, and "" for junctions.
func (n *Node) Label() string {
	switch n.kind {
	case KindSource:
		return "WE"
	case KindSink:
		return "CE"
	case KindElement:
		return n.elem.DefaultLabel(int(n.id))
	default:
		return ""
	}
}

// Graph is the mutable circuit graph.
//
// The zero value is not usable - use New. Graph is not safe for concurrent
// use; it is owned and mutated by a single goroutine, typically the UI
// event loop.
type Graph struct {
	nodes map[NodeID]*Node
	links map[LinkID]Link
	order []LinkID            // link creation order, drives deterministic encoding
	pairs map[[2]NodeID]LinkID

	nextElement  NodeID
	nextJunction NodeID
	nextLink     LinkID
	revision     uint64
}

// New creates a graph containing only the two terminal nodes.
func New() *Graph {
	g := &Graph{
		nodes: make(map[NodeID]*Node),
		links: make(map[LinkID]Link),
		pairs: make(map[[2]NodeID]LinkID),
	}
	g.reset()
	return g
}

func (g *Graph) reset() {
	clear(g.nodes)
	clear(g.links)
	clear(g.pairs)
	g.order = g.order[:0]
	g.nodes[SourceID] = &Node{id: SourceID, kind: KindSource}
	g.nodes[SinkID] = &Node{id: SinkID, kind: KindSink}
	g.nextElement = 0
	g.nextJunction = firstJunctionID
	g.nextLink = 0
}

// Clear removes every non-terminal node and every link, and resets the id
// allocators. This is the only operation that reuses ids.
func (g *Graph) Clear() {
	g.reset()
	g.revision++
}

// Revision returns a counter incremented by every mutation. Cached CDC
// text or validation results become stale whenever the revision changes.
func (g *Graph) Revision() uint64 { return g.revision }

// Source returns the source terminal node.
func (g *Graph) Source() *Node { return g.nodes[SourceID] }

// Sink returns the sink terminal node.
func (g *Graph) Sink() *Node { return g.nodes[SinkID] }

// Node returns the node with the given id and true, or nil and false.
func (g *Graph) Node(id NodeID) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes sorted by ascending id.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}
	slices.SortFunc(nodes, func(a, b *Node) int { return int(a.id - b.id) })
	return nodes
}

// Links returns all links in creation order.
func (g *Graph) Links() []Link {
	links := make([]Link, 0, len(g.order))
	for _, id := range g.order {
		links = append(links, g.links[id])
	}
	return links
}

// Link returns the link with the given id and true, or a zero Link and false.
func (g *Graph) Link(id LinkID) (Link, bool) {
	l, ok := g.links[id]
	return l, ok
}

// HasLink reports whether a link from → to exists.
func (g *Graph) HasLink(from, to NodeID) bool {
	_, ok := g.pairs[[2]NodeID{from, to}]
	return ok
}

// NodeCount returns the number of nodes, terminals included.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// LinkCount returns the number of links.
func (g *Graph) LinkCount() int { return len(g.links) }

// AddElement creates a node carrying the given element and allocates the
// next non-negative id. The graph takes ownership of the element.
func (g *Graph) AddElement(e *circuit.Element) (*Node, error) {
	if e == nil {
		return nil, ErrNilElement
	}
	n := &Node{id: g.nextElement, kind: KindElement, elem: e}
	g.nextElement++
	g.nodes[n.id] = n
	g.revision++
	return n, nil
}

// AddJunction creates a zero-impedance junction node and allocates the
// next id below the terminal sentinels.
func (g *Graph) AddJunction() *Node {
	n := &Node{id: g.nextJunction, kind: KindJunction}
	g.nextJunction--
	g.nodes[n.id] = n
	g.revision++
	return n
}

// Connect creates a directed link from → to.
//
// Returns ErrUnknownNode if either endpoint does not exist,
// ErrInvalidEndpoint if the link would leave the sink, enter the source,
// or form a self-loop, and ErrDuplicateLink if the ordered pair already
// exists. On error the graph is unchanged.
func (g *Graph) Connect(from, to NodeID) (Link, error) {
	src, ok := g.nodes[from]
	if !ok {
		return Link{}, ErrUnknownNode
	}
	dst, ok := g.nodes[to]
	if !ok {
		return Link{}, ErrUnknownNode
	}
	if from == to || src.kind == KindSink || dst.kind == KindSource {
		return Link{}, ErrInvalidEndpoint
	}
	pair := [2]NodeID{from, to}
	if _, exists := g.pairs[pair]; exists {
		return Link{}, ErrDuplicateLink
	}

	l := Link{ID: g.nextLink, From: from, To: to}
	g.nextLink++
	g.links[l.ID] = l
	g.order = append(g.order, l.ID)
	g.pairs[pair] = l.ID
	src.outs = append(src.outs, l.ID)
	dst.ins = append(dst.ins, l.ID)
	g.revision++
	return l, nil
}

// Disconnect removes the link with the given id from both endpoints.
func (g *Graph) Disconnect(id LinkID) error {
	l, ok := g.links[id]
	if !ok {
		return ErrUnknownLink
	}
	g.removeLink(l)
	g.revision++
	return nil
}

// Delete removes a node after removing all of its incident links.
// Links are not re-routed: deleting a junction leaves its former
// neighbors disconnected until the user reconnects them.
//
// Returns ErrProtectedNode for the terminals and ErrUnknownNode when the
// id does not exist. On error the graph is unchanged.
func (g *Graph) Delete(id NodeID) error {
	n, ok := g.nodes[id]
	if !ok {
		return ErrUnknownNode
	}
	if n.IsTerminal() {
		return ErrProtectedNode
	}

	for _, lid := range slices.Clone(n.ins) {
		g.removeLink(g.links[lid])
	}
	for _, lid := range slices.Clone(n.outs) {
		g.removeLink(g.links[lid])
	}
	delete(g.nodes, id)
	g.revision++
	return nil
}

// OutputNeighbors returns the target node ids of the node's outgoing
// links in link creation order. This order drives deterministic branch
// emission in the encoder.
func (g *Graph) OutputNeighbors(id NodeID) []NodeID {
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	out := make([]NodeID, 0, len(n.outs))
	for _, lid := range n.outs {
		out = append(out, g.links[lid].To)
	}
	return out
}

// InputNeighbors returns the origin node ids of the node's incoming links
// in link creation order.
func (g *Graph) InputNeighbors(id NodeID) []NodeID {
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	in := make([]NodeID, 0, len(n.ins))
	for _, lid := range n.ins {
		in = append(in, g.links[lid].From)
	}
	return in
}

func (g *Graph) removeLink(l Link) {
	delete(g.links, l.ID)
	delete(g.pairs, [2]NodeID{l.From, l.To})
	g.order = slices.DeleteFunc(g.order, func(id LinkID) bool { return id == l.ID })
	if src, ok := g.nodes[l.From]; ok {
		src.outs = slices.DeleteFunc(src.outs, func(id LinkID) bool { return id == l.ID })
	}
	if dst, ok := g.nodes[l.To]; ok {
		dst.ins = slices.DeleteFunc(dst.ins, func(id LinkID) bool { return id == l.ID })
	}
}
