// Package codec converts between the editable circuit graph and the
// circuit description code tree.
//
// Encode walks the graph from the source terminal and reconstructs the
// series/parallel structure, rejecting topologies that have no CDC
// representation (bridges, shorts, dangling nodes). Generate goes the
// other way: it materializes a parsed circuit tree as a fresh graph with
// grid positions for display. Validate bundles encoding with a reparse
// cross-check into a single status report for interactive use.
package codec

import (
	goerrors "errors"
	"fmt"

	"github.com/voltlab/cdckit/pkg/cdc"
	"github.com/voltlab/cdckit/pkg/graph"
)

var (
	// ErrShortCircuit marks a zero-impedance path: a direct source-to-sink
	// link, or a parallel branch containing no element.
	ErrShortCircuit = goerrors.New("short circuit")

	// ErrMissingConnection marks a terminal or element with an unconnected
	// attachment point.
	ErrMissingConnection = goerrors.New("missing connection")

	// ErrDisconnectedNode marks a node unreachable from the source.
	ErrDisconnectedNode = goerrors.New("disconnected node")

	// ErrJunctionFanInOut marks a junction that does not actually fan:
	// fewer than one link on either side, or one-in-one-out.
	ErrJunctionFanInOut = goerrors.New("insufficient junction fan-in/out")

	// ErrUnresolvedMerge marks a topology whose branches do not reconverge
	// at a single node, such as a bridge. These circuits have no
	// series/parallel description.
	ErrUnresolvedMerge = goerrors.New("unresolved merge")
)

// ValidationError reports why a graph cannot be encoded, pointing at the
// node where the walk gave up.
type ValidationError struct {
	Err     error        // one of the sentinel errors above
	Node    graph.NodeID // offending node
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s (node %d)", e.Message, e.Node)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Encode converts the graph into a circuit tree. The graph is not
// modified; Encode is safe to call after every mutation.
//
// Branch order follows link creation order, so the same graph always
// encodes to the same text.
func Encode(g *graph.Graph) (*cdc.Circuit, error) {
	if err := precheck(g); err != nil {
		return nil, err
	}

	w := &walker{g: g, pending: make(map[graph.NodeID]int)}
	items, stop, err := w.walk(graph.SourceID)
	if err != nil {
		return nil, err
	}
	if stop != graph.SinkID {
		return nil, &ValidationError{
			Err:     ErrUnresolvedMerge,
			Node:    stop,
			Message: "branches do not reconverge before the sink",
		}
	}
	if w.pending[graph.SinkID] != g.Sink().InDegree() {
		return nil, &ValidationError{
			Err:     ErrUnresolvedMerge,
			Node:    graph.SinkID,
			Message: "not every path reaches the sink through the walked structure",
		}
	}

	// Everything the walk never arrived at hangs off nothing.
	for _, n := range g.Nodes() {
		if n.Kind() == graph.KindSource {
			continue
		}
		if w.pending[n.ID()] == 0 {
			return nil, &ValidationError{
				Err:     ErrDisconnectedNode,
				Node:    n.ID(),
				Message: "node is not reachable from the source",
			}
		}
	}

	return &cdc.Circuit{Root: &cdc.Series{Items: items}}, nil
}

// EncodeCDC returns the canonical basic CDC text for the graph.
func EncodeCDC(g *graph.Graph) (string, error) {
	c, err := Encode(g)
	if err != nil {
		return "", err
	}
	return c.CDC(), nil
}

// precheck validates per-node degrees before the structural walk so the
// walker can assume every attachment point is wired.
func precheck(g *graph.Graph) error {
	if g.HasLink(graph.SourceID, graph.SinkID) {
		return &ValidationError{
			Err:     ErrShortCircuit,
			Node:    graph.SourceID,
			Message: "source is wired directly to the sink",
		}
	}
	for _, n := range g.Nodes() {
		switch n.Kind() {
		case graph.KindSource:
			if n.OutDegree() == 0 {
				return &ValidationError{Err: ErrMissingConnection, Node: n.ID(), Message: "source has no outgoing link"}
			}
		case graph.KindSink:
			if n.InDegree() == 0 {
				return &ValidationError{Err: ErrMissingConnection, Node: n.ID(), Message: "sink has no incoming link"}
			}
		case graph.KindElement:
			if n.InDegree() == 0 || n.OutDegree() == 0 {
				return &ValidationError{
					Err:     ErrMissingConnection,
					Node:    n.ID(),
					Message: fmt.Sprintf("element %s has an unconnected attachment point", n.Label()),
				}
			}
		case graph.KindJunction:
			if n.InDegree() == 0 || n.OutDegree() == 0 || n.InDegree()+n.OutDegree() < 3 {
				return &ValidationError{
					Err:     ErrJunctionFanInOut,
					Node:    n.ID(),
					Message: "junction must fan out or fan in",
				}
			}
		}
	}
	return nil
}

// walker tracks how many incoming links of each node have been traversed.
// A multi-input node is consumed only once all inputs arrived; until then
// walks stop in front of it.
type walker struct {
	g       *graph.Graph
	pending map[graph.NodeID]int
}

func (w *walker) arrive(id graph.NodeID) { w.pending[id]++ }

// walk consumes nodes along the outputs of cur until it reaches the sink
// or a merge node it did not open. cur itself must already be consumed.
func (w *walker) walk(cur graph.NodeID) ([]cdc.Node, graph.NodeID, error) {
	var items []cdc.Node
	for {
		outs := w.g.OutputNeighbors(cur)
		if len(outs) == 1 {
			next := outs[0]
			w.arrive(next)
			node, _ := w.g.Node(next)
			if node.Kind() == graph.KindSink || node.InDegree() > 1 {
				return items, next, nil
			}
			if node.Kind() == graph.KindElement {
				items = append(items, &cdc.Element{El: node.Element()})
			}
			cur = next
			continue
		}

		// Fan-out: open a parallel group and walk every branch.
		group, stop, err := w.parallel(outs)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, group)

		node, _ := w.g.Node(stop)
		if w.pending[stop] < node.InDegree() {
			// The merge waits for arrivals from an enclosing level.
			return items, stop, nil
		}
		if node.Kind() == graph.KindSink {
			return items, stop, nil
		}
		if node.Kind() == graph.KindElement {
			items = append(items, &cdc.Element{El: node.Element()})
		}
		cur = stop
	}
}

// parallel walks each branch head and requires all branches to stop at the
// same merge node.
func (w *walker) parallel(heads []graph.NodeID) (*cdc.Parallel, graph.NodeID, error) {
	type branch struct {
		items []cdc.Node
		stop  graph.NodeID
	}
	branches := make([]branch, 0, len(heads))
	for _, head := range heads {
		items, stop, err := w.branch(head)
		if err != nil {
			return nil, 0, err
		}
		branches = append(branches, branch{items: items, stop: stop})
	}

	// A disagreeing stop means a bridge; check that before complaining
	// about empty branches so bridges are not misreported as shorts.
	merge := branches[0].stop
	for _, b := range branches[1:] {
		if b.stop != merge {
			return nil, 0, &ValidationError{
				Err:     ErrUnresolvedMerge,
				Node:    b.stop,
				Message: "parallel branches reconverge at different nodes",
			}
		}
	}

	group := &cdc.Parallel{}
	for i, b := range branches {
		switch len(b.items) {
		case 0:
			return nil, 0, &ValidationError{
				Err:     ErrShortCircuit,
				Node:    heads[i],
				Message: "parallel branch carries no element",
			}
		case 1:
			group.Items = append(group.Items, b.items[0])
		default:
			group.Items = append(group.Items, &cdc.Series{Items: b.items})
		}
	}
	return group, merge, nil
}

// branch consumes the branch head, then walks until a stop node.
func (w *walker) branch(head graph.NodeID) ([]cdc.Node, graph.NodeID, error) {
	w.arrive(head)
	node, _ := w.g.Node(head)
	if node.Kind() == graph.KindSink || node.InDegree() > 1 {
		return nil, head, nil
	}

	var items []cdc.Node
	if node.Kind() == graph.KindElement {
		items = append(items, &cdc.Element{El: node.Element()})
	}
	more, stop, err := w.walk(head)
	if err != nil {
		return nil, 0, err
	}
	return append(items, more...), stop, nil
}
