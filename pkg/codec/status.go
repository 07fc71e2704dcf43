package codec

import (
	goerrors "errors"
	"fmt"

	"github.com/voltlab/cdckit/pkg/cdc"
	"github.com/voltlab/cdckit/pkg/circuit"
	"github.com/voltlab/cdckit/pkg/graph"
)

// Report is the outcome of validating a graph, in the shape interactive
// surfaces want: a flag, a displayable status line, and the encoded text.
//
// CDC, Extended, and Tokens are filled whenever the encoder produced
// text, even when the cross-check then downgraded the report to invalid,
// so the emitted text stays visible for debugging. They are empty only
// when encoding itself failed.
type Report struct {
	Valid    bool
	Status   string           // "ok", or what is wrong
	CDC      string           // canonical basic text
	Extended string           // canonical extended text
	Tokens   []string         // flat token list
	Circuit  *cdc.Circuit     // encoded tree, nil when invalid
	Problem  *ValidationError // nil when valid

	// NodeFlags marks each node valid or invalid so interactive surfaces
	// can highlight the offending one. When the whole graph is valid every
	// flag is true.
	NodeFlags map[graph.NodeID]bool
}

// Validate encodes the graph and cross-checks the result. It never
// mutates the graph, so calling it after every edit is safe; the same
// graph always produces the same report.
//
// The cross-check reparses the emitted text against the registry and
// compares canonical forms. A mismatch downgrades the report to invalid
// rather than returning wrong text to the caller.
func Validate(g *graph.Graph, reg *circuit.Registry) *Report {
	c, err := Encode(g)
	if err != nil {
		r := &Report{Valid: false, Status: err.Error()}
		var verr *ValidationError
		if goerrors.As(err, &verr) {
			r.Problem = verr
		}
		r.NodeFlags = nodeFlags(g, r.Problem)
		return r
	}

	text := c.CDC()
	if reg != nil {
		reparsed, perr := cdc.Parse(text, reg)
		if perr != nil {
			return &Report{
				Valid:     false,
				Status:    fmt.Sprintf("encoded text does not reparse: %v", perr),
				CDC:       text,
				Extended:  c.Extended(),
				Tokens:    c.Tokens(),
				NodeFlags: nodeFlags(g, nil),
			}
		}
		if reparsed.CDC() != text {
			return &Report{
				Valid:     false,
				Status:    fmt.Sprintf("encoded text is not canonical: %q", text),
				CDC:       text,
				Extended:  c.Extended(),
				Tokens:    c.Tokens(),
				NodeFlags: nodeFlags(g, nil),
			}
		}
	}

	return &Report{
		Valid:     true,
		Status:    "ok",
		CDC:       text,
		Extended:  c.Extended(),
		Tokens:    c.Tokens(),
		Circuit:   c,
		NodeFlags: nodeFlags(g, nil),
	}
}

// nodeFlags marks every node true except the one a validation error
// singled out.
func nodeFlags(g *graph.Graph, problem *ValidationError) map[graph.NodeID]bool {
	flags := make(map[graph.NodeID]bool)
	for _, n := range g.Nodes() {
		flags[n.ID()] = true
	}
	if problem != nil {
		flags[problem.Node] = false
	}
	return flags
}
