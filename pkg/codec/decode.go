package codec

import (
	"github.com/voltlab/cdckit/pkg/cdc"
	"github.com/voltlab/cdckit/pkg/graph"
)

// Point is a grid position: one column per series step, one row per
// parallel branch. The source sits at column 0, the sink in the last
// column, both on row 0.
type Point struct {
	Col int `json:"col" bson:"col"`
	Row int `json:"row" bson:"row"`
}

// Generated is the result of materializing a circuit tree as a graph.
type Generated struct {
	Graph     *graph.Graph
	Positions map[graph.NodeID]Point
	Width     int // number of grid columns
	Height    int // number of grid rows
}

// Generate builds a fresh graph from a parsed circuit tree, assigning
// grid positions as it goes. Elements are cloned, so the tree and the
// graph can be mutated independently afterwards.
//
// Junctions are created only where several branch exits feed a following
// parallel group; everywhere else, links attach directly to elements.
// Generating the same tree always yields the same graph and positions.
func Generate(c *cdc.Circuit) (*Generated, error) {
	d := &decoder{
		g:   graph.New(),
		pos: map[graph.NodeID]Point{graph.SourceID: {Col: 0, Row: 0}},
	}

	outs, endCol, rows, err := d.unit(c.Root, []graph.NodeID{graph.SourceID}, 1, 0)
	if err != nil {
		return nil, err
	}
	for _, out := range outs {
		if _, err := d.g.Connect(out, graph.SinkID); err != nil {
			return nil, err
		}
	}
	d.pos[graph.SinkID] = Point{Col: endCol, Row: 0}

	return &Generated{
		Graph:     d.g,
		Positions: d.pos,
		Width:     endCol + 1,
		Height:    rows,
	}, nil
}

type decoder struct {
	g   *graph.Graph
	pos map[graph.NodeID]Point
}

// unit materializes one tree node. ins are the graph nodes whose outputs
// feed this unit; col and row give the top-left grid cell it may occupy.
// It returns the unit's exit nodes, the first free column after it, and
// how many rows it spans.
func (d *decoder) unit(n cdc.Node, ins []graph.NodeID, col, row int) ([]graph.NodeID, int, int, error) {
	switch v := n.(type) {
	case *cdc.Element:
		node, err := d.g.AddElement(v.El.Clone())
		if err != nil {
			return nil, 0, 0, err
		}
		for _, in := range ins {
			if _, err := d.g.Connect(in, node.ID()); err != nil {
				return nil, 0, 0, err
			}
		}
		d.pos[node.ID()] = Point{Col: col, Row: row}
		return []graph.NodeID{node.ID()}, col + 1, 1, nil

	case *cdc.Series:
		cur := ins
		rows := 1
		for _, item := range v.Items {
			outs, next, r, err := d.unit(item, cur, col, row)
			if err != nil {
				return nil, 0, 0, err
			}
			cur, col = outs, next
			if r > rows {
				rows = r
			}
		}
		return cur, col, rows, nil

	case *cdc.Parallel:
		// Several exits cannot fan out into branches directly; bundle
		// them through a junction first.
		if len(ins) > 1 {
			j := d.g.AddJunction()
			for _, in := range ins {
				if _, err := d.g.Connect(in, j.ID()); err != nil {
					return nil, 0, 0, err
				}
			}
			d.pos[j.ID()] = Point{Col: col, Row: row}
			ins = []graph.NodeID{j.ID()}
			col++
		}

		var outs []graph.NodeID
		endCol := col
		r := row
		for _, branch := range v.Items {
			bouts, bend, brows, err := d.unit(branch, ins, col, r)
			if err != nil {
				return nil, 0, 0, err
			}
			outs = append(outs, bouts...)
			r += brows
			if bend > endCol {
				endCol = bend
			}
		}
		return outs, endCol, r - row, nil
	}
	return ins, col, 1, nil
}
