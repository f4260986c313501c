// Package scene provides a small set of scene graph types that can be
// stored in an object graph.
//
// All types in this package register themselves in
// [objgraph.Default] when the package is imported.
package scene

import "github.com/danderson/objgraph"

// Group is a node with an ordered list of children.
type Group struct {
	Children []objgraph.Object
}

// AddChild appends child to the group's children.
func (g *Group) AddChild(child objgraph.Object) {
	g.Children = append(g.Children, child)
}

func (g *Group) MarshalGraph(e *objgraph.Encoder) error   { return e.Fields(g) }
func (g *Group) UnmarshalGraph(d *objgraph.Decoder) error { return d.Fields(g) }

// DepthSorted is a node whose child is drawn in depth order with the
// other members of its bin.
type DepthSorted struct {
	// Bin is the render bin to sort the child into.
	Bin int32
	// Center is the point whose distance to the eye decides the draw
	// order.
	Center [3]float64
	Child  objgraph.Object
}

func (n *DepthSorted) MarshalGraph(e *objgraph.Encoder) error   { return e.Fields(n) }
func (n *DepthSorted) UnmarshalGraph(d *objgraph.Decoder) error { return d.Fields(n) }
