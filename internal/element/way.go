package element

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

// Way is an ordered list of nodes. The nodes are owned by the graph; the
// way only references them.
type Way struct {
	base
	nodes []*Node
}

// NewWay creates a way without nodes. Use AppendNode to link nodes so the
// node backlinks stay consistent.
func NewWay(id int64, tags osm.Tags) *Way {
	return &Way{base: base{id: id, tags: tags}}
}

func (w *Way) Key() Key { return Key{Type: osm.TypeWay, ID: w.id} }

func (w *Way) Type() osm.Type { return osm.TypeWay }

func (w *Way) URL() string { return url(osm.TypeWay, w.id) }

// Nodes returns the ordered nodes of the way.
func (w *Way) Nodes() []*Node { return w.nodes }

// Closed reports whether the first and last node are the same.
func (w *Way) Closed() bool {
	return len(w.nodes) > 1 && w.nodes[0] == w.nodes[len(w.nodes)-1]
}

// AppendNode links n as the last node of the way and records the way on n.
func (w *Way) AppendNode(n *Node) {
	w.nodes = append(w.nodes, n)
	n.addWay(w)
}

// SetNode replaces the node at index i, moving the backlink from the old
// node to the new one.
func (w *Way) SetNode(i int, n *Node) error {
	if i < 0 || i >= len(w.nodes) {
		return fmt.Errorf("way %d has no node index %d", w.id, i)
	}
	old := w.nodes[i]
	w.nodes[i] = n
	if old != n && !w.references(old) {
		old.removeWay(w)
	}
	n.addWay(w)
	return nil
}

func (w *Way) references(n *Node) bool {
	for _, existing := range w.nodes {
		if existing == n {
			return true
		}
	}
	return false
}

// Points returns the node positions in order.
func (w *Way) Points() []orb.Point {
	pts := make([]orb.Point, len(w.nodes))
	for i, n := range w.nodes {
		pts[i] = n.Point()
	}
	return pts
}

// Refs returns the node ids in order.
func (w *Way) Refs() []int64 {
	refs := make([]int64, len(w.nodes))
	for i, n := range w.nodes {
		refs[i] = n.id
	}
	return refs
}

func (w *Way) Centroid() (orb.Point, bool) { return w.centroid(nil) }

func (w *Way) centroid(*centroidWalk) (orb.Point, bool) {
	nodes := w.nodes
	if w.Closed() {
		nodes = nodes[:len(nodes)-1]
	}
	if len(nodes) == 0 {
		return orb.Point{}, false
	}
	var lon, lat float64
	for _, n := range nodes {
		lon += n.Lon
		lat += n.Lat
	}
	count := float64(len(nodes))
	return orb.Point{lon / count, lat / count}, true
}
