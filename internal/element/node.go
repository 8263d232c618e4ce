package element

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

// Node is a point element.
type Node struct {
	base
	Lat, Lon float64

	ways []*Way
}

// NewNode creates an unlinked node.
func NewNode(id int64, tags osm.Tags, lat, lon float64) *Node {
	return &Node{base: base{id: id, tags: tags}, Lat: lat, Lon: lon}
}

func (n *Node) Key() Key { return Key{Type: osm.TypeNode, ID: n.id} }

func (n *Node) Type() osm.Type { return osm.TypeNode }

// Point returns the node position as (lon, lat).
func (n *Node) Point() orb.Point { return orb.Point{n.Lon, n.Lat} }

func (n *Node) Centroid() (orb.Point, bool) { return n.Point(), true }

func (n *Node) centroid(*centroidWalk) (orb.Point, bool) { return n.Point(), true }

// Ways returns the ways referencing this node, each once.
func (n *Node) Ways() []*Way { return n.ways }

func (n *Node) URL() string { return url(osm.TypeNode, n.id) }

func (n *Node) addWay(w *Way) {
	for _, existing := range n.ways {
		if existing == w {
			return
		}
	}
	n.ways = append(n.ways, w)
}

func (n *Node) removeWay(w *Way) {
	for i, existing := range n.ways {
		if existing == w {
			n.ways = append(n.ways[:i], n.ways[i+1:]...)
			return
		}
	}
}
