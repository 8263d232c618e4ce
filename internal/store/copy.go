package store

import (
	"github.com/wegman-software/osmgraph/internal/element"
	"github.com/wegman-software/osmgraph/internal/source"
)

// Copy returns an independent master graph holding clones of the listed
// elements. Links are rebuilt between the clones by the same linker used
// for loading, so backlinks are fresh and nothing is shared with s.
//
// Nodes of copied ways are cloned too, even when s does not list them, so
// every way keeps its shape; they can be reached through the ways and
// ElementByID but are not listed. Relation members that were not cloned
// become unresolved.
func (s *Store) Copy() *Store {
	out := &Store{idx: newIndex(), cellSize: s.cellSize}

	cloneNode := func(n *element.Node) *element.Node {
		if c, ok := out.idx.nodes[n.ID()]; ok {
			return c
		}
		c := element.NewNode(n.ID(), element.CloneTags(n.Tags()), n.Lat, n.Lon)
		out.idx.add(c)
		return c
	}

	var ways []pendingWay
	var relations []pendingRelation

	for _, e := range s.elements {
		switch v := e.(type) {
		case *element.Node:
			out.add(cloneNode(v))
			out.stats.Nodes++
		case *element.Way:
			c := element.NewWay(v.ID(), element.CloneTags(v.Tags()))
			for _, n := range v.Nodes() {
				cloneNode(n)
			}
			ways = append(ways, pendingWay{way: c, refs: v.Refs()})
			out.add(c)
			out.idx.add(c)
			out.stats.Ways++
		case *element.Relation:
			c := element.NewRelation(v.ID(), element.CloneTags(v.Tags()))
			members := make([]source.Member, len(v.Members()))
			for i, m := range v.Members() {
				members[i] = source.Member{Role: m.Role, Type: m.Type, Ref: m.Ref}
			}
			relations = append(relations, pendingRelation{rel: c, members: members})
			out.add(c)
			out.idx.add(c)
			out.stats.Relations++
		}
	}

	l := &linker{idx: out.idx, stats: &out.stats}
	l.link(ways, relations)
	return out
}
