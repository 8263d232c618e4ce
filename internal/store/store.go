// Package store holds element graphs and the queries run over them.
//
// A master store owns the complete graph built from an input stream.
// Extracts are derived by Filter, Subtract, grouping and deduplication;
// they list a subset of the master's elements and share them by reference.
// Copy produces an independent graph that can be mutated freely.
//
// Stores are not safe for concurrent mutation. Queries never mutate their
// input, so any number of extracts may be derived from one master without
// coordination.
package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/paulmach/osm"

	"github.com/wegman-software/osmgraph/internal/element"
	"github.com/wegman-software/osmgraph/internal/spatial"
)

var (
	// ErrUnknownType is returned for element types other than node, way
	// and relation.
	ErrUnknownType = errors.New("unknown element type")
	// ErrDuplicateID is returned when the input holds the same element twice.
	ErrDuplicateID = errors.New("duplicate element id")
	// ErrNotFound is returned by ElementByID for ids not in the store.
	ErrNotFound = errors.New("element not found")
	// ErrBadComparer is returned by Deduplicate when the comparer returns
	// an element that is neither of its arguments.
	ErrBadComparer = errors.New("comparer returned neither element")
)

// index maps ids to elements, one map per type.
type index struct {
	nodes     map[int64]*element.Node
	ways      map[int64]*element.Way
	relations map[int64]*element.Relation
}

func newIndex() *index {
	return &index{
		nodes:     make(map[int64]*element.Node),
		ways:      make(map[int64]*element.Way),
		relations: make(map[int64]*element.Relation),
	}
}

func (ix *index) add(e element.Element) {
	switch v := e.(type) {
	case *element.Node:
		ix.nodes[v.ID()] = v
	case *element.Way:
		ix.ways[v.ID()] = v
	case *element.Relation:
		ix.relations[v.ID()] = v
	}
}

func (ix *index) lookup(typ osm.Type, id int64) (element.Element, bool) {
	switch typ {
	case osm.TypeNode:
		if n, ok := ix.nodes[id]; ok {
			return n, true
		}
	case osm.TypeWay:
		if w, ok := ix.ways[id]; ok {
			return w, true
		}
	case osm.TypeRelation:
		if r, ok := ix.relations[id]; ok {
			return r, true
		}
	}
	return nil, false
}

// Store is a master graph or an extract of one.
type Store struct {
	master *Store // nil for a master

	elements  []element.Element // input order
	nodes     []*element.Node
	ways      []*element.Way
	relations []*element.Relation
	tagged    []element.Element

	idxOnce sync.Once
	idx     *index

	cellSize    float64
	chunkerOnce sync.Once
	chunker     *spatial.Chunker

	nextSynthID int64
	stats       BuildStats
}

// Option configures a store.
type Option func(*Store)

// WithCellSize sets the spatial index cell edge in degrees. Extracts
// inherit it.
func WithCellSize(degrees float64) Option {
	return func(s *Store) { s.cellSize = degrees }
}

// newExtract lists elements under master. The slice is owned by the new
// store.
func newExtract(master *Store, elements []element.Element) *Store {
	s := &Store{master: master.Master(), cellSize: master.cellSize}
	for _, e := range elements {
		s.add(e)
	}
	return s
}

// add lists e in the collections. It does not touch the id index.
func (s *Store) add(e element.Element) {
	s.elements = append(s.elements, e)
	switch v := e.(type) {
	case *element.Node:
		s.nodes = append(s.nodes, v)
	case *element.Way:
		s.ways = append(s.ways, v)
	case *element.Relation:
		s.relations = append(s.relations, v)
	}
	if e.Tagged() {
		s.tagged = append(s.tagged, e)
	}
}

func (s *Store) index() *index {
	s.idxOnce.Do(func() {
		if s.idx != nil {
			return
		}
		s.idx = newIndex()
		for _, e := range s.elements {
			s.idx.add(e)
		}
	})
	return s.idx
}

// Master returns the graph this store was derived from, or the store
// itself when it is a master.
func (s *Store) Master() *Store {
	if s.master == nil {
		return s
	}
	return s.master
}

// IsMaster reports whether the store owns its graph.
func (s *Store) IsMaster() bool { return s.master == nil }

// Len returns the number of listed elements.
func (s *Store) Len() int { return len(s.elements) }

// Elements returns all listed elements in input order. The slice must not
// be modified.
func (s *Store) Elements() []element.Element { return s.elements }

func (s *Store) Nodes() []*element.Node { return s.nodes }

func (s *Store) Ways() []*element.Way { return s.ways }

func (s *Store) Relations() []*element.Relation { return s.relations }

// Stats returns the statistics of the build that produced the master
// graph.
func (s *Store) Stats() BuildStats { return s.Master().stats }

// ElementByID returns the element with the given type and id.
func (s *Store) ElementByID(typ osm.Type, id int64) (element.Element, error) {
	switch typ {
	case osm.TypeNode, osm.TypeWay, osm.TypeRelation:
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownType, typ)
	}
	if e, ok := s.index().lookup(typ, id); ok {
		return e, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, element.Key{Type: typ, ID: id})
}

// CreateNode adds a new unlinked node with a synthetic negative id that
// is unused in the whole graph. The node is listed in s and can be looked
// up by id from s and from its master.
func (s *Store) CreateNode(lat, lon float64, tags osm.Tags) *element.Node {
	m := s.Master()
	n := element.NewNode(m.syntheticID(), tags, lat, lon)

	s.add(n)
	s.index().add(n)
	if m != s {
		m.index().add(n)
	}
	return n
}

// syntheticID hands out ids below every node id of the graph. Only called
// on a master.
func (s *Store) syntheticID() int64 {
	if s.nextSynthID == 0 {
		s.nextSynthID = -1
		for id := range s.index().nodes {
			if id <= s.nextSynthID {
				s.nextSynthID = id - 1
			}
		}
	}
	id := s.nextSynthID
	s.nextSynthID--
	return id
}

// Chunker returns the spatial index over the listed elements, building it
// on first use. Elements created after that are not indexed.
func (s *Store) Chunker() *spatial.Chunker {
	s.chunkerOnce.Do(func() {
		s.chunker = spatial.New(s.elements, s.cellSize)
	})
	return s.chunker
}
