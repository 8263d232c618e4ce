package store

import (
	"fmt"

	"github.com/paulmach/osm"
	"go.uber.org/zap"

	"github.com/wegman-software/osmgraph/internal/element"
	"github.com/wegman-software/osmgraph/internal/logger"
	"github.com/wegman-software/osmgraph/internal/source"
)

// BuildStats summarizes a graph build.
type BuildStats struct {
	Nodes     int
	Ways      int
	Relations int

	// MissingWayNodes counts way node refs whose node is not in the input.
	// They are dropped from the way.
	MissingWayNodes int
	// UnresolvedMembers counts relation members left unresolved because the
	// target is not in the input.
	UnresolvedMembers int
}

type pendingWay struct {
	way  *element.Way
	refs []int64
}

type pendingRelation struct {
	rel     *element.Relation
	members []source.Member
}

// linker resolves ids against an index and sets forward links together
// with their backlinks. Build and Copy both link through it.
type linker struct {
	idx   *index
	stats *BuildStats
}

func (l *linker) linkWay(p pendingWay) {
	for _, ref := range p.refs {
		n, ok := l.idx.nodes[ref]
		if !ok {
			l.stats.MissingWayNodes++
			continue
		}
		p.way.AppendNode(n)
	}
}

func (l *linker) linkRelation(p pendingRelation) {
	for _, m := range p.members {
		target, ok := l.idx.lookup(m.Type, m.Ref)
		if !ok {
			l.stats.UnresolvedMembers++
		}
		p.rel.AppendMember(m.Role, m.Type, m.Ref, target)
	}
}

func (l *linker) link(ways []pendingWay, relations []pendingRelation) {
	for _, p := range ways {
		l.linkWay(p)
	}
	for _, p := range relations {
		l.linkRelation(p)
	}
}

// Build reads the whole stream and returns the linked master graph. Pass
// one creates the elements and the id index, pass two links ways to nodes
// and relations to members. The scanner is not closed.
func Build(scanner source.Scanner, opts ...Option) (*Store, error) {
	s := &Store{idx: newIndex()}
	for _, opt := range opts {
		opt(s)
	}

	var ways []pendingWay
	var relations []pendingRelation

	for scanner.Scan() {
		rec := scanner.Record()
		key := element.Key{Type: rec.Type, ID: rec.ID}
		if _, dup := s.idx.lookup(rec.Type, rec.ID); dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, key)
		}

		var e element.Element
		switch rec.Type {
		case osm.TypeNode:
			e = element.NewNode(rec.ID, rec.Tags, rec.Lat, rec.Lon)
			s.stats.Nodes++
		case osm.TypeWay:
			w := element.NewWay(rec.ID, rec.Tags)
			ways = append(ways, pendingWay{way: w, refs: rec.NodeIDs})
			e = w
			s.stats.Ways++
		case osm.TypeRelation:
			r := element.NewRelation(rec.ID, rec.Tags)
			relations = append(relations, pendingRelation{rel: r, members: rec.Members})
			e = r
			s.stats.Relations++
		default:
			return nil, fmt.Errorf("%w %q: %s", ErrUnknownType, rec.Type, key)
		}
		s.add(e)
		s.idx.add(e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read elements: %w", err)
	}

	l := &linker{idx: s.idx, stats: &s.stats}
	l.link(ways, relations)

	logger.Get().Debug("Graph linked",
		zap.Int("nodes", s.stats.Nodes),
		zap.Int("ways", s.stats.Ways),
		zap.Int("relations", s.stats.Relations),
		zap.Int("missing_way_nodes", s.stats.MissingWayNodes),
		zap.Int("unresolved_members", s.stats.UnresolvedMembers),
	)
	return s, nil
}
