// Package source turns OSM input files into a stream of raw element records.
package source

import (
	"github.com/paulmach/osm"
)

// Member is a raw relation member before resolution.
type Member struct {
	Role string
	Type osm.Type
	Ref  int64
}

// Record is one raw element as read from the input. Only the payload
// fields of its Type are set.
type Record struct {
	Type osm.Type
	ID   int64
	Tags osm.Tags

	// Node payload
	Lat, Lon float64

	// Way payload
	NodeIDs []int64

	// Relation payload
	Members []Member
}

// Scanner yields records in input order. It mirrors osm.Scanner: call Scan
// until it returns false, then check Err.
type Scanner interface {
	Scan() bool
	Record() Record
	Err() error
	Close() error
}

// FromObject converts a decoded osm object to a record. Objects that are
// not nodes, ways or relations keep their type so the consumer can reject
// them.
func FromObject(obj osm.Object) Record {
	switch o := obj.(type) {
	case *osm.Node:
		return Record{
			Type: osm.TypeNode,
			ID:   int64(o.ID),
			Tags: o.Tags,
			Lat:  o.Lat,
			Lon:  o.Lon,
		}
	case *osm.Way:
		ids := make([]int64, len(o.Nodes))
		for i, wn := range o.Nodes {
			ids[i] = int64(wn.ID)
		}
		return Record{
			Type:    osm.TypeWay,
			ID:      int64(o.ID),
			Tags:    o.Tags,
			NodeIDs: ids,
		}
	case *osm.Relation:
		members := make([]Member, len(o.Members))
		for i, m := range o.Members {
			members[i] = Member{Role: m.Role, Type: m.Type, Ref: m.Ref}
		}
		return Record{
			Type:    osm.TypeRelation,
			ID:      int64(o.ID),
			Tags:    o.Tags,
			Members: members,
		}
	default:
		id := obj.ObjectID()
		return Record{Type: id.Type(), ID: id.Ref()}
	}
}

// SliceScanner replays records from memory.
type SliceScanner struct {
	records []Record
	pos     int
}

// NewSliceScanner returns a scanner over records.
func NewSliceScanner(records ...Record) *SliceScanner {
	return &SliceScanner{records: records}
}

func (s *SliceScanner) Scan() bool {
	if s.pos >= len(s.records) {
		return false
	}
	s.pos++
	return true
}

func (s *SliceScanner) Record() Record { return s.records[s.pos-1] }

func (s *SliceScanner) Err() error { return nil }

func (s *SliceScanner) Close() error { return nil }
