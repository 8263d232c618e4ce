// Package element holds the typed OSM element graph: nodes, ways and
// relations with their forward links and the backlinks that mirror them.
package element

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

// Key identifies an element within one graph. Nodes, ways and relations
// have separate id spaces.
type Key struct {
	Type osm.Type
	ID   int64
}

// String returns the key in n123 / w123 / r123 form.
func (k Key) String() string {
	switch k.Type {
	case osm.TypeNode:
		return fmt.Sprintf("n%d", k.ID)
	case osm.TypeWay:
		return fmt.Sprintf("w%d", k.ID)
	case osm.TypeRelation:
		return fmt.Sprintf("r%d", k.ID)
	default:
		return fmt.Sprintf("%s/%d", k.Type, k.ID)
	}
}

// Element is implemented by *Node, *Way and *Relation.
type Element interface {
	Key() Key
	Type() osm.Type
	ID() int64
	Tags() osm.Tags

	// Tag returns the value of key and whether the tag is present.
	Tag(key string) (string, bool)
	HasTag(key string) bool
	Tagged() bool

	// Centroid is the representative coordinate: a node's position or the
	// mean of the positions a way or relation is made of.
	Centroid() (orb.Point, bool)

	// Memberships lists the relations referencing this element.
	Memberships() []Membership

	URL() string

	centroid(w *centroidWalk) (orb.Point, bool)
	addMembership(m Membership)
}

// Membership is a backlink from an element to one member slot of a
// relation.
type Membership struct {
	Relation *Relation
	Index    int
}

// Role returns the role of the referenced member slot.
func (m Membership) Role() string {
	return m.Relation.members[m.Index].Role
}

// base carries what all element types share.
type base struct {
	id          int64
	tags        osm.Tags
	memberships []Membership
}

func (b *base) ID() int64 { return b.id }

func (b *base) Tags() osm.Tags { return b.tags }

func (b *base) Tag(key string) (string, bool) {
	for _, t := range b.tags {
		if t.Key == key {
			return t.Value, true
		}
	}
	return "", false
}

func (b *base) HasTag(key string) bool {
	_, ok := b.Tag(key)
	return ok
}

func (b *base) Tagged() bool { return len(b.tags) > 0 }

func (b *base) Memberships() []Membership { return b.memberships }

func (b *base) addMembership(m Membership) {
	b.memberships = append(b.memberships, m)
}

func url(t osm.Type, id int64) string {
	return fmt.Sprintf("https://www.openstreetmap.org/%s/%d", t, id)
}

// SplitValues splits a semicolon delimited multi-value tag value into its
// trimmed, non-empty parts.
func SplitValues(value string) []string {
	parts := strings.Split(value, ";")
	values := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			values = append(values, p)
		}
	}
	return values
}

// CloneTags returns an independent copy of tags.
func CloneTags(tags osm.Tags) osm.Tags {
	if tags == nil {
		return nil
	}
	out := make(osm.Tags, len(tags))
	copy(out, tags)
	return out
}

// TagsFromMap builds tags sorted by key, for callers holding a plain map.
func TagsFromMap(m map[string]string) osm.Tags {
	if len(m) == 0 {
		return nil
	}
	tags := make(osm.Tags, 0, len(m))
	for k, v := range m {
		tags = append(tags, osm.Tag{Key: k, Value: v})
	}
	tags.SortByKeyValue()
	return tags
}
