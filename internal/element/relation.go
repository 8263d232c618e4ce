package element

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

// Member is one slot of a relation. Element is nil when the referenced
// element was not part of the loaded extent.
type Member struct {
	Role    string
	Type    osm.Type
	Ref     int64
	Element Element
}

// Resolved reports whether the member points at a loaded element.
func (m Member) Resolved() bool { return m.Element != nil }

// Relation is an ordered list of typed, roled members.
type Relation struct {
	base
	members []Member
}

// NewRelation creates a relation without members.
func NewRelation(id int64, tags osm.Tags) *Relation {
	return &Relation{base: base{id: id, tags: tags}}
}

func (r *Relation) Key() Key { return Key{Type: osm.TypeRelation, ID: r.id} }

func (r *Relation) Type() osm.Type { return osm.TypeRelation }

func (r *Relation) URL() string { return url(osm.TypeRelation, r.id) }

// Members returns the ordered members.
func (r *Relation) Members() []Member { return r.members }

// AppendMember adds a member slot. When target is not nil the member is
// resolved and target gets the matching backlink.
func (r *Relation) AppendMember(role string, typ osm.Type, ref int64, target Element) {
	r.members = append(r.members, Member{Role: role, Type: typ, Ref: ref, Element: target})
	if target != nil {
		target.addMembership(Membership{Relation: r, Index: len(r.members) - 1})
	}
}

// Unresolved returns the members whose targets were not loaded.
func (r *Relation) Unresolved() []Member {
	var out []Member
	for _, m := range r.members {
		if !m.Resolved() {
			out = append(out, m)
		}
	}
	return out
}

// MemberWays returns the resolved way members with the given role.
func (r *Relation) MemberWays(role string) []*Way {
	var ways []*Way
	for _, m := range r.members {
		if w, ok := m.Element.(*Way); ok && m.Role == role {
			ways = append(ways, w)
		}
	}
	return ways
}

func (r *Relation) Centroid() (orb.Point, bool) {
	return r.centroid(newCentroidWalk())
}

// centroidWalk is the state of one Centroid call over nested relations.
type centroidWalk struct {
	onPath map[*Relation]bool
	done   map[*Relation]centroidResult
}

type centroidResult struct {
	p  orb.Point
	ok bool
}

func newCentroidWalk() *centroidWalk {
	return &centroidWalk{
		onPath: make(map[*Relation]bool),
		done:   make(map[*Relation]centroidResult),
	}
}

// centroid averages the centroids of resolved members. Relations already on
// the path are skipped, so membership cycles terminate. Each relation is
// computed once per walk.
func (r *Relation) centroid(w *centroidWalk) (orb.Point, bool) {
	if res, ok := w.done[r]; ok {
		return res.p, res.ok
	}
	if w.onPath[r] {
		return orb.Point{}, false
	}
	w.onPath[r] = true
	defer delete(w.onPath, r)

	var lon, lat float64
	count := 0
	for _, m := range r.members {
		if m.Element == nil {
			continue
		}
		p, ok := m.Element.centroid(w)
		if !ok {
			continue
		}
		lon += p.Lon()
		lat += p.Lat()
		count++
	}

	var res centroidResult
	if count > 0 {
		res = centroidResult{p: orb.Point{lon / float64(count), lat / float64(count)}, ok: true}
	}
	w.done[r] = res
	return res.p, res.ok
}
