package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wegman-software/osmgraph/internal/config"
	"github.com/wegman-software/osmgraph/internal/element"
	"github.com/wegman-software/osmgraph/internal/source"
)

func tags(kv ...string) osm.Tags {
	var t osm.Tags
	for i := 0; i+1 < len(kv); i += 2 {
		t = append(t, osm.Tag{Key: kv[i], Value: kv[i+1]})
	}
	return t
}

func node(id int64, lat, lon float64, kv ...string) source.Record {
	return source.Record{Type: osm.TypeNode, ID: id, Lat: lat, Lon: lon, Tags: tags(kv...)}
}

func way(id int64, refs []int64, kv ...string) source.Record {
	return source.Record{Type: osm.TypeWay, ID: id, NodeIDs: refs, Tags: tags(kv...)}
}

func relation(id int64, members []source.Member, kv ...string) source.Record {
	return source.Record{Type: osm.TypeRelation, ID: id, Members: members, Tags: tags(kv...)}
}

// testRecords is a small Riga neighbourhood: a road, a closed building
// outline, a path with a node outside the extract and two relations that
// reference each other.
func testRecords() []source.Record {
	return []source.Record{
		node(1, 56.950, 24.100, "amenity", "cafe", "name", "Kafija"),
		node(2, 56.951, 24.101),
		node(3, 56.952, 24.102, "highway", "crossing"),
		node(4, 56.953, 24.103),
		node(5, 56.954, 24.104, "amenity", "cafe", "name", "Cits"),
		node(6, 56.955, 24.105),
		way(10, []int64{1, 2, 3}, "highway", "residential", "surface", "gravel;asphalt"),
		way(11, []int64{3, 4, 5, 3}, "building", "yes"),
		way(12, []int64{5, 6, 99}, "highway", "path", "surface", "gravel"),
		relation(100, []source.Member{
			{Role: "outer", Type: osm.TypeWay, Ref: 10},
			{Role: "", Type: osm.TypeNode, Ref: 1},
			{Role: "outer", Type: osm.TypeWay, Ref: 999},
			{Role: "sub", Type: osm.TypeRelation, Ref: 101},
		}, "type", "multipolygon"),
		relation(101, []source.Member{
			{Role: "parent", Type: osm.TypeRelation, Ref: 100},
		}),
	}
}

func sliceOf(records ...source.Record) *source.SliceScanner {
	return source.NewSliceScanner(records...)
}

func buildTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Build(source.NewSliceScanner(testRecords()...))
	require.NoError(t, err)
	return s
}

func keys(s *Store) []element.Key {
	out := make([]element.Key, 0, s.Len())
	for _, e := range s.Elements() {
		out = append(out, e.Key())
	}
	return out
}

// checkBacklinks verifies that backlinks are exactly the inverse of the
// forward links of every listed element.
func checkBacklinks(t *testing.T, s *Store) {
	t.Helper()

	wantWays := map[*element.Node]map[*element.Way]bool{}
	wantMembers := map[element.Element]map[element.Membership]bool{}
	for _, w := range s.Ways() {
		for _, n := range w.Nodes() {
			if wantWays[n] == nil {
				wantWays[n] = map[*element.Way]bool{}
			}
			wantWays[n][w] = true
		}
	}
	for _, r := range s.Relations() {
		for i, m := range r.Members() {
			if !m.Resolved() {
				continue
			}
			if wantMembers[m.Element] == nil {
				wantMembers[m.Element] = map[element.Membership]bool{}
			}
			wantMembers[m.Element][element.Membership{Relation: r, Index: i}] = true
		}
	}

	for _, n := range s.Nodes() {
		got := map[*element.Way]bool{}
		for _, w := range n.Ways() {
			got[w] = true
		}
		assert.Equal(t, len(wantWays[n]), len(n.Ways()), "node %d ways listed once", n.ID())
		for w := range wantWays[n] {
			assert.True(t, got[w], "node %d misses way %d", n.ID(), w.ID())
		}
	}
	for _, e := range s.Elements() {
		got := map[element.Membership]bool{}
		for _, m := range e.Memberships() {
			got[m] = true
		}
		assert.Equal(t, wantMembers[e], nilIfEmpty(got), "memberships of %s", e.Key())
	}
}

func nilIfEmpty(m map[element.Membership]bool) map[element.Membership]bool {
	if len(m) == 0 {
		return nil
	}
	return m
}

func TestBuild(t *testing.T) {
	s := buildTestStore(t)

	assert.True(t, s.IsMaster())
	assert.Same(t, s, s.Master())
	assert.Equal(t, 11, s.Len())
	assert.Len(t, s.Nodes(), 6)
	assert.Len(t, s.Ways(), 3)
	assert.Len(t, s.Relations(), 2)

	stats := s.Stats()
	assert.Equal(t, BuildStats{Nodes: 6, Ways: 3, Relations: 2, MissingWayNodes: 1, UnresolvedMembers: 1}, stats)

	w, err := s.ElementByID(osm.TypeWay, 12)
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 6}, w.(*element.Way).Refs(), "missing node dropped")

	r, err := s.ElementByID(osm.TypeRelation, 100)
	require.NoError(t, err)
	members := r.(*element.Relation).Members()
	require.Len(t, members, 4)
	assert.False(t, members[2].Resolved())
	assert.Equal(t, int64(999), members[2].Ref)
	assert.True(t, members[3].Resolved())

	checkBacklinks(t, s)
}

func TestBuildOrder(t *testing.T) {
	s := buildTestStore(t)
	want := make([]element.Key, 0)
	for _, rec := range testRecords() {
		want = append(want, element.Key{Type: rec.Type, ID: rec.ID})
	}
	assert.Equal(t, want, keys(s))
}

type failingScanner struct {
	source.SliceScanner
	err error
}

func (f *failingScanner) Err() error { return f.err }

func TestBuildErrors(t *testing.T) {
	t.Run("unknown type", func(t *testing.T) {
		s, err := Build(source.NewSliceScanner(
			node(1, 0, 0),
			source.FromObject(&osm.Changeset{ID: 7}),
		))
		assert.Nil(t, s)
		assert.ErrorIs(t, err, ErrUnknownType)
	})

	t.Run("duplicate id", func(t *testing.T) {
		s, err := Build(source.NewSliceScanner(node(1, 0, 0), node(1, 1, 1)))
		assert.Nil(t, s)
		assert.ErrorIs(t, err, ErrDuplicateID)
	})

	t.Run("same id different type", func(t *testing.T) {
		_, err := Build(source.NewSliceScanner(node(1, 0, 0), way(1, []int64{1})))
		assert.NoError(t, err)
	})

	t.Run("read error", func(t *testing.T) {
		boom := errors.New("truncated blob")
		s, err := Build(&failingScanner{SliceScanner: *source.NewSliceScanner(node(1, 0, 0)), err: boom})
		assert.Nil(t, s)
		assert.ErrorIs(t, err, boom)
	})
}

func TestElementByID(t *testing.T) {
	s := buildTestStore(t)

	e, err := s.ElementByID(osm.TypeNode, 3)
	require.NoError(t, err)
	assert.Equal(t, element.Key{Type: osm.TypeNode, ID: 3}, e.Key())

	_, err = s.ElementByID(osm.TypeNode, 99)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.ElementByID(osm.TypeChangeset, 1)
	assert.ErrorIs(t, err, ErrUnknownType)

	// extracts look up only what they list
	cafes := s.Filter(filterCafes())
	_, err = cafes.ElementByID(osm.TypeNode, 1)
	assert.NoError(t, err)
	_, err = cafes.ElementByID(osm.TypeNode, 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateNode(t *testing.T) {
	s, err := Build(source.NewSliceScanner(node(1, 0, 0), node(-4, 0, 0)))
	require.NoError(t, err)

	a := s.CreateNode(56.9, 24.1, tags("fixme", "position"))
	b := s.CreateNode(56.8, 24.2, nil)
	assert.Equal(t, int64(-5), a.ID())
	assert.Equal(t, int64(-6), b.ID())
	assert.Empty(t, a.Ways())
	assert.Empty(t, a.Memberships())

	assert.Equal(t, 4, s.Len())
	got, err := s.ElementByID(osm.TypeNode, -5)
	require.NoError(t, err)
	assert.Same(t, a, got)

	found, ok := s.Find(filterHas("fixme"))
	require.True(t, ok)
	assert.Same(t, a, found)
}

func TestCreateNodeUniqueAcrossExtracts(t *testing.T) {
	s := buildTestStore(t)
	cafes := s.Filter(filterCafes())

	fromMaster := s.CreateNode(56.9, 24.1, nil)
	fromExtract := cafes.CreateNode(56.9, 24.1, tags("amenity", "cafe"))
	fromNested := cafes.Filter(filterCafes()).CreateNode(56.9, 24.1, nil)

	assert.Equal(t, int64(-1), fromMaster.ID())
	assert.Equal(t, int64(-2), fromExtract.ID())
	assert.Equal(t, int64(-3), fromNested.ID())

	// listed only where created, but the master resolves every id
	assert.Equal(t, 3, cafes.Len())
	assert.Equal(t, len(testRecords())+1, s.Len())
	got, err := s.ElementByID(osm.TypeNode, -2)
	require.NoError(t, err)
	assert.Same(t, fromExtract, got)
	got, err = cafes.ElementByID(osm.TypeNode, -2)
	require.NoError(t, err)
	assert.Same(t, fromExtract, got)
	_, err = cafes.ElementByID(osm.TypeNode, -1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestChunker(t *testing.T) {
	s := buildTestStore(t)
	c := s.Chunker()
	assert.Same(t, c, s.Chunker(), "built once")
	assert.Equal(t, s.Len(), c.Len(), "every test element has a centroid")

	cafes := s.Filter(filterCafes())
	el, d := cafes.Chunker().Closest(orb.Point{24.1039, 56.9539}, 500)
	require.NotNil(t, el)
	assert.Equal(t, int64(5), el.ID())
	assert.Less(t, d, 20.0)
}

const loadXML = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="test">
  <node id="1" lat="56.95" lon="24.10"><tag k="amenity" v="cafe"/></node>
  <node id="2" lat="56.96" lon="24.11"/>
  <way id="10"><nd ref="1"/><nd ref="2"/><nd ref="3"/><tag k="highway" v="service"/></way>
  <relation id="100"><member type="way" ref="10" role=""/><member type="way" ref="11" role=""/></relation>
</osm>`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.osm")
	require.NoError(t, os.WriteFile(path, []byte(loadXML), 0o644))

	cfg := config.DefaultConfig()
	cfg.InputFile = path
	cfg.Workers = 1

	s, err := Load(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 4, s.Len())
	assert.Equal(t, 1, s.Stats().MissingWayNodes)
	assert.Equal(t, 1, s.Stats().UnresolvedMembers)
	checkBacklinks(t, s)

	cfg.InputFile = filepath.Join(t.TempDir(), "missing.osm")
	_, err = Load(context.Background(), cfg)
	assert.Error(t, err)
}
