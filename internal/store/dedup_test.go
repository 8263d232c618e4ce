package store

import (
	"testing"

	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wegman-software/osmgraph/internal/element"
)

// keepLowest treats elements with the same name as duplicates and keeps the
// lower id.
func keepLowest(a, b element.Element) element.Element {
	na, _ := a.Tag("name")
	nb, _ := b.Tag("name")
	if na != nb {
		return nil
	}
	if a.ID() <= b.ID() {
		return a
	}
	return b
}

func TestDeduplicateScenario(t *testing.T) {
	s, err := Build(sliceOf(
		node(1, 0, 0, "name", "A"),
		node(2, 0, 0, "name", "B"),
		node(3, 0, 0, "name", "C"),
	))
	require.NoError(t, err)
	a, _ := s.ElementByID(osm.TypeNode, 1)

	// A absorbs B and C; B and C are never compared with each other
	res, err := s.Deduplicate(func(x, y element.Element) element.Element {
		if x == a {
			return a
		}
		t.Fatalf("unexpected comparison %s %s", x.Key(), y.Key())
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []int64{1}, ids(res.Store.Elements()))
	assert.Equal(t, []int64{2, 3}, ids(res.Duplicates(a)))
	assert.Same(t, s, res.Store.Master())
}

func TestDeduplicateKeepsLater(t *testing.T) {
	s, err := Build(sliceOf(
		node(5, 0, 0, "name", "Rimi"),
		node(3, 0, 0, "name", "Rimi"),
		node(9, 0, 0, "name", "Maxima"),
		node(1, 0, 0, "name", "Rimi"),
		node(7, 0, 0, "name", "Maxima"),
	))
	require.NoError(t, err)

	res, err := s.Deduplicate(keepLowest)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 7}, ids(res.Store.Elements()), "original order of the keepers")

	one, _ := s.ElementByID(osm.TypeNode, 1)
	seven, _ := s.ElementByID(osm.TypeNode, 7)
	// 5 fell to 3, then 3 fell to 1 and its duplicates followed
	assert.Equal(t, []int64{3, 5}, ids(res.Duplicates(one)))
	assert.Equal(t, []int64{9}, ids(res.Duplicates(seven)))

	three, _ := s.ElementByID(osm.TypeNode, 3)
	assert.Empty(t, res.Duplicates(three))
}

func TestDeduplicateNoDuplicates(t *testing.T) {
	s := buildTestStore(t)
	res, err := s.Deduplicate(func(a, b element.Element) element.Element { return nil })
	require.NoError(t, err)
	assert.Equal(t, keys(s), keys(res.Store))
}

func TestDeduplicateBadComparer(t *testing.T) {
	s := buildTestStore(t)

	tests := []struct {
		name string
		keep func() element.Element
	}{
		{"foreign element", func() element.Element { return element.NewNode(42, nil, 0, 0) }},
		{"typed nil node", func() element.Element {
			var n *element.Node
			return n
		}},
		{"typed nil relation", func() element.Element {
			var r *element.Relation
			return r
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var res *DedupResult
			var err error
			require.NotPanics(t, func() {
				res, err = s.Deduplicate(func(a, b element.Element) element.Element { return tt.keep() })
			})
			assert.Nil(t, res)
			assert.ErrorIs(t, err, ErrBadComparer)
		})
	}
}
