package filter

import (
	"regexp"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wegman-software/osmgraph/internal/element"
)

func tags(kv ...string) osm.Tags {
	var t osm.Tags
	for i := 0; i+1 < len(kv); i += 2 {
		t = append(t, osm.Tag{Key: kv[i], Value: kv[i+1]})
	}
	return t
}

func TestMatches(t *testing.T) {
	cafe := element.NewNode(1, tags("amenity", "cafe", "cuisine", "coffee_shop;cake"), 56.95, 24.1)
	road := element.NewWay(2, tags("highway", "residential", "surface", "gravel;Asphalt"))
	bare := element.NewNode(3, nil, 0, 0)
	route := element.NewRelation(4, tags("type", "route"))

	lower := regexp.MustCompile(`^[a-z_]+$`)

	tests := []struct {
		name   string
		filter Filter
		el     element.Element
		want   bool
	}{
		{"all", All(), bare, true},
		{"is node", IsNode(), cafe, true},
		{"is node on way", IsNode(), road, false},
		{"is way", IsWay(), road, true},
		{"is relation", IsRelation(), route, true},
		{"node or way on relation", IsNodeOrWay(), route, false},
		{"node or way on way", IsNodeOrWay(), road, true},
		{"has tag", HasTag("amenity"), cafe, true},
		{"has tag missing", HasTag("amenity"), road, false},
		{"has value", HasValue("amenity", "bar", "cafe"), cafe, true},
		{"has value other", HasValue("amenity", "bar"), cafe, false},
		{"has any tag", HasAnyTag("shop", "highway"), road, true},
		{"has any tag none", HasAnyTag("shop", "craft"), road, false},
		{"lacks tag", LacksTag("name"), cafe, true},
		{"lacks tag present", LacksTag("amenity"), cafe, false},
		{"split regexp all pass", SplitValuesMatch("cuisine", lower), cafe, true},
		{"split regexp one fails", SplitValuesMatch("surface", lower), road, false},
		{"split regexp missing tag", SplitValuesMatch("cuisine", lower), road, false},
		{"split func", SplitValuesSatisfy("surface", func(v string) bool { return v != "" }), road, true},
		{"and", And(IsNode(), HasValue("amenity", "cafe")), cafe, true},
		{"and one false", And(IsNode(), HasTag("shop")), cafe, false},
		{"empty and", And(), bare, true},
		{"or", Or(HasTag("shop"), HasTag("amenity")), cafe, true},
		{"or none", Or(HasTag("shop"), IsWay()), cafe, false},
		{"empty or", Or(), cafe, false},
		{"not", Not(IsNode()), road, true},
		{"custom", Custom("even", func(e element.Element) bool { return e.ID()%2 == 0 }), road, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(tt.el))
		})
	}
}

func TestShortCircuit(t *testing.T) {
	n := element.NewNode(1, nil, 0, 0)
	calls := 0
	counted := Custom("counted", func(element.Element) bool {
		calls++
		return true
	})

	assert.False(t, And(IsWay(), counted).Matches(n))
	assert.Equal(t, 0, calls, "and stops at the first false")

	assert.True(t, Or(IsNode(), counted).Matches(n))
	assert.Equal(t, 0, calls, "or stops at the first true")

	assert.True(t, And(IsNode(), counted).Matches(n))
	assert.Equal(t, 1, calls)
}

func TestInside(t *testing.T) {
	bound := orb.Bound{Min: orb.Point{24, 56}, Max: orb.Point{25, 57}}
	f := Inside(bound)

	assert.True(t, f.Matches(element.NewNode(1, nil, 56.5, 24.5)))
	assert.False(t, f.Matches(element.NewNode(2, nil, 50, 24.5)))
	assert.False(t, f.Matches(element.NewWay(3, nil)), "no centroid, no match")
}

func TestHint(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   Hint
	}{
		{"all", All(), NoHint},
		{"node", IsNode(), Hint{Kinds: Nodes}},
		{"tag", HasTag("name"), Hint{Kinds: AllKinds, Tagged: true}},
		{"lacks", LacksTag("name"), NoHint},
		{"and narrows kinds and requires tags", And(IsNodeOrWay(), IsWay(), HasValue("highway", "primary")), Hint{Kinds: Ways, Tagged: true}},
		{"or widens kinds", Or(IsNode(), IsWay()), Hint{Kinds: Nodes | Ways}},
		{"or tagged only if all are", Or(HasTag("a"), LacksTag("b")), Hint{Kinds: AllKinds}},
		{"or all tagged", Or(HasTag("a"), HasAnyTag("b")), Hint{Kinds: AllKinds, Tagged: true}},
		{"empty or scans nothing", Or(), Hint{Tagged: true}},
		{"not", Not(IsNode()), NoHint},
		{"custom default", Custom("x", func(element.Element) bool { return true }), NoHint},
		{"custom hinted", Custom("x", func(element.Element) bool { return true }, Hint{Kinds: Relations}), Hint{Kinds: Relations}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Hint())
		})
	}

	assert.Equal(t, Hint{Kinds: Nodes, Tagged: true}, Combined(IsNode(), HasTag("amenity")))
}

func TestKinds(t *testing.T) {
	assert.True(t, (Nodes | Ways).Has(osm.TypeWay))
	assert.False(t, (Nodes | Ways).Has(osm.TypeRelation))

	typ, ok := Ways.Single()
	assert.True(t, ok)
	assert.Equal(t, osm.TypeWay, typ)

	_, ok = (Nodes | Ways).Single()
	assert.False(t, ok)
	assert.Equal(t, "node,relation", (Nodes | Relations).String())
}

func TestString(t *testing.T) {
	f := And(IsNode(), Or(HasValue("amenity", "cafe", "bar"), HasTag("shop")), Not(HasTag("disused")))
	assert.Equal(t, "(kind(node) and (amenity=cafe|bar or has(shop)) and not has(disused))", f.String())
}

const rulesYAML = `
cafes:
  kinds: [node, way]
  include:
    amenity: [cafe, restaurant]
  exclude:
    access: [private]
  split_match:
    cuisine: '^[a-z_]+$'
shops:
  require_any: [shop]
  exclude:
    disused: []
`

func TestParseRuleSet(t *testing.T) {
	set, err := ParseRuleSet([]byte(rulesYAML))
	require.NoError(t, err)
	assert.Equal(t, []string{"cafes", "shops"}, set.Names)

	filters, err := set.Filters()
	require.NoError(t, err)
	require.Len(t, filters, 2)
	cafes, shops := filters[0], filters[1]

	assert.Equal(t, Hint{Kinds: Nodes | Ways, Tagged: true}, cafes.Hint())

	tests := []struct {
		name   string
		filter Filter
		el     element.Element
		want   bool
	}{
		{"cafe node", cafes, element.NewNode(1, tags("amenity", "cafe", "cuisine", "coffee_shop"), 0, 0), true},
		{"private cafe", cafes, element.NewNode(2, tags("amenity", "cafe", "access", "private", "cuisine", "cake"), 0, 0), false},
		{"bad cuisine", cafes, element.NewNode(3, tags("amenity", "cafe", "cuisine", "Cake"), 0, 0), false},
		{"cafe relation", cafes, element.NewRelation(4, tags("amenity", "cafe", "cuisine", "cake")), false},
		{"shop", shops, element.NewNode(5, tags("shop", "bakery"), 0, 0), true},
		{"disused shop", shops, element.NewNode(6, tags("shop", "bakery", "disused", "yes"), 0, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(tt.el))
		})
	}
}

func TestParseRuleSetErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"not a mapping", "- a\n- b\n"},
		{"bad kind", "x:\n  kinds: [area]\n"},
		{"bad regexp", "x:\n  split_match:\n    name: '('\n"},
		{"duplicate", "x: {}\nx: {}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := ParseRuleSet([]byte(tt.yaml))
			if err != nil {
				return
			}
			_, err = set.Filters()
			assert.Error(t, err)
		})
	}
}
