package filter

// Hint tells a store which collections can hold matches. It is derived
// from the filter and never changes what matches, only what is scanned.
type Hint struct {
	// Kinds are the element types that can match.
	Kinds Kinds
	// Tagged is set when only elements with at least one tag can match.
	Tagged bool
}

// NoHint allows every collection.
var NoHint = Hint{Kinds: AllKinds}

// Hint derives the collection hint of f.
func (f Filter) Hint() Hint {
	switch f.op {
	case opKinds:
		return Hint{Kinds: f.kinds}
	case opHasTag, opHasValue, opHasAnyTag, opSplitRegexp, opSplitFunc:
		return Hint{Kinds: AllKinds, Tagged: true}
	case opAnd:
		h := NoHint
		for _, c := range f.children {
			ch := c.Hint()
			h.Kinds &= ch.Kinds
			h.Tagged = h.Tagged || ch.Tagged
		}
		return h
	case opOr:
		h := Hint{Tagged: true}
		for _, c := range f.children {
			ch := c.Hint()
			h.Kinds |= ch.Kinds
			h.Tagged = h.Tagged && ch.Tagged
		}
		return h
	case opCustom:
		return f.hint
	default:
		return NoHint
	}
}

// Combined returns the hint of the conjunction of filters.
func Combined(filters ...Filter) Hint {
	return And(filters...).Hint()
}
