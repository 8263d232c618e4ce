package store

import (
	"fmt"

	"github.com/wegman-software/osmgraph/internal/element"
)

// Comparer decides whether a and b are duplicates. It returns the element
// to keep, or nil when they are distinct.
type Comparer func(a, b element.Element) element.Element

// DedupResult is the outcome of Deduplicate.
type DedupResult struct {
	// Store lists the kept elements in their original order.
	Store *Store

	duplicates map[element.Element][]element.Element
}

// Duplicates returns the elements that were dropped in favour of kept.
func (r *DedupResult) Duplicates(kept element.Element) []element.Element {
	return r.duplicates[kept]
}

// Deduplicate compares every remaining pair in listing order and drops the
// side the comparer does not keep. Duplicates follow their keeper: when a
// kept element is later dropped itself, its duplicates move to the new
// keeper. The result holds one representative per equivalence class found
// through the scan order.
func (s *Store) Deduplicate(cmp Comparer) (*DedupResult, error) {
	list := s.elements
	removed := make([]bool, len(list))
	dups := make(map[element.Element][]element.Element)

	drop := func(loser, keeper element.Element) {
		dups[keeper] = append(dups[keeper], loser)
		dups[keeper] = append(dups[keeper], dups[loser]...)
		delete(dups, loser)
	}

	for i := range list {
		if removed[i] {
			continue
		}
		for j := i + 1; j < len(list); j++ {
			if removed[j] {
				continue
			}
			a, b := list[i], list[j]
			switch keep := cmp(a, b); keep {
			case nil:
				continue
			case a:
				removed[j] = true
				drop(b, a)
			case b:
				removed[i] = true
				drop(a, b)
			default:
				// keep may be a typed nil, so it is not dereferenced
				return nil, fmt.Errorf("%w: compared %s with %s, got %T",
					ErrBadComparer, a.Key(), b.Key(), keep)
			}
			if removed[i] {
				break
			}
		}
	}

	kept := make([]element.Element, 0, len(list))
	for i, e := range list {
		if !removed[i] {
			kept = append(kept, e)
		}
	}
	return &DedupResult{Store: newExtract(s, kept), duplicates: dups}, nil
}
