package scene

import (
	"strings"

	"github.com/litescript/ls-orrery/internal/orbit"
)

// Index maps body names to arena indices. It is immutable after
// construction and safe for concurrent use.
type Index struct {
	keys   []string
	byKey  map[string]int
	byName map[string]int
}

// NewIndex builds the name index for bodies. Qualified keys are exact;
// bare names resolve stars first, then planets in catalog order. When two
// keys differ only in case the first one wins.
func NewIndex(bodies []orbit.Body) *Index {
	idx := &Index{
		keys:   make([]string, len(bodies)),
		byKey:  make(map[string]int, len(bodies)),
		byName: make(map[string]int, len(bodies)),
	}
	for i, b := range bodies {
		idx.keys[i] = b.Key
		key := strings.ToLower(b.Key)
		if _, taken := idx.byKey[key]; !taken {
			idx.byKey[key] = i
		}
	}
	for _, kind := range []orbit.Kind{orbit.KindStar, orbit.KindPlanet} {
		for i, b := range bodies {
			if b.Kind != kind {
				continue
			}
			name := strings.ToLower(b.Name)
			if _, taken := idx.byName[name]; !taken {
				idx.byName[name] = i
			}
		}
	}
	return idx
}

// Resolve finds a body index by qualified key ("Star/Planet") or bare name.
// Matching is case-insensitive and ignores surrounding space.
func (idx *Index) Resolve(name string) (int, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return NoSelection, false
	}
	if i, ok := idx.byKey[n]; ok {
		return i, true
	}
	if i, ok := idx.byName[n]; ok {
		return i, true
	}
	return NoSelection, false
}

// ResolveKey returns the qualified key for name.
func (idx *Index) ResolveKey(name string) (string, bool) {
	i, ok := idx.Resolve(name)
	if !ok {
		return "", false
	}
	return idx.keys[i], true
}

// Keys returns the qualified keys in arena order.
func (idx *Index) Keys() []string {
	out := make([]string, len(idx.keys))
	copy(out, idx.keys)
	return out
}

// Len returns the number of indexed bodies.
func (idx *Index) Len() int {
	return len(idx.keys)
}
