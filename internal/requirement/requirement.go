// Package requirement resolves whether each curriculum item is required or
// optional for a project. Values come from an ordered chain of layers; a
// later layer overrides an earlier one and every item starts out required.
package requirement

import "sort"

// Standard layer names, lowest precedence first.
const (
	LayerImplicit = "implicit"
	LayerGlobal   = "global"
	LayerProject  = "project"
)

// Layer is one level of the precedence chain: item ID → required.
type Layer struct {
	Name   string
	Values map[int]bool
}

// Map is the resolved, total requirement map over a fixed set of item IDs.
type Map struct {
	values map[int]bool
	source map[int]string
}

// Resolve starts every id at required, then applies layers in order so the
// last layer naming an item wins. Layer entries for IDs outside ids are
// ignored.
func Resolve(ids []int, layers ...Layer) Map {
	m := Map{
		values: make(map[int]bool, len(ids)),
		source: make(map[int]string, len(ids)),
	}
	for _, id := range ids {
		m.values[id] = true
		m.source[id] = LayerImplicit
	}
	for _, l := range layers {
		for id, required := range l.Values {
			if _, known := m.values[id]; !known {
				continue
			}
			m.values[id] = required
			m.source[id] = l.Name
		}
	}
	return m
}

// Required reports whether id is required. IDs outside the resolved set
// report required, matching the implicit default.
func (m Map) Required(id int) bool {
	v, ok := m.values[id]
	return !ok || v
}

// Source returns the name of the layer that decided id, or "" for an ID
// outside the resolved set.
func (m Map) Source(id int) string {
	return m.source[id]
}

// Len returns the number of resolved IDs.
func (m Map) Len() int {
	return len(m.values)
}

// IDs returns every resolved ID, ascending.
func (m Map) IDs() []int {
	ids := make([]int, 0, len(m.values))
	for id := range m.values {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// RequiredIDs returns the IDs resolved as required, ascending.
func (m Map) RequiredIDs() []int {
	var ids []int
	for _, id := range m.IDs() {
		if m.values[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

// Values returns a copy of the resolved map.
func (m Map) Values() map[int]bool {
	out := make(map[int]bool, len(m.values))
	for id, v := range m.values {
		out[id] = v
	}
	return out
}
