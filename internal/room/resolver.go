// Package room buckets cases into canonical operating rooms. Case records
// carry a free-text room label rather than a room id, so grouping relies on
// a lenient textual match: the first two tokens of either name must prefix
// the other (so "OR 1" and "OR 1 (Gen)" resolve to the same room), with
// exact equality as the fallback. A label that matches no canonical room is
// dropped from grid output.
package room

import (
	"strings"

	"or-schedule-backend/internal/model"
)

// prefixKey returns the first two whitespace-separated tokens of a name,
// or the whole name when it has fewer than two tokens.
func prefixKey(name string) string {
	tokens := strings.Fields(name)
	if len(tokens) > 2 {
		tokens = tokens[:2]
	}
	return strings.Join(tokens, " ")
}

// Matches reports whether a case's room label refers to the canonical room
// name.
func Matches(canonical, label string) bool {
	if strings.HasPrefix(label, prefixKey(canonical)) || strings.HasPrefix(canonical, prefixKey(label)) {
		return true
	}
	return canonical == label
}

// Resolve finds the canonical room for a case's room label. The first
// matching room in list order wins.
func Resolve(label string, rooms []model.Room) (model.Room, bool) {
	if strings.TrimSpace(label) == "" {
		return model.Room{}, false
	}
	for _, r := range rooms {
		if strings.HasPrefix(label, prefixKey(r.Name)) || strings.HasPrefix(r.Name, prefixKey(label)) {
			return r, true
		}
	}
	for _, r := range rooms {
		if r.Name == label {
			return r, true
		}
	}
	return model.Room{}, false
}

// GroupByRoom buckets cases under their canonical room name. Every canonical
// room appears in the result, with cases in insertion order; cases whose
// label resolves to no room are excluded.
func GroupByRoom(cases []model.Case, rooms []model.Room) map[string][]model.Case {
	grouped := make(map[string][]model.Case, len(rooms))
	for _, r := range rooms {
		grouped[r.Name] = []model.Case{}
	}
	for _, c := range cases {
		if r, ok := Resolve(c.Room, rooms); ok {
			grouped[r.Name] = append(grouped[r.Name], c)
		}
	}
	return grouped
}
