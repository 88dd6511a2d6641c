package tokens

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// stringSet is a set of strings that remembers first-insertion order,
// so materialized token lists are stable across runs.
type stringSet struct {
	m *orderedmap.OrderedMap[string, struct{}]
}

func newStringSet() stringSet {
	return stringSet{m: orderedmap.New[string, struct{}]()}
}

func (s stringSet) add(v string) {
	s.m.Set(v, struct{}{})
}

func (s stringSet) slice() []string {
	out := make([]string, 0, s.m.Len())
	for pair := s.m.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}
