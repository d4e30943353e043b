package reactive

import (
	"maps"
	"strings"
)

// Store is a reactive tree of nested maps addressed by dotted paths such as
// "user.address.city".
//
// Each path read through Get gets its own signal on first access. Set
// replaces the maps along the written path with copies, leaving the rest of
// the tree shared, and then refreshes every path signal inside one batch.
// Paths whose value kept its identity are not notified.
type Store struct {
	rt    *Runtime
	root  *Signal[map[string]any]
	paths map[string]*Signal[any]
}

// NewStore creates a store holding a shallow copy of initial.
func NewStore(rt *Runtime, initial map[string]any) *Store {
	return &Store{
		rt:    rt,
		root:  NewSignal(rt, cloneMap(initial)),
		paths: make(map[string]*Signal[any]),
	}
}

// Get returns the value at path, tracking the read. Missing paths yield nil.
func (s *Store) Get(path string) any {
	if path == "" {
		return s.root.Get()
	}
	sig, ok := s.paths[path]
	if !ok {
		sig = NewSignal[any](s.rt, lookup(s.root.Peek(), splitPath(path)))
		s.paths[path] = sig
	}
	return sig.Get()
}

// Set writes value at path, creating intermediate maps as needed. The empty
// path replaces the whole tree when value is a map[string]any.
func (s *Store) Set(path string, value any) {
	var next map[string]any
	if path == "" {
		m, ok := value.(map[string]any)
		if !ok {
			return
		}
		next = cloneMap(m)
	} else {
		next = setPath(s.root.Peek(), splitPath(path), value)
	}

	s.rt.Batch(func() {
		s.root.Set(next)
		for p, sig := range s.paths {
			sig.Set(lookup(next, splitPath(p)))
		}
	})
}

// Snapshot returns the current tree, tracking the read. Callers must treat
// it as read-only.
func (s *Store) Snapshot() map[string]any {
	return s.root.Get()
}

func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

func lookup(m map[string]any, keys []string) any {
	var cur any = m
	for _, k := range keys {
		node, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = node[k]
	}
	return cur
}

func setPath(m map[string]any, keys []string, value any) map[string]any {
	out := cloneMap(m)
	if len(keys) == 1 {
		out[keys[0]] = value
		return out
	}
	child, _ := out[keys[0]].(map[string]any)
	out[keys[0]] = setPath(child, keys[1:], value)
	return out
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return make(map[string]any)
	}
	return maps.Clone(m)
}
