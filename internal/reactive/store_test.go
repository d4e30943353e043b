package reactive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreGetSet(t *testing.T) {
	rt := NewRuntime()
	store := NewStore(rt, map[string]any{
		"user": map[string]any{
			"name":    "Ada",
			"address": map[string]any{"city": "London"},
		},
		"theme": "dark",
	})

	assert.Equal(t, "Ada", store.Get("user.name"))
	assert.Equal(t, "London", store.Get("user.address.city"))
	assert.Nil(t, store.Get("user.missing.deeper"))
	assert.Nil(t, store.Get("theme.color"))

	store.Set("user.address.city", "Paris")
	assert.Equal(t, "Paris", store.Get("user.address.city"))

	store.Set("settings.lang", "en")
	assert.Equal(t, "en", store.Get("settings.lang"))
}

func TestStoreCopyOnWrite(t *testing.T) {
	rt := NewRuntime()
	address := map[string]any{"city": "London"}
	initial := map[string]any{"user": map[string]any{"address": address}}
	store := NewStore(rt, initial)

	before := store.Snapshot()
	store.Set("user.address.city", "Paris")

	assert.Equal(t, "London", address["city"])
	assert.NotEqual(t, before, store.Snapshot())
	assert.Equal(t, "London", lookup(before, splitPath("user.address.city")))
}

func TestStoreNotifiesOnlyAffectedPaths(t *testing.T) {
	rt := NewRuntime()
	store := NewStore(rt, map[string]any{
		"user":  map[string]any{"name": "Ada", "age": 36},
		"theme": "dark",
	})

	var names, themes, users int
	rt.Effect(func() { _ = store.Get("user.name"); names++ })
	rt.Effect(func() { _ = store.Get("theme"); themes++ })
	rt.Effect(func() { _ = store.Get("user"); users++ })

	store.Set("user.age", 37)
	assert.Equal(t, 1, names, "sibling value unchanged")
	assert.Equal(t, 1, themes)
	assert.Equal(t, 2, users, "parent map was copied")

	store.Set("user.name", "Grace")
	assert.Equal(t, 2, names)
	assert.Equal(t, 1, themes)
}

func TestStoreSetIsOneBatch(t *testing.T) {
	rt := NewRuntime()
	store := NewStore(rt, map[string]any{"a": map[string]any{"b": 1}})

	runs := 0
	rt.Effect(func() {
		_ = store.Get("a")
		_ = store.Get("a.b")
		_ = store.Snapshot()
		runs++
	})

	store.Set("a.b", 2)
	assert.Equal(t, 2, runs)
}

func TestStoreReplaceRoot(t *testing.T) {
	rt := NewRuntime()
	store := NewStore(rt, nil)
	assert.Empty(t, store.Snapshot())

	store.Set("", map[string]any{"x": 1})
	assert.Equal(t, 1, store.Get("x"))

	store.Set("", "not a map")
	assert.Equal(t, 1, store.Get("x"))
}
