package terrain

import (
	"testing"
	"time"
)

func TestRegistryGetOrCreate(t *testing.T) {
	r := NewRegistry(Options{DataRoot: t.TempDir()})

	if r.Get(1) != nil {
		t.Fatal("Get returned a cache before creation")
	}
	c := r.GetOrCreate(1)
	if c == nil || c.MapID() != 1 {
		t.Fatalf("GetOrCreate returned %v", c)
	}
	if r.GetOrCreate(1) != c {
		t.Fatal("GetOrCreate created a second cache for the same map")
	}
	if r.Get(1) != c {
		t.Fatal("Get disagrees with GetOrCreate")
	}
	if r.GetOrCreate(2) == c {
		t.Fatal("distinct maps share a cache")
	}
}

func TestRegistryUnload(t *testing.T) {
	fc := newFakeCollision()
	fn := newFakeNav()
	dir := t.TempDir()
	writeTile(t, dir, 1, 32, 32)

	r := NewRegistry(Options{DataRoot: dir, GridUnload: true, Collision: fc, Nav: fn})
	c := r.GetOrCreate(1)

	// Referenced caches survive an unload request.
	if c.Acquire(32, 32, false) == nil {
		t.Fatal("Acquire failed")
	}
	r.Unload(1)
	if r.Get(1) != c {
		t.Fatal("Unload dropped a referenced cache")
	}

	c.Release(32, 32)
	r.Unload(1)
	if r.Get(1) != nil {
		t.Fatal("Unload kept an unreferenced cache")
	}
	if fc.mapUnloads != 1 || fn.mapUnloads != 1 {
		t.Fatalf("mesh map unloads = (%d, %d), want (1, 1)", fc.mapUnloads, fn.mapUnloads)
	}
}

func TestRegistryUnloadDisabledByConfig(t *testing.T) {
	r := NewRegistry(Options{DataRoot: t.TempDir(), GridUnload: false})
	c := r.GetOrCreate(1)

	r.Unload(1)
	if r.Get(1) != c {
		t.Fatal("Unload dropped a cache with unloading disabled")
	}
}

func TestRegistryUpdateSweeps(t *testing.T) {
	dir := t.TempDir()
	writeTile(t, dir, 1, 32, 32)

	r := NewRegistry(Options{DataRoot: dir, CleanupInterval: time.Second})
	c := r.GetOrCreate(1)
	c.Acquire(32, 32, false)
	c.Release(32, 32)

	r.Update(time.Minute)
	if c.slots[32][32].tile.Load() != nil {
		t.Fatal("Update did not drive the eviction sweep")
	}
}

func TestRegistryUnloadAll(t *testing.T) {
	fc := newFakeCollision()
	r := NewRegistry(Options{DataRoot: t.TempDir(), GridUnload: false, Collision: fc})
	r.GetOrCreate(1)
	r.GetOrCreate(2)

	r.UnloadAll()
	if r.Get(1) != nil || r.Get(2) != nil {
		t.Fatal("UnloadAll left caches behind")
	}
	if fc.mapUnloads != 2 {
		t.Fatalf("mesh map unloads = %d, want 2", fc.mapUnloads)
	}
}
