// Package rcu provides a versioned, thread-local, snapshot-isolated
// read-copy-update value store.
//
// A [Store] holds one logical slot of immutable data. Readers call Load
// to get a scoped [Guard] pinning a consistent snapshot; writers call
// Update to atomically install a new value without blocking readers.
// Every read a goroutine performs within one nesting of Guards observes
// the same snapshot, even if writers race ahead in the meantime.
//
// # Quick Start
//
//	store := rcu.New(config{Timeout: time.Second})
//	defer store.Close()
//
//	g := store.Load()
//	cfg := g.MustGet()
//	_ = cfg.Timeout
//	g.Release()
//
//	store.Update(config{Timeout: 2 * time.Second}, nil)
//
// # API Overview
//
// The package provides:
//   - Construction and teardown: [New], [Store.Close]
//   - Reading: [Store.Load], [Store.LoadWithRelease]
//   - Writing: [Store.Update]
//   - Coherent access across multiple Stores: [MakePack2], [MakePack3], [MakePack4]
//   - Off-critical-path disposal: [NewReclaimer]
//
// # How It Works
//
// Each Store pairs a source with a goroutine-keyed cache: the first
// Load by a goroutine copies the current value and its version number
// into that goroutine's cache slot; every later Load in the same scope
// (while a Guard from that slot is still held) reuses the cached pointer
// directly, skipping the atomic load entirely. Only once the outermost
// Guard in a goroutine's nesting closes does the next Load re-check
// whether the Store has advanced.
//
// Disposal of replaced values can happen inline (the default) or be
// handed to a background [Reclaimer], which only drops a value once
// nothing holds a reference to it anymore.
//
// # Examples
//
// See package-level examples in the documentation:
//   - [Example] - Basic load/update usage
//   - [Example_reclaimer] - Off-critical-path disposal
//   - [Example_pack] - Coherent access across two Stores
package rcu
