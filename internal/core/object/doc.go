// Package object implements the engine's object model: intrusively
// reference-counted objects, the tracked allocation path, and Pointer
// handles that share ownership.
//
// # Overview
//
// Every engine entity embeds Base, which makes it an Object:
//
//	type Pawn struct {
//	    object.Base
//	    Health int
//	}
//
//	func (p *Pawn) GetType() *typeinfo.Type {
//	    return p.Runtime().Types().MustLookup("Pawn")
//	}
//
// Objects are created through a Runtime, which records the new address in
// its allocation table before construction completes:
//
//	rt := object.NewRuntime(object.Options{})
//	raw, err := object.New[Pawn](rt)  // count 0, tracked
//	p := object.NewPointer(raw)        // count 1
//	q := p.Clone()                     // count 2
//	p.Release()                        // count 1
//	q.Release()                        // count 0: Destroy, table entry removed
//
// # Construction paths
//
//   - New: tracked. The address is in the table at construction time, so
//     the count starts at 0 and the last Pointer to drop destroys the
//     object.
//   - Construct: placement into memory the runtime did not hand out (a
//     field of another struct, a stack value). No table entry; the count
//     starts at 1, pinning the object so Pointers never destroy it.
//   - NewArray: bulk allocation. Elements skip the table and are pinned
//     like placement constructions; ReleaseArray destroys them.
//
// # Pointer lifecycle
//
// Go has no copy constructors or destructors, so handle operations are
// explicit: NewPointer and Clone take a reference, Set and Assign swap the
// pointee (new reference first, then the old one is dropped), Release
// drops it. Copying a *Pointer value copies the handle's address, not the
// handle; use Clone for a second owner.
//
// # Thread Safety
//
// The reference count is an atomic cell, but the runtime as a whole is
// single-goroutine unless created with Options.Concurrent, which selects
// a mutex-guarded allocation table and serializes runtime bookkeeping.
// Sharing one Pointer value between goroutines without synchronization is
// never safe.
package object
