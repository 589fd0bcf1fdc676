// Package core is the public API of the engine runtime core.
//
// It exposes the object model (reference-counted objects and shared
// Pointer handles), the runtime type graph and the tracking allocator that
// tells engine-created objects apart from raw memory.
//
// # Quick Start
//
//	type Pawn struct {
//		core.Base
//		Health int
//	}
//
//	func main() {
//		rt := core.NewRuntime(core.Options{})
//		defer rt.Close()
//
//		raw, err := core.New[Pawn](rt)
//		if err != nil {
//			log.Fatal(err)
//		}
//		p := core.NewPointer(raw) // count 1
//		q := p.Clone()            // count 2
//		p.Release()
//		q.Release()               // count 0: destroyed
//	}
//
// # API Overview
//
//   - Runtime: [NewRuntime], [Options], [Runtime.Stats], [Runtime.LeakReport]
//   - Creation: [New], [Construct], [NewArray], [ReleaseArray], [Create]
//   - Handles: [NewPointer], [Empty], [Upcast], [UpcastChecked]
//   - Types: [RegisterType], [RegisterAbstract], [Type], [Registry]
//   - Errors: [ErrOutOfMemory], [ErrInvalidDereference], [ErrOutOfRange]
//   - Version information: [GetInfo], [Version]
//
// # Construction paths
//
// An object created with [New] has its address recorded in the runtime's
// allocation table before construction, so its count starts at 0 and the
// last handle to let go destroys it. Objects built in place with
// [Construct], or as array elements with [NewArray], start pinned at 1 and
// are never destroyed by handles.
//
// # Thread Safety
//
// A runtime is single-goroutine unless created with Options.Concurrent.
package core
