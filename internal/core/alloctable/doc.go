// Package alloctable implements the allocation side table used by the
// object runtime.
//
// The table records addresses of objects obtained through the runtime's
// tracked allocation path, so that construction can tell a tracked heap
// object apart from one built into memory the runtime never handed out
// (placement construction, array elements, values embedded in other
// structs).
//
// # Storage
//
// Bookkeeping nodes live in a fixed inline pool of 32 slots addressed by
// index, with a 32-bit occupancy mask:
//
//	usedInPool bit i set  <=>  pool[i] holds a live Allocation
//
// When all 32 slots are taken, nodes are allocated individually on the
// heap. Pool-resident and heap-resident nodes are threaded through one
// doubly linked list; new nodes are pushed at the head.
//
// # Cost
//
//   - Allocate: O(1) (mask scan is a single TrailingZeros32)
//   - CheckAndRemove / Contains: O(n) in live tracked addresses
//
// The linear search is acceptable because only live single-object
// allocations are tracked; arrays and placement constructions never
// enter the table.
//
// # Thread Safety
//
// Table is NOT safe for concurrent use. The object runtime is
// single-goroutine by default; wrap the table with NewSynchronized when
// the runtime is shared between goroutines.
package alloctable
