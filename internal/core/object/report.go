package object

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Leak describes a tracked object still alive.
type Leak struct {
	Addr uintptr
	Type string
	Refs int64
	Site string // Formatted allocation stack; empty without site tracking.
}

// Leaks lists the tracked objects that have not been destroyed, ordered
// by address.
func (rt *Runtime) Leaks() []Leak {
	rt.lock()
	defer rt.unlock()

	leaks := make([]Leak, 0, len(rt.live))
	for addr, lo := range rt.live {
		b := lo.obj.objectBase()
		l := Leak{
			Addr: addr,
			Type: b.typeOf().String(),
			Refs: b.refs.Load(),
		}
		if rt.sites != nil && b.site != 0 {
			if st := rt.sites.Get(b.site); st != nil {
				l.Site = st.Format()
			}
		}
		leaks = append(leaks, l)
	}
	sort.Slice(leaks, func(i, j int) bool { return leaks[i].Addr < leaks[j].Addr })
	return leaks
}

// LeakReport writes a human-readable report of Leaks to w and returns the
// number of leaks. Nothing is written when there are none.
//
// Format:
//
//	==================
//	WARNING: LEAKED OBJECTS
//	Runtime: 6f1c...
//	Object/Pawn at 0xc000012345 (refs=1)
//	  main.spawn()
//	      /src/game/main.go:42
//	==================
func (rt *Runtime) LeakReport(w io.Writer) (int, error) {
	leaks := rt.Leaks()
	if len(leaks) == 0 {
		return 0, nil
	}

	var sb strings.Builder
	sb.WriteString("==================\n")
	sb.WriteString("WARNING: LEAKED OBJECTS\n")
	fmt.Fprintf(&sb, "Runtime: %s\n", rt.id)
	for _, l := range leaks {
		fmt.Fprintf(&sb, "%s at 0x%x (refs=%d)\n", l.Type, l.Addr, l.Refs)
		if l.Site != "" {
			for _, line := range strings.Split(strings.TrimRight(l.Site, "\n"), "\n") {
				sb.WriteString("  ")
				sb.WriteString(line)
				sb.WriteByte('\n')
			}
		}
	}
	fmt.Fprintf(&sb, "Total: %d\n", len(leaks))
	sb.WriteString("==================\n")

	_, err := io.WriteString(w, sb.String())
	return len(leaks), err
}
