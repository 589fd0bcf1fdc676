package core_test

import (
	"errors"
	"fmt"

	"github.com/kolkov/enginecore/core"
)

type Pawn struct {
	core.Base
	Name string
}

// Destroy is called when the last handle lets go.
func (p *Pawn) Destroy() {
	fmt.Println("destroyed", p.Name)
}

// Example shows shared ownership through Pointer handles.
func Example() {
	rt := core.NewRuntime(core.Options{})
	defer rt.Close()

	raw, err := core.New[Pawn](rt)
	if err != nil {
		panic(err)
	}
	raw.Name = "hero"

	p1 := core.NewPointer(raw)
	p2 := p1.Clone()
	fmt.Println("refs:", raw.GetReferenceCount())

	p1.Release()
	fmt.Println("refs:", raw.GetReferenceCount())
	p2.Release()
	fmt.Println("live:", rt.Stats().Live)

	// Output:
	// refs: 2
	// refs: 1
	// destroyed hero
	// live: 0
}

// Example_typeGraph builds a small class hierarchy and queries it.
func Example_typeGraph() {
	rt := core.NewRuntime(core.Options{})
	defer rt.Close()

	root := rt.Types().Root()
	actor, _ := core.RegisterAbstract[Pawn](rt, "Actor", root)
	pawn, _ := core.RegisterType[Pawn](rt, "Pawn", actor)

	fmt.Println(pawn)
	fmt.Println(actor.IsParentClassOf(pawn), root.IsBaseOf(pawn), pawn.IsDerivedFrom(root))
	fmt.Println(pawn.IsBaseOf(pawn), actor.IsAbstract())

	// Output:
	// Object/Actor/Pawn
	// true true true
	// false true
}

// Example_emptyDereference shows the error returned by an empty handle.
func Example_emptyDereference() {
	p := core.Empty[*Pawn]()
	_, err := p.Get()
	fmt.Println(errors.Is(err, core.ErrInvalidDereference))

	// Output:
	// true
}

// Example_budget shows allocation failure under a memory budget.
func Example_budget() {
	rt := core.NewRuntime(core.Options{MemoryBudget: 1})
	defer rt.Close()

	_, err := core.New[Pawn](rt)
	fmt.Println(errors.Is(err, core.ErrOutOfMemory))

	// Output:
	// true
}
