package object

import (
	"errors"
	"log/slog"
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolkov/enginecore/internal/core/errs"
	"github.com/kolkov/enginecore/internal/core/typeinfo"
)

// pawn reports the "Pawn" Type when one is registered.
type pawn struct {
	Base
	Health    int
	destroyed *int
}

func (p *pawn) GetType() *typeinfo.Type {
	if rt := p.Runtime(); rt != nil {
		if t, ok := rt.Types().Lookup("Pawn"); ok {
			return t
		}
	}
	return p.Base.GetType()
}

func (p *pawn) Destroy() {
	if p.destroyed != nil {
		*p.destroyed++
	}
}

// broken fails construction.
type broken struct {
	Base
}

var errBroken = errors.New("broken constructor")

func (b *broken) Init() error { return errBroken }

type record struct {
	level slog.Level
	msg   string
}

type recordSink struct {
	mu      sync.Mutex
	records []record
}

func (s *recordSink) Log(level slog.Level, msg, _ string, _ int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record{level, msg})
}

func (s *recordSink) count(level slog.Level) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.records {
		if r.level == level {
			n++
		}
	}
	return n
}

func TestBase_TrackedCountStartsAtZero(t *testing.T) {
	rt := NewRuntime(Options{})
	raw, err := New[pawn](rt)
	require.NoError(t, err)

	assert.True(t, raw.Tracked())
	assert.Equal(t, int64(0), raw.GetReferenceCount())
	assert.True(t, rt.Table().Contains(raw.Address()))
	assert.Same(t, rt, raw.Runtime())

	raw.AddReference()
	raw.DropReference()
	assert.True(t, raw.Destroyed())
	assert.False(t, rt.Table().Contains(raw.Address()))
}

func TestBase_DestroyRunsOnce(t *testing.T) {
	rt := NewRuntime(Options{})
	raw, err := New[pawn](rt)
	require.NoError(t, err)
	n := 0
	raw.destroyed = &n

	p := NewPointer(raw)
	q := p.Clone()
	p.Release()
	assert.Equal(t, 0, n)
	q.Release()
	assert.Equal(t, 1, n)
	q.Release()
	assert.Equal(t, 1, n)
}

func TestBase_Underflow(t *testing.T) {
	rt := NewRuntime(Options{})
	raw, err := New[pawn](rt)
	require.NoError(t, err)

	assert.Panics(t, func() { raw.DropReference() })
}

func TestBase_GetType(t *testing.T) {
	var zero pawn
	assert.Nil(t, zero.Base.GetType(), "unconstructed")

	rt := NewRuntime(Options{})
	raw, err := New[pawn](rt)
	require.NoError(t, err)
	assert.Same(t, rt.Types().Root(), raw.GetType())

	pt, err := RegisterType[pawn](rt, "Pawn", rt.Types().Root())
	require.NoError(t, err)
	assert.Same(t, pt, raw.GetType())
	assert.Same(t, pt, raw.typeOf(), "dispatch through the outer object")

	NewPointer(raw).Release()
}

func TestRuntime_PointerScenario(t *testing.T) {
	rt := NewRuntime(Options{})
	raw, err := New[pawn](rt)
	require.NoError(t, err)
	addr := raw.Address()
	n := 0
	raw.destroyed = &n

	p1 := NewPointer(raw)
	assert.Equal(t, int64(1), raw.GetReferenceCount())
	p2 := p1.Clone()
	assert.Equal(t, int64(2), raw.GetReferenceCount())

	p1.Release()
	assert.Equal(t, int64(1), raw.GetReferenceCount())
	assert.Equal(t, 0, n)

	p2.Release()
	assert.Equal(t, 1, n)
	assert.False(t, rt.Table().CheckAndRemove(addr), "entry removed on destruction")
	assert.Equal(t, 0, rt.Stats().Live)
}

func TestRuntime_PoolOverflow(t *testing.T) {
	rt := NewRuntime(Options{})
	ptrs := make([]*Pointer[*pawn], 0, 65)
	for range 65 {
		raw, err := New[pawn](rt)
		require.NoError(t, err)
		ptrs = append(ptrs, NewPointer(raw))
	}

	st := rt.Stats()
	assert.Equal(t, 65, st.Live)
	assert.Equal(t, 65, st.Table.Live)
	assert.Equal(t, 32, st.Table.Pooled)
	assert.Equal(t, 33, st.Table.Overflow)

	for _, p := range ptrs {
		p.Release()
	}
	st = rt.Stats()
	assert.Equal(t, 0, st.Live)
	assert.Equal(t, 0, st.Table.Live)
	assert.Equal(t, uint64(65), st.Created)
	assert.Equal(t, uint64(65), st.Destroyed)
}

func TestRuntime_Budget(t *testing.T) {
	size := uint64(unsafe.Sizeof(pawn{}))
	rt := NewRuntime(Options{MemoryBudget: 2 * size})

	a, err := New[pawn](rt)
	require.NoError(t, err)
	pa := NewPointer(a)
	b, err := New[pawn](rt)
	require.NoError(t, err)
	pb := NewPointer(b)

	_, err = New[pawn](rt)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrOutOfMemory)
	assert.Equal(t, uint64(1), rt.Stats().Failed)
	assert.Equal(t, 2, rt.Table().Len(), "failed creation leaves no entry")

	pa.Release()
	c, err := New[pawn](rt)
	require.NoError(t, err)
	pc := NewPointer(c)
	assert.Equal(t, 2*size, rt.Stats().BytesInUse)

	pb.Release()
	pc.Release()
	assert.Equal(t, uint64(0), rt.Stats().BytesInUse)
}

func TestRuntime_InitFailureRollsBack(t *testing.T) {
	rt := NewRuntime(Options{MemoryBudget: 1 << 20})
	obj, err := New[broken](rt)
	assert.Nil(t, obj)
	assert.ErrorIs(t, err, errBroken)

	st := rt.Stats()
	assert.Equal(t, 0, st.Live)
	assert.Equal(t, 0, st.Table.Live)
	assert.Equal(t, uint64(0), st.BytesInUse)
	assert.Equal(t, uint64(0), st.Created)
	assert.Equal(t, uint64(1), st.Failed)
}

func TestRuntime_PlacementIsPinned(t *testing.T) {
	rt := NewRuntime(Options{})
	var host struct {
		id int
		p  pawn
	}
	n := 0
	host.p.destroyed = &n

	require.NoError(t, Construct(rt, &host.p))
	assert.False(t, host.p.Tracked())
	assert.Equal(t, int64(1), host.p.GetReferenceCount())

	p := NewPointer(&host.p)
	q := p.Clone()
	p.Release()
	q.Release()
	assert.Equal(t, int64(1), host.p.GetReferenceCount())
	assert.Equal(t, 0, n, "pinned object never destroyed by handles")
	assert.Equal(t, 0, rt.Stats().Live)
	assert.Equal(t, uint64(1), rt.Stats().Placed)

	assert.Error(t, Construct(rt, &host.p), "second construction")
}

// holder's first field shares the holder's address.
type holder struct {
	Inner pawn
	Base
}

func (h *holder) GetType() *typeinfo.Type { return h.Base.GetType() }

func TestRuntime_PlacementAtTrackedAddress(t *testing.T) {
	rt := NewRuntime(Options{})
	h, err := New[holder](rt)
	require.NoError(t, err)
	hp := NewPointer(h)

	require.NoError(t, Construct(rt, &h.Inner))
	assert.False(t, h.Inner.Tracked(), "table entry belongs to the holder")
	assert.Equal(t, int64(1), h.Inner.GetReferenceCount())

	hp.Release()
	assert.True(t, h.Destroyed())
	assert.Equal(t, 0, rt.Table().Len())
}

func TestRuntime_Arrays(t *testing.T) {
	size := uint64(unsafe.Sizeof(pawn{}))
	rt := NewRuntime(Options{})

	arr, err := NewArray[pawn](rt, 3)
	require.NoError(t, err)
	require.Len(t, arr, 3)
	assert.Equal(t, 0, rt.Table().Len(), "arrays skip the table")
	for i := range arr {
		assert.Equal(t, int64(1), arr[i].GetReferenceCount())
		assert.False(t, arr[i].Tracked())
	}
	st := rt.Stats()
	assert.Equal(t, uint64(1), st.Arrays)
	assert.Equal(t, 3*size, st.BytesInUse)

	n := 0
	for i := range arr {
		arr[i].destroyed = &n
	}
	ReleaseArray(rt, arr)
	assert.Equal(t, 3, n)
	assert.Equal(t, uint64(0), rt.Stats().BytesInUse)

	_, err = NewArray[pawn](rt, -1)
	assert.ErrorIs(t, err, errs.ErrOutOfRange)
}

func TestRuntime_ReleaseArraySharedElement(t *testing.T) {
	sink := &recordSink{}
	rt := NewRuntime(Options{Log: sink})

	arr, err := NewArray[pawn](rt, 2)
	require.NoError(t, err)
	n := 0
	arr[0].destroyed, arr[1].destroyed = &n, &n

	p := NewPointer(&arr[0])
	ReleaseArray(rt, arr)

	assert.Equal(t, 1, n, "unshared element destroyed")
	assert.Equal(t, 1, sink.count(slog.LevelWarn))
	assert.Equal(t, uint64(0), rt.Stats().BytesInUse)

	got, err := p.Get()
	require.NoError(t, err)
	assert.False(t, got.Destroyed())
	assert.Equal(t, int64(1), got.GetReferenceCount())

	p.Release()
	assert.Equal(t, 2, n)
	assert.True(t, arr[0].Destroyed())
}

func TestRuntime_ArrayBudget(t *testing.T) {
	size := uint64(unsafe.Sizeof(pawn{}))
	rt := NewRuntime(Options{MemoryBudget: 4 * size})
	_, err := NewArray[pawn](rt, 5)
	assert.ErrorIs(t, err, errs.ErrOutOfMemory)
	assert.Equal(t, uint64(0), rt.Stats().Arrays)
}

func TestRuntime_CreateFromType(t *testing.T) {
	rt := NewRuntime(Options{})
	root := rt.Types().Root()
	actor, err := RegisterAbstract[pawn](rt, "Actor", root)
	require.NoError(t, err)
	pt, err := RegisterType[pawn](rt, "Pawn", actor)
	require.NoError(t, err)

	p, err := Create(actor)
	require.NoError(t, err)
	assert.False(t, p.Valid(), "abstract types yield an empty handle")

	p, err = Create(pt)
	require.NoError(t, err)
	require.True(t, p.Valid())
	obj := p.MustGet()
	assert.Equal(t, int64(1), obj.GetReferenceCount())
	assert.Same(t, pt, obj.GetType())
	assert.True(t, obj.GetType().IsDerivedFrom(actor))

	p.Release()
	assert.Equal(t, 0, rt.Table().Len())
}

func TestRuntime_CreateNonObject(t *testing.T) {
	rt := NewRuntime(Options{})
	bad, err := rt.Types().Register("Bad", 8, rt.Types().Root(), func() (any, error) { return 42, nil })
	require.NoError(t, err)

	_, err = Create(bad)
	assert.ErrorContains(t, err, "non-object")
}

func TestRuntime_Close(t *testing.T) {
	sink := &recordSink{}
	rt := NewRuntime(Options{Log: sink})

	kept, err := New[pawn](rt)
	require.NoError(t, err)
	p := NewPointer(kept)
	gone, err := New[pawn](rt)
	require.NoError(t, err)
	NewPointer(gone).Release()

	assert.Equal(t, 1, rt.Close())
	assert.Equal(t, 1, sink.count(slog.LevelWarn))
	assert.Equal(t, 0, rt.Table().Len())
	assert.Equal(t, 0, rt.Close(), "second close")

	_, err = New[pawn](rt)
	assert.ErrorContains(t, err, "closed")

	// Releasing a handle that outlived the runtime is quiet.
	p.Release()
	assert.True(t, kept.Destroyed())
	assert.Equal(t, 0, sink.count(slog.LevelError))
}

func TestRuntime_Concurrent(t *testing.T) {
	rt := NewRuntime(Options{Concurrent: true})
	const workers, perWorker = 8, 200

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			held := make([]*Pointer[*pawn], 0, perWorker)
			for range perWorker {
				raw, err := New[pawn](rt)
				if !assert.NoError(t, err) {
					return
				}
				held = append(held, NewPointer(raw))
			}
			for _, p := range held {
				p.Release()
			}
		}()
	}
	wg.Wait()

	st := rt.Stats()
	assert.Equal(t, 0, st.Live)
	assert.Equal(t, 0, st.Table.Live)
	assert.Equal(t, uint64(workers*perWorker), st.Created)
	assert.Equal(t, uint64(workers*perWorker), st.Destroyed)
}

func TestRuntime_LogsPoolOverflowOnce(t *testing.T) {
	sink := &recordSink{}
	rt := NewRuntime(Options{Log: sink})
	var ptrs []*Pointer[*pawn]
	for range 40 {
		raw, err := New[pawn](rt)
		require.NoError(t, err)
		ptrs = append(ptrs, NewPointer(raw))
	}
	overflow := 0
	for _, r := range sink.records {
		if r.msg == "allocation table pool exhausted, using heap nodes" {
			overflow++
		}
	}
	assert.Equal(t, 1, overflow)
	for _, p := range ptrs {
		p.Release()
	}
}

func BenchmarkNewRelease(b *testing.B) {
	rt := NewRuntime(Options{})
	b.ReportAllocs()
	for b.Loop() {
		raw, err := New[pawn](rt)
		if err != nil {
			b.Fatal(err)
		}
		NewPointer(raw).Release()
	}
}
