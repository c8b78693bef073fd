package application

import "sync"

type SlotState string

const (
	SlotIdle    SlotState = "idle"
	SlotLoading SlotState = "loading"
	SlotReady   SlotState = "ready"
	SlotFailed  SlotState = "failed"
)

// Slot is the state of one fetchable entity (or list) in a store.
type Slot[T any] struct {
	State SlotState
	Value T
	Err   error
}

func (s Slot[T]) Loading() bool { return s.State == SlotLoading }

// slotTable holds keyed slots. Each begin hands out a sequence number and only
// the latest one for a key may commit, so a slow older response never
// overwrites a newer one.
type slotTable[T any] struct {
	mu    sync.RWMutex
	slots map[string]Slot[T]
	seq   map[string]uint64
}

func newSlotTable[T any]() *slotTable[T] {
	return &slotTable[T]{slots: map[string]Slot[T]{}, seq: map[string]uint64{}}
}

func (t *slotTable[T]) begin(key string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq[key]++
	s := t.slots[key]
	s.State, s.Err = SlotLoading, nil
	t.slots[key] = s
	return t.seq[key]
}

// commit settles the slot with the result of the fetch numbered seq. Only
// the latest fetch for a key is written; a superseded caller still gets its
// own settled result back.
func (t *slotTable[T]) commit(key string, seq uint64, v T, err error) Slot[T] {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.seq[key] != seq {
		return settled(v, err)
	}
	s := t.slots[key]
	if err != nil {
		s.State, s.Err = SlotFailed, err
	} else {
		s.State, s.Value, s.Err = SlotReady, v, nil
	}
	t.slots[key] = s
	return s
}

func settled[T any](v T, err error) Slot[T] {
	if err != nil {
		return Slot[T]{State: SlotFailed, Err: err}
	}
	return Slot[T]{State: SlotReady, Value: v}
}

// set stores a value produced by a write and supersedes in-flight reads.
func (t *slotTable[T]) set(key string, v T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq[key]++
	t.slots[key] = Slot[T]{State: SlotReady, Value: v}
}

// update rewrites a ready slot in place; other states are left alone.
func (t *slotTable[T]) update(key string, fn func(T) T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.slots[key]
	if !ok || s.State != SlotReady {
		return
	}
	s.Value = fn(s.Value)
	t.slots[key] = s
}

func (t *slotTable[T]) keys() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.slots))
	for k := range t.slots {
		out = append(out, k)
	}
	return out
}

func (t *slotTable[T]) get(key string) Slot[T] {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.slots[key]
	if !ok {
		return Slot[T]{State: SlotIdle}
	}
	return s
}

func (t *slotTable[T]) remove(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq[key]++
	delete(t.slots, key)
}

// notifier fans snapshots out to subscribers.
type notifier[S any] struct {
	mu   sync.Mutex
	next int
	subs map[int]func(S)
}

func (n *notifier[S]) subscribe(fn func(S)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.subs == nil {
		n.subs = map[int]func(S){}
	}
	id := n.next
	n.next++
	n.subs[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs, id)
	}
}

func (n *notifier[S]) publish(s S) {
	n.mu.Lock()
	fns := make([]func(S), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}
