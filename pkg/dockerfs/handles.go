package dockerfs

import (
	"sync"

	"github.com/beam-cloud/dockerfs/pkg/metrics"
	"github.com/beam-cloud/dockerfs/pkg/types"
	"github.com/pkg/errors"
)

// Handle packs a slot index in the low 32 bits and the slot generation in
// the high 32 bits, so a released handle never matches a reused slot.
type Handle uint64

func newHandle(index, generation uint32) Handle {
	return Handle(uint64(generation)<<32 | uint64(index))
}

func (h Handle) Index() uint32 {
	return uint32(h)
}

func (h Handle) Generation() uint32 {
	return uint32(h >> 32)
}

type slot struct {
	generation uint32
	inUse      bool
	path       string
}

// HandleTable is a slot map of open files. Indices below reserved are
// never handed out. max bounds the number of slots; zero means unbounded.
type HandleTable struct {
	mu       sync.Mutex
	slots    []slot
	free     []uint32
	reserved uint32
	max      uint32
	open     int
}

func NewHandleTable(reserved, max uint32) *HandleTable {
	return &HandleTable{reserved: reserved, max: max}
}

func (t *HandleTable) Allocate(path string) (Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var pos uint32
	if n := len(t.free); n > 0 {
		pos = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		if t.max > 0 && uint32(len(t.slots)) >= t.max {
			return 0, errors.Wrapf(types.ErrInvariantViolation, "handle table exhausted at %d entries", t.max)
		}
		pos = uint32(len(t.slots))
		t.slots = append(t.slots, slot{generation: 1})
	}

	s := &t.slots[pos]
	s.inUse = true
	s.path = path
	t.open++
	metrics.SetOpenHandles(t.open)

	return newHandle(pos+t.reserved, s.generation), nil
}

// Lookup returns the path the handle was opened for.
func (t *HandleTable) Lookup(h Handle) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := t.slot(h)
	if err != nil {
		return "", err
	}
	return s.path, nil
}

// Release frees the slot. Releasing a handle that is not open is a
// programming error.
func (t *HandleTable) Release(h Handle) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := t.slot(h)
	if err != nil {
		return err
	}

	s.inUse = false
	s.path = ""
	s.generation++
	t.free = append(t.free, h.Index()-t.reserved)
	t.open--
	metrics.SetOpenHandles(t.open)

	return nil
}

func (t *HandleTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.open
}

func (t *HandleTable) slot(h Handle) (*slot, error) {
	index := h.Index()
	if index < t.reserved || index-t.reserved >= uint32(len(t.slots)) {
		return nil, errors.Wrapf(types.ErrInvariantViolation, "unknown handle %d", index)
	}

	s := &t.slots[index-t.reserved]
	if !s.inUse || s.generation != h.Generation() {
		return nil, errors.Wrapf(types.ErrInvariantViolation, "handle %d is not open", index)
	}
	return s, nil
}
