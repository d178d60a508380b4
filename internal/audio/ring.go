package audio

import "sync/atomic"

// indexRing is a bounded multi-producer/multi-consumer queue of block indices.
// push and pop never block and never allocate; contention costs a bounded
// number of CAS retries, so both are safe from the render and completion paths.
type indexRing struct {
	mask  uint64
	cells []ringCell
	_     [48]byte
	enq   atomic.Uint64
	_     [56]byte
	deq   atomic.Uint64
}

type ringCell struct {
	seq atomic.Uint64
	val uint32
}

// newIndexRing returns a ring holding at least n indices.
func newIndexRing(n int) *indexRing {
	size := 1
	for size < n {
		size <<= 1
	}
	r := &indexRing{
		mask:  uint64(size - 1),
		cells: make([]ringCell, size),
	}
	for i := range r.cells {
		r.cells[i].seq.Store(uint64(i))
	}
	return r
}

// push appends v, reporting false when the ring is full.
func (r *indexRing) push(v uint32) bool {
	pos := r.enq.Load()
	for {
		c := &r.cells[pos&r.mask]
		seq := c.seq.Load()
		switch dif := int64(seq) - int64(pos); {
		case dif == 0:
			if r.enq.CompareAndSwap(pos, pos+1) {
				c.val = v
				c.seq.Store(pos + 1)
				return true
			}
			pos = r.enq.Load()
		case dif < 0:
			return false
		default:
			pos = r.enq.Load()
		}
	}
}

// pop removes the oldest index, reporting false when the ring is empty.
func (r *indexRing) pop() (uint32, bool) {
	pos := r.deq.Load()
	for {
		c := &r.cells[pos&r.mask]
		seq := c.seq.Load()
		switch dif := int64(seq) - int64(pos+1); {
		case dif == 0:
			if r.deq.CompareAndSwap(pos, pos+1) {
				v := c.val
				c.seq.Store(pos + r.mask + 1)
				return v, true
			}
			pos = r.deq.Load()
		case dif < 0:
			return 0, false
		default:
			pos = r.deq.Load()
		}
	}
}

// len is a snapshot; it may be stale by the time the caller reads it.
func (r *indexRing) len() int {
	n := int64(r.enq.Load()) - int64(r.deq.Load())
	if n < 0 {
		return 0
	}
	return int(n)
}
