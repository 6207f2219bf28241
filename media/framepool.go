package media

import "sync"

// FramePool recycles raw pixel buffers of one fixed size so the decode
// worker does not allocate per frame.
type FramePool struct {
	mu         sync.Mutex
	frameBytes int
	free       [][]byte
}

func NewFramePool(frameBytes int) *FramePool {
	return &FramePool{frameBytes: frameBytes}
}

// FrameBytes is the size of every buffer handed out by the pool.
func (p *FramePool) FrameBytes() int {
	return p.frameBytes
}

// Acquire returns a released buffer, or a new one when none is free.
func (p *FramePool) Acquire() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n := len(p.free); n > 0 {
		buf := p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
		return buf
	}
	return make([]byte, p.frameBytes)
}

// Release hands buf back for reuse. Buffers of another size (left over from
// a previous Load) are dropped.
func (p *FramePool) Release(buf []byte) {
	if len(buf) != p.frameBytes {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.free = append(p.free, buf)
}

// Idle returns the number of buffers waiting in the pool.
func (p *FramePool) Idle() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}

// FrameQueue is the bounded FIFO of decoded-but-not-presented frames. It
// never grows past its capacity: TryPush on a full queue fails and the
// producer has to wait for the presentation side to pop.
type FrameQueue struct {
	mu     sync.Mutex
	frames [][]byte
	head   int
	size   int
}

func NewFrameQueue(capacity int) *FrameQueue {
	if capacity < 1 {
		capacity = 1
	}
	return &FrameQueue{frames: make([][]byte, capacity)}
}

// TryPush appends frame unless the queue is full.
func (q *FrameQueue) TryPush(frame []byte) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size == len(q.frames) {
		return false
	}
	q.frames[(q.head+q.size)%len(q.frames)] = frame
	q.size++
	return true
}

// TryPop removes the oldest frame.
func (q *FrameQueue) TryPop() ([]byte, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size == 0 {
		return nil, false
	}
	frame := q.frames[q.head]
	q.frames[q.head] = nil
	q.head = (q.head + 1) % len(q.frames)
	q.size--
	return frame, true
}

func (q *FrameQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

func (q *FrameQueue) Cap() int {
	return len(q.frames)
}

func (q *FrameQueue) Full() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size == len(q.frames)
}

// Drain pops every queued frame and passes it to release.
func (q *FrameQueue) Drain(release func([]byte)) {
	for {
		frame, ok := q.TryPop()
		if !ok {
			return
		}
		if release != nil {
			release(frame)
		}
	}
}
