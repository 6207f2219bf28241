package media

// Hooks for the external media_test package.

func (p *Player) QueueLen() int {
	if p.queue == nil {
		return 0
	}
	return p.queue.Len()
}

func (p *Player) QueueCap() int {
	if p.queue == nil {
		return 0
	}
	return p.queue.Cap()
}

func (p *Player) RingLen() int {
	if p.ring == nil {
		return 0
	}
	return p.ring.Len()
}

// DecodeSettled reports whether the background side has caught up: the
// load and priming results are waiting and the decode worker has filled
// the queue (or, for audio-only media, the ring) or reached end of stream.
func (p *Player) DecodeSettled() bool {
	if p.loadTask != nil {
		return len(p.loadTask.done) == 1
	}
	if p.primeTask != nil {
		return len(p.primeTask.done) == 1
	}
	if p.decodeTask != nil {
		if p.queue.Full() || p.feed.ended.Load() {
			return true
		}
		return !p.info.HasVideo && p.ring != nil && p.ring.Free() == 0
	}
	return true
}

func (p *Player) Decoding() bool {
	return p.decodeTask != nil
}

func (p *Player) NextFrameTime() float64 {
	return p.clock.NextFrameTime().Seconds()
}
