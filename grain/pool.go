// SPDX-License-Identifier: EPL-2.0

package grain

// Pool is a fixed set of voices. Slots are handed out first-free; a busy
// voice is never taken over.
type Pool struct {
	voices []*Voice
}

func NewPool(cfg Config) *Pool {
	cfg = cfg.withDefaults()
	p := &Pool{voices: make([]*Voice, cfg.MaxVoices)}
	for i := range p.voices {
		p.voices[i] = newVoice(cfg)
	}

	return p
}

// Acquire returns the first inactive voice, or nil when all are busy.
func (p *Pool) Acquire() *Voice {
	for _, v := range p.voices {
		if !v.active {
			return v
		}
	}

	return nil
}

func (p *Pool) Active() int {
	n := 0
	for _, v := range p.voices {
		if v.active {
			n++
		}
	}

	return n
}

func (p *Pool) Len() int { return len(p.voices) }

// Voices exposes the slots in order.
func (p *Pool) Voices() []*Voice { return p.voices }

// Reset deactivates every voice.
func (p *Pool) Reset() {
	for _, v := range p.voices {
		v.stop()
	}
}
