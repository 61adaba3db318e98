// SPDX-License-Identifier: EPL-2.0

package host

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"

	"github.com/decred/slog"
	"github.com/ik5/audgrain/grain"
)

// BytesPerFrame is the size of one stereo float32 frame produced by Read.
const BytesPerFrame = 8

const eventQueue = 64

var ErrClosed = errors.New("node closed")

// EventKind tells what an Event reports.
type EventKind int

const (
	EventPlay EventKind = iota
	EventFinished
)

func (k EventKind) String() string {
	if k == EventFinished {
		return "finished"
	}

	return "play"
}

// Event is a playback notification. Block counts rendered blocks since the
// node was created.
type Event struct {
	Kind  EventKind
	Block uint64
	Frame int
}

// Node wraps an Engine for use from several goroutines. Parameter updates
// and triggers may come from anywhere; rendering happens only inside Read.
type Node struct {
	log    slog.Logger
	engine *grain.Engine
	frames int

	params atomic.Pointer[grain.Params]

	mu          sync.Mutex
	pendingPlay bool
	pendingStop bool

	renderMu sync.Mutex
	in       grain.Input
	buf      []byte
	off      int

	closed   atomic.Bool
	blocks   atomic.Uint64
	grains   atomic.Uint64
	voices   atomic.Int32
	position atomic.Uint64
	playing  atomic.Bool
	events   chan Event
}

// NewNode builds an engine from cfg that renders blockFrames per block.
func NewNode(cfg grain.Config, blockFrames int) (*Node, error) {
	eng, err := grain.New(cfg)
	if err != nil {
		return nil, err
	}
	cfg = eng.Config()
	if blockFrames <= 0 || blockFrames > cfg.MaxBlockSize {
		return nil, fmt.Errorf("block of %d frames (max %d): %w", blockFrames, cfg.MaxBlockSize, grain.ErrInvalidBlockSize)
	}

	n := &Node{
		log:    cfg.Logger,
		engine: eng,
		frames: blockFrames,
		in: grain.Input{
			Play: make([]int, 0, 1),
			Stop: make([]int, 0, 1),
		},
		buf:    make([]byte, blockFrames*BytesPerFrame),
		events: make(chan Event, eventQueue),
	}
	n.off = len(n.buf)
	p := grain.DefaultParams()
	n.params.Store(&p)

	return n, nil
}

// SetParams replaces the parameters used from the next block on.
func (n *Node) SetParams(p grain.Params) {
	n.params.Store(&p)
}

func (n *Node) Params() grain.Params {
	return *n.params.Load()
}

// UpdateParams applies fn to a copy of the current parameters and stores
// the result. Concurrent updates are serialised.
func (n *Node) UpdateParams(fn func(p *grain.Params)) {
	n.mu.Lock()
	defer n.mu.Unlock()

	p := *n.params.Load()
	fn(&p)
	n.params.Store(&p)
}

// Play queues a play trigger for the start of the next block.
func (n *Node) Play() {
	n.mu.Lock()
	n.pendingPlay = true
	n.mu.Unlock()
}

// Stop queues a stop trigger for the start of the next block. It cancels a
// play queued for the same block.
func (n *Node) Stop() {
	n.mu.Lock()
	n.pendingStop = true
	n.pendingPlay = false
	n.mu.Unlock()
}

// Events delivers play and finish notifications. Events are dropped when
// the channel is full.
func (n *Node) Events() <-chan Event { return n.events }

func (n *Node) BlockFrames() int      { return n.frames }
func (n *Node) SampleRate() int       { return n.engine.Config().SampleRate }
func (n *Node) Blocks() uint64        { return n.blocks.Load() }
func (n *Node) GrainsStarted() uint64 { return n.grains.Load() }
func (n *Node) ActiveVoices() int     { return int(n.voices.Load()) }
func (n *Node) Playing() bool         { return n.playing.Load() }

// Position returns the playhead in seconds as of the last rendered block.
func (n *Node) Position() float64 {
	return math.Float64frombits(n.position.Load())
}

// Read renders interleaved stereo float32 little-endian samples into p.
// It never blocks on I/O and returns io.EOF once the node is closed.
func (n *Node) Read(p []byte) (int, error) {
	n.renderMu.Lock()
	defer n.renderMu.Unlock()

	if n.closed.Load() {
		return 0, io.EOF
	}

	written := 0
	for written < len(p) {
		if n.off >= len(n.buf) {
			n.render()
		}
		c := copy(p[written:], n.buf[n.off:])
		n.off += c
		written += c
	}

	return written, nil
}

// Close stops playback; further reads return io.EOF.
func (n *Node) Close() error {
	if n.closed.Swap(true) {
		return ErrClosed
	}

	n.renderMu.Lock()
	n.engine.Reset()
	n.playing.Store(false)
	n.voices.Store(0)
	n.renderMu.Unlock()

	return nil
}

func (n *Node) render() {
	in := &n.in
	in.Frames = n.frames
	in.Play = in.Play[:0]
	in.Stop = in.Stop[:0]

	n.mu.Lock()
	if n.pendingStop {
		in.Stop = append(in.Stop, 0)
	}
	if n.pendingPlay {
		in.Play = append(in.Play, 0)
	}
	n.pendingPlay, n.pendingStop = false, false
	n.mu.Unlock()

	in.Params = *n.params.Load()

	out, err := n.engine.ProcessBlock(in)
	if err != nil {
		n.log.Errorf("Render: %v", err)
	}

	clear(n.buf)
	for i := range out.Left {
		binary.LittleEndian.PutUint32(n.buf[i*BytesPerFrame:], math.Float32bits(out.Left[i]))
		binary.LittleEndian.PutUint32(n.buf[i*BytesPerFrame+4:], math.Float32bits(out.Right[i]))
	}
	n.off = 0

	block := n.blocks.Add(1) - 1
	n.grains.Add(uint64(len(out.Events.OnGrain)))
	n.voices.Store(int32(out.ActiveVoices))
	n.position.Store(math.Float64bits(out.Position))
	n.playing.Store(n.engine.State() == grain.Playing)

	for _, f := range out.Events.OnFinished {
		n.notify(Event{Kind: EventFinished, Block: block, Frame: f})
	}
	for _, f := range out.Events.OnPlay {
		n.notify(Event{Kind: EventPlay, Block: block, Frame: f})
	}
}

func (n *Node) notify(ev Event) {
	select {
	case n.events <- ev:
	default:
		n.log.Debugf("Event queue full, dropped %v", ev.Kind)
	}
}
