// SPDX-License-Identifier: EPL-2.0

package grain

import "math"

// GrainParameters is the resolved description of one grain.
type GrainParameters struct {
	// StartTime is where the source read begins, in seconds. For reversed
	// grains it is the start of the segment that is played backwards.
	StartTime float64
	// Duration is the output length in seconds.
	Duration  float64
	Semitones float64
	Ratio     float64
	Pan       float64
	Volume    float64
	Reversed  bool
	// SourceFrames is the segment length read up front by reversed grains.
	SourceFrames int

	assetDuration float64
	phaseOffset   float64
}

// Region returns the span of the source the grain covers, in seconds.
func (g GrainParameters) Region() (float64, float64) {
	end := g.StartTime + g.Duration*g.Ratio
	if g.assetDuration > 0 {
		end = math.Min(end, g.assetDuration)
	}

	return g.StartTime, end
}

// GrainEvent reports a grain started within a block.
type GrainEvent struct {
	// Frame is an estimate; when several grains fire in one block their
	// frames are derived from the remaining counter, not tracked exactly.
	Frame int
	GrainParameters
}

// Events are the frame-stamped notifications of one block.
type Events struct {
	OnPlay     []int
	OnFinished []int
	OnGrain    []GrainEvent
}

func (e *Events) reset() {
	e.OnPlay = e.OnPlay[:0]
	e.OnFinished = e.OnFinished[:0]
	e.OnGrain = e.OnGrain[:0]
}

// Input is one block request. Play and Stop hold the frames at which the
// triggers fired.
type Input struct {
	Frames int
	Play   []int
	Stop   []int
	Params Params
}

// Output is owned by the Engine and valid until the next ProcessBlock.
type Output struct {
	Left         []float32
	Right        []float32
	Events       Events
	Position     float64
	ActiveVoices int
}
