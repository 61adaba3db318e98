// SPDX-License-Identifier: EPL-2.0

package audgrain

import (
	"fmt"

	"github.com/ik5/audgrain/grain"
	"github.com/ik5/audgrain/utils"
)

// Render plays p on eng from a stopped state for frames samples and returns
// the output as interleaved stereo float32. The engine is stopped again
// before returning.
//
// It fails with grain.ErrInvalidAsset when the engine refuses to play.
func Render(eng *grain.Engine, p grain.Params, frames, blockFrames int) ([]float32, error) {
	if frames <= 0 {
		return nil, fmt.Errorf("%d frames: %w", frames, ErrInvalidLength)
	}
	if blockFrames <= 0 {
		blockFrames = eng.Config().MaxBlockSize
	}

	eng.Reset()
	defer eng.Reset()

	dst := make([]float32, 0, frames*2)
	in := &grain.Input{Play: []int{0}, Params: p}
	for done := 0; done < frames; {
		in.Frames = min(blockFrames, frames-done)
		out, err := eng.ProcessBlock(in)
		if err != nil {
			return nil, err
		}
		if done == 0 && eng.State() != grain.Playing {
			return nil, fmt.Errorf("render: %w", grain.ErrInvalidAsset)
		}
		in.Play = nil

		for i := range out.Left {
			dst = append(dst, out.Left[i], out.Right[i])
		}
		done += in.Frames
	}

	return dst, nil
}

// RenderToStereo16 is Render followed by conversion to 16-bit PCM.
func RenderToStereo16(eng *grain.Engine, p grain.Params, frames, blockFrames int) ([]int16, error) {
	f32, err := Render(eng, p, frames, blockFrames)
	if err != nil {
		return nil, err
	}

	pcm := make([]int16, len(f32))
	for i, x := range f32 {
		pcm[i] = utils.Float32ToInt16(x)
	}

	return pcm, nil
}
