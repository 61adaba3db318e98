// SPDX-License-Identifier: EPL-2.0

// Package preset loads grain engine settings from JSON files.
//
// A preset only lists the fields it changes:
//
//	{
//	  "wave_path": "texture.wav",
//	  "grain_duration_ms": 80,
//	  "active_voices": 6,
//	  "window_shape": "gaussian",
//	  "pitch_rand": 3,
//	  "speed": 25
//	}
package preset
