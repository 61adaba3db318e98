// SPDX-License-Identifier: EPL-2.0

package audgrain

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ik5/audgrain/audio"
	"github.com/ik5/audgrain/formats/aiff"
	"github.com/ik5/audgrain/formats/mp3"
	"github.com/ik5/audgrain/formats/vorbis"
	"github.com/ik5/audgrain/formats/wav"
)

// DefaultRegistry returns a registry with every bundled decoder, keyed by
// lower-case file extension without the dot.
func DefaultRegistry() *audio.Registry {
	r := audio.NewRegistry()
	r.Register("wav", wav.Decoder{})
	r.Register("wave", wav.Decoder{})
	r.Register("mp3", mp3.Decoder{})
	r.Register("ogg", vorbis.Decoder{})
	r.Register("oga", vorbis.Decoder{})
	r.Register("aiff", aiff.Decoder{})
	r.Register("aif", aiff.Decoder{})

	return r
}

// LoadFile decodes the file at path into memory, picking the decoder from
// the file extension. A nil registry means DefaultRegistry.
func LoadFile(reg *audio.Registry, path string, opts audio.LoadOptions) (*audio.PCMWave, error) {
	if reg == nil {
		reg = DefaultRegistry()
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	dec, ok := reg.Get(ext)
	if !ok {
		return nil, fmt.Errorf("%s: %w %q (known: %s)", path, ErrUnknownFormat, ext, strings.Join(reg.Formats(), ", "))
	}

	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	src, err := dec.Decode(fd)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	w, err := audio.LoadWave(filepath.Base(path), src, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return w, nil
}
