package media

import (
	"loopcut/taskerr"
)

// Codec selects the audio codec used for exported segments.
type Codec string

const (
	CodecMP3  Codec = "mp3"
	CodecAAC  Codec = "aac"
	CodecCopy Codec = "copy"
)

// CodecConfig selects the transcoder's audio-codec arguments for one export.
// Quality means "-q:a" (0-2) for mp3 and "-b:a" (e.g. "192k") for aac; it is
// ignored for copy.
type CodecConfig struct {
	Codec   Codec
	Quality string
}

// ParseCodec validates a caller-supplied codec name. Called before any
// download or subprocess work so bad requests fail cheaply.
func ParseCodec(name, quality string) (CodecConfig, error) {
	switch Codec(name) {
	case CodecMP3, CodecAAC, CodecCopy:
		return CodecConfig{Codec: Codec(name), Quality: quality}, nil
	default:
		return CodecConfig{}, taskerr.New(taskerr.CodeValidation, "invalid codec %q (use mp3|aac|copy)", name)
	}
}

// Args returns the ffmpeg codec arguments for this configuration.
func (c CodecConfig) Args() []string {
	switch c.Codec {
	case CodecMP3:
		return []string{"-acodec", "libmp3lame", "-q:a", c.Quality}
	case CodecAAC:
		return []string{"-acodec", "aac", "-b:a", c.Quality}
	default:
		return []string{"-c", "copy"}
	}
}
