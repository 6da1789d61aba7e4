package media

import (
	"reflect"
	"testing"

	"loopcut/taskerr"
)

func TestParseCodec(t *testing.T) {
	for _, name := range []string{"mp3", "aac", "copy"} {
		cfg, err := ParseCodec(name, "2")
		if err != nil {
			t.Fatalf("ParseCodec(%q): %v", name, err)
		}
		if string(cfg.Codec) != name {
			t.Errorf("codec = %q", cfg.Codec)
		}
	}

	for _, name := range []string{"", "ogg", "MP3", "wav"} {
		_, err := ParseCodec(name, "2")
		if err == nil {
			t.Fatalf("ParseCodec(%q): expected error", name)
		}
		if got := taskerr.CodeOf(err); got != taskerr.CodeValidation {
			t.Errorf("ParseCodec(%q) code = %s", name, got)
		}
	}
}

func TestCodecArgs(t *testing.T) {
	cases := []struct {
		cfg  CodecConfig
		want []string
	}{
		{CodecConfig{Codec: CodecMP3, Quality: "0"}, []string{"-acodec", "libmp3lame", "-q:a", "0"}},
		{CodecConfig{Codec: CodecAAC, Quality: "192k"}, []string{"-acodec", "aac", "-b:a", "192k"}},
		{CodecConfig{Codec: CodecCopy}, []string{"-c", "copy"}},
	}
	for _, tc := range cases {
		if got := tc.cfg.Args(); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("%s args = %v, want %v", tc.cfg.Codec, got, tc.want)
		}
	}
}
