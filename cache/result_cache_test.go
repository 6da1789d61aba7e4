package cache

import (
	"strings"
	"testing"

	"loopcut/core/split"
)

func TestRequestKeyStable(t *testing.T) {
	dur := 4.2
	req := func() *split.Request {
		return &split.Request{
			Segments:      3,
			AudioURL:      "https://cdn.example.com/a.mp3",
			Codec:         "mp3",
			Quality:       "2",
			Ext:           "mp3",
			VideoDuration: &dur,
		}
	}

	k1 := RequestKey(req())
	k2 := RequestKey(req())
	if k1 == "" || k1 != k2 {
		t.Errorf("key not stable: %q vs %q", k1, k2)
	}
	if !strings.HasPrefix(k1, resultKeyPrefix) {
		t.Errorf("key %q missing namespace prefix", k1)
	}
}

func TestRequestKeyDistinguishesRequests(t *testing.T) {
	base := &split.Request{Segments: 3, AudioURL: "https://cdn.example.com/a.mp3", Codec: "mp3", Quality: "2", Ext: "mp3"}
	other := *base
	other.Segments = 4

	if RequestKey(base) == RequestKey(&other) {
		t.Error("different requests share a cache key")
	}

	flipped := *base
	flipped.FirstInverted = true
	if RequestKey(base) == RequestKey(&flipped) {
		t.Error("first_inverted must change the cache key")
	}
}
