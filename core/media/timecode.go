package media

import (
	"fmt"
	"math"
)

// Timecode formats seconds as HH:MM:SS.mmm for ffmpeg -ss/-t arguments.
func Timecode(t float64) string {
	whole := int(t)
	ms := int(math.Round((t - float64(whole)) * 1000))
	s := whole % 60
	m := (whole / 60) % 60
	h := whole / 3600
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}
