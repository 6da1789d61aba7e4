package media

import "testing"

func TestTimecode(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0.0, "00:00:00.000"},
		{0.5, "00:00:00.500"},
		{3.0, "00:00:03.000"},
		{6.001, "00:00:06.001"},
		{59.999, "00:00:59.999"},
		{61.25, "00:01:01.250"},
		{3599.5, "00:59:59.500"},
		{3600.0, "01:00:00.000"},
		{7322.042, "02:02:02.042"},
	}
	for _, tc := range cases {
		if got := Timecode(tc.in); got != tc.want {
			t.Errorf("Timecode(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
