package media

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"loopcut/logger"
	"loopcut/taskerr"
)

// FFmpeg invokes the external prober and transcoder binaries.
type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
	runner      Runner
}

// NewFFmpeg creates an FFmpeg using the given binary paths and runner.
func NewFFmpeg(ffmpegPath, ffprobePath string, runner Runner) *FFmpeg {
	return &FFmpeg{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath, runner: runner}
}

// ProbeDuration returns the duration of a media file in seconds.
func (f *FFmpeg) ProbeDuration(ctx context.Context, path string) (float64, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=nw=1:nk=1",
		path,
	}

	out, err := f.runner.Run(ctx, f.ffprobePath, args)
	if err != nil {
		return 0, taskerr.Wrap(taskerr.CodeProbe, err, "ffprobe failed for %s", filepath.Base(path))
	}

	raw := strings.TrimSpace(string(out))
	duration, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, taskerr.Wrap(taskerr.CodeProbe, err, "ffprobe returned non-numeric duration %q for %s", raw, filepath.Base(path))
	}
	return duration, nil
}

// ExportSegments extracts one output file per adjacent cut pair, strictly
// in cut order. It aborts on the first failing segment; there is no
// partial-success accumulation.
func (f *FFmpeg) ExportSegments(ctx context.Context, inputPath string, cuts []float64, codec CodecConfig, ext, outDir string) ([]string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, taskerr.Wrap(taskerr.CodeExport, err, "create output directory %s", outDir)
	}

	outputs := make([]string, 0, len(cuts)-1)
	for i := 0; i < len(cuts)-1; i++ {
		ss := cuts[i]
		dur := math.Max(0.0, cuts[i+1]-ss)
		outFile := filepath.Join(outDir, fmt.Sprintf("part_%03d.%s", i+1, ext))

		args := []string{
			"-hide_banner", "-y",
			"-ss", Timecode(ss),
			"-t", Timecode(dur),
			"-i", inputPath,
			"-vn",
		}
		args = append(args, codec.Args()...)
		args = append(args, "-map_metadata", "-1", outFile)

		logger.Debug("exporting segment",
			logger.Int("index", i+1),
			logger.Float64("start", ss),
			logger.Float64("duration", dur),
			logger.String("output", outFile))

		if _, err := f.runner.Run(ctx, f.ffmpegPath, args); err != nil {
			return nil, taskerr.Wrap(taskerr.CodeExport, err, "ffmpeg failed on segment %d", i+1)
		}
		outputs = append(outputs, outFile)
	}
	return outputs, nil
}

// MergeOpts configures ConcatVideos. With Reencode set the output is
// H.264 + AAC for maximum compatibility; otherwise streams are copied,
// which requires identical codecs and parameters across inputs.
type MergeOpts struct {
	Reencode   bool
	CRF        string
	Preset     string
	AACBitrate string
}

// ConcatVideos joins the files named in listFile (concat demuxer format)
// into outPath.
func (f *FFmpeg) ConcatVideos(ctx context.Context, listFile, outPath string, opts MergeOpts) error {
	args := []string{
		"-hide_banner", "-y",
		"-f", "concat", "-safe", "0",
		"-i", listFile,
	}
	if opts.Reencode {
		args = append(args,
			"-c:v", "libx264", "-preset", opts.Preset, "-crf", opts.CRF,
			"-c:a", "aac", "-b:a", opts.AACBitrate,
		)
	} else {
		args = append(args, "-c", "copy")
	}
	args = append(args, "-movflags", "+faststart", outPath)

	if _, err := f.runner.Run(ctx, f.ffmpegPath, args); err != nil {
		if !opts.Reencode {
			return taskerr.Wrap(taskerr.CodeExport, err, "ffmpeg could not join in copy mode, try reencode=true")
		}
		return taskerr.Wrap(taskerr.CodeExport, err, "ffmpeg could not join the videos")
	}
	return nil
}
