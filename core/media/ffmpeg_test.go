package media

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"loopcut/taskerr"
)

type call struct {
	bin  string
	args []string
}

type fakeRunner struct {
	calls  []call
	stdout []byte
	fail   error
	failOn int // 1-based call index to fail on; 0 = use fail for all
}

func (r *fakeRunner) Run(ctx context.Context, bin string, args []string) ([]byte, error) {
	r.calls = append(r.calls, call{bin: bin, args: append([]string(nil), args...)})
	if r.fail != nil && (r.failOn == 0 || r.failOn == len(r.calls)) {
		return nil, r.fail
	}
	return r.stdout, nil
}

func TestProbeDuration(t *testing.T) {
	runner := &fakeRunner{stdout: []byte("9.123456\n")}
	f := NewFFmpeg("ffmpeg", "ffprobe", runner)

	dur, err := f.ProbeDuration(context.Background(), "/tmp/in_audio")
	if err != nil {
		t.Fatalf("ProbeDuration: %v", err)
	}
	if dur != 9.123456 {
		t.Errorf("duration = %v", dur)
	}

	want := []string{"-v", "error", "-show_entries", "format=duration", "-of", "default=nw=1:nk=1", "/tmp/in_audio"}
	if runner.calls[0].bin != "ffprobe" {
		t.Errorf("bin = %q", runner.calls[0].bin)
	}
	if !reflect.DeepEqual(runner.calls[0].args, want) {
		t.Errorf("args = %v, want %v", runner.calls[0].args, want)
	}
}

func TestProbeDurationNonNumeric(t *testing.T) {
	runner := &fakeRunner{stdout: []byte("N/A\n")}
	f := NewFFmpeg("ffmpeg", "ffprobe", runner)

	_, err := f.ProbeDuration(context.Background(), "x")
	if got := taskerr.CodeOf(err); got != taskerr.CodeProbe {
		t.Errorf("code = %s, want %s", got, taskerr.CodeProbe)
	}
}

func TestProbeDurationSubprocessFailureKeepsDiagnostics(t *testing.T) {
	diag := errors.New("ffprobe failed: exit status 1\nInvalid data found")
	runner := &fakeRunner{fail: diag}
	f := NewFFmpeg("ffmpeg", "ffprobe", runner)

	_, err := f.ProbeDuration(context.Background(), "x")
	if got := taskerr.CodeOf(err); got != taskerr.CodeProbe {
		t.Fatalf("code = %s", got)
	}
	if !strings.Contains(err.Error(), "Invalid data found") {
		t.Errorf("diagnostics lost: %v", err)
	}
}

func TestExportSegmentsBuildsOrderedOutputs(t *testing.T) {
	runner := &fakeRunner{}
	f := NewFFmpeg("ffmpeg", "ffprobe", runner)
	outDir := t.TempDir()

	cuts := []float64{0.0, 6.0, 10.0}
	codec := CodecConfig{Codec: CodecMP3, Quality: "2"}
	outputs, err := f.ExportSegments(context.Background(), "/tmp/in_audio", cuts, codec, "mp3", outDir)
	if err != nil {
		t.Fatalf("ExportSegments: %v", err)
	}

	if len(outputs) != 2 {
		t.Fatalf("outputs = %v, want 2 files", outputs)
	}
	if filepath.Base(outputs[0]) != "part_001.mp3" || filepath.Base(outputs[1]) != "part_002.mp3" {
		t.Errorf("outputs misnamed: %v", outputs)
	}

	if len(runner.calls) != 2 {
		t.Fatalf("calls = %d", len(runner.calls))
	}
	first := runner.calls[0].args
	wantFirst := []string{
		"-hide_banner", "-y",
		"-ss", "00:00:00.000",
		"-t", "00:00:06.000",
		"-i", "/tmp/in_audio",
		"-vn",
		"-acodec", "libmp3lame", "-q:a", "2",
		"-map_metadata", "-1",
		filepath.Join(outDir, "part_001.mp3"),
	}
	if !reflect.DeepEqual(first, wantFirst) {
		t.Errorf("first call args = %v\nwant %v", first, wantFirst)
	}

	second := runner.calls[1].args
	if second[3] != "00:00:06.000" || second[5] != "00:00:04.000" {
		t.Errorf("second call -ss/-t = %v/%v", second[3], second[5])
	}
}

func TestExportSegmentsAbortsOnFirstFailure(t *testing.T) {
	runner := &fakeRunner{fail: fmt.Errorf("ffmpeg failed: boom"), failOn: 1}
	f := NewFFmpeg("ffmpeg", "ffprobe", runner)

	_, err := f.ExportSegments(context.Background(), "in", []float64{0, 3, 6, 9}, CodecConfig{Codec: CodecCopy}, "mp3", t.TempDir())
	if got := taskerr.CodeOf(err); got != taskerr.CodeExport {
		t.Fatalf("code = %s", got)
	}
	if len(runner.calls) != 1 {
		t.Errorf("calls after failure = %d, want 1 (no partial-success accumulation)", len(runner.calls))
	}
}

func TestConcatVideosReencodeArgs(t *testing.T) {
	runner := &fakeRunner{}
	f := NewFFmpeg("ffmpeg", "ffprobe", runner)

	opts := MergeOpts{Reencode: true, CRF: "20", Preset: "veryfast", AACBitrate: "192k"}
	if err := f.ConcatVideos(context.Background(), "/ws/inputs.txt", "/ws/out.mp4", opts); err != nil {
		t.Fatalf("ConcatVideos: %v", err)
	}

	want := []string{
		"-hide_banner", "-y",
		"-f", "concat", "-safe", "0",
		"-i", "/ws/inputs.txt",
		"-c:v", "libx264", "-preset", "veryfast", "-crf", "20",
		"-c:a", "aac", "-b:a", "192k",
		"-movflags", "+faststart",
		"/ws/out.mp4",
	}
	if !reflect.DeepEqual(runner.calls[0].args, want) {
		t.Errorf("args = %v\nwant %v", runner.calls[0].args, want)
	}
}

func TestConcatVideosCopyModeFailureHint(t *testing.T) {
	runner := &fakeRunner{fail: errors.New("codec mismatch")}
	f := NewFFmpeg("ffmpeg", "ffprobe", runner)

	err := f.ConcatVideos(context.Background(), "list", "out.mp4", MergeOpts{Reencode: false})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "reencode=true") {
		t.Errorf("copy-mode failure should advise reencode: %v", err)
	}
	if !reflect.DeepEqual(runner.calls[0].args[8:10], []string{"-c", "copy"}) {
		t.Errorf("copy args = %v", runner.calls[0].args)
	}
}
