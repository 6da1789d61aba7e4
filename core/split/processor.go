package split

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"loopcut/config"
	"loopcut/core/media"
	"loopcut/logger"
	"loopcut/taskerr"
)

// Fetcher downloads a remote file to a local path, enforcing a byte cap.
type Fetcher interface {
	Download(ctx context.Context, url, dst string, maxBytes int64) error
}

// Prober measures a media file's duration in seconds.
type Prober interface {
	ProbeDuration(ctx context.Context, path string) (float64, error)
}

// Exporter extracts one output file per adjacent cut pair.
type Exporter interface {
	ExportSegments(ctx context.Context, inputPath string, cuts []float64, codec media.CodecConfig, ext, outDir string) ([]string, error)
}

// Publisher uploads a local file under key and returns its public URL.
type Publisher interface {
	Publish(ctx context.Context, localPath, key string) (string, error)
}

// ResultStore replays previously published results for identical requests.
// Both methods are best effort; a store failure never fails the task.
type ResultStore interface {
	Get(ctx context.Context, req *Request) ([]SegmentResult, bool)
	Put(ctx context.Context, req *Request, results []SegmentResult)
}

// Request describes one split_audio task.
type Request struct {
	Segments      int      `json:"segments"`
	AudioURL      string   `json:"audio_url"`
	Codec         string   `json:"codec"`
	Quality       string   `json:"quality"`
	Ext           string   `json:"ext"`
	FirstInverted bool     `json:"first_inverted"`
	VideoDuration *float64 `json:"video_duration,omitempty"`
	VideoURL      string   `json:"video_url,omitempty"`
	Prefix        string   `json:"r2_prefix,omitempty"`
}

// ApplyDefaults fills the optional fields the way the task API documents
// them: mp3 at -q:a 2, .mp3 extension.
func (r *Request) ApplyDefaults() {
	if r.Codec == "" {
		r.Codec = "mp3"
	}
	if r.Quality == "" {
		r.Quality = "2"
	}
	if r.Ext == "" {
		r.Ext = "mp3"
	}
}

// SegmentResult is one entry of the ordered split result.
type SegmentResult struct {
	Audio             string `json:"audio"`
	Key               string `json:"key"`
	StartWithInverted bool   `json:"start_with_inverted"`
}

// Processor orchestrates a split_audio task end to end: download, probe,
// plan, export, publish. One logical task per call, no internal
// parallelism; segments are exported and published strictly in cut order.
type Processor struct {
	cfg     *config.Config
	fetch   Fetcher
	probe   Prober
	export  Exporter
	publish Publisher
	cache   ResultStore // nil disables result caching
}

// NewProcessor wires a Processor from its collaborators. cache may be nil.
func NewProcessor(cfg *config.Config, fetch Fetcher, probe Prober, export Exporter, publish Publisher, cache ResultStore) *Processor {
	return &Processor{
		cfg:     cfg,
		fetch:   fetch,
		probe:   probe,
		export:  export,
		publish: publish,
		cache:   cache,
	}
}

// Process runs one split_audio task and returns the ordered result list.
// The temporary workspace is removed on every exit path. Segments already
// published before a later failure are not rolled back.
func (p *Processor) Process(ctx context.Context, req *Request) ([]SegmentResult, error) {
	req.ApplyDefaults()

	if req.Segments < 1 {
		return nil, taskerr.New(taskerr.CodeValidation, "segments must be >= 1")
	}
	if req.AudioURL == "" {
		return nil, taskerr.New(taskerr.CodeValidation, "audio_url is required")
	}
	codec, err := media.ParseCodec(req.Codec, req.Quality)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		if results, ok := p.cache.Get(ctx, req); ok {
			logger.Info("split result served from cache",
				logger.String("audioUrl", req.AudioURL),
				logger.Int("segments", req.Segments))
			return results, nil
		}
	}

	workspace, err := os.MkdirTemp("", "loopcut-split-*")
	if err != nil {
		return nil, taskerr.Wrap(taskerr.CodeInternal, err, "create workspace")
	}
	defer os.RemoveAll(workspace)

	started := time.Now()

	// Audio.
	audioPath := filepath.Join(workspace, "in_audio")
	if err := p.fetch.Download(ctx, req.AudioURL, audioPath, p.cfg.MaxAudioBytes); err != nil {
		return nil, err
	}
	audioDur, err := p.probe.ProbeDuration(ctx, audioPath)
	if err != nil {
		return nil, err
	}

	// Cycle length: explicit duration wins, otherwise probe the reference video.
	cycle, err := p.resolveCycle(ctx, req, workspace)
	if err != nil {
		return nil, err
	}
	if cycle <= 0 {
		return nil, taskerr.New(taskerr.CodeInvalidCycle, "cycle duration must be > 0")
	}

	cuts, err := ComputeCuts(audioDur, req.Segments, cycle)
	if err != nil {
		return nil, err
	}
	logger.Info("cut plan computed",
		logger.Float64("audioDuration", audioDur),
		logger.Float64("cycle", cycle),
		logger.Int("segments", req.Segments),
		logger.Any("cuts", cuts))

	localFiles, err := p.export.ExportSegments(ctx, audioPath, cuts, codec, req.Ext, filepath.Join(workspace, "chunks"))
	if err != nil {
		return nil, err
	}

	prefix := p.cfg.R2Prefix
	if req.Prefix != "" {
		prefix = strings.Trim(req.Prefix, "/") + "/"
	}

	results := make([]SegmentResult, 0, len(localFiles))
	for idx, localPath := range localFiles {
		key := fmt.Sprintf("%s%s", prefix, filepath.Base(localPath))
		publicURL, err := p.publish.Publish(ctx, localPath, key)
		if err != nil {
			return nil, err
		}

		segStart := cuts[idx]
		clipsPassed := int(math.Floor(segStart / cycle))
		inverted := clipsPassed%2 == 1
		if req.FirstInverted {
			inverted = !inverted
		}
		results = append(results, SegmentResult{
			Audio:             publicURL,
			Key:               key,
			StartWithInverted: inverted,
		})
	}

	if p.cache != nil {
		p.cache.Put(ctx, req, results)
	}

	logger.Info("split task finished",
		logger.Int("segments", len(results)),
		logger.Duration("elapsed", time.Since(started)))
	return results, nil
}

func (p *Processor) resolveCycle(ctx context.Context, req *Request, workspace string) (float64, error) {
	if req.VideoDuration != nil {
		return *req.VideoDuration, nil
	}
	if req.VideoURL == "" {
		return 0, taskerr.New(taskerr.CodeMissingCycleSource, "pass 'video_url' or 'video_duration'")
	}

	videoPath := filepath.Join(workspace, "in_video")
	if err := p.fetch.Download(ctx, req.VideoURL, videoPath, p.cfg.MaxVideoBytes); err != nil {
		return 0, err
	}
	return p.probe.ProbeDuration(ctx, videoPath)
}
