// Package merge implements the merge_videos task: a sequential pipeline
// that downloads N remote MP4s, joins them with the ffmpeg concat demuxer
// and uploads the result.
package merge

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"loopcut/config"
	"loopcut/core/media"
	"loopcut/core/split"
	"loopcut/logger"
	"loopcut/taskerr"
)

// Request describes one merge_videos task. Videos are joined in the order
// given.
type Request struct {
	Videos          []string `json:"videos"`
	OutputKeyPrefix string   `json:"output_key_prefix,omitempty"`
	Reencode        *bool    `json:"reencode,omitempty"` // default true
	CRF             string   `json:"crf,omitempty"`
	Preset          string   `json:"preset,omitempty"`
	AACBitrate      string   `json:"aac_bitrate,omitempty"`
}

// Result describes the uploaded joined video.
type Result struct {
	URL         string `json:"url"`
	Key         string `json:"key"`
	SizeBytes   int64  `json:"size_bytes"`
	ContentType string `json:"content_type"`
}

// Concatenator joins the inputs listed in a concat demuxer file.
type Concatenator interface {
	ConcatVideos(ctx context.Context, listFile, outPath string, opts media.MergeOpts) error
}

// Merger orchestrates a merge_videos task.
type Merger struct {
	cfg     *config.Config
	fetch   split.Fetcher
	concat  Concatenator
	publish split.Publisher
}

// NewMerger wires a Merger from its collaborators.
func NewMerger(cfg *config.Config, fetch split.Fetcher, concat Concatenator, publish split.Publisher) *Merger {
	return &Merger{cfg: cfg, fetch: fetch, concat: concat, publish: publish}
}

// Merge runs one merge_videos task. By default the output is re-encoded to
// H.264 + AAC for compatibility; reencode=false copies streams and
// requires identical codecs across inputs.
func (m *Merger) Merge(ctx context.Context, req *Request) (*Result, error) {
	if len(req.Videos) < 2 {
		return nil, taskerr.New(taskerr.CodeValidation, "provide at least two URLs in 'videos'")
	}

	opts := media.MergeOpts{
		Reencode:   req.Reencode == nil || *req.Reencode,
		CRF:        req.CRF,
		Preset:     req.Preset,
		AACBitrate: req.AACBitrate,
	}
	if opts.CRF == "" {
		opts.CRF = "20"
	}
	if opts.Preset == "" {
		opts.Preset = "veryfast"
	}
	if opts.AACBitrate == "" {
		opts.AACBitrate = "192k"
	}

	workspace, err := os.MkdirTemp("", "loopcut-merge-*")
	if err != nil {
		return nil, taskerr.Wrap(taskerr.CodeInternal, err, "create workspace")
	}
	defer os.RemoveAll(workspace)

	inputs := make([]string, 0, len(req.Videos))
	for i, videoURL := range req.Videos {
		p := filepath.Join(workspace, fmt.Sprintf("in_%03d.mp4", i+1))
		if err := m.fetch.Download(ctx, videoURL, p, m.cfg.MaxVideoBytes); err != nil {
			return nil, err
		}
		inputs = append(inputs, p)
	}

	listFile := filepath.Join(workspace, "inputs.txt")
	if err := writeConcatList(inputs, listFile); err != nil {
		return nil, taskerr.Wrap(taskerr.CodeInternal, err, "write concat list")
	}

	outName := fmt.Sprintf("joined_%s.mp4", strings.ReplaceAll(uuid.NewString(), "-", ""))
	outPath := filepath.Join(workspace, outName)

	logger.Info("joining videos",
		logger.Int("inputs", len(inputs)),
		logger.Bool("reencode", opts.Reencode))
	if err := m.concat.ConcatVideos(ctx, listFile, outPath, opts); err != nil {
		return nil, err
	}

	prefix := m.cfg.R2Prefix
	if req.OutputKeyPrefix != "" {
		prefix = strings.Trim(req.OutputKeyPrefix, "/") + "/"
	}
	key := prefix + outName

	publicURL, err := m.publish.Publish(ctx, outPath, key)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(outPath)
	if err != nil {
		return nil, taskerr.Wrap(taskerr.CodeInternal, err, "stat %s", outPath)
	}

	return &Result{
		URL:         publicURL,
		Key:         key,
		SizeBytes:   stat.Size(),
		ContentType: "video/mp4",
	}, nil
}

// writeConcatList writes the ffmpeg concat demuxer file, one
// "file '<path>'" line per input.
func writeConcatList(paths []string, listPath string) error {
	var b strings.Builder
	for _, p := range paths {
		b.WriteString(fmt.Sprintf("file '%s'\n", filepath.ToSlash(p)))
	}
	return os.WriteFile(listPath, []byte(b.String()), 0644)
}
