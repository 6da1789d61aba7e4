package cmd

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"loopcut/core/fetch"
	"loopcut/core/media"
	"loopcut/core/merge"
	"loopcut/storage"
)

var (
	mergeVideos     []string
	mergePrefix     string
	mergeCopyMode   bool
	mergeCRF        string
	mergePreset     string
	mergeAACBitrate string
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Run one merge_videos task from the command line",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		publisher, err := storage.NewPublisher(cfg)
		if err != nil {
			log.Fatalf("R2 storage unavailable: %v", err)
		}

		ffmpeg := media.NewFFmpeg(cfg.FFmpegPath, cfg.FFprobePath, media.ExecRunner{})
		merger := merge.NewMerger(cfg, fetch.NewClient(10*time.Minute), ffmpeg, publisher)

		reencode := !mergeCopyMode
		req := &merge.Request{
			Videos:          mergeVideos,
			OutputKeyPrefix: mergePrefix,
			Reencode:        &reencode,
			CRF:             mergeCRF,
			Preset:          mergePreset,
			AACBitrate:      mergeAACBitrate,
		}

		result, err := merger.Merge(context.Background(), req)
		if err != nil {
			log.Fatalf("merge failed: %v", err)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			log.Fatalf("encode result: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(mergeCmd)

	mergeCmd.Flags().StringSliceVarP(&mergeVideos, "video", "v", nil, "video URL, repeat in playback order (at least two)")
	mergeCmd.Flags().StringVarP(&mergePrefix, "prefix", "p", "", "storage key prefix for the joined file")
	mergeCmd.Flags().BoolVar(&mergeCopyMode, "copy", false, "copy streams instead of re-encoding (requires identical codecs)")
	mergeCmd.Flags().StringVar(&mergeCRF, "crf", "20", "x264 CRF when re-encoding")
	mergeCmd.Flags().StringVar(&mergePreset, "preset", "veryfast", "x264 preset when re-encoding")
	mergeCmd.Flags().StringVar(&mergeAACBitrate, "aac-bitrate", "192k", "AAC bitrate when re-encoding")
	mergeCmd.MarkFlagRequired("video")
}
