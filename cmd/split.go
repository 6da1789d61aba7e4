package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"loopcut/core/fetch"
	"loopcut/core/media"
	"loopcut/core/split"
	"loopcut/storage"
)

var (
	splitSegments      int
	splitAudioURL      string
	splitCodec         string
	splitQuality       string
	splitExt           string
	splitFirstInverted bool
	splitVideoDur      float64
	splitVideoURL      string
	splitPrefix        string
)

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Run one split_audio task from the command line",
	Long: `Run a single split_audio task without the HTTP server: download the audio,
compute cycle-aligned cuts, export the segments and upload them to R2.
Useful for local debugging against real URLs.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		publisher, err := storage.NewPublisher(cfg)
		if err != nil {
			log.Fatalf("R2 storage unavailable: %v", err)
		}

		ffmpeg := media.NewFFmpeg(cfg.FFmpegPath, cfg.FFprobePath, media.ExecRunner{})
		processor := split.NewProcessor(cfg, fetch.NewClient(5*time.Minute), ffmpeg, ffmpeg, publisher, nil)

		req := &split.Request{
			Segments:      splitSegments,
			AudioURL:      splitAudioURL,
			Codec:         splitCodec,
			Quality:       splitQuality,
			Ext:           splitExt,
			FirstInverted: splitFirstInverted,
			VideoURL:      splitVideoURL,
			Prefix:        splitPrefix,
		}
		if cmd.Flags().Changed("video-duration") {
			req.VideoDuration = &splitVideoDur
		}

		results, err := processor.Process(context.Background(), req)
		if err != nil {
			log.Fatalf("split failed: %v", err)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			log.Fatalf("encode results: %v", err)
		}
		fmt.Printf("%d segments published\n", len(results))
	},
}

func init() {
	rootCmd.AddCommand(splitCmd)

	splitCmd.Flags().IntVarP(&splitSegments, "segments", "n", 0, "number of segments (required, >= 1)")
	splitCmd.Flags().StringVarP(&splitAudioURL, "audio-url", "a", "", "http(s) URL of the audio to split (required)")
	splitCmd.Flags().StringVar(&splitCodec, "codec", "mp3", "output codec: mp3|aac|copy")
	splitCmd.Flags().StringVar(&splitQuality, "quality", "2", "mp3: -q:a (0-2); aac: bitrate like 192k")
	splitCmd.Flags().StringVar(&splitExt, "ext", "mp3", "output file extension")
	splitCmd.Flags().BoolVar(&splitFirstInverted, "first-inverted", false, "flip the phase flag of every segment")
	splitCmd.Flags().Float64Var(&splitVideoDur, "video-duration", 0, "cycle length in seconds (alternative to --video-url)")
	splitCmd.Flags().StringVar(&splitVideoURL, "video-url", "", "http(s) URL of the reference video to probe for the cycle length")
	splitCmd.Flags().StringVarP(&splitPrefix, "prefix", "p", "", "storage key prefix (default R2_PREFIX)")
	splitCmd.MarkFlagRequired("segments")
	splitCmd.MarkFlagRequired("audio-url")

	splitCmd.Example = `  # split into 3 chunks aligned to a 4.2s loop
  loopcut split -n 3 -a https://cdn.example.com/song.mp3 --video-duration 4.2

  # probe the loop length from the video itself
  loopcut split -n 4 -a https://cdn.example.com/song.mp3 --video-url https://cdn.example.com/loop.mp4`
}
