package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"loopcut/storage"
)

var (
	storagePrefix    string
	storageStatsOnly bool
	storageRecursive bool
)

var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Inspect the R2 bucket",
	Long:  `List objects in the configured R2 bucket and print usage totals.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		publisher, err := storage.NewPublisher(cfg)
		if err != nil {
			log.Fatalf("R2 storage unavailable: %v", err)
		}

		objects, stats, err := publisher.ListObjects(context.Background(), storagePrefix, storageRecursive)
		if err != nil {
			log.Fatalf("listing failed: %v", err)
		}

		fmt.Printf("bucket: %s\n", cfg.R2Bucket)
		fmt.Printf("objects: %d\n", stats.TotalObjects)
		fmt.Printf("total size: %.2f MB\n", float64(stats.TotalSize)/1024/1024)
		if !stats.LastModified.IsZero() {
			fmt.Printf("last modified: %s\n", stats.LastModified.Format(time.RFC3339))
		}

		if storageStatsOnly {
			return
		}
		fmt.Println()
		for _, obj := range objects {
			fmt.Printf("%s\t%.2f MB\t%s\n",
				obj.Key,
				float64(obj.Size)/1024/1024,
				obj.LastModified.Format(time.RFC3339))
		}
	},
}

func init() {
	rootCmd.AddCommand(storageCmd)

	storageCmd.Flags().StringVarP(&storagePrefix, "prefix", "p", "", "filter objects by key prefix")
	storageCmd.Flags().BoolVarP(&storageStatsOnly, "stats", "s", false, "print totals only")
	storageCmd.Flags().BoolVarP(&storageRecursive, "recursive", "r", true, "descend into key prefixes")
}
