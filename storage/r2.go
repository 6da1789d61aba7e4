// Package storage publishes local files to an R2 bucket through the
// S3-compatible API and builds the publicly reachable URLs for them.
package storage

import (
	"context"
	"fmt"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"loopcut/config"
	"loopcut/logger"
	"loopcut/taskerr"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Publisher uploads files to one bucket and knows its public base URL.
// Safe for concurrent use by independent tasks.
type Publisher struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
}

// NewPublisher connects to the R2 endpoint and verifies the bucket exists.
func NewPublisher(cfg *config.Config) (*Publisher, error) {
	if err := cfg.ValidateStorage(); err != nil {
		return nil, err
	}

	logger.Info("connecting to R2",
		logger.String("endpoint", cfg.R2Endpoint()),
		logger.String("bucket", cfg.R2Bucket))

	client, err := minio.New(cfg.R2Endpoint(), &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.R2AccessKeyID, cfg.R2SecretKey, ""),
		Secure:       true,
		Region:       "auto",
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("create R2 client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.R2Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.R2Bucket, err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", cfg.R2Bucket)
	}

	return &Publisher{
		client:        client,
		bucket:        cfg.R2Bucket,
		publicBaseURL: cfg.R2PublicBaseURL,
	}, nil
}

// Publish uploads localPath under key and returns its public URL. Content
// type is derived from the file extension, defaulting to a generic binary
// type.
func (p *Publisher) Publish(ctx context.Context, localPath, key string) (string, error) {
	ctype := ContentType(localPath)

	f, err := os.Open(localPath)
	if err != nil {
		return "", taskerr.Wrap(taskerr.CodeStorage, err, "open %s", localPath)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return "", taskerr.Wrap(taskerr.CodeStorage, err, "stat %s", localPath)
	}

	_, err = p.client.PutObject(ctx, p.bucket, key, f, stat.Size(), minio.PutObjectOptions{
		ContentType: ctype,
	})
	if err != nil {
		return "", taskerr.Wrap(taskerr.CodeStorage, err, "upload %s", key)
	}

	logger.Debug("object published",
		logger.String("key", key),
		logger.Int64("size", stat.Size()),
		logger.String("contentType", ctype))
	return JoinPublicURL(p.publicBaseURL, key), nil
}

// mediaTypes covers the extensions this worker actually produces; the
// platform mime table does not reliably know them.
var mediaTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".wav":  "audio/wav",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".mp4":  "video/mp4",
}

// ContentType guesses the MIME type from the file extension.
func ContentType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ctype, ok := mediaTypes[ext]; ok {
		return ctype
	}
	if ctype := mime.TypeByExtension(ext); ctype != "" {
		return ctype
	}
	return "application/octet-stream"
}

// JoinPublicURL joins the public base URL with the key, percent-encoding
// each "/"-delimited key segment independently so the separators survive.
func JoinPublicURL(base, key string) string {
	clean := strings.TrimRight(base, "/")
	parts := strings.Split(key, "/")
	safe := make([]string, len(parts))
	for i, part := range parts {
		safe[i] = url.PathEscape(part)
	}
	return clean + "/" + strings.Join(safe, "/")
}
