// Package fetch downloads remote media over http(s) with a hard byte cap.
package fetch

import (
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"loopcut/logger"
	"loopcut/taskerr"
)

const copyChunkSize = 1024 * 1024

// Client is a capped streaming downloader. Safe for concurrent use.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a Client with a 10s connect timeout and the given
// overall request timeout.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 30 * time.Second,
			},
		},
	}
}

// Download streams url into dst. Only http and https schemes are accepted.
// The stream is aborted as soon as the byte count exceeds maxBytes, not
// after full buffering.
func (c *Client) Download(ctx context.Context, url, dst string, maxBytes int64) error {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return taskerr.New(taskerr.CodeValidation, "URL must be http(s)")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return taskerr.Wrap(taskerr.CodeValidation, err, "build request for %s", url)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return taskerr.Wrap(taskerr.CodeValidation, err, "download %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return taskerr.New(taskerr.CodeValidation, "download %s: unexpected status %s", url, resp.Status)
	}

	f, err := os.Create(dst)
	if err != nil {
		return taskerr.Wrap(taskerr.CodeInternal, err, "create %s", dst)
	}
	defer f.Close()

	var total int64
	buf := make([]byte, copyChunkSize)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			total += int64(n)
			if total > maxBytes {
				return taskerr.New(taskerr.CodePayloadTooLarge, "file exceeds the %d byte limit", maxBytes)
			}
			if _, err := f.Write(buf[:n]); err != nil {
				return taskerr.Wrap(taskerr.CodeInternal, err, "write %s", dst)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return taskerr.Wrap(taskerr.CodeValidation, readErr, "read body of %s", url)
		}
	}

	logger.Debug("download finished",
		logger.String("url", url),
		logger.Int64("bytes", total))
	return nil
}
