package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/desertthunder/audiovault/internal/shared"
)

const (
	coverFilename = "cover.jpg"
	maxCoverBytes = 20 << 20
)

// IsRemote reports whether source is an http(s) URL rather than a local path.
func IsRemote(source string) bool {
	u, err := url.Parse(source)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(ctx context.Context, client *http.Client, rawURL string) ([]byte, error) {
	if rawURL == "" {
		return nil, fmt.Errorf("%w: empty URL provided", shared.ErrInvalidInput)
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to download image: %v", shared.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: failed to download image: status %d", shared.ErrNetwork, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		return nil, fmt.Errorf("%w: %s is not an image (%s)", shared.ErrInvalidInput, rawURL, ct)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCoverBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	if len(data) > maxCoverBytes {
		return nil, fmt.Errorf("%w: image larger than %d bytes", shared.ErrInvalidInput, maxCoverBytes)
	}
	return data, nil
}

// FetchCover returns a local path for source. Remote images are saved as
// cover.jpg in dir; local files must exist and are returned unchanged.
func FetchCover(ctx context.Context, client *http.Client, source, dir string) (string, error) {
	if !IsRemote(source) {
		if _, err := os.Stat(source); err != nil {
			return "", fmt.Errorf("%w: cover image %s", shared.ErrNotFound, source)
		}
		return source, nil
	}

	data, err := DownloadImage(ctx, client, source)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	path := filepath.Join(dir, coverFilename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save cover image: %w", err)
	}
	return path, nil
}
