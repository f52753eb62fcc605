package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/Lllllllleong/labelnudger/internal/models"
	"golang.org/x/sync/errgroup"
)

// DefaultDownloadTimeout bounds a single sticker download.
const DefaultDownloadTimeout = 15 * time.Second

// Downloader fetches sticker sheets into a local cache directory.
type Downloader struct {
	Dir         string
	Client      *http.Client
	Concurrency int
}

func NewDownloader(dir string) *Downloader {
	return &Downloader{
		Dir:         dir,
		Client:      &http.Client{Timeout: DefaultDownloadTimeout},
		Concurrency: 4,
	}
}

// Download fetches one sticker and returns the local path. The file only
// appears once the download completed.
func (d *Downloader) Download(ctx context.Context, s models.Sticker) (string, error) {
	if err := os.MkdirAll(d.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create cache dir: %w", err)
	}
	dest := filepath.Join(d.Dir, FileName(s.Name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return "", fmt.Errorf("invalid sticker url %q: %w", s.URL, err)
	}
	client := d.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultDownloadTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", s.Name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("failed to download %s: HTTP %d", s.Name, resp.StatusCode)
	}

	tmp, err := os.CreateTemp(d.Dir, ".download-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("failed to save %s: %w", s.Name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", s.Name, err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", fmt.Errorf("failed to move %s into place: %w", s.Name, err)
	}
	slog.Debug("Sticker downloaded.", "name", s.Name, "path", dest)
	return dest, nil
}

// DownloadAll fetches every sticker concurrently. Paths are returned in the
// order of stickers; the first failure cancels the remaining downloads.
func (d *Downloader) DownloadAll(ctx context.Context, stickers []models.Sticker) ([]string, error) {
	paths := make([]string, len(stickers))
	eg, gctx := errgroup.WithContext(ctx)
	limit := d.Concurrency
	if limit < 1 {
		limit = 1
	}
	eg.SetLimit(limit)

	for i, s := range stickers {
		eg.Go(func() error {
			path, err := d.Download(gctx, s)
			if err != nil {
				return fmt.Errorf("sticker %q: %w", s.Name, err)
			}
			paths[i] = path
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}
