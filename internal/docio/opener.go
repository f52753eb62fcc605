// Package docio opens source documents and writes print output for the
// print adapter: local files, HTTP(S) downloads and Cloud Storage objects.
package docio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/Lllllllleong/labelnudger/internal/printadapter"
)

// FileOpener opens local paths and file:// URIs.
type FileOpener struct{}

func (FileOpener) Open(_ context.Context, locator string) (printadapter.File, error) {
	path := locator
	if strings.HasPrefix(locator, "file://") {
		u, err := url.Parse(locator)
		if err != nil {
			return nil, fmt.Errorf("invalid file uri %q: %w", locator, err)
		}
		path = u.Path
	}
	if path == "" {
		return nil, fmt.Errorf("invalid file uri %q", locator)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}
	return f, nil
}

// tempFile is a downloaded document that is deleted when closed.
type tempFile struct {
	*os.File
}

func (t *tempFile) Close() error {
	err := t.File.Close()
	if rmErr := os.Remove(t.File.Name()); rmErr != nil && err == nil {
		err = rmErr
	}
	return err
}

// Spool copies r into a new temp file positioned at its start.
func Spool(r io.Reader, pattern string) (printadapter.File, error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tf := &tempFile{File: f}
	if _, err := io.Copy(f, r); err != nil {
		_ = tf.Close()
		return nil, fmt.Errorf("failed to copy document to temp file: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		_ = tf.Close()
		return nil, fmt.Errorf("failed to rewind temp file: %w", err)
	}
	return tf, nil
}

// DefaultDownloadTimeout bounds a single document download.
const DefaultDownloadTimeout = 15 * time.Second

// HTTPOpener downloads http(s) documents into a temp file.
type HTTPOpener struct {
	Client *http.Client
}

func (o HTTPOpener) client() *http.Client {
	if o.Client != nil {
		return o.Client
	}
	return &http.Client{Timeout: DefaultDownloadTimeout}
}

func (o HTTPOpener) Open(ctx context.Context, locator string) (printadapter.File, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", locator, err)
	}
	resp, err := o.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", locator, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to download %s: HTTP %d", locator, resp.StatusCode)
	}
	return Spool(resp.Body, "labelnudger-download-*.pdf")
}

// Mux picks an opener by locator scheme.
type Mux struct {
	File printadapter.Opener
	HTTP printadapter.Opener
	GCS  printadapter.Opener
}

// NewMux returns a Mux for local files and HTTP(S). gcs may be nil.
func NewMux(gcs printadapter.Opener) *Mux {
	return &Mux{File: FileOpener{}, HTTP: HTTPOpener{}, GCS: gcs}
}

func (m *Mux) Open(ctx context.Context, locator string) (printadapter.File, error) {
	scheme := ""
	if i := strings.Index(locator, "://"); i > 0 {
		scheme = strings.ToLower(locator[:i])
	}
	var o printadapter.Opener
	switch scheme {
	case "", "file":
		o = m.File
	case "http", "https":
		o = m.HTTP
	case "gs":
		o = m.GCS
	default:
		return nil, fmt.Errorf("unsupported locator scheme %q", scheme)
	}
	if o == nil {
		return nil, fmt.Errorf("no opener configured for %q", locator)
	}
	return o.Open(ctx, locator)
}
