package docio

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FileSink writes the output document to Path. The file only appears once
// the whole document has been written.
type FileSink struct {
	Path string
}

func (s FileSink) Write(_ context.Context, data []byte) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.Path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}

// WriterSink writes the output document to an arbitrary writer, e.g. stdout
// piped into lp.
type WriterSink struct {
	W io.Writer
}

func (s WriterSink) Write(_ context.Context, data []byte) error {
	if _, err := s.W.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
