package gcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/Lllllllleong/labelnudger/internal/docio"
	"github.com/Lllllllleong/labelnudger/internal/printadapter"
	"google.golang.org/api/googleapi"
)

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// ParseGCSUri splits gs://bucket/object into its parts.
func ParseGCSUri(uri string) (bucket, object string, err error) {
	rest, ok := strings.CutPrefix(uri, "gs://")
	if !ok {
		return "", "", fmt.Errorf("not a gs:// uri: %q", uri)
	}
	bucket, object, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("gs uri needs a bucket and an object: %q", uri)
	}
	return bucket, object, nil
}

// GCSUri formats a gs:// uri.
func GCSUri(bucket, object string) string {
	return fmt.Sprintf("gs://%s/%s", bucket, object)
}

// SaveToGCSAtomically writes content to a GCS object only if it doesn't already exist.
// An existing object is not an error: the write is idempotent.
func SaveToGCSAtomically(ctx context.Context, bucket *storage.BucketHandle, objectName string, content []byte) error {
	writer := bucket.Object(objectName).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	writer.ContentType = "application/pdf"

	if _, err := io.Copy(writer, bytes.NewReader(content)); err != nil {
		_ = writer.Close()
		if isPreconditionFailed(err) {
			slog.Info("Object already exists; skipping.", "gcsObject", objectName)
			return nil
		}
		return fmt.Errorf("failed to write to GCS: %w", err)
	}
	if err := writer.Close(); err != nil {
		if isPreconditionFailed(err) {
			slog.Info("Object already exists; skipping.", "gcsObject", objectName)
			return nil
		}
		return fmt.Errorf("failed to finalize GCS write: %w", err)
	}
	return nil
}

func isPreconditionFailed(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed
}

// StreamObject copies gs://bucket/object into w.
func StreamObject(ctx context.Context, client *storage.Client, bucket, object string, w io.Writer) error {
	gcsReader, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return fmt.Errorf("failed to get GCS object reader for gs://%s/%s: %w", bucket, object, err)
	}
	defer gcsReader.Close()
	if _, err := io.Copy(w, gcsReader); err != nil {
		return fmt.Errorf("failed to copy GCS object: %w", err)
	}
	return nil
}

// GCSOpener opens gs:// documents by spooling them into a temp file.
type GCSOpener struct {
	Client *storage.Client
}

func (o GCSOpener) Open(ctx context.Context, locator string) (printadapter.File, error) {
	bucket, object, err := ParseGCSUri(locator)
	if err != nil {
		return nil, err
	}
	gcsReader, err := o.Client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get GCS object reader for %s: %w", locator, err)
	}
	defer gcsReader.Close()
	return docio.Spool(gcsReader, "labelnudger-gcs-*.pdf")
}

// GCSSink writes the print output to a single object.
type GCSSink struct {
	Client *storage.Client
	Bucket string
	Object string
	// IfNotExists keeps an existing object (idempotent retries of the same job).
	IfNotExists bool
}

// URI of the object the sink writes.
func (s GCSSink) URI() string {
	return GCSUri(s.Bucket, s.Object)
}

func (s GCSSink) Write(ctx context.Context, data []byte) error {
	bucket := s.Client.Bucket(s.Bucket)
	if s.IfNotExists {
		return SaveToGCSAtomically(ctx, bucket, s.Object, data)
	}
	writer := bucket.Object(s.Object).NewWriter(ctx)
	writer.ContentType = "application/pdf"
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write %s: %w", s.URI(), err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", s.URI(), err)
	}
	return nil
}
