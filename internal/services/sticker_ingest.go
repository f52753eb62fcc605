package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/Lllllllleong/labelnudger/internal/catalog"
	"github.com/Lllllllleong/labelnudger/internal/gcp"
	"github.com/Lllllllleong/labelnudger/internal/models"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// StickerIngestConfig holds configuration for the sticker ingest service.
type StickerIngestConfig struct {
	ProjectID      string
	CollectionName string
	PublicBaseURL  string
}

type stickerRegistry interface {
	FindByHash(ctx context.Context, fileHash string) (string, bool, error)
	Register(ctx context.Context, s models.Sticker) error
}

// StickerIngestFunction registers label sheets uploaded to the sticker bucket.
type StickerIngestFunction struct {
	fetch    func(ctx context.Context, bucket, object, destPath string) error
	registry stickerRegistry
	config   StickerIngestConfig
}

// GCSEvent is the payload of a GCS event.
type GCSEvent struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}

func NewStickerIngest(ctx context.Context) (*StickerIngestFunction, error) {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}

	config := StickerIngestConfig{
		ProjectID:      projectID,
		CollectionName: gcp.GetEnv("STICKER_COLLECTION", "stickers"),
		PublicBaseURL:  gcp.GetEnv("STICKER_PUBLIC_BASE_URL", "https://storage.googleapis.com"),
	}

	firestoreClient, err := gcp.NewFirestoreClient(ctx, config.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Storage client: %w", err)
	}

	f := &StickerIngestFunction{
		fetch: func(ctx context.Context, bucket, object, destPath string) error {
			localFile, err := os.Create(destPath)
			if err != nil {
				return fmt.Errorf("failed to create temp file at %s: %w", destPath, err)
			}
			return saveStream(localFile, func(w io.Writer) error {
				return gcp.StreamObject(ctx, storageClient, bucket, object, w)
			})
		},
		registry: catalog.NewFirestoreCatalog(firestoreClient, config.CollectionName),
		config:   config,
	}
	slog.Info("Sticker ingest logic initialized.", "collection", config.CollectionName)
	return f, nil
}

// Process validates a newly uploaded sheet and adds it to the catalog.
func (f *StickerIngestFunction) Process(ctx context.Context, e GCSEvent) error {
	logCtx := slog.With("gcsBucket", e.Bucket, "gcsObject", e.Name)
	if !strings.EqualFold(path.Ext(e.Name), ".pdf") {
		logCtx.Info("Not a PDF. Skipping.")
		return nil
	}
	logCtx.Info("Processing new sticker sheet.")

	// --- Download the sheet into a scratch directory ---
	tempDir, err := os.MkdirTemp("", "sticker-ingest-*")
	if err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	sourcePdfPath := filepath.Join(tempDir, "source.pdf")
	if err := f.fetch(ctx, e.Bucket, e.Name, sourcePdfPath); err != nil {
		logCtx.Error("Failed to download sticker PDF", "error", err)
		return err
	}

	// --- Check for duplicates by content hash ---
	fileHash, err := calculateFileHash(sourcePdfPath)
	if err != nil {
		logCtx.Error("Failed to calculate file hash", "error", err)
		return fmt.Errorf("failed to calculate file hash: %w", err)
	}
	logCtx = logCtx.With("fileHash", fileHash)

	existing, isDuplicate, err := f.registry.FindByHash(ctx, fileHash)
	if err != nil {
		logCtx.Error("Failed to check for duplicate", "error", err)
		return err
	}
	if isDuplicate {
		logCtx.Info("Duplicate sheet detected. Skipping.", "existingName", existing)
		return nil
	}

	// --- Validate the sheet and count its pages ---
	pageCount, err := validatePDF(sourcePdfPath)
	if err != nil {
		// A broken upload will not get better on retry.
		logCtx.Error("Uploaded sheet is not a readable PDF. Skipping.", "error", err)
		return nil
	}

	// --- Register the sheet in the catalog ---
	sticker := models.Sticker{
		Name:      stickerName(e.Name),
		URL:       f.publicURL(e.Bucket, e.Name),
		FileHash:  fileHash,
		PageCount: pageCount,
		CreatedAt: time.Now(),
	}
	if err := f.registry.Register(ctx, sticker); err != nil {
		logCtx.Error("Failed to register sticker", "error", err)
		return err
	}
	logCtx.Info("Sticker registered.", "name", sticker.Name, "pageCount", pageCount)
	return nil
}

func (f *StickerIngestFunction) publicURL(bucket, object string) string {
	base := strings.TrimRight(f.config.PublicBaseURL, "/")
	return base + "/" + url.PathEscape(bucket) + "/" + (&url.URL{Path: object}).EscapedPath()
}

// stickerName derives a display name from an object name: "sheets/fox_kit-65up.pdf" -> "fox kit".
func stickerName(object string) string {
	base := strings.TrimSuffix(path.Base(object), path.Ext(object))
	base = strings.TrimSuffix(strings.TrimSuffix(base, "_65up"), "-65up")
	name := strings.Join(strings.Fields(strings.NewReplacer("_", " ", "-", " ").Replace(base)), " ")
	if name == "" {
		return "sticker"
	}
	return name
}

// saveStream copies stream into dst and closes it. A failed close means the
// file on disk may be truncated, so it is reported like a failed copy.
func saveStream(dst io.WriteCloser, stream func(w io.Writer) error) error {
	if err := stream(dst); err != nil {
		_ = dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("failed to flush downloaded file: %w", err)
	}
	return nil
}

func validatePDF(pdfPath string) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.ValidateFile(pdfPath, conf); err != nil {
		return 0, fmt.Errorf("failed to validate PDF: %w", err)
	}
	pageCount, err := api.PageCountFile(pdfPath)
	if err != nil {
		return 0, fmt.Errorf("failed to get page count: %w", err)
	}
	if pageCount == 0 {
		return 0, fmt.Errorf("PDF has no pages")
	}
	return pageCount, nil
}

func calculateFileHash(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()
	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
