package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/Lllllllleong/labelnudger/internal/services"
	cloudevents "github.com/cloudevents/sdk-go/v2"
)

var (
	ingestInstance *services.StickerIngestFunction
	once           sync.Once
	initErr        error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Triggered by object finalize events on the sticker bucket.
	functions.CloudEvent("IngestSticker", ingestSticker)
}

// main is required by the Go Functions Framework.
func main() {}

// ingestSticker is the Cloud Function entry point for GCS finalize events.
func ingestSticker(ctx context.Context, e cloudevents.Event) error {
	// Use sync.Once for one-time initialization of clients.
	once.Do(func() {
		ingestInstance, initErr = services.NewStickerIngest(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	// Unmarshal the event's data payload into the bucket/object pair.
	var gcsEvent services.GCSEvent
	if err := json.Unmarshal(e.Data(), &gcsEvent); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	// Returning the error marks the invocation as failed so the event is retried.
	return ingestInstance.Process(ctx, gcsEvent)
}
