package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/storage"
	"github.com/Lllllllleong/labelnudger/internal/calibration"
	"github.com/Lllllllleong/labelnudger/internal/docio"
	"github.com/Lllllllleong/labelnudger/internal/gcp"
	"github.com/Lllllllleong/labelnudger/internal/models"
	"github.com/Lllllllleong/labelnudger/internal/printadapter"
)

// Job statuses recorded in Firestore besides the adapter outcomes.
const (
	StatusLayout  = "LAYOUT"
	StatusWriting = "WRITING"
)

// ErrInvalidRequest marks requests rejected before any work starts.
var ErrInvalidRequest = errors.New("invalid request")

// NudgerConfig holds all configuration for the nudger service.
type NudgerConfig struct {
	ProjectID      string
	OutputBucket   string
	CollectionName string
}

// jobRecorder is the part of gcp.JobStore the nudger needs.
type jobRecorder interface {
	Create(ctx context.Context, job models.PrintJob) error
	UpdateStatus(ctx context.Context, jobID, status string, fields map[string]interface{}) error
}

// NudgerFunction shifts a stored PDF and writes the print-ready result to Cloud Storage.
type NudgerFunction struct {
	opener  printadapter.Opener
	jobs    jobRecorder
	newSink func(jobID string) (printadapter.Sink, string)
	config  NudgerConfig
}

// loadNudgerConfig loads and validates all necessary environment variables for this service.
func loadNudgerConfig() (*NudgerConfig, error) {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}
	outputBucket := gcp.GetEnv("NUDGED_OUTPUT_BUCKET", "")
	if outputBucket == "" {
		return nil, fmt.Errorf("NUDGED_OUTPUT_BUCKET environment variable must be set")
	}
	return &NudgerConfig{
		ProjectID:      projectID,
		OutputBucket:   outputBucket,
		CollectionName: gcp.GetEnv("FIRESTORE_COLLECTION", "printJobs"),
	}, nil
}

// NewNudger creates a new NudgerFunction instance.
func NewNudger(ctx context.Context) (*NudgerFunction, error) {
	config, err := loadNudgerConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Clients are created once and reused across invocations.
	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	firestoreClient, err := gcp.NewFirestoreClient(ctx, config.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}

	f := &NudgerFunction{
		opener: docio.NewMux(gcp.GCSOpener{Client: storageClient}),
		jobs:   gcp.NewJobStore(firestoreClient, config.CollectionName),
		// Each job writes to its own object; IfNotExists makes a retried job a no-op.
		newSink: func(jobID string) (printadapter.Sink, string) {
			sink := gcp.GCSSink{
				Client:      storageClient,
				Bucket:      config.OutputBucket,
				Object:      fmt.Sprintf("%s/nudged.pdf", jobID),
				IfNotExists: true,
			}
			return sink, sink.URI()
		},
		config: *config,
	}
	slog.Info("Nudger logic initialized.", "outputBucket", config.OutputBucket)
	return f, nil
}

// Process runs one print job end to end: layout, write, record.
func (f *NudgerFunction) Process(ctx context.Context, req *models.NudgeRequest) (*models.NudgeResponse, error) {
	// --- Validate the request before any record is created ---
	if req.SourceURI == "" {
		return nil, fmt.Errorf("%w: sourceUri is required", ErrInvalidRequest)
	}
	if req.Copies > calibration.MaxCopies {
		return nil, fmt.Errorf("%w: copies must be at most %d, got %d", ErrInvalidRequest, calibration.MaxCopies, req.Copies)
	}
	ranges := make([]printadapter.PageRange, 0, len(req.Pages))
	for _, p := range req.Pages {
		if p.Start < 0 || p.End < p.Start {
			return nil, fmt.Errorf("%w: bad page range %d-%d", ErrInvalidRequest, p.Start, p.End)
		}
		ranges = append(ranges, printadapter.PageRange{Start: p.Start, End: p.End})
	}

	// --- Create the adapter; Finish releases the source on every exit path ---
	shift := printadapter.Shift{XMM: req.ShiftXMM, YMM: req.ShiftYMM}
	adapter := printadapter.New(f.opener, req.SourceURI, printadapter.Options{
		Shift:  shift,
		Copies: req.Copies,
	})
	defer adapter.Finish()

	jobID := adapter.JobID()
	logCtx := slog.With("jobId", jobID, "sourceUri", req.SourceURI)
	logCtx.Info("Starting print job.", "shiftXMm", shift.XMM, "shiftYMm", shift.YMM, "copies", req.Copies)

	// --- Record the job before touching the document ---
	sink, outputURI := f.newSink(jobID)
	job := models.PrintJob{
		JobID:     jobID,
		SourceURI: req.SourceURI,
		Status:    StatusLayout,
		ShiftXMM:  shift.XMM,
		ShiftYMM:  shift.YMM,
		Copies:    printadapter.NormalizeCopies(req.Copies),
		CreatedAt: time.Now(),
	}
	if err := f.jobs.Create(ctx, job); err != nil {
		logCtx.Error("Failed to create job record", "error", err)
		return nil, err
	}

	// --- Layout: open the source and compute the output page count ---
	layout, err := adapter.Layout(ctx, printadapter.DefaultAttributes())
	if err != nil {
		return nil, f.handleError(ctx, logCtx, jobID, "layout failed", err)
	}
	if err := f.jobs.UpdateStatus(ctx, jobID, StatusWriting, map[string]interface{}{"pageCount": layout.PageCount}); err != nil {
		return nil, f.handleError(ctx, logCtx, jobID, "failed to update status to WRITING", err)
	}

	// --- Write: shift the selected pages and flush them to GCS in one write ---
	res, err := adapter.Write(ctx, ranges, sink)
	if err != nil {
		return nil, f.handleError(ctx, logCtx, jobID, "write failed", err)
	}

	// --- Mark the job as finished ---
	if err := f.jobs.UpdateStatus(ctx, jobID, printadapter.OutcomeFinished, map[string]interface{}{"outputUri": outputURI}); err != nil {
		logCtx.Error("Failed to record finished job", "error", err)
		return nil, err
	}
	logCtx.Info("Print job complete.", "outputUri", outputURI, "pages", len(res.Pages))
	return &models.NudgeResponse{
		Status:    "success",
		JobID:     jobID,
		PageCount: layout.PageCount,
		Pages:     len(res.Pages),
		OutputURI: outputURI,
	}, nil
}

// handleError logs, records the outcome on the job and returns the wrapped error.
// The record is written even when ctx is already cancelled.
func (f *NudgerFunction) handleError(ctx context.Context, logCtx *slog.Logger, jobID, message string, originalErr error) error {
	status := printadapter.Outcome(originalErr)
	if status == printadapter.OutcomeCancelled {
		logCtx.Warn(message, "error", originalErr)
	} else {
		logCtx.Error(message, "error", originalErr)
	}
	fullError := fmt.Errorf("%s: %w", message, originalErr)
	fields := map[string]interface{}{"errorDetails": fullError.Error()}
	if err := f.jobs.UpdateStatus(context.WithoutCancel(ctx), jobID, status, fields); err != nil {
		logCtx.Error("CRITICAL: Failed to update job status after a processing error.", "status", status, "updateError", err)
	}
	return fullError
}
