package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/Lllllllleong/labelnudger/internal/models"
	"github.com/Lllllllleong/labelnudger/internal/printadapter"
	"github.com/Lllllllleong/labelnudger/internal/services"
)

var (
	nudgerInstance *services.NudgerFunction
	once           sync.Once
	initErr        error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Register the HTTP function with the framework.
	// "HandleNudge" is the entry point name deployed to GCP.
	functions.HTTP("HandleNudge", handleNudge)
}

// main is required by the Go Functions Framework.
func main() {}

// handleNudge is the HTTP handler. It runs one print job per request.
func handleNudge(w http.ResponseWriter, r *http.Request) {
	// Use sync.Once for one-time initialization of the GCS and Firestore clients.
	once.Do(func() {
		nudgerInstance, initErr = services.NewNudger(context.Background())
	})
	if initErr != nil {
		slog.Error("CRITICAL: Nudger initialization failed", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	// Decode the incoming JSON request.
	var req models.NudgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Could not decode request body", "error", err)
		http.Error(w, "Bad Request: could not parse JSON", http.StatusBadRequest)
		return
	}

	// Delegate to the business logic. The request context carries cancellation
	// into the adapter, which checks it between pages.
	res, err := nudgerInstance.Process(r.Context(), &req)
	if err != nil {
		// The error is already logged and recorded on the job inside Process.
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	// If successful, encode the response with the job id and output location.
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}

// statusFor maps job errors to HTTP status codes: the caller's fault is 4xx,
// anything worth retrying is 5xx.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, printadapter.ErrDocumentUnreadable), errors.Is(err, printadapter.ErrNothingToWrite),
		errors.Is(err, printadapter.ErrTooManyPages):
		return http.StatusUnprocessableEntity
	case errors.Is(err, printadapter.ErrCancelled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
