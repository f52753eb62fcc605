package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/Lllllllleong/labelnudger/internal/models"
)

// NewFirestoreClient creates and returns a new Firestore client for the given project ID.
// It centralizes client creation for all services.
func NewFirestoreClient(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return client, nil
}

// JobStore persists print job records, one document per job ID.
type JobStore struct {
	client     *firestore.Client
	collection string
}

func NewJobStore(client *firestore.Client, collection string) *JobStore {
	return &JobStore{client: client, collection: collection}
}

// Create writes the initial record for a job.
func (s *JobStore) Create(ctx context.Context, job models.PrintJob) error {
	if _, err := s.client.Collection(s.collection).Doc(job.JobID).Set(ctx, job); err != nil {
		return fmt.Errorf("failed to create job record %s: %w", job.JobID, err)
	}
	return nil
}

// UpdateStatus sets the job status plus any extra fields.
func (s *JobStore) UpdateStatus(ctx context.Context, jobID, status string, fields map[string]interface{}) error {
	updates := []firestore.Update{
		{Path: "status", Value: status},
	}
	for path, value := range fields {
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}
	_, err := s.client.Collection(s.collection).Doc(jobID).Update(ctx, updates)
	return err
}
