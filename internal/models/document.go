package models

import "time"

// PrintJob is the Firestore record of one nudged print job.
// It tracks the lifecycle status and the parameters the job ran with.
type PrintJob struct {
	JobID        string    `firestore:"jobId,omitempty"`
	SourceURI    string    `firestore:"sourceUri,omitempty"`
	OutputURI    string    `firestore:"outputUri,omitempty"`
	Status       string    `firestore:"status,omitempty"`
	ErrorDetails string    `firestore:"errorDetails,omitempty"`
	ShiftXMM     float64   `firestore:"shiftXMm"`
	ShiftYMM     float64   `firestore:"shiftYMm"`
	Copies       int       `firestore:"copies,omitempty"`
	PageCount    int       `firestore:"pageCount,omitempty"`
	CreatedAt    time.Time `firestore:"createdAt,omitempty"`
}

// Sticker is a named label sheet PDF offered in the catalog.
type Sticker struct {
	Name      string    `firestore:"name" json:"name"`
	URL       string    `firestore:"url" json:"url"`
	FileHash  string    `firestore:"fileHash,omitempty" json:"-"`
	PageCount int       `firestore:"pageCount,omitempty" json:"-"`
	CreatedAt time.Time `firestore:"createdAt,omitempty" json:"-"`
}
