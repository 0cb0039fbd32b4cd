package models

import "time"

// RenderJob is the Firestore record tracking one render job. It carries the
// overall status and the location of the finished document.
type RenderJob struct {
	ReportTitle  string    `firestore:"reportTitle,omitempty"`
	TenantName   string    `firestore:"tenantName,omitempty"`
	Status       string    `firestore:"status,omitempty"`
	ErrorDetails string    `firestore:"errorDetails,omitempty"`
	OutputGCSUri string    `firestore:"outputGcsUri,omitempty"`
	PageCount    int       `firestore:"pageCount,omitempty"`
	ByteSize     int       `firestore:"byteSize,omitempty"`
	ExecutionID  string    `firestore:"executionId,omitempty"` // For traceability
	UpdatedAt    time.Time `firestore:"updatedAt,omitempty"`
}
