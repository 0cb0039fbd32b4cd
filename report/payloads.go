package report

import "encoding/json"

// These structs define the JSON payloads exchanged between the delivery
// pipeline and the render worker. The report snapshot travels fully
// materialized in the event payload; the worker never re-reads template
// definitions from a datastore.

// RenderJobRequest is the input for the report-renderer function.
type RenderJobRequest struct {
	JobID          string              `json:"jobId"`
	ExecutionID    string              `json:"executionId,omitempty"`
	Report         Snapshot            `json:"report"`
	Tenant         TenantBranding      `json:"tenant"`
	Certificates   []CertificateRecord `json:"certificates,omitempty"`
	LayoutConfig   json.RawMessage     `json:"layoutConfig,omitempty"`
	AttachmentKeys []string            `json:"attachmentKeys,omitempty"`
	OutputObject   string              `json:"outputObject"`
}

// RenderJobResponse is the output of the report-renderer function.
type RenderJobResponse struct {
	Status       string `json:"status"`
	OutputGCSUri string `json:"outputGcsUri"`
	PageCount    int    `json:"pageCount"`
	ByteSize     int    `json:"byteSize"`
}
