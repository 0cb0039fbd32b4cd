package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	executions "cloud.google.com/go/workflows/executions/apiv1"
	"cloud.google.com/go/workflows/executions/apiv1/executionspb"
	"golang.org/x/sync/errgroup"

	"github.com/laudoflow/reportengine/imagesource"
	"github.com/laudoflow/reportengine/internal/gcp"
	"github.com/laudoflow/reportengine/internal/models"
	"github.com/laudoflow/reportengine/layout"
	"github.com/laudoflow/reportengine/render"
	"github.com/laudoflow/reportengine/report"
)

// RendererConfig holds configuration for the report-renderer service.
type RendererConfig struct {
	ProjectID         string
	OutputBucket      string
	AttachmentsBucket string
	ImagesBucket      string
	CollectionName    string
	WorkflowID        string
	WorkflowLocation  string
}

// RendererFunction wires the render engine to GCP: it receives fully
// materialized render jobs, produces the document, stores it, and tracks
// job status in Firestore.
type RendererFunction struct {
	storageClient    *storage.Client
	firestoreClient  *firestore.Client
	executionsClient *executions.Client
	engine           *render.Engine
	config           RendererConfig
}

// NewRenderer creates a new RendererFunction instance.
func NewRenderer(ctx context.Context) (*RendererFunction, error) {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}

	config := RendererConfig{
		ProjectID:         projectID,
		OutputBucket:      gcp.GetEnv("RENDERED_REPORTS_BUCKET", ""),
		AttachmentsBucket: gcp.GetEnv("CERTIFICATE_ATTACHMENTS_BUCKET", ""),
		ImagesBucket:      gcp.GetEnv("REPORT_IMAGES_BUCKET", ""),
		CollectionName:    gcp.GetEnv("FIRESTORE_COLLECTION", "renderJobs"),
		WorkflowLocation:  gcp.GetEnv("WORKFLOW_LOCATION", "us-central1"),
		WorkflowID:        gcp.GetEnv("DELIVERY_WORKFLOW_ID", ""),
	}
	if config.OutputBucket == "" {
		return nil, fmt.Errorf("RENDERED_REPORTS_BUCKET environment variable must be set")
	}

	firestoreClient, err := gcp.NewFirestoreClient(ctx, config.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Storage client: %w", err)
	}
	var executionsClient *executions.Client
	if config.WorkflowID != "" {
		executionsClient, err = executions.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create Workflows Executions client: %w", err)
		}
	}

	engine := render.New(
		imagesource.NewGCSResolver(storageClient, config.ImagesBucket),
		imagesource.NewHTTPFetcher(),
	)

	f := &RendererFunction{
		storageClient:    storageClient,
		firestoreClient:  firestoreClient,
		executionsClient: executionsClient,
		engine:           engine,
		config:           config,
	}
	slog.Info("Report renderer logic initialized.", "outputBucket", config.OutputBucket)
	return f, nil
}

// Process renders one job end to end: attachments are downloaded, the
// document is rendered and merged, the result is uploaded, and the job
// record reflects the outcome.
func (f *RendererFunction) Process(ctx context.Context, req *report.RenderJobRequest) (*report.RenderJobResponse, error) {
	logCtx := slog.With("jobId", req.JobID, "executionId", req.ExecutionID)
	logCtx.Info("Processing render job.", "reportTitle", req.Report.Title)

	if req.JobID == "" || req.OutputObject == "" {
		return nil, fmt.Errorf("render job must carry jobId and outputObject")
	}
	jobRef := f.firestoreClient.Collection(f.config.CollectionName).Doc(req.JobID)
	if err := f.updateStatus(ctx, jobRef, "RENDERING", ""); err != nil {
		logCtx.Error("Failed to mark job as RENDERING", "error", err)
		return nil, err
	}

	attachments, err := f.downloadAttachments(ctx, req.AttachmentKeys)
	if err != nil {
		return nil, f.handleError(ctx, logCtx, jobRef, "failed to download certificate attachments", err)
	}

	partial := layout.ParsePartial(req.LayoutConfig)
	if partial == nil && len(req.LayoutConfig) > 0 {
		logCtx.Warn("Malformed layout config, using defaults.")
	}

	doc, err := f.engine.RenderReportDocument(ctx, req.Report, req.Tenant, req.Certificates, partial)
	if err != nil {
		return nil, f.handleError(ctx, logCtx, jobRef, "failed to render report document", err)
	}

	merged, err := render.MergeWithCertificateAttachments(doc, attachments)
	if err != nil {
		return nil, f.handleError(ctx, logCtx, jobRef, "failed to merge certificate attachments", err)
	}

	if err := gcp.UploadBytesWithRetry(ctx, f.storageClient, f.config.OutputBucket, req.OutputObject, merged); err != nil {
		return nil, f.handleError(ctx, logCtx, jobRef, "failed to upload rendered document", err)
	}
	outputURI := fmt.Sprintf("gs://%s/%s", f.config.OutputBucket, req.OutputObject)

	pageCount, err := render.PageCount(merged)
	if err != nil {
		logCtx.Warn("Failed to count pages of rendered document.", "error", err)
	}

	job := models.RenderJob{
		ReportTitle:  req.Report.Title,
		TenantName:   req.Tenant.Name,
		Status:       "DONE",
		OutputGCSUri: outputURI,
		PageCount:    pageCount,
		ByteSize:     len(merged),
		ExecutionID:  req.ExecutionID,
		UpdatedAt:    time.Now(),
	}
	if _, err := jobRef.Set(ctx, completionFields(job), firestore.MergeAll); err != nil {
		return nil, f.handleError(ctx, logCtx, jobRef, "failed to record job completion", err)
	}

	if err := f.triggerDeliveryWorkflow(ctx, logCtx, req.JobID, outputURI); err != nil {
		// Delivery is downstream of the document itself; the job stays DONE.
		logCtx.Error("Failed to trigger delivery workflow.", "error", err)
	}

	logCtx.Info("Render job complete.", "outputGcsUri", outputURI, "pages", pageCount, "bytes", len(merged))
	return &report.RenderJobResponse{
		Status:       "success",
		OutputGCSUri: outputURI,
		PageCount:    pageCount,
		ByteSize:     len(merged),
	}, nil
}

// downloadAttachments fetches the certificate attachment PDFs concurrently,
// preserving input order. This fan-out stays outside the engine, which
// itself fetches strictly sequentially.
func (f *RendererFunction) downloadAttachments(ctx context.Context, keys []string) ([][]byte, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	if f.config.AttachmentsBucket == "" {
		return nil, fmt.Errorf("CERTIFICATE_ATTACHMENTS_BUCKET must be set when jobs carry attachments")
	}

	results := make([][]byte, len(keys))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(4)

	for i, key := range keys {
		eg.Go(func() error {
			data, err := gcp.DownloadBytes(gctx, f.storageClient, f.config.AttachmentsBucket, key)
			if err != nil {
				return fmt.Errorf("attachment %s: %w", key, err)
			}
			results[i] = data
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (f *RendererFunction) triggerDeliveryWorkflow(ctx context.Context, logCtx *slog.Logger, jobID, outputURI string) error {
	if f.executionsClient == nil {
		return nil
	}
	logCtx.Info("Triggering delivery workflow.", "workflowId", f.config.WorkflowID)
	payload := map[string]interface{}{
		"jobId":        jobID,
		"outputGcsUri": outputURI,
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow payload: %w", err)
	}
	req := &executionspb.CreateExecutionRequest{
		Parent: fmt.Sprintf("projects/%s/locations/%s/workflows/%s", f.config.ProjectID, f.config.WorkflowLocation, f.config.WorkflowID),
		Execution: &executionspb.Execution{
			Argument: string(payloadBytes),
		},
	}
	if _, err := f.executionsClient.CreateExecution(ctx, req); err != nil {
		return fmt.Errorf("failed to trigger workflow execution: %w", err)
	}
	return nil
}

// completionFields flattens the DONE record into a field map so the merge
// write updates only the renderer's own fields, preserving whatever the
// enqueueing side stored on the job document. A failure note left by an
// earlier attempt is cleared.
func completionFields(job models.RenderJob) map[string]interface{} {
	return map[string]interface{}{
		"reportTitle":  job.ReportTitle,
		"tenantName":   job.TenantName,
		"status":       job.Status,
		"errorDetails": "",
		"outputGcsUri": job.OutputGCSUri,
		"pageCount":    job.PageCount,
		"byteSize":     job.ByteSize,
		"executionId":  job.ExecutionID,
		"updatedAt":    job.UpdatedAt,
	}
}

func (f *RendererFunction) handleError(ctx context.Context, logCtx *slog.Logger, jobRef *firestore.DocumentRef, message string, originalErr error) error {
	fullError := fmt.Sprintf("%s: %v", message, originalErr)
	logCtx.Error(message, "error", originalErr)
	if err := f.updateStatus(ctx, jobRef, "FAILED", fullError); err != nil {
		logCtx.Error("CRITICAL: Failed to update Firestore status to FAILED after a processing error.", "updateError", err)
	}
	return fmt.Errorf("%s", fullError)
}

func (f *RendererFunction) updateStatus(ctx context.Context, jobRef *firestore.DocumentRef, status, errDetails string) error {
	job := models.RenderJob{
		Status:       status,
		ErrorDetails: errDetails,
		UpdatedAt:    time.Now(),
	}
	_, err := jobRef.Set(ctx, job, firestore.Merge(
		firestore.FieldPath{"status"},
		firestore.FieldPath{"errorDetails"},
		firestore.FieldPath{"updatedAt"},
	))
	return err
}
