package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/laudoflow/reportengine/internal/services"
	"github.com/laudoflow/reportengine/report"
)

var (
	rendererInstance *services.RendererFunction
	once             sync.Once
	initErr          error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Register the CloudEvent function. The framework routes render events here.
	functions.CloudEvent("RenderReport", renderReport)
}

// main is required by the Go Functions Framework.
func main() {}

// renderReport is the Cloud Function entry point for render jobs.
func renderReport(ctx context.Context, e cloudevents.Event) error {
	// Use sync.Once for robust, one-time initialization of clients.
	once.Do(func() {
		rendererInstance, initErr = services.NewRenderer(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	var req report.RenderJobRequest
	if err := json.Unmarshal(e.Data(), &req); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	if _, err := rendererInstance.Process(ctx, &req); err != nil {
		// The error is already logged with context within the Process method.
		return err
	}
	return nil
}
