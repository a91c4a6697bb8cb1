package detect

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"telegramdw/internal/models"
)

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".bmp": true,
}

// DetectionStore is the raw-zone surface the enricher needs. Satisfied by
// storage.RawRepository.
type DetectionStore interface {
	FetchUnprocessedMedia(ctx context.Context) ([]models.MediaMessage, error)
	SaveDetections(ctx context.Context, dets []models.Detection) error
}

// Detector runs inference on one image. Satisfied by Client.
type Detector interface {
	Detect(ctx context.Context, imagePath string) (*DetectResponse, error)
}

// HealthChecker is implemented by detectors that expose a health probe, such
// as Client. The enricher uses it to fail fast instead of erroring per image.
type HealthChecker interface {
	HealthCheck(ctx context.Context) (*HealthResponse, error)
}

// Enricher feeds undetected media messages through the inference service and
// writes the results into raw.image_detections.
type Enricher struct {
	detector  Detector
	store     DetectionStore
	threshold float64
	logger    *zap.Logger
}

// NewEnricher creates a new Enricher. Detections below threshold are dropped.
func NewEnricher(detector Detector, store DetectionStore, threshold float64, logger *zap.Logger) *Enricher {
	return &Enricher{detector: detector, store: store, threshold: threshold, logger: logger}
}

// Run processes every media message that has no detections yet. Messages whose
// image is missing on disk are logged and skipped; inference failures on a
// single image do not abort the run.
func (e *Enricher) Run(ctx context.Context) error {
	pending, err := e.store.FetchUnprocessedMedia(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		e.logger.Info("No new images to process")
		return nil
	}

	if hc, ok := e.detector.(HealthChecker); ok {
		health, err := hc.HealthCheck(ctx)
		if err != nil {
			return fmt.Errorf("detection service unavailable: %w", err)
		}
		if !health.ModelLoaded {
			return fmt.Errorf("detection service has no model loaded (status %q)", health.Status)
		}
	}

	var total int
	for _, msg := range pending {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !isImageFile(msg.FilePath) {
			e.logger.Warn("Image not found for message",
				zap.Int64("message_id", msg.ID),
				zap.String("channel", msg.Channel),
				zap.String("path", msg.FilePath))
			continue
		}

		resp, err := e.detector.Detect(ctx, msg.FilePath)
		if err != nil {
			e.logger.Error("Detection failed",
				zap.Int64("message_id", msg.ID), zap.Error(err))
			continue
		}

		rows := make([]models.Detection, 0, len(resp.Detections))
		for _, d := range resp.Detections {
			if d.Confidence < e.threshold {
				continue
			}
			rows = append(rows, models.Detection{
				MessageID:   msg.ID,
				ObjectClass: d.ObjectClass,
				Confidence:  d.Confidence,
			})
		}

		if err := e.store.SaveDetections(ctx, rows); err != nil {
			return fmt.Errorf("failed to save detections for message %d: %w", msg.ID, err)
		}
		total += len(rows)
		e.logger.Info("Detections saved",
			zap.Int64("message_id", msg.ID),
			zap.Int("detections", len(rows)),
			zap.String("image", filepath.Base(msg.FilePath)))
	}

	e.logger.Info("Detection run finished", zap.Int("detections", total))
	return nil
}

func isImageFile(path string) bool {
	if !imageExts[strings.ToLower(filepath.Ext(path))] {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
