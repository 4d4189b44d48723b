package services

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yathboss/revenue-vision/internal/models"
)

// WarmupService precomputes models and cached results for the configured
// common signatures at startup, so fast-mode requests find a trained
// model waiting. Individual failures are logged and skipped; warmup never
// aborts startup.
type WarmupService struct {
	svc        *ForecastService
	signatures []string
	logger     *logrus.Logger
}

func NewWarmupService(svc *ForecastService, signatures []string, logger *logrus.Logger) *WarmupService {
	return &WarmupService{
		svc:        svc,
		signatures: signatures,
		logger:     logger,
	}
}

// Warm runs every configured precompute signature. Entries have the form
// "freq|category|region|segment"; warmed requests use fast mode and the
// base scenario.
func (w *WarmupService) Warm(ctx context.Context) {
	w.logger.Info("Starting forecast warmup")
	start := time.Now()
	warmed := 0

	for _, entry := range w.signatures {
		req, ok := parseWarmSignature(entry)
		if !ok {
			w.logger.WithField("signature", entry).Warn("Skipping malformed warm signature")
			continue
		}
		if _, err := w.svc.Forecast(ctx, req); err != nil {
			w.logger.WithError(err).WithField("signature", entry).Warn("Failed to warm forecast")
			continue
		}
		warmed++
	}

	w.logger.WithFields(logrus.Fields{
		"warmed":      warmed,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Forecast warmup completed")
}

func parseWarmSignature(entry string) (models.ForecastRequest, bool) {
	parts := strings.Split(entry, "|")
	if len(parts) != 4 {
		return models.ForecastRequest{}, false
	}
	return models.ForecastRequest{
		Freq: models.Frequency(strings.TrimSpace(parts[0])),
		Filters: models.Filters{
			Category: strings.TrimSpace(parts[1]),
			Region:   strings.TrimSpace(parts[2]),
			Segment:  strings.TrimSpace(parts[3]),
		},
		Mode:     models.ModeFast,
		Scenario: models.ScenarioBase,
	}, true
}
