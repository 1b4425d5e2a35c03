package services

import (
	"log/slog"

	"orchard-bridge/database"
	"orchard-bridge/models"
	"orchard-bridge/scoring"

	"github.com/google/uuid"
)

// StatusCache is the cache surface for computed live statuses; the redis
// client satisfies it and tests pass nil.
type StatusCache interface {
	GetPlotStatus(plotID string) (*models.PlotStatus, error)
	SavePlotStatus(status *models.PlotStatus) error
}

// StatusService computes the lightweight, reading-driven view of a plot.
// Nothing is persisted; the short-lived cache only absorbs dashboard
// polling.
type StatusService struct {
	db     *database.Database
	cache  StatusCache
	logger *slog.Logger
}

// NewStatusService creates a new StatusService.
func NewStatusService(db *database.Database, cache StatusCache, logger *slog.Logger) *StatusService {
	return &StatusService{
		db:     db,
		cache:  cache,
		logger: logger.With("component", "status_service"),
	}
}

// CurrentStatus returns the live status and health score of a plot visible
// to the caller.
func (s *StatusService) CurrentStatus(caller models.Caller, plotID uuid.UUID) (*models.PlotStatus, error) {
	plot, err := s.db.DirectoryRepo.GetPlot(caller, plotID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if cached, err := s.cache.GetPlotStatus(plot.ID.String()); err != nil {
			s.logger.Warn("Status cache read failed", "plotId", plot.ID, slog.Any("error", err))
		} else if cached != nil {
			return cached, nil
		}
	}

	soil, err := s.db.TelemetryRepo.LatestSoilByPlot(plot.ID)
	if err != nil {
		return nil, err
	}
	vision, err := s.db.TelemetryRepo.LatestVisionByPlot(plot.ID)
	if err != nil {
		return nil, err
	}

	result := scoring.Evaluate(soil, vision)
	status := &models.PlotStatus{
		PlotID:      plot.ID,
		Status:      result.Status,
		HealthScore: result.Score,
	}

	if s.cache != nil {
		if err := s.cache.SavePlotStatus(status); err != nil {
			s.logger.Warn("Status cache write failed", "plotId", plot.ID, slog.Any("error", err))
		}
	}
	return status, nil
}
