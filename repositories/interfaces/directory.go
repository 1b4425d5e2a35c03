package interfaces

import (
	"orchard-bridge/models"

	"github.com/google/uuid"
)

// DirectoryRepositoryInterface defines read access to farms, plots and
// alerts, always scoped to the caller's organization. A farm or plot outside
// the caller's organization is indistinguishable from a nonexistent one.
type DirectoryRepositoryInterface interface {
	// GetFarm retrieves a farm visible to the caller.
	GetFarm(caller models.Caller, farmID uuid.UUID) (*models.Farm, error)

	// GetPlot retrieves a plot visible to the caller.
	GetPlot(caller models.Caller, plotID uuid.UUID) (*models.Plot, error)

	// ListVisiblePlots retrieves the caller's non-deleted plots, optionally
	// restricted to one farm.
	ListVisiblePlots(caller models.Caller, farmID *uuid.UUID) ([]models.Plot, error)

	// ListActivePlotsByFarm retrieves a farm's active plots.
	ListActivePlotsByFarm(farmID uuid.UUID) ([]models.Plot, error)

	// ListUnresolvedAlertsByFarm retrieves a farm's open alerts.
	ListUnresolvedAlertsByFarm(farmID uuid.UUID) ([]models.Alert, error)
}

// DeadLetterRepositoryInterface persists rejected inbound messages.
type DeadLetterRepositoryInterface interface {
	Insert(letter *models.DeadLetter) error
}
