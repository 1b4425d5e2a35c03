package interfaces

import (
	"time"

	"orchard-bridge/models"

	"github.com/google/uuid"
)

// SnapshotRepositoryInterface defines data access for production snapshots.
type SnapshotRepositoryInterface interface {
	// GetByPlotAndDate returns the snapshot for (plot, date), or nil when
	// none exists yet.
	GetByPlotAndDate(plotID uuid.UUID, date time.Time) (*models.PlotProductionSnapshot, error)

	// LatestByPlot returns the most recent snapshot of a plot, or nil.
	LatestByPlot(plotID uuid.UUID) (*models.PlotProductionSnapshot, error)

	// Create inserts a new snapshot row. A concurrent writer losing the
	// (plot_id, snapshot_date) race gets a DuplicateEntityError.
	Create(snapshot *models.PlotProductionSnapshot) error

	// Update overwrites the computed fields of an existing row.
	Update(snapshot *models.PlotProductionSnapshot) error

	// ListByPlot retrieves a page of a plot's snapshots, newest first.
	ListByPlot(plotID uuid.UUID, limit, offset int) ([]models.PlotProductionSnapshot, error)

	// ListSince retrieves snapshots for a set of plots from the given date
	// onwards, ascending by snapshot date.
	ListSince(plotIDs []uuid.UUID, since time.Time) ([]models.PlotProductionSnapshot, error)
}
