package repositories

import (
	"errors"
	"time"

	"orchard-bridge/models"
	"orchard-bridge/repositories/base"
	"orchard-bridge/repositories/interfaces"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SnapshotRepository implements SnapshotRepositoryInterface.
type SnapshotRepository struct {
	db *gorm.DB
}

// NewSnapshotRepository creates a new instance of SnapshotRepository.
func NewSnapshotRepository(db *gorm.DB) interfaces.SnapshotRepositoryInterface {
	return &SnapshotRepository{db: db}
}

// GetByPlotAndDate returns the snapshot for (plot, date), or nil when none
// exists. Dates are normalized to UTC midnight before they are stored, so
// equality matches across drivers.
func (sr *SnapshotRepository) GetByPlotAndDate(plotID uuid.UUID, date time.Time) (*models.PlotProductionSnapshot, error) {
	var snapshot models.PlotProductionSnapshot
	err := sr.db.Where("plot_id = ? AND snapshot_date = ?", plotID, date).First(&snapshot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, base.WrapDBError("get", "plot_production_snapshots", err)
	}
	return &snapshot, nil
}

// LatestByPlot returns the most recent snapshot of a plot, or nil.
func (sr *SnapshotRepository) LatestByPlot(plotID uuid.UUID) (*models.PlotProductionSnapshot, error) {
	var snapshot models.PlotProductionSnapshot
	err := sr.db.Where("plot_id = ?", plotID).Order("snapshot_date desc").First(&snapshot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, base.WrapDBError("get latest", "plot_production_snapshots", err)
	}
	return &snapshot, nil
}

// Create inserts a new snapshot row.
func (sr *SnapshotRepository) Create(snapshot *models.PlotProductionSnapshot) error {
	if snapshot.ID == uuid.Nil {
		snapshot.ID = uuid.New()
	}
	if err := sr.db.Create(snapshot).Error; err != nil {
		return base.WrapDBError("create", "plot_production_snapshots", err)
	}
	return nil
}

// Update overwrites the computed fields of an existing row.
func (sr *SnapshotRepository) Update(snapshot *models.PlotProductionSnapshot) error {
	if err := sr.db.Save(snapshot).Error; err != nil {
		return base.WrapDBError("update", "plot_production_snapshots", err)
	}
	return nil
}

// ListByPlot retrieves a page of a plot's snapshots, newest first.
func (sr *SnapshotRepository) ListByPlot(plotID uuid.UUID, limit, offset int) ([]models.PlotProductionSnapshot, error) {
	var snapshots []models.PlotProductionSnapshot
	query := sr.db.Where("plot_id = ?", plotID).Order("snapshot_date desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&snapshots).Error; err != nil {
		return nil, base.WrapDBError("list", "plot_production_snapshots", err)
	}
	return snapshots, nil
}

// ListSince retrieves snapshots for a set of plots from the given date
// onwards, ascending by snapshot date.
func (sr *SnapshotRepository) ListSince(plotIDs []uuid.UUID, since time.Time) ([]models.PlotProductionSnapshot, error) {
	if len(plotIDs) == 0 {
		return nil, nil
	}
	var snapshots []models.PlotProductionSnapshot
	err := sr.db.
		Where("plot_id IN ? AND snapshot_date >= ?", plotIDs, since).
		Order("snapshot_date asc").
		Find(&snapshots).Error
	if err != nil {
		return nil, base.WrapDBError("list", "plot_production_snapshots", err)
	}
	return snapshots, nil
}
