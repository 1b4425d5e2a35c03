package repositories

import (
	"orchard-bridge/models"
	"orchard-bridge/repositories/base"
	"orchard-bridge/repositories/interfaces"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DirectoryRepository implements DirectoryRepositoryInterface.
type DirectoryRepository struct {
	db *gorm.DB
}

// NewDirectoryRepository creates a new instance of DirectoryRepository.
func NewDirectoryRepository(db *gorm.DB) interfaces.DirectoryRepositoryInterface {
	return &DirectoryRepository{db: db}
}

// GetFarm retrieves a farm visible to the caller. A farm belonging to
// another organization surfaces as not found.
func (dr *DirectoryRepository) GetFarm(caller models.Caller, farmID uuid.UUID) (*models.Farm, error) {
	query := dr.db.Where("id = ? AND deleted_at IS NULL", farmID)
	if !caller.IsSuperuser {
		query = query.Where("organization_id = ?", caller.OrganizationID)
	}

	var farm models.Farm
	if err := query.First(&farm).Error; err != nil {
		return nil, base.HandleDBError("get", "farms", farmID.String(), err)
	}
	return &farm, nil
}

// GetPlot retrieves a plot visible to the caller.
func (dr *DirectoryRepository) GetPlot(caller models.Caller, plotID uuid.UUID) (*models.Plot, error) {
	query := dr.db.Model(&models.Plot{}).
		Where("plots.id = ? AND plots.deleted_at IS NULL", plotID)
	if !caller.IsSuperuser {
		query = query.Joins("JOIN farms ON farms.id = plots.farm_id").
			Where("farms.organization_id = ?", caller.OrganizationID)
	}

	var plot models.Plot
	if err := query.First(&plot).Error; err != nil {
		return nil, base.HandleDBError("get", "plots", plotID.String(), err)
	}
	return &plot, nil
}

// ListVisiblePlots retrieves the caller's non-deleted plots, optionally
// restricted to one farm.
func (dr *DirectoryRepository) ListVisiblePlots(caller models.Caller, farmID *uuid.UUID) ([]models.Plot, error) {
	query := dr.db.Model(&models.Plot{}).Where("plots.deleted_at IS NULL")
	if !caller.IsSuperuser {
		query = query.Joins("JOIN farms ON farms.id = plots.farm_id").
			Where("farms.organization_id = ?", caller.OrganizationID)
	}
	if farmID != nil {
		query = query.Where("plots.farm_id = ?", *farmID)
	}

	var plots []models.Plot
	if err := query.Find(&plots).Error; err != nil {
		return nil, base.WrapDBError("list", "plots", err)
	}
	return plots, nil
}

// ListActivePlotsByFarm retrieves a farm's active plots.
func (dr *DirectoryRepository) ListActivePlotsByFarm(farmID uuid.UUID) ([]models.Plot, error) {
	var plots []models.Plot
	err := dr.db.
		Where("farm_id = ? AND is_active = ? AND deleted_at IS NULL", farmID, true).
		Find(&plots).Error
	if err != nil {
		return nil, base.WrapDBError("list", "plots", err)
	}
	return plots, nil
}

// ListUnresolvedAlertsByFarm retrieves a farm's open alerts.
func (dr *DirectoryRepository) ListUnresolvedAlertsByFarm(farmID uuid.UUID) ([]models.Alert, error) {
	var alerts []models.Alert
	err := dr.db.Where("farm_id = ? AND resolved_at IS NULL", farmID).Find(&alerts).Error
	if err != nil {
		return nil, base.WrapDBError("list", "alerts", err)
	}
	return alerts, nil
}

// DeadLetterRepository implements DeadLetterRepositoryInterface.
type DeadLetterRepository struct {
	db *gorm.DB
}

// NewDeadLetterRepository creates a new instance of DeadLetterRepository.
func NewDeadLetterRepository(db *gorm.DB) interfaces.DeadLetterRepositoryInterface {
	return &DeadLetterRepository{db: db}
}

// Insert appends one dead letter.
func (dlr *DeadLetterRepository) Insert(letter *models.DeadLetter) error {
	if err := dlr.db.Create(letter).Error; err != nil {
		return base.WrapDBError("insert", "dead_letters", err)
	}
	return nil
}
