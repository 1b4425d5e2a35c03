package repositories

import (
	"orchard-bridge/models"
	"orchard-bridge/repositories/base"
	"orchard-bridge/repositories/interfaces"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SensorRepository implements SensorRepositoryInterface.
type SensorRepository struct {
	db *gorm.DB
}

// NewSensorRepository creates a new instance of SensorRepository.
func NewSensorRepository(db *gorm.DB) interfaces.SensorRepositoryInterface {
	return &SensorRepository{db: db}
}

// ResolveIdentity maps a device identifier to the active sensor carrying it
// as serial number or MAC address. Both columns are indexed, so either match
// is a single lookup.
func (sr *SensorRepository) ResolveIdentity(identifier string) (*models.SensorIdentity, error) {
	var sensor models.Sensor
	err := sr.db.
		Where("(serial_number = ? OR mac_address = ?) AND is_active = ? AND deleted_at IS NULL",
			identifier, identifier, true).
		First(&sensor).Error
	if err != nil {
		return nil, base.HandleDBError("resolve", "sensors", identifier, err)
	}
	return &models.SensorIdentity{
		SensorID:       sensor.ID,
		PlotID:         sensor.PlotID,
		OrganizationID: sensor.OrganizationID,
	}, nil
}

// ListActiveByFarm retrieves all active, non-deleted sensors of a farm.
func (sr *SensorRepository) ListActiveByFarm(farmID uuid.UUID) ([]models.Sensor, error) {
	var sensors []models.Sensor
	err := sr.db.
		Where("farm_id = ? AND is_active = ? AND deleted_at IS NULL", farmID, true).
		Find(&sensors).Error
	if err != nil {
		return nil, base.WrapDBError("list", "sensors", err)
	}
	return sensors, nil
}
