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

// TelemetryRepository implements TelemetryRepositoryInterface.
type TelemetryRepository struct {
	db *gorm.DB
}

// NewTelemetryRepository creates a new instance of TelemetryRepository.
func NewTelemetryRepository(db *gorm.DB) interfaces.TelemetryRepositoryInterface {
	return &TelemetryRepository{db: db}
}

// InsertUplink appends one raw telemetry record inside tx.
func (tr *TelemetryRepository) InsertUplink(tx *gorm.DB, record *models.UplinkTelemetry) error {
	if err := tx.Create(record).Error; err != nil {
		return base.WrapDBError("insert", "uplink_telemetry", err)
	}
	return nil
}

// InsertSoilReading appends one typed soil sample inside tx.
func (tr *TelemetryRepository) InsertSoilReading(tx *gorm.DB, reading *models.SoilReading) error {
	if err := tx.Create(reading).Error; err != nil {
		return base.WrapDBError("insert", "soil_readings", err)
	}
	return nil
}

// InsertVisionReading appends one typed vision sample.
func (tr *TelemetryRepository) InsertVisionReading(reading *models.VisionReading) error {
	if err := tr.db.Create(reading).Error; err != nil {
		return base.WrapDBError("insert", "vision_readings", err)
	}
	return nil
}

// LatestSoilByPlot returns the most recent soil reading for a plot. A plot
// with no readings yet yields (nil, nil), not an error: absence is a normal
// scoring input.
func (tr *TelemetryRepository) LatestSoilByPlot(plotID uuid.UUID) (*models.SoilReading, error) {
	var reading models.SoilReading
	err := tr.db.Where("plot_id = ?", plotID).Order("time desc").First(&reading).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, base.WrapDBError("get latest", "soil_readings", err)
	}
	return &reading, nil
}

// LatestVisionByPlot returns the most recent vision reading for a plot, or
// (nil, nil) when the plot has none.
func (tr *TelemetryRepository) LatestVisionByPlot(plotID uuid.UUID) (*models.VisionReading, error) {
	var reading models.VisionReading
	err := tr.db.Where("plot_id = ?", plotID).Order("time desc").First(&reading).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, base.WrapDBError("get latest", "vision_readings", err)
	}
	return &reading, nil
}

// SoilReadingsSince retrieves soil readings for a set of plots from the
// given instant onwards, ascending by time.
func (tr *TelemetryRepository) SoilReadingsSince(plotIDs []uuid.UUID, since time.Time) ([]models.SoilReading, error) {
	if len(plotIDs) == 0 {
		return nil, nil
	}
	var readings []models.SoilReading
	err := tr.db.
		Where("plot_id IN ? AND time >= ?", plotIDs, since).
		Order("time asc").
		Find(&readings).Error
	if err != nil {
		return nil, base.WrapDBError("list", "soil_readings", err)
	}
	return readings, nil
}
