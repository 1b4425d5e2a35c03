package interfaces

import (
	"time"

	"orchard-bridge/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TelemetryRepositoryInterface defines data access for the time-series
// tables. Inserts run inside the caller's transaction so one inbound
// message commits or rolls back as a unit.
type TelemetryRepositoryInterface interface {
	// InsertUplink appends one raw telemetry record.
	InsertUplink(tx *gorm.DB, record *models.UplinkTelemetry) error

	// InsertSoilReading appends one typed soil sample.
	InsertSoilReading(tx *gorm.DB, reading *models.SoilReading) error

	// InsertVisionReading appends one typed vision sample. The vision
	// pipeline writes these outside the MQTT path.
	InsertVisionReading(reading *models.VisionReading) error

	// LatestSoilByPlot returns the most recent soil reading for a plot, or
	// nil when the plot has none.
	LatestSoilByPlot(plotID uuid.UUID) (*models.SoilReading, error)

	// LatestVisionByPlot returns the most recent vision reading for a
	// plot, or nil when the plot has none.
	LatestVisionByPlot(plotID uuid.UUID) (*models.VisionReading, error)

	// SoilReadingsSince retrieves soil readings for a set of plots from
	// the given instant onwards, ascending by time.
	SoilReadingsSince(plotIDs []uuid.UUID, since time.Time) ([]models.SoilReading, error)
}
