package services

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"orchard-bridge/database"
	"orchard-bridge/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDatabase opens an in-memory database with every table migrated,
// directory tables included since tests seed them directly.
func newTestDatabase(t *testing.T) *database.Database {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, gormDB.AutoMigrate(
		&models.Farm{},
		&models.Plot{},
		&models.Sensor{},
		&models.Alert{},
		&models.UplinkTelemetry{},
		&models.SoilReading{},
		&models.VisionReading{},
		&models.PlotProductionSnapshot{},
		&models.DeadLetter{},
	))

	return database.NewDatabaseWithConn(gormDB)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func superuser() models.Caller {
	return models.Caller{UserID: uuid.New(), IsSuperuser: true}
}

func seedFarm(t *testing.T, db *database.Database, orgID uuid.UUID) *models.Farm {
	t.Helper()
	area := 12.5
	farm := &models.Farm{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Name:           "Fazenda Santa Rosa",
		TotalArea:      &area,
	}
	require.NoError(t, db.DB.Create(farm).Error)
	return farm
}

func seedPlot(t *testing.T, db *database.Database, farmID uuid.UUID, treeCount int) *models.Plot {
	t.Helper()
	plot := &models.Plot{
		ID:        uuid.New(),
		FarmID:    farmID,
		Name:      "Talhao",
		Code:      "T-" + uuid.NewString()[:8],
		TreeCount: treeCount,
		IsActive:  true,
	}
	require.NoError(t, db.DB.Create(plot).Error)
	return plot
}

func seedSoilReading(t *testing.T, db *database.Database, plotID uuid.UUID, at time.Time, moisture, ph, temperature *float64) *models.SoilReading {
	t.Helper()
	reading := &models.SoilReading{
		Time:        at,
		SensorID:    uuid.New(),
		PlotID:      plotID,
		Moisture:    moisture,
		PH:          ph,
		Temperature: temperature,
		ReceivedAt:  at,
	}
	require.NoError(t, db.DB.Create(reading).Error)
	return reading
}

func seedVisionReading(t *testing.T, db *database.Database, plotID uuid.UUID, at time.Time, reading models.VisionReading) *models.VisionReading {
	t.Helper()
	reading.Time = at
	reading.SensorID = uuid.New()
	reading.PlotID = plotID
	reading.ReceivedAt = at
	require.NoError(t, db.DB.Create(&reading).Error)
	return &reading
}

func fp(v float64) *float64 { return &v }
