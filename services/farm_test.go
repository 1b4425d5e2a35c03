package services

import (
	"testing"
	"time"

	"orchard-bridge/models"
	"orchard-bridge/repositories/base"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSnapshotRow(t *testing.T, svc *SnapshotService, caller models.Caller, snap *models.PlotProductionSnapshot) {
	t.Helper()
	require.NoError(t, svc.CreateManualSnapshot(caller, snap))
}

func TestFarmSummary(t *testing.T) {
	db := newTestDatabase(t)
	farmSvc := NewFarmService(db, testLogger())
	snapSvc := NewSnapshotService(db, 2, testLogger())
	caller := superuser()

	farm := seedFarm(t, db, caller.UserID)
	date := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)

	// Two critical plots, one warning, one without a snapshot (offline).
	plots := []struct {
		status string
		yield  *float64
	}{
		{models.StatusCritical, fp(100)},
		{models.StatusCritical, fp(50)},
		{models.StatusWarning, fp(30)},
		{"", nil},
	}
	for _, p := range plots {
		plot := seedPlot(t, db, farm.ID, 25)
		if p.status != "" {
			seedSnapshotRow(t, snapSvc, caller, &models.PlotProductionSnapshot{
				PlotID:           plot.ID,
				SnapshotDate:     date,
				Status:           p.status,
				EstimatedYieldKg: p.yield,
			})
			seedSoilReading(t, db, plot.ID, date, fp(20), fp(6.0), fp(30))
		}
	}

	// One sensor online, one offline.
	require.NoError(t, db.DB.Create(&models.Sensor{
		ID: uuid.New(), FarmID: farm.ID, OrganizationID: caller.UserID,
		SerialNumber: "SN-1", IsActive: true, IsOnline: true,
	}).Error)
	require.NoError(t, db.DB.Create(&models.Sensor{
		ID: uuid.New(), FarmID: farm.ID, OrganizationID: caller.UserID,
		SerialNumber: "SN-2", IsActive: true, IsOnline: false,
	}).Error)

	// One open critical alert, one resolved alert that must not count.
	require.NoError(t, db.DB.Create(&models.Alert{
		ID: uuid.New(), FarmID: farm.ID, Severity: models.AlertSeverityCritical,
	}).Error)
	resolved := time.Now()
	require.NoError(t, db.DB.Create(&models.Alert{
		ID: uuid.New(), FarmID: farm.ID, Severity: models.AlertSeverityWarning,
		ResolvedAt: &resolved,
	}).Error)

	summary, err := farmSvc.Summary(caller, farm.ID)
	require.NoError(t, err)

	assert.Equal(t, farm.ID, summary.FarmID)
	assert.Equal(t, 4, summary.TotalPlots)
	assert.Equal(t, 100, summary.TotalTrees)
	assert.Equal(t, 2, summary.PlotsCritical)
	assert.Equal(t, 1, summary.PlotsWarning)
	assert.Equal(t, 1, summary.PlotsOffline)
	assert.Equal(t, 0, summary.PlotsOK)
	assert.Equal(t, 1, summary.SensorsOnline)
	assert.Equal(t, 1, summary.SensorsOffline)
	assert.Equal(t, 1, summary.ActiveAlerts)
	assert.Equal(t, 1, summary.CriticalAlerts)
	assert.Equal(t, 0, summary.WarningAlerts)

	// 100 - 2 critical plots x15 - 1 warning plot x5 - 1 offline plot x10
	// - 1 critical alert x10.
	assert.Equal(t, 45, summary.HealthScore)

	assert.Equal(t, 180.0, summary.EstimatedYieldKg)
	require.NotNil(t, summary.AvgMoisture)
	assert.Equal(t, 20.0, *summary.AvgMoisture)
	require.NotNil(t, summary.AvgPH)
	assert.Equal(t, 6.0, *summary.AvgPH)
}

func TestFarmSummaryScopedByOrganization(t *testing.T) {
	db := newTestDatabase(t)
	farmSvc := NewFarmService(db, testLogger())

	owner := models.Caller{UserID: uuid.New(), OrganizationID: uuid.New()}
	stranger := models.Caller{UserID: uuid.New(), OrganizationID: uuid.New()}

	farm := seedFarm(t, db, owner.OrganizationID)

	_, err := farmSvc.Summary(stranger, farm.ID)
	require.Error(t, err)
	assert.True(t, base.IsEntityNotFound(err))

	_, err = farmSvc.Summary(owner, farm.ID)
	require.NoError(t, err)
}

func TestFarmForecast(t *testing.T) {
	db := newTestDatabase(t)
	farmSvc := NewFarmService(db, testLogger())
	snapSvc := NewSnapshotService(db, 2, testLogger())
	caller := superuser()

	farm := seedFarm(t, db, caller.UserID)
	date := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)

	startA := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	endA := time.Date(2026, 12, 15, 0, 0, 0, 0, time.UTC)
	startB := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)
	endB := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)

	ready := seedPlot(t, db, farm.ID, 10)
	seedSnapshotRow(t, snapSvc, caller, &models.PlotProductionSnapshot{
		PlotID:           ready.ID,
		SnapshotDate:     date,
		ProductionStage:  models.StageProntoColheita,
		EstimatedYieldKg: fp(400),
		HarvestStartDate: &startA,
		HarvestEndDate:   &endA,
	})

	growing := seedPlot(t, db, farm.ID, 10)
	seedSnapshotRow(t, snapSvc, caller, &models.PlotProductionSnapshot{
		PlotID:           growing.ID,
		SnapshotDate:     date,
		ProductionStage:  models.StageMaturacao,
		EstimatedYieldKg: fp(600),
		HarvestStartDate: &startB,
		HarvestEndDate:   &endB,
	})

	vegetative := seedPlot(t, db, farm.ID, 10)
	seedSnapshotRow(t, snapSvc, caller, &models.PlotProductionSnapshot{
		PlotID:          vegetative.ID,
		SnapshotDate:    date,
		ProductionStage: models.StageVegetativo,
	})

	forecast, err := farmSvc.Forecast(caller, farm.ID)
	require.NoError(t, err)

	assert.Equal(t, 1000.0, forecast.TotalEstimatedKg)
	assert.Equal(t, 1.0, forecast.TotalEstimatedTons)
	assert.Equal(t, 1, forecast.PlotsReady)
	assert.Equal(t, 1, forecast.PlotsInProgress)

	// Window widens to earliest start and latest end.
	require.NotNil(t, forecast.HarvestStart)
	assert.True(t, forecast.HarvestStart.Equal(startB))
	require.NotNil(t, forecast.HarvestEnd)
	assert.True(t, forecast.HarvestEnd.Equal(endA))
}

func TestFarmHistory(t *testing.T) {
	db := newTestDatabase(t)
	farmSvc := NewFarmService(db, testLogger())
	snapSvc := NewSnapshotService(db, 2, testLogger())
	caller := superuser()

	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	farmSvc.now = func() time.Time { return now }

	farm := seedFarm(t, db, caller.UserID)
	plotA := seedPlot(t, db, farm.ID, 10)
	plotB := seedPlot(t, db, farm.ID, 10)

	day1 := time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	score80, score60, score90 := 80.0, 60.0, 90.0
	seedSnapshotRow(t, snapSvc, caller, &models.PlotProductionSnapshot{
		PlotID: plotA.ID, SnapshotDate: day1, HealthScore: &score80, EstimatedYieldKg: fp(100),
	})
	seedSnapshotRow(t, snapSvc, caller, &models.PlotProductionSnapshot{
		PlotID: plotB.ID, SnapshotDate: day1, HealthScore: &score60, EstimatedYieldKg: fp(200),
	})
	seedSnapshotRow(t, snapSvc, caller, &models.PlotProductionSnapshot{
		PlotID: plotA.ID, SnapshotDate: day2, HealthScore: &score90, EstimatedYieldKg: fp(150),
	})

	t.Run("Health Score Averages Per Day", func(t *testing.T) {
		history, err := farmSvc.History(caller, farm.ID, MetricHealthScore, "7d")
		require.NoError(t, err)
		require.Len(t, history.Data, 2)
		assert.Equal(t, "2026-03-13", history.Data[0].Date)
		assert.Equal(t, 70.0, history.Data[0].Value)
		assert.Equal(t, "2026-03-14", history.Data[1].Date)
		assert.Equal(t, 90.0, history.Data[1].Value)
	})

	t.Run("Yield Sums Per Day", func(t *testing.T) {
		history, err := farmSvc.History(caller, farm.ID, MetricYield, "7d")
		require.NoError(t, err)
		require.Len(t, history.Data, 2)
		assert.Equal(t, 300.0, history.Data[0].Value)
		assert.Equal(t, 150.0, history.Data[1].Value)
	})

	t.Run("Moisture Comes From Raw Readings", func(t *testing.T) {
		seedSoilReading(t, db, plotA.ID, day1.Add(8*time.Hour), fp(18), nil, nil)
		seedSoilReading(t, db, plotA.ID, day1.Add(16*time.Hour), fp(22), nil, nil)

		history, err := farmSvc.History(caller, farm.ID, MetricMoisture, "7d")
		require.NoError(t, err)
		require.Len(t, history.Data, 1)
		assert.Equal(t, "2026-03-13", history.Data[0].Date)
		assert.Equal(t, 20.0, history.Data[0].Value)
	})

	t.Run("Window Excludes Old Rows", func(t *testing.T) {
		old := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		seedSnapshotRow(t, snapSvc, caller, &models.PlotProductionSnapshot{
			PlotID: plotB.ID, SnapshotDate: old, HealthScore: &score80,
		})

		history, err := farmSvc.History(caller, farm.ID, MetricHealthScore, "7d")
		require.NoError(t, err)
		assert.Len(t, history.Data, 2)
	})
}
