package services

import (
	"testing"
	"time"

	"orchard-bridge/models"
	"orchard-bridge/repositories/base"
	"orchard-bridge/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSnapshots(t *testing.T) {
	db := newTestDatabase(t)
	svc := NewSnapshotService(db, 4, testLogger())
	caller := superuser()

	farm := seedFarm(t, db, caller.UserID)
	plot := seedPlot(t, db, farm.ID, 10)

	readingTime := time.Date(2026, 3, 12, 9, 30, 0, 0, time.UTC)
	seedSoilReading(t, db, plot.ID, readingTime, fp(22), fp(6.5), fp(25))
	seedVisionReading(t, db, plot.ID, readingTime, models.VisionReading{
		FruitCount:   200,
		AvgFruitSize: fp(300),
		NDVI:         fp(0.7),
	})

	snapshots, err := svc.GenerateSnapshots(caller, nil, readingTime)
	require.NoError(t, err)
	require.Len(t, snapshots, 1)

	snap := snapshots[0]
	assert.Equal(t, plot.ID, snap.PlotID)
	assert.Equal(t, time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC), snap.SnapshotDate.UTC())
	assert.Equal(t, models.StatusOK, snap.Status)
	require.NotNil(t, snap.HealthScore)
	assert.Equal(t, 80.0, *snap.HealthScore) // base 70 + NDVI bonus

	// Yield: 200 fruits at 0.35 kg each.
	require.NotNil(t, snap.EstimatedYieldKg)
	assert.Equal(t, 70.0, *snap.EstimatedYieldKg)
	require.NotNil(t, snap.EstimatedYieldTons)
	assert.InDelta(t, 0.07, *snap.EstimatedYieldTons, 1e-9)

	// 200 fruits over 10 trees.
	require.NotNil(t, snap.FruitsPerTree)
	assert.Equal(t, 20.0, *snap.FruitsPerTree)
	assert.Equal(t, models.StageFrutificacao, snap.ProductionStage)
	assert.Equal(t, models.CaliberMedio, snap.FruitCaliber)
	assert.Equal(t, models.RiskBaixo, snap.RiskLevel)

	require.NotNil(t, snap.LastSoilReadingTime)
	assert.True(t, snap.LastSoilReadingTime.Equal(readingTime))
}

func TestGenerateSnapshotsIsIdempotent(t *testing.T) {
	db := newTestDatabase(t)
	svc := NewSnapshotService(db, 2, testLogger())
	caller := superuser()

	farm := seedFarm(t, db, caller.UserID)
	plot := seedPlot(t, db, farm.ID, 10)

	readingTime := time.Date(2026, 3, 12, 9, 30, 0, 0, time.UTC)
	seedSoilReading(t, db, plot.ID, readingTime, fp(16), fp(6.5), fp(25))

	first, err := svc.GenerateSnapshots(caller, nil, readingTime)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := svc.GenerateSnapshots(caller, nil, readingTime)
	require.NoError(t, err)
	require.Len(t, second, 1)

	// One row, same identity, same computed fields.
	var count int64
	require.NoError(t, db.DB.Model(&models.PlotProductionSnapshot{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, first[0].Status, second[0].Status)
	assert.Equal(t, *first[0].HealthScore, *second[0].HealthScore)
	assert.Equal(t, first[0].RiskLevel, second[0].RiskLevel)
}

func TestGenerateSnapshotsOfflinePlot(t *testing.T) {
	db := newTestDatabase(t)
	svc := NewSnapshotService(db, 2, testLogger())
	caller := superuser()

	farm := seedFarm(t, db, caller.UserID)
	seedPlot(t, db, farm.ID, 10)

	snapshots, err := svc.GenerateSnapshots(caller, nil, time.Now())
	require.NoError(t, err)
	require.Len(t, snapshots, 1)

	assert.Equal(t, models.StatusOffline, snapshots[0].Status)
	require.NotNil(t, snapshots[0].HealthScore)
	assert.Equal(t, 50.0, *snapshots[0].HealthScore)
	assert.Nil(t, snapshots[0].LastSoilReadingTime)
}

func TestGenerateSnapshotsScopesToFarm(t *testing.T) {
	db := newTestDatabase(t)
	svc := NewSnapshotService(db, 2, testLogger())
	caller := superuser()

	farmA := seedFarm(t, db, caller.UserID)
	farmB := seedFarm(t, db, caller.UserID)
	plotA := seedPlot(t, db, farmA.ID, 5)
	seedPlot(t, db, farmB.ID, 5)

	snapshots, err := svc.GenerateSnapshots(caller, &farmA.ID, time.Now())
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.Equal(t, plotA.ID, snapshots[0].PlotID)
}

func TestCreateManualSnapshot(t *testing.T) {
	db := newTestDatabase(t)
	svc := NewSnapshotService(db, 2, testLogger())
	caller := superuser()

	farm := seedFarm(t, db, caller.UserID)
	plot := seedPlot(t, db, farm.ID, 10)
	date := time.Date(2026, 3, 12, 15, 0, 0, 0, time.UTC)

	score := 65.0
	snapshot := &models.PlotProductionSnapshot{
		PlotID:       plot.ID,
		SnapshotDate: date,
		Status:       models.StatusWarning,
		HealthScore:  &score,
	}
	require.NoError(t, svc.CreateManualSnapshot(caller, snapshot))
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", snapshot.ID.String())

	t.Run("Same Plot And Date Conflicts", func(t *testing.T) {
		dup := &models.PlotProductionSnapshot{
			PlotID: plot.ID,
			// Different wall-clock time, same calendar date.
			SnapshotDate: time.Date(2026, 3, 12, 23, 59, 0, 0, time.UTC),
		}
		err := svc.CreateManualSnapshot(caller, dup)
		require.Error(t, err)
		assert.True(t, base.IsDuplicateEntity(err))
	})

	t.Run("Unknown Plot Is Not Found", func(t *testing.T) {
		missing := &models.PlotProductionSnapshot{
			PlotID:       superuser().UserID,
			SnapshotDate: date,
		}
		err := svc.CreateManualSnapshot(caller, missing)
		require.Error(t, err)
		assert.True(t, base.IsEntityNotFound(err))
	})
}

func TestListPlotSnapshots(t *testing.T) {
	db := newTestDatabase(t)
	svc := NewSnapshotService(db, 2, testLogger())
	caller := superuser()

	farm := seedFarm(t, db, caller.UserID)
	plot := seedPlot(t, db, farm.ID, 10)

	for day := 1; day <= 3; day++ {
		date := time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC)
		require.NoError(t, svc.CreateManualSnapshot(caller, &models.PlotProductionSnapshot{
			PlotID:       plot.ID,
			SnapshotDate: date,
		}))
	}

	t.Run("First Page Newest First", func(t *testing.T) {
		snapshots, err := svc.ListPlotSnapshots(caller, plot.ID, utils.PaginationParams{Limit: 2})
		require.NoError(t, err)
		require.Len(t, snapshots, 2)
		assert.True(t, snapshots[0].SnapshotDate.After(snapshots[1].SnapshotDate))
	})

	t.Run("Offset Skips Newest", func(t *testing.T) {
		snapshots, err := svc.ListPlotSnapshots(caller, plot.ID, utils.PaginationParams{Limit: 2, Offset: 2})
		require.NoError(t, err)
		require.Len(t, snapshots, 1)
		assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), snapshots[0].SnapshotDate.UTC())
	})
}

func TestProductionStage(t *testing.T) {
	cases := []struct {
		name          string
		floweringPct  *float64
		fruitsPerTree *float64
		want          string
	}{
		{"no signals", nil, nil, models.StageVegetativo},
		{"light flowering", fp(10), nil, models.StageVegetativo},
		{"strong flowering", fp(45), nil, models.StageFloracao},
		{"fruiting", fp(45), fp(25), models.StageFrutificacao},
		{"maturation", nil, fp(90), models.StageMaturacao},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, productionStage(tc.floweringPct, tc.fruitsPerTree))
		})
	}
}

func TestFruitCaliber(t *testing.T) {
	assert.Equal(t, models.CaliberPequeno, fruitCaliber(150))
	assert.Equal(t, models.CaliberMedio, fruitCaliber(200))
	assert.Equal(t, models.CaliberGrande, fruitCaliber(350))
	assert.Equal(t, models.CaliberExtraGrande, fruitCaliber(500))
}
