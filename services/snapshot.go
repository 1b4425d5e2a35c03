package services

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"orchard-bridge/database"
	"orchard-bridge/models"
	"orchard-bridge/repositories/base"
	"orchard-bridge/scoring"
	"orchard-bridge/utils"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Average weight of one mango fruit, used for yield estimation until the
// vision pipeline reports per-fruit weights.
const avgFruitWeightKg = 0.35

// Production-stage thresholds on flowering percentage and fruits per tree.
const (
	floweringStageMin  = 30.0
	fruitingStageMin   = 20.0
	maturationStageMin = 80.0
)

// SnapshotService computes and persists the daily production snapshot of
// each plot. Per-plot computations are independent, so they fan out over a
// bounded worker pool and join before the result is returned.
type SnapshotService struct {
	db      *database.Database
	workers int
	logger  *slog.Logger
}

// NewSnapshotService creates a new SnapshotService.
func NewSnapshotService(db *database.Database, workers int, logger *slog.Logger) *SnapshotService {
	if workers < 1 {
		workers = 1
	}
	return &SnapshotService{
		db:      db,
		workers: workers,
		logger:  logger.With("component", "snapshot_service"),
	}
}

// DateOnly normalizes a timestamp to its calendar date at UTC midnight.
// Snapshot dates are always stored normalized so (plot, date) equality
// holds across drivers and time zones.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// GenerateSnapshots computes one snapshot per visible plot for the target
// date. Re-running for the same date overwrites the previous run's computed
// fields; the final state after either run is identical when the underlying
// readings have not changed.
func (s *SnapshotService) GenerateSnapshots(caller models.Caller, farmID *uuid.UUID, date time.Time) ([]models.PlotProductionSnapshot, error) {
	plots, err := s.db.DirectoryRepo.ListVisiblePlots(caller, farmID)
	if err != nil {
		return nil, err
	}
	date = DateOnly(date)

	snapshots := make([]*models.PlotProductionSnapshot, len(plots))
	errs := make([]error, len(plots))

	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup
	for i := range plots {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			snapshots[i], errs[i] = s.generateForPlot(&plots[i], date)
		}(i)
	}
	wg.Wait()

	result := make([]models.PlotProductionSnapshot, 0, len(plots))
	for i := range plots {
		if errs[i] != nil {
			s.logger.Error("Snapshot generation failed", "plotId", plots[i].ID, slog.Any("error", errs[i]))
			return nil, errs[i]
		}
		result = append(result, *snapshots[i])
	}
	s.logger.Info("Snapshots generated", "date", date.Format("2006-01-02"), "plots", len(result))
	return result, nil
}

// generateForPlot computes and upserts the snapshot of one plot. The upsert
// is read-then-write: two concurrent runs for the same plot and day race on
// the unique (plot_id, snapshot_date) index and the loser surfaces a
// DuplicateEntityError.
func (s *SnapshotService) generateForPlot(plot *models.Plot, date time.Time) (*models.PlotProductionSnapshot, error) {
	soil, err := s.db.TelemetryRepo.LatestSoilByPlot(plot.ID)
	if err != nil {
		return nil, err
	}
	vision, err := s.db.TelemetryRepo.LatestVisionByPlot(plot.ID)
	if err != nil {
		return nil, err
	}

	scored := scoring.EvaluateSnapshot(soil, vision)
	healthScore := float64(scored.Score)

	snapshot := &models.PlotProductionSnapshot{
		PlotID:          plot.ID,
		SnapshotDate:    date,
		Status:          scored.Status,
		HealthScore:     &healthScore,
		ProductionStage: models.StageVegetativo,
		RiskLevel:       scored.RiskLevel,
		RiskFactors:     marshalFactors(scored.RiskFactors),
	}
	if soil != nil {
		t := soil.Time
		snapshot.LastSoilReadingTime = &t
	}
	if vision != nil {
		s.applyVisionMetrics(snapshot, plot, vision)
	}

	existing, err := s.db.SnapshotRepo.GetByPlotAndDate(plot.ID, date)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		snapshot.ID = existing.ID
		snapshot.CreatedAt = existing.CreatedAt
		if err := s.db.SnapshotRepo.Update(snapshot); err != nil {
			return nil, err
		}
		return snapshot, nil
	}
	if err := s.db.SnapshotRepo.Create(snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// applyVisionMetrics carries the vision-derived production numbers into the
// snapshot: fruit counts, yield estimate, caliber and stage.
func (s *SnapshotService) applyVisionMetrics(snapshot *models.PlotProductionSnapshot, plot *models.Plot, vision *models.VisionReading) {
	totalFruits := vision.FruitCount
	snapshot.TotalFruits = &totalFruits
	snapshot.AvgFruitSize = vision.AvgFruitSize
	snapshot.FloweringPercentage = vision.FloweringPercentage

	if plot.TreeCount > 0 {
		fruitsPerTree := float64(totalFruits) / float64(plot.TreeCount)
		snapshot.FruitsPerTree = &fruitsPerTree
	}

	yieldKg := float64(totalFruits) * avgFruitWeightKg
	yieldTons := yieldKg / 1000
	snapshot.EstimatedYieldKg = &yieldKg
	snapshot.EstimatedYieldTons = &yieldTons

	if vision.AvgFruitSize != nil {
		snapshot.FruitCaliber = fruitCaliber(*vision.AvgFruitSize)
	}
	snapshot.ProductionStage = productionStage(vision.FloweringPercentage, snapshot.FruitsPerTree)

	t := vision.Time
	snapshot.LastVisionReadingTime = &t
}

// CreateManualSnapshot persists a caller-supplied snapshot. An existing row
// for the same (plot, date) is a hard conflict: no merge, no overwrite.
func (s *SnapshotService) CreateManualSnapshot(caller models.Caller, snapshot *models.PlotProductionSnapshot) error {
	plot, err := s.db.DirectoryRepo.GetPlot(caller, snapshot.PlotID)
	if err != nil {
		return err
	}
	snapshot.SnapshotDate = DateOnly(snapshot.SnapshotDate)

	existing, err := s.db.SnapshotRepo.GetByPlotAndDate(plot.ID, snapshot.SnapshotDate)
	if err != nil {
		return err
	}
	if existing != nil {
		return base.NewDuplicateEntityError("plot_production_snapshots", "snapshot_date",
			snapshot.SnapshotDate.Format("2006-01-02"))
	}
	return s.db.SnapshotRepo.Create(snapshot)
}

// ListPlotSnapshots returns a page of a plot's snapshot history, newest
// first.
func (s *SnapshotService) ListPlotSnapshots(caller models.Caller, plotID uuid.UUID, pagination utils.PaginationParams) ([]models.PlotProductionSnapshot, error) {
	plot, err := s.db.DirectoryRepo.GetPlot(caller, plotID)
	if err != nil {
		return nil, err
	}
	return s.db.SnapshotRepo.ListByPlot(plot.ID, pagination.Limit, pagination.Offset)
}

// LatestSnapshots returns the most recent snapshot of each visible plot.
// Plots without any snapshot are skipped.
func (s *SnapshotService) LatestSnapshots(caller models.Caller, farmID *uuid.UUID) ([]models.PlotProductionSnapshot, error) {
	plots, err := s.db.DirectoryRepo.ListVisiblePlots(caller, farmID)
	if err != nil {
		return nil, err
	}

	result := make([]models.PlotProductionSnapshot, 0, len(plots))
	for _, plot := range plots {
		snapshot, err := s.db.SnapshotRepo.LatestByPlot(plot.ID)
		if err != nil {
			return nil, err
		}
		if snapshot != nil {
			result = append(result, *snapshot)
		}
	}
	return result, nil
}

// productionStage derives the phenological stage; later stages win as their
// thresholds are crossed.
func productionStage(floweringPct, fruitsPerTree *float64) string {
	stage := models.StageVegetativo
	if floweringPct != nil && *floweringPct >= floweringStageMin {
		stage = models.StageFloracao
	}
	if fruitsPerTree != nil {
		if *fruitsPerTree >= fruitingStageMin {
			stage = models.StageFrutificacao
		}
		if *fruitsPerTree >= maturationStageMin {
			stage = models.StageMaturacao
		}
	}
	return stage
}

// fruitCaliber buckets the average fruit size in grams.
func fruitCaliber(avgSize float64) string {
	switch {
	case avgSize < 200:
		return models.CaliberPequeno
	case avgSize < 350:
		return models.CaliberMedio
	case avgSize < 500:
		return models.CaliberGrande
	default:
		return models.CaliberExtraGrande
	}
}

func marshalFactors(factors []string) datatypes.JSON {
	if factors == nil {
		factors = []string{}
	}
	data, _ := json.Marshal(factors)
	return datatypes.JSON(data)
}
