package services

import (
	"log/slog"
	"sort"
	"time"

	"orchard-bridge/database"
	"orchard-bridge/models"

	"github.com/google/uuid"
)

// Farm-level health score penalty weights.
const (
	criticalPlotPenalty  = 15
	warningPlotPenalty   = 5
	offlinePlotPenalty   = 10
	criticalAlertPenalty = 10
	warningAlertPenalty  = 3
)

// History metrics and the lookback periods accepted by History.
const (
	MetricHealthScore = "health_score"
	MetricYield       = "yield"
	MetricMoisture    = "moisture"
	MetricTemperature = "temperature"
)

var periodDays = map[string]int{
	"7d":  7,
	"30d": 30,
	"90d": 90,
	"1y":  365,
}

// FarmSummary aggregates the current state of one farm.
type FarmSummary struct {
	FarmID           uuid.UUID `json:"farmId"`
	FarmName         string    `json:"farmName"`
	TotalArea        *float64  `json:"totalArea"`
	TotalPlots       int       `json:"totalPlots"`
	TotalTrees       int       `json:"totalTrees"`
	TotalSensors     int       `json:"totalSensors"`
	SensorsOnline    int       `json:"sensorsOnline"`
	SensorsOffline   int       `json:"sensorsOffline"`
	PlotsOK          int       `json:"plotsOk"`
	PlotsWarning     int       `json:"plotsWarning"`
	PlotsCritical    int       `json:"plotsCritical"`
	PlotsOffline     int       `json:"plotsOffline"`
	ActiveAlerts     int       `json:"activeAlerts"`
	CriticalAlerts   int       `json:"criticalAlerts"`
	WarningAlerts    int       `json:"warningAlerts"`
	AvgMoisture      *float64  `json:"avgMoisture"`
	AvgTemperature   *float64  `json:"avgTemperature"`
	AvgPH            *float64  `json:"avgPh"`
	HealthScore      int       `json:"healthScore"`
	EstimatedYieldKg float64   `json:"estimatedYieldKg"`
}

// FarmForecast is the production outlook across a farm's active plots.
type FarmForecast struct {
	TotalEstimatedKg   float64    `json:"totalEstimatedKg"`
	TotalEstimatedTons float64    `json:"totalEstimatedTons"`
	HarvestStart       *time.Time `json:"harvestStart"`
	HarvestEnd         *time.Time `json:"harvestEnd"`
	PlotsReady         int        `json:"plotsReady"`
	PlotsInProgress    int        `json:"plotsInProgress"`
}

// HistoryPoint is one reduced value per calendar day.
type HistoryPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// FarmHistory is a daily series of one metric over a lookback window.
type FarmHistory struct {
	Metric string         `json:"metric"`
	Period string         `json:"period"`
	Data   []HistoryPoint `json:"data"`
}

// FarmService rolls plot snapshots and raw readings up into farm-level
// views. All three views are read-only and scoped to the caller.
type FarmService struct {
	db     *database.Database
	logger *slog.Logger
	now    func() time.Time
}

// NewFarmService creates a new FarmService.
func NewFarmService(db *database.Database, logger *slog.Logger) *FarmService {
	return &FarmService{
		db:     db,
		logger: logger.With("component", "farm_service"),
		now:    time.Now,
	}
}

// Summary gathers a farm's plot statuses, sensor counts, alert tallies,
// reading averages, weighted health score and total yield estimate.
func (s *FarmService) Summary(caller models.Caller, farmID uuid.UUID) (*FarmSummary, error) {
	farm, err := s.db.DirectoryRepo.GetFarm(caller, farmID)
	if err != nil {
		return nil, err
	}
	plots, err := s.db.DirectoryRepo.ListActivePlotsByFarm(farm.ID)
	if err != nil {
		return nil, err
	}
	sensors, err := s.db.SensorRepo.ListActiveByFarm(farm.ID)
	if err != nil {
		return nil, err
	}
	alerts, err := s.db.DirectoryRepo.ListUnresolvedAlertsByFarm(farm.ID)
	if err != nil {
		return nil, err
	}

	summary := &FarmSummary{
		FarmID:       farm.ID,
		FarmName:     farm.Name,
		TotalArea:    farm.TotalArea,
		TotalPlots:   len(plots),
		TotalSensors: len(sensors),
	}

	var moistureValues, temperatureValues, phValues []float64

	for _, plot := range plots {
		summary.TotalTrees += plot.TreeCount

		snapshot, err := s.db.SnapshotRepo.LatestByPlot(plot.ID)
		if err != nil {
			return nil, err
		}

		status := models.StatusOffline
		if snapshot != nil {
			status = snapshot.Status
			if status == "" {
				status = models.StatusOK
			}
			if snapshot.EstimatedYieldKg != nil {
				summary.EstimatedYieldKg += *snapshot.EstimatedYieldKg
			}
		}
		switch status {
		case models.StatusOK:
			summary.PlotsOK++
		case models.StatusWarning:
			summary.PlotsWarning++
		case models.StatusCritical:
			summary.PlotsCritical++
		default:
			summary.PlotsOffline++
		}

		soil, err := s.db.TelemetryRepo.LatestSoilByPlot(plot.ID)
		if err != nil {
			return nil, err
		}
		if soil != nil {
			if soil.Moisture != nil {
				moistureValues = append(moistureValues, *soil.Moisture)
			}
			if soil.Temperature != nil {
				temperatureValues = append(temperatureValues, *soil.Temperature)
			}
			if soil.PH != nil {
				phValues = append(phValues, *soil.PH)
			}
		}
	}

	for _, sensor := range sensors {
		if sensor.IsOnline {
			summary.SensorsOnline++
		} else {
			summary.SensorsOffline++
		}
	}

	summary.ActiveAlerts = len(alerts)
	for _, alert := range alerts {
		switch alert.Severity {
		case models.AlertSeverityCritical:
			summary.CriticalAlerts++
		case models.AlertSeverityWarning:
			summary.WarningAlerts++
		}
	}

	summary.AvgMoisture = mean(moistureValues)
	summary.AvgTemperature = mean(temperatureValues)
	summary.AvgPH = mean(phValues)

	score := 100 -
		summary.PlotsCritical*criticalPlotPenalty -
		summary.PlotsWarning*warningPlotPenalty -
		summary.PlotsOffline*offlinePlotPenalty -
		summary.CriticalAlerts*criticalAlertPenalty -
		summary.WarningAlerts*warningAlertPenalty
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	summary.HealthScore = score

	return summary, nil
}

// Forecast sums yield estimates across the farm's active plots, widens the
// harvest window to the earliest start and latest end on record, and counts
// plots ready for harvest versus still progressing.
func (s *FarmService) Forecast(caller models.Caller, farmID uuid.UUID) (*FarmForecast, error) {
	farm, err := s.db.DirectoryRepo.GetFarm(caller, farmID)
	if err != nil {
		return nil, err
	}
	plots, err := s.db.DirectoryRepo.ListActivePlotsByFarm(farm.ID)
	if err != nil {
		return nil, err
	}

	forecast := &FarmForecast{}
	for _, plot := range plots {
		snapshot, err := s.db.SnapshotRepo.LatestByPlot(plot.ID)
		if err != nil {
			return nil, err
		}
		if snapshot == nil {
			continue
		}

		if snapshot.EstimatedYieldKg != nil {
			forecast.TotalEstimatedKg += *snapshot.EstimatedYieldKg
		}
		if snapshot.HarvestStartDate != nil {
			if forecast.HarvestStart == nil || snapshot.HarvestStartDate.Before(*forecast.HarvestStart) {
				forecast.HarvestStart = snapshot.HarvestStartDate
			}
		}
		if snapshot.HarvestEndDate != nil {
			if forecast.HarvestEnd == nil || snapshot.HarvestEndDate.After(*forecast.HarvestEnd) {
				forecast.HarvestEnd = snapshot.HarvestEndDate
			}
		}

		switch snapshot.ProductionStage {
		case models.StageProntoColheita:
			forecast.PlotsReady++
		case models.StageMaturacao, models.StageCrescimento, models.StageFrutificacao:
			forecast.PlotsInProgress++
		}
	}
	forecast.TotalEstimatedTons = forecast.TotalEstimatedKg / 1000

	return forecast, nil
}

// History buckets snapshot rows or raw soil readings into one point per
// calendar day: mean for health_score, moisture and temperature, sum for
// yield. Unknown periods fall back to 30 days.
func (s *FarmService) History(caller models.Caller, farmID uuid.UUID, metric, period string) (*FarmHistory, error) {
	farm, err := s.db.DirectoryRepo.GetFarm(caller, farmID)
	if err != nil {
		return nil, err
	}
	plots, err := s.db.DirectoryRepo.ListVisiblePlots(caller, &farm.ID)
	if err != nil {
		return nil, err
	}
	plotIDs := make([]uuid.UUID, len(plots))
	for i, plot := range plots {
		plotIDs[i] = plot.ID
	}

	days, ok := periodDays[period]
	if !ok {
		days = 30
	}
	since := DateOnly(s.now()).AddDate(0, 0, -days)

	byDate := make(map[string][]float64)

	switch metric {
	case MetricHealthScore, MetricYield:
		snapshots, err := s.db.SnapshotRepo.ListSince(plotIDs, since)
		if err != nil {
			return nil, err
		}
		for _, snapshot := range snapshots {
			day := snapshot.SnapshotDate.Format("2006-01-02")
			if metric == MetricHealthScore && snapshot.HealthScore != nil {
				byDate[day] = append(byDate[day], *snapshot.HealthScore)
			} else if metric == MetricYield && snapshot.EstimatedYieldKg != nil {
				byDate[day] = append(byDate[day], *snapshot.EstimatedYieldKg)
			}
		}
	case MetricMoisture, MetricTemperature:
		readings, err := s.db.TelemetryRepo.SoilReadingsSince(plotIDs, since)
		if err != nil {
			return nil, err
		}
		for _, reading := range readings {
			day := reading.Time.UTC().Format("2006-01-02")
			if metric == MetricMoisture && reading.Moisture != nil {
				byDate[day] = append(byDate[day], *reading.Moisture)
			} else if metric == MetricTemperature && reading.Temperature != nil {
				byDate[day] = append(byDate[day], *reading.Temperature)
			}
		}
	}

	days2 := make([]string, 0, len(byDate))
	for day := range byDate {
		days2 = append(days2, day)
	}
	sort.Strings(days2)

	history := &FarmHistory{Metric: metric, Period: period, Data: make([]HistoryPoint, 0, len(days2))}
	for _, day := range days2 {
		values := byDate[day]
		var value float64
		if metric == MetricYield {
			for _, v := range values {
				value += v
			}
		} else {
			value = *mean(values)
		}
		history.Data = append(history.Data, HistoryPoint{Date: day, Value: value})
	}
	return history, nil
}

func mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	m := sum / float64(len(values))
	return &m
}
