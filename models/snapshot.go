package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Plot statuses exposed to the dashboard.
const (
	StatusOK       = "ok"
	StatusWarning  = "warning"
	StatusCritical = "critical"
	StatusOffline  = "offline"
)

// Risk levels, lowest to highest.
const (
	RiskBaixo   = "baixo"
	RiskMedio   = "medio"
	RiskAlto    = "alto"
	RiskCritico = "critico"
)

// Production stages in phenological order.
const (
	StageVegetativo     = "vegetativo"
	StageFloracao       = "floracao"
	StageFrutificacao   = "frutificacao"
	StageCrescimento    = "crescimento"
	StageMaturacao      = "maturacao"
	StageProntoColheita = "pronto_colheita"
)

// Fruit calibers by average size.
const (
	CaliberPequeno     = "pequeno"
	CaliberMedio       = "medio"
	CaliberGrande      = "grande"
	CaliberExtraGrande = "extra_grande"
)

// PlotProductionSnapshot is one day's computed production state for a plot.
// Exactly one row may exist per (plot_id, snapshot_date); the generator
// overwrites computed fields in place on re-runs.
type PlotProductionSnapshot struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PlotID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_plot_snapshot_date" json:"plotId"`
	SnapshotDate time.Time `gorm:"type:date;not null;uniqueIndex:uq_plot_snapshot_date" json:"snapshotDate"`

	Status          string   `gorm:"size:20;default:ok" json:"status"`
	HealthScore     *float64 `json:"healthScore"`
	ProductionStage string   `gorm:"size:50" json:"productionStage"`

	FlowersPerTree      *float64 `json:"flowersPerTree"`
	TotalFlowers        *int     `json:"totalFlowers"`
	FloweringPercentage *float64 `json:"floweringPercentage"`
	FruitsPerTree       *float64 `json:"fruitsPerTree"`
	TotalFruits         *int     `json:"totalFruits"`
	AvgFruitSize        *float64 `json:"avgFruitSize"`
	FruitCaliber        string   `gorm:"size:20" json:"fruitCaliber"`

	EstimatedYieldKg   *float64 `json:"estimatedYieldKg"`
	EstimatedYieldTons *float64 `json:"estimatedYieldTons"`

	HarvestStartDate *time.Time `gorm:"type:date" json:"harvestStartDate"`
	HarvestEndDate   *time.Time `gorm:"type:date" json:"harvestEndDate"`
	DaysToHarvest    *int       `json:"daysToHarvest"`

	RiskLevel   string         `gorm:"size:20" json:"riskLevel"`
	RiskFactors datatypes.JSON `json:"riskFactors"`

	LastSoilReadingTime   *time.Time `json:"lastSoilReadingTime"`
	LastVisionReadingTime *time.Time `json:"lastVisionReadingTime"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (PlotProductionSnapshot) TableName() string { return "plot_production_snapshots" }

// PlotStatus is the lightweight reading-driven view of a plot, computed on
// request and never persisted.
type PlotStatus struct {
	PlotID      uuid.UUID `json:"plotId"`
	Status      string    `json:"status"`
	HealthScore int       `json:"healthScore"`
}
