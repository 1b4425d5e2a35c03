package models

import (
	"time"

	"github.com/google/uuid"
)

// Directory entities owned by the external CRUD layer. The bridge only ever
// reads them, so the models carry just the columns the core consumes and no
// write hooks.

// Sensor is a directory entry resolving a physical device to domain objects.
type Sensor struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	FarmID         uuid.UUID  `gorm:"type:uuid;index" json:"farmId"`
	PlotID         uuid.UUID  `gorm:"type:uuid;index" json:"plotId"`
	OrganizationID uuid.UUID  `gorm:"type:uuid;index" json:"organizationId"`
	SerialNumber   string     `gorm:"size:100;index" json:"serialNumber"`
	MacAddress     string     `gorm:"size:17;index" json:"macAddress"`
	SensorType     string     `gorm:"size:50" json:"sensorType"`
	IsActive       bool       `gorm:"default:true" json:"isActive"`
	IsOnline       bool       `gorm:"default:false" json:"isOnline"`
	DeletedAt      *time.Time `json:"deletedAt"`
}

func (Sensor) TableName() string { return "sensors" }

// SensorIdentity is the resolved (sensor, plot, organization) triple the
// ingestion gateway attaches to every reading.
type SensorIdentity struct {
	SensorID       uuid.UUID `json:"sensorId"`
	PlotID         uuid.UUID `json:"plotId"`
	OrganizationID uuid.UUID `json:"organizationId"`
}

// Plot is a bounded cultivated area within a farm, the unit of scoring.
type Plot struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	FarmID    uuid.UUID  `gorm:"type:uuid;index" json:"farmId"`
	Name      string     `gorm:"size:200" json:"name"`
	Code      string     `gorm:"size:50" json:"code"`
	Area      *float64   `json:"area"`
	TreeCount int        `gorm:"default:0" json:"treeCount"`
	IsActive  bool       `gorm:"default:true" json:"isActive"`
	DeletedAt *time.Time `json:"deletedAt"`
}

func (Plot) TableName() string { return "plots" }

type Farm struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID uuid.UUID  `gorm:"type:uuid;index" json:"organizationId"`
	Name           string     `gorm:"size:200" json:"name"`
	TotalArea      *float64   `json:"totalArea"`
	DeletedAt      *time.Time `json:"deletedAt"`
}

func (Farm) TableName() string { return "farms" }

// Alert severities as written by the alerting CRUD layer.
const (
	AlertSeverityWarning  = "warning"
	AlertSeverityCritical = "critical"
)

type Alert struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	FarmID     uuid.UUID  `gorm:"type:uuid;index" json:"farmId"`
	PlotID     *uuid.UUID `gorm:"type:uuid" json:"plotId"`
	Severity   string     `gorm:"size:20" json:"severity"`
	Message    string     `json:"message"`
	ResolvedAt *time.Time `json:"resolvedAt"`
	CreatedAt  time.Time  `json:"createdAt"`
}

func (Alert) TableName() string { return "alerts" }

// Caller identifies the requesting principal for tenant scoping. The auth
// gateway in front of this service fills it in; a superuser sees every
// organization.
type Caller struct {
	UserID         uuid.UUID
	OrganizationID uuid.UUID
	IsSuperuser    bool
}
