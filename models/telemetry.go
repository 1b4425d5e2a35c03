package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Time-series entities. All three tables are hypertables partitioned on the
// time column; rows are append-only and keyed by (time, sensor_id).
// ReceivedAt is audit-only: the row key uses the device-reported time when
// the uplink carries one, so equal retransmissions collapse onto one key
// instead of colliding on processing time.

// UplinkTelemetry is one raw device message, unparsed beyond the envelope.
type UplinkTelemetry struct {
	Time       time.Time      `gorm:"primaryKey" json:"time"`
	SensorID   uuid.UUID      `gorm:"type:uuid;primaryKey" json:"sensorId"`
	DevEUI     string         `gorm:"column:dev_eui;size:16" json:"devEui"`
	FPort      *int16         `gorm:"column:f_port" json:"fPort"`
	RSSI       *int16         `gorm:"column:rssi" json:"rssi"`
	SNR        *float64       `gorm:"column:snr" json:"snr"`
	Payload    datatypes.JSON `gorm:"not null" json:"payload"`
	ReceivedAt time.Time      `json:"receivedAt"`
}

func (UplinkTelemetry) TableName() string { return "uplink_telemetry" }

// SoilReading is a typed soil-sensor sample. All metric columns are
// sensor-reported and may be absent.
type SoilReading struct {
	Time        time.Time `gorm:"primaryKey" json:"time"`
	SensorID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"sensorId"`
	PlotID      uuid.UUID `gorm:"type:uuid;not null;index" json:"plotId"`
	Moisture    *float64  `json:"moisture"`
	Temperature *float64  `json:"temperature"`
	EC          *float64  `gorm:"column:ec" json:"ec"`
	PH          *float64  `gorm:"column:ph" json:"ph"`
	Nitrogen    *float64  `json:"nitrogen"`
	Phosphorus  *float64  `json:"phosphorus"`
	Potassium   *float64  `json:"potassium"`
	ReceivedAt  time.Time `json:"receivedAt"`
}

func (SoilReading) TableName() string { return "soil_readings" }

// VisionReading is a typed vision-sensor sample combining thermal, RGB and
// multispectral derived metrics.
type VisionReading struct {
	Time     time.Time `gorm:"primaryKey" json:"time"`
	SensorID uuid.UUID `gorm:"type:uuid;primaryKey" json:"sensorId"`
	PlotID   uuid.UUID `gorm:"type:uuid;not null;index" json:"plotId"`

	// Thermal camera
	IrrigationFailures      int      `gorm:"default:0" json:"irrigationFailures"`
	WaterStressLevel        *float64 `json:"waterStressLevel"`
	OverIrrigationDetected  bool     `gorm:"default:false" json:"overIrrigationDetected"`
	BlockedLines            int      `gorm:"default:0" json:"blockedLines"`

	// RGB camera
	FruitCount          int      `gorm:"default:0" json:"fruitCount"`
	AvgFruitSize        *float64 `json:"avgFruitSize"`
	FloweringPercentage *float64 `json:"floweringPercentage"`
	PestsDetected       bool     `gorm:"default:false" json:"pestsDetected"`
	PestType            string   `gorm:"size:100" json:"pestType"`
	FallenFruits        int      `gorm:"default:0" json:"fallenFruits"`

	// Multispectral
	ChlorophyllLevel *float64 `json:"chlorophyllLevel"`
	NDVI             *float64 `gorm:"column:ndvi" json:"ndvi"`
	VegetativeStress *float64 `json:"vegetativeStress"`
	MaturityIndex    *float64 `json:"maturityIndex"`

	ReceivedAt time.Time `json:"receivedAt"`
}

func (VisionReading) TableName() string { return "vision_readings" }
