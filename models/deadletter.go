package models

import (
	"time"

	"gorm.io/datatypes"
)

// Dead-letter reasons.
const (
	DeadLetterUnknownDevice    = "unknown_device"
	DeadLetterMalformedPayload = "malformed_payload"
)

// DeadLetter keeps a rejected inbound message for later inspection or
// replay. Ingestion stays at-most-once: nothing in the pipeline reads these
// rows back automatically.
type DeadLetter struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Topic     string         `gorm:"size:255" json:"topic"`
	DevEUI    string         `gorm:"column:dev_eui;size:16" json:"devEui"`
	Reason    string         `gorm:"size:50;index" json:"reason"`
	Detail    string         `json:"detail"`
	Payload   datatypes.JSON `json:"payload"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (DeadLetter) TableName() string { return "dead_letters" }
