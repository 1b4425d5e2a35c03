package interfaces

import (
	"orchard-bridge/models"

	"github.com/google/uuid"
)

// SensorRepositoryInterface defines the contract for the sensor directory.
// The directory is owned by the CRUD layer; the bridge only reads it.
type SensorRepositoryInterface interface {
	// ResolveIdentity maps a device identifier (serial number or MAC
	// address) to the active sensor's identity triple. Returns an
	// EntityNotFoundError when no active match exists.
	ResolveIdentity(identifier string) (*models.SensorIdentity, error)

	// ListActiveByFarm retrieves all active, non-deleted sensors of a farm.
	ListActiveByFarm(farmID uuid.UUID) ([]models.Sensor, error)
}
