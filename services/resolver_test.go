package services

import (
	"errors"
	"testing"

	"orchard-bridge/models"
	"orchard-bridge/repositories/base"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCache is an in-memory IdentityCache that can simulate failures.
type fakeCache struct {
	entries map[string]*models.SensorIdentity
	failing bool
	reads   int
	writes  int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]*models.SensorIdentity{}}
}

func (c *fakeCache) GetIdentity(identifier string) (*models.SensorIdentity, error) {
	c.reads++
	if c.failing {
		return nil, errors.New("cache unavailable")
	}
	return c.entries[identifier], nil
}

func (c *fakeCache) SaveIdentity(identifier string, identity *models.SensorIdentity) error {
	c.writes++
	if c.failing {
		return errors.New("cache unavailable")
	}
	c.entries[identifier] = identity
	return nil
}

func TestIdentityResolver(t *testing.T) {
	db := newTestDatabase(t)

	sensor := &models.Sensor{
		ID:             uuid.New(),
		FarmID:         uuid.New(),
		PlotID:         uuid.New(),
		OrganizationID: uuid.New(),
		SerialNumber:   "SN-0001",
		IsActive:       true,
	}
	require.NoError(t, db.DB.Create(sensor).Error)

	t.Run("Resolves From Directory And Fills Cache", func(t *testing.T) {
		cache := newFakeCache()
		resolver := NewIdentityResolver(db.SensorRepo, cache, testLogger())

		identity, err := resolver.Resolve("SN-0001")
		require.NoError(t, err)
		assert.Equal(t, sensor.ID, identity.SensorID)
		assert.Equal(t, sensor.PlotID, identity.PlotID)
		assert.Equal(t, 1, cache.writes)

		// Second resolve is served from the cache.
		_, err = resolver.Resolve("SN-0001")
		require.NoError(t, err)
		assert.Equal(t, 2, cache.reads)
		assert.Equal(t, 1, cache.writes)
	})

	t.Run("Unknown Identifier Is Not Found And Not Cached", func(t *testing.T) {
		cache := newFakeCache()
		resolver := NewIdentityResolver(db.SensorRepo, cache, testLogger())

		_, err := resolver.Resolve("SN-MISSING")
		require.Error(t, err)
		assert.True(t, base.IsEntityNotFound(err))
		assert.Equal(t, 0, cache.writes)
	})

	t.Run("Cache Failure Falls Through To Directory", func(t *testing.T) {
		cache := newFakeCache()
		cache.failing = true
		resolver := NewIdentityResolver(db.SensorRepo, cache, testLogger())

		identity, err := resolver.Resolve("SN-0001")
		require.NoError(t, err)
		assert.Equal(t, sensor.ID, identity.SensorID)
	})

	t.Run("Nil Cache Resolves Directly", func(t *testing.T) {
		resolver := NewIdentityResolver(db.SensorRepo, nil, testLogger())

		identity, err := resolver.Resolve("SN-0001")
		require.NoError(t, err)
		assert.Equal(t, sensor.ID, identity.SensorID)
	})
}
