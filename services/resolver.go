package services

import (
	"log/slog"

	"orchard-bridge/models"
	"orchard-bridge/repositories/interfaces"
)

// IdentityResolver maps a device identifier to its sensor identity. The
// ingestion gateway calls this once per inbound message.
type IdentityResolver interface {
	Resolve(identifier string) (*models.SensorIdentity, error)
}

// IdentityCache is the cache surface the resolver needs. The redis client
// satisfies it; tests pass nil and resolve straight from the directory.
type IdentityCache interface {
	GetIdentity(identifier string) (*models.SensorIdentity, error)
	SaveIdentity(identifier string, identity *models.SensorIdentity) error
}

// cachedResolver is a read-through cache over the sensor directory.
type cachedResolver struct {
	repo   interfaces.SensorRepositoryInterface
	cache  IdentityCache
	logger *slog.Logger
}

// NewIdentityResolver creates a resolver backed by the sensor directory,
// optionally fronted by a cache.
func NewIdentityResolver(repo interfaces.SensorRepositoryInterface, cache IdentityCache, logger *slog.Logger) IdentityResolver {
	return &cachedResolver{
		repo:   repo,
		cache:  cache,
		logger: logger.With("component", "identity_resolver"),
	}
}

// Resolve looks the identifier up in the cache first, then the directory.
// Cache failures are logged and ignored: the directory stays the source of
// truth. Negative lookups are not cached, so a freshly registered sensor is
// picked up on its next message.
func (r *cachedResolver) Resolve(identifier string) (*models.SensorIdentity, error) {
	if r.cache != nil {
		identity, err := r.cache.GetIdentity(identifier)
		if err != nil {
			r.logger.Warn("Identity cache read failed", "identifier", identifier, slog.Any("error", err))
		} else if identity != nil {
			return identity, nil
		}
	}

	identity, err := r.repo.ResolveIdentity(identifier)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.SaveIdentity(identifier, identity); err != nil {
			r.logger.Warn("Identity cache write failed", "identifier", identifier, slog.Any("error", err))
		}
	}
	return identity, nil
}
