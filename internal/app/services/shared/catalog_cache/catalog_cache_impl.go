package catalog_cache

import (
	"clinicdesk-service/internal/app/contracts"
	"clinicdesk-service/internal/app/models"
	"clinicdesk-service/internal/pkg/constvars"
	"clinicdesk-service/internal/pkg/credential"
	"context"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// catalogCache is a read-through CatalogSource backed by redis. Redis
// failures are logged and the upstream source is used instead.
type catalogCache struct {
	next      contracts.CatalogSource
	redisRepo contracts.RedisRepository
	ttl       time.Duration
	Log       *zap.Logger
}

func NewCatalogCache(next contracts.CatalogSource, redisRepo contracts.RedisRepository, ttl time.Duration, logger *zap.Logger) contracts.CatalogSource {
	return &catalogCache{
		next:      next,
		redisRepo: redisRepo,
		ttl:       ttl,
		Log:       logger,
	}
}

func (c *catalogCache) FindCatalog(ctx context.Context, bearer credential.Bearer) (*models.Catalog, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	cached, err := c.redisRepo.Get(ctx, constvars.RedisKeyCatalogCache)
	if err != nil {
		c.Log.Warn("catalogCache.FindCatalog error reading cache, falling back to clinic API",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingRedisKey, constvars.RedisKeyCatalogCache),
			zap.Error(err),
		)
	}
	if err == nil && cached != "" {
		catalog := new(models.Catalog)
		decodeErr := json.Unmarshal([]byte(cached), catalog)
		if decodeErr == nil {
			c.Log.Debug("catalogCache.FindCatalog cache hit",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Int(constvars.LoggingCatalogCountKey, catalog.Len()),
			)
			return catalog, nil
		}
		c.Log.Warn("catalogCache.FindCatalog dropping undecodable cache entry",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(decodeErr),
		)
	}

	catalog, err := c.next.FindCatalog(ctx, bearer)
	if err != nil {
		return nil, err
	}

	if c.ttl > 0 {
		if err := c.redisRepo.Set(ctx, constvars.RedisKeyCatalogCache, catalog, c.ttl); err != nil {
			c.Log.Warn("catalogCache.FindCatalog error writing cache",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(err),
			)
		}
	}
	return catalog, nil
}
