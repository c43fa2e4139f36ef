package catalog_cache

import (
	"clinicdesk-service/internal/app/models"
	"clinicdesk-service/internal/pkg/constvars"
	"clinicdesk-service/internal/pkg/credential"
	"clinicdesk-service/internal/pkg/exceptions"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockRedisRepository struct {
	mock.Mock
}

func (m *mockRedisRepository) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockRedisRepository) Set(ctx context.Context, key string, value interface{}, exp time.Duration) error {
	return m.Called(ctx, key, value, exp).Error(0)
}

func (m *mockRedisRepository) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *mockRedisRepository) TrySetNX(ctx context.Context, key string, value interface{}, exp time.Duration) (bool, error) {
	args := m.Called(ctx, key, value, exp)
	return args.Bool(0), args.Error(1)
}

type mockCatalogSource struct {
	mock.Mock
}

func (m *mockCatalogSource) FindCatalog(ctx context.Context, bearer credential.Bearer) (*models.Catalog, error) {
	args := m.Called(ctx, bearer)
	catalog, _ := args.Get(0).(*models.Catalog)
	return catalog, args.Error(1)
}

func testCatalog() *models.Catalog {
	return models.NewCatalog([]models.ServiceCatalogEntry{
		{ID: 1, Name: "Exam", Price: models.NewMoneyFromInt(100000), Type: "consult"},
	})
}

func TestCatalogCache(t *testing.T) {
	bearer := credential.NewBearer("token")
	ttl := 5 * time.Minute

	t.Run("Hit skips upstream", func(t *testing.T) {
		repo := new(mockRedisRepository)
		upstream := new(mockCatalogSource)
		repo.On("Get", mock.Anything, constvars.RedisKeyCatalogCache).
			Return(`[{"id":1,"name":"Exam","price":100000,"type":"consult"}]`, nil)

		catalog, err := NewCatalogCache(upstream, repo, ttl, zap.NewNop()).FindCatalog(context.Background(), bearer)
		require.NoError(t, err)
		entry, ok := catalog.Lookup(1)
		require.True(t, ok)
		assert.Equal(t, "100000", entry.Price.String())
		upstream.AssertNotCalled(t, "FindCatalog", mock.Anything, mock.Anything)
	})

	t.Run("Miss reads through and stores", func(t *testing.T) {
		repo := new(mockRedisRepository)
		upstream := new(mockCatalogSource)
		repo.On("Get", mock.Anything, constvars.RedisKeyCatalogCache).Return("", nil)
		upstream.On("FindCatalog", mock.Anything, bearer).Return(testCatalog(), nil)
		repo.On("Set", mock.Anything, constvars.RedisKeyCatalogCache, mock.Anything, ttl).Return(nil)

		catalog, err := NewCatalogCache(upstream, repo, ttl, zap.NewNop()).FindCatalog(context.Background(), bearer)
		require.NoError(t, err)
		assert.Equal(t, 1, catalog.Len())
		repo.AssertExpectations(t)
	})

	t.Run("Redis failure falls back to upstream", func(t *testing.T) {
		repo := new(mockRedisRepository)
		upstream := new(mockCatalogSource)
		repo.On("Get", mock.Anything, constvars.RedisKeyCatalogCache).Return("", exceptions.ErrRedisGet(errors.New("connection refused")))
		upstream.On("FindCatalog", mock.Anything, bearer).Return(testCatalog(), nil)
		repo.On("Set", mock.Anything, constvars.RedisKeyCatalogCache, mock.Anything, ttl).Return(exceptions.ErrRedisSet(errors.New("connection refused")))

		catalog, err := NewCatalogCache(upstream, repo, ttl, zap.NewNop()).FindCatalog(context.Background(), bearer)
		require.NoError(t, err)
		assert.Equal(t, 1, catalog.Len())
	})

	t.Run("Upstream errors are not cached", func(t *testing.T) {
		repo := new(mockRedisRepository)
		upstream := new(mockCatalogSource)
		repo.On("Get", mock.Anything, constvars.RedisKeyCatalogCache).Return("", nil)
		upstream.On("FindCatalog", mock.Anything, bearer).Return(nil, exceptions.ErrClinicAPIUnauthorized(errors.New("401"), "services"))

		_, err := NewCatalogCache(upstream, repo, ttl, zap.NewNop()).FindCatalog(context.Background(), bearer)
		assert.ErrorIs(t, err, exceptions.ErrKindUnauthorized)
		repo.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
