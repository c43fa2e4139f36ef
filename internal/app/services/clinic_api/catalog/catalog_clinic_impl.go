package catalog

import (
	"clinicdesk-service/internal/app/contracts"
	"clinicdesk-service/internal/app/models"
	"clinicdesk-service/internal/app/services/clinic_api"
	"clinicdesk-service/internal/pkg/constvars"
	"clinicdesk-service/internal/pkg/credential"
	"context"

	"go.uber.org/zap"
)

type catalogClinicClient struct {
	Client *clinic_api.Client
	Log    *zap.Logger
}

func NewCatalogClinicClient(client *clinic_api.Client, logger *zap.Logger) contracts.CatalogSource {
	return &catalogClinicClient{
		Client: client,
		Log:    logger,
	}
}

func (c *catalogClinicClient) FindCatalog(ctx context.Context, bearer credential.Bearer) (*models.Catalog, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	c.Log.Info("catalogClinicClient.FindCatalog called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	var entries []models.ServiceCatalogEntry
	err := c.Client.Get(ctx, bearer, "/"+constvars.ResourceServiceCatalog, constvars.ResourceServiceCatalog, &entries)
	if err != nil {
		c.Log.Error("catalogClinicClient.FindCatalog error fetching catalog",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	// prices must be non-negative
	valid := entries[:0]
	for _, entry := range entries {
		if entry.Price.IsNegative() {
			c.Log.Warn("catalogClinicClient.FindCatalog dropping entry with negative price",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Int64(constvars.LoggingServiceIDKey, entry.ID),
				zap.String(constvars.LoggingPriceKey, entry.Price.String()),
			)
			continue
		}
		valid = append(valid, entry)
	}

	catalog := models.NewCatalog(valid)
	c.Log.Info("catalogClinicClient.FindCatalog succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingCatalogCountKey, catalog.Len()),
	)
	return catalog, nil
}
