package service_assignment

import (
	"clinicdesk-service/internal/app/models"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotal(t *testing.T) {
	catalog := scenarioCatalog()

	t.Run("Sums selected catalog prices", func(t *testing.T) {
		assert.Equal(t, "300000", Total(catalog, NewSelectionSet(1, 2)).String())
		assert.Equal(t, "100000", Total(catalog, NewSelectionSet(1)).String())
	})

	t.Run("Stale ids contribute nothing", func(t *testing.T) {
		selections := []SelectionSet{
			NewSelectionSet(1, 42),
			NewSelectionSet(42, 43),
			NewSelectionSet(1, 2, 99),
		}
		for _, selection := range selections {
			known := SelectionSet{}
			for serviceID := range selection {
				if catalog.Contains(serviceID) {
					known[serviceID] = struct{}{}
				}
			}
			assert.True(t, Total(catalog, selection).Equal(Total(catalog, known)), "selection=%v", selection.IDs())
		}
	})

	t.Run("Empty selection is zero", func(t *testing.T) {
		assert.True(t, Total(catalog, SelectionSet{}).IsZero())
		assert.True(t, Total(models.NewCatalog(nil), SelectionSet{}).IsZero())
	})

	t.Run("Catalog not loaded is zero", func(t *testing.T) {
		assert.True(t, Total(nil, NewSelectionSet(1, 2)).IsZero())
	})

	t.Run("Keeps fractional amounts exact", func(t *testing.T) {
		fractional := models.NewCatalog([]models.ServiceCatalogEntry{
			{ID: 1, Price: models.NewMoneyFromInt(10).Div(models.NewMoneyFromInt(100))},
			{ID: 2, Price: models.NewMoneyFromInt(20).Div(models.NewMoneyFromInt(100))},
		})
		assert.Equal(t, "0.3", Total(fractional, NewSelectionSet(1, 2)).String())
	})
}
