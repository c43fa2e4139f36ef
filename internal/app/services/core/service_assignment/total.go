package service_assignment

import "clinicdesk-service/internal/app/models"

// Total sums the catalog price of every selected service. Selected ids the
// catalog does not know contribute zero, and a nil catalog totals zero. The
// result is for display only; after a successful submit the clinic API total wins.
func Total(catalog *models.Catalog, selection SelectionSet) models.Money {
	total := models.ZeroMoney
	if catalog == nil {
		return total
	}
	for serviceID := range selection {
		if entry, ok := catalog.Lookup(serviceID); ok {
			total = total.Add(entry.Price)
		}
	}
	return total
}
