package models

import "github.com/goccy/go-json"

type ServiceCatalogEntry struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Price Money  `json:"price"`
	Type  string `json:"type"`
}

// Catalog is an ordered, read-only list of billable services indexed by id.
// When ids repeat, the first entry wins.
type Catalog struct {
	entries []ServiceCatalogEntry
	index   map[int64]int
}

func NewCatalog(entries []ServiceCatalogEntry) *Catalog {
	catalog := &Catalog{
		entries: make([]ServiceCatalogEntry, 0, len(entries)),
		index:   make(map[int64]int, len(entries)),
	}
	for _, entry := range entries {
		if _, exists := catalog.index[entry.ID]; exists {
			continue
		}
		catalog.index[entry.ID] = len(catalog.entries)
		catalog.entries = append(catalog.entries, entry)
	}
	return catalog
}

func (c *Catalog) Lookup(serviceID int64) (ServiceCatalogEntry, bool) {
	if c == nil {
		return ServiceCatalogEntry{}, false
	}
	position, ok := c.index[serviceID]
	if !ok {
		return ServiceCatalogEntry{}, false
	}
	return c.entries[position], true
}

func (c *Catalog) Contains(serviceID int64) bool {
	_, ok := c.Lookup(serviceID)
	return ok
}

// Entries returns a copy of the catalog in its original order.
func (c *Catalog) Entries() []ServiceCatalogEntry {
	if c == nil {
		return nil
	}
	entries := make([]ServiceCatalogEntry, len(c.entries))
	copy(entries, c.entries)
	return entries
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

func (c *Catalog) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Entries())
}

func (c *Catalog) UnmarshalJSON(data []byte) error {
	var entries []ServiceCatalogEntry
	err := json.Unmarshal(data, &entries)
	if err != nil {
		return err
	}
	*c = *NewCatalog(entries)
	return nil
}
