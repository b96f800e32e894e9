package domain

import "time"

type EventAction string

const (
	ActionItemCreated       EventAction = "item.created"
	ActionItemCategorized   EventAction = "item.categorized"
	ActionCategoryRefreshed EventAction = "category.refreshed"
)

// CatalogEvent is emitted to downstream consumers when the cache changes.
// Item is nil for category-level events.
type CatalogEvent struct {
	Action   EventAction  `json:"action"`
	Category string       `json:"category"`
	Item     *CatalogItem `json:"item,omitempty"`
	Removed  int64        `json:"removed,omitempty"`
	Added    int          `json:"added,omitempty"`
	At       time.Time    `json:"at"`
}
