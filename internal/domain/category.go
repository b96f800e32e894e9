package domain

import "time"

// TTLClass groups categories that share a refresh cadence.
type TTLClass string

const (
	ClassDaily  TTLClass = "daily"
	ClassWeekly TTLClass = "weekly"
	ClassStatic TTLClass = "static"
)

type Category struct {
	Label     string    `yaml:"label"`
	Endpoint  Endpoint  `yaml:"endpoint"`
	Pages     int       `yaml:"pages"`
	MediaType MediaType `yaml:"media_type"`
	Class     TTLClass  `yaml:"class"`
}

// CategoryFreshness records when a category was last fully refreshed.
// RefreshStartedAt is set while a refresh is in flight and left behind if
// the refresh never completes.
type CategoryFreshness struct {
	Category         string     `db:"category"`
	LastRefreshedAt  time.Time  `db:"last_refreshed_at"`
	RefreshStartedAt *time.Time `db:"refresh_started_at"`
	ItemsAdded       int64      `db:"items_added"`
}
