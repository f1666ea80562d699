package database

import (
	"time"
)

const (
	StatusUnpublished = "unpublished"
	StatusPublished   = "published"
)

type Feed struct {
	FeedID    string
	Name      string
	URLs      []string // feed source URLs, stored as a JSON array
	Hashtags  string   // feed-level default hashtags, e.g. "#aws #cloud"
	MinDate   *time.Time
	Enabled   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Item struct {
	URL       string // globally unique identity key
	FeedID    string
	Title     string
	DateAdded time.Time
	Status    string // unpublished or published, transitions once
	CreatedAt time.Time
}

type FeedRepository interface {
	GetFeed(feedID string) (*Feed, error)
	GetFeedCount() (int, error)

	UpsertFeed(feed Feed) error
}

type ItemRepository interface {
	Exists(url string) (bool, error)
	BatchInsert(items []Item) (int, error)
	SelectRandomUnpublished(feedID string, minDate *time.Time) (*Item, error)
	MarkPublished(url string) (bool, error)

	GetItemStats(feedID string) (total, published int, err error)
}
