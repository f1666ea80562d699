package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

const timeLayout = time.RFC3339

var _ FeedRepository = (*SQLFeedRepository)(nil)

type SQLFeedRepository struct {
	db *DB
}

func NewFeedRepository(db *DB) *SQLFeedRepository {
	return &SQLFeedRepository{db: db}
}

// UpsertFeed inserts or updates a feed configuration record. Feed records are
// only ever written by the config sync; the pipeline treats them as read-only.
func (r *SQLFeedRepository) UpsertFeed(feed Feed) error {
	urls, err := json.Marshal(feed.URLs)
	if err != nil {
		return fmt.Errorf("failed to encode feed URLs: %w", err)
	}

	var minDate sql.NullString
	if feed.MinDate != nil {
		minDate = sql.NullString{String: feed.MinDate.UTC().Format(timeLayout), Valid: true}
	}

	now := time.Now().UTC().Format(timeLayout)

	_, err = r.db.Exec(`
		INSERT INTO feeds (feed_id, name, urls, hashtags, min_date, enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (feed_id) DO UPDATE SET
			name = excluded.name,
			urls = excluded.urls,
			hashtags = excluded.hashtags,
			min_date = excluded.min_date,
			enabled = excluded.enabled,
			updated_at = excluded.updated_at
	`, feed.FeedID, feed.Name, string(urls), feed.Hashtags, minDate, feed.Enabled, now, now)

	if err != nil {
		return fmt.Errorf("failed to upsert feed: %w", err)
	}

	return nil
}

func (r *SQLFeedRepository) GetFeed(feedID string) (*Feed, error) {
	row := r.db.QueryRow(`
		SELECT feed_id, name, urls, hashtags, min_date, enabled, created_at, updated_at
		FROM feeds
		WHERE feed_id = ?
	`, feedID)

	var feed Feed
	var urls string
	var minDate sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&feed.FeedID, &feed.Name, &urls, &feed.Hashtags, &minDate,
		&feed.Enabled, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed: %w", err)
	}

	if err := json.Unmarshal([]byte(urls), &feed.URLs); err != nil {
		return nil, fmt.Errorf("failed to decode feed URLs: %w", err)
	}

	if minDate.Valid {
		t, err := time.Parse(timeLayout, minDate.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse feed min date: %w", err)
		}
		feed.MinDate = &t
	}

	feed.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	feed.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)

	return &feed, nil
}

func (r *SQLFeedRepository) GetFeedCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM feeds").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get feed count: %w", err)
	}
	return count, nil
}
