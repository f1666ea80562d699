package database

import (
	"database/sql"
	"fmt"
	"math/rand"
	"time"
)

// candidatePageSize bounds the unpublished-candidate query so selection never
// walks the whole table.
const candidatePageSize = 50

var _ ItemRepository = (*SQLItemRepository)(nil)

type SQLItemRepository struct {
	db *DB
}

func NewItemRepository(db *DB) *SQLItemRepository {
	return &SQLItemRepository{db: db}
}

// Exists reports whether an item with the given URL is already stored.
// Membership is checked against the database, not in memory, so deduplication
// is durable across runs.
func (r *SQLItemRepository) Exists(url string) (bool, error) {
	var stored string
	err := r.db.QueryRow("SELECT url FROM feed_items WHERE url = ? LIMIT 1", url).Scan(&stored)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check item existence: %w", err)
	}
	return true, nil
}

// BatchInsert stores items in a single transaction with insert-if-absent
// semantics keyed by URL. Returns the number of rows actually inserted;
// re-inserting a known URL is a no-op.
func (r *SQLItemRepository) BatchInsert(items []Item) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO feed_items (url, feed_id, title, date_added, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (url) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(timeLayout)
	inserted := 0

	for _, item := range items {
		status := item.Status
		if status == "" {
			status = StatusUnpublished
		}

		res, err := stmt.Exec(item.URL, item.FeedID, item.Title,
			item.DateAdded.UTC().Format(timeLayout), status, now)
		if err != nil {
			return 0, fmt.Errorf("failed to insert item %s: %w", item.URL, err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to read insert result: %w", err)
		}
		inserted += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit batch insert: %w", err)
	}

	return inserted, nil
}

// SelectRandomUnpublished picks one unpublished item for the feed uniformly
// from a bounded candidate page. Items older than minDate are excluded when a
// floor is configured. Returns nil when no candidate qualifies.
func (r *SQLItemRepository) SelectRandomUnpublished(feedID string, minDate *time.Time) (*Item, error) {
	query := `
		SELECT url, feed_id, title, date_added, status, created_at
		FROM feed_items
		WHERE feed_id = ? AND status = ?`
	args := []interface{}{feedID, StatusUnpublished}

	if minDate != nil {
		query += " AND date_added > ?"
		args = append(args, minDate.UTC().Format(timeLayout))
	}

	query += " ORDER BY date_added DESC LIMIT ?"
	args = append(args, candidatePageSize)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query unpublished items: %w", err)
	}
	defer rows.Close()

	var candidates []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item rows: %w", err)
	}

	if len(candidates) == 0 {
		return nil, nil
	}

	item := candidates[rand.Intn(len(candidates))]
	return &item, nil
}

// MarkPublished transitions an item from unpublished to published. The update
// is conditional on the current status, so the transition is atomic and
// monotonic: a second call for the same URL changes nothing and returns false.
func (r *SQLItemRepository) MarkPublished(url string) (bool, error) {
	res, err := r.db.Exec(`
		UPDATE feed_items
		SET status = ?
		WHERE url = ? AND status = ?
	`, StatusPublished, url, StatusUnpublished)
	if err != nil {
		return false, fmt.Errorf("failed to mark item published: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read update result: %w", err)
	}

	return affected > 0, nil
}

func (r *SQLItemRepository) GetItemStats(feedID string) (int, int, error) {
	var total, published int
	err := r.db.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0)
		FROM feed_items
		WHERE feed_id = ?
	`, StatusPublished, feedID).Scan(&total, &published)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get item stats: %w", err)
	}
	return total, published, nil
}

func scanItem(rows *sql.Rows) (Item, error) {
	var item Item
	var dateAdded, createdAt string

	err := rows.Scan(&item.URL, &item.FeedID, &item.Title, &dateAdded, &item.Status, &createdAt)
	if err != nil {
		return Item{}, fmt.Errorf("failed to scan item row: %w", err)
	}

	item.DateAdded, err = time.Parse(timeLayout, dateAdded)
	if err != nil {
		return Item{}, fmt.Errorf("failed to parse item date: %w", err)
	}
	item.CreatedAt, _ = time.Parse(timeLayout, createdAt)

	return item, nil
}
