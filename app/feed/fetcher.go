package feed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/feedpost/feedpost/app/database"
)

// Fetcher retrieves configured feed documents, parses them, drops items that
// are already stored or excluded by title, and persists the remainder as
// unpublished.
type Fetcher struct {
	httpClient *http.Client
	parser     *gofeed.Parser
	itemRepo   database.ItemRepository
	userAgent  string
}

func NewFetcher(httpClient *http.Client, itemRepo database.ItemRepository, userAgent string) *Fetcher {
	return &Fetcher{
		httpClient: httpClient,
		parser:     gofeed.NewParser(),
		itemRepo:   itemRepo,
		userAgent:  userAgent,
	}
}

// Run processes every source URL of the feed. A failing source is logged and
// skipped; it never aborts the remaining sources. Returns the number of new
// items persisted.
func (f *Fetcher) Run(ctx context.Context, config *Config) (int, error) {
	var newItems []database.Item

	for _, url := range config.URLs {
		items, err := f.fetchSource(ctx, config, url)
		if err != nil {
			slog.Warn("Failed to process feed source", "feed", config.FeedID, "url", url, "error", err)
			continue
		}
		newItems = append(newItems, items...)
	}

	inserted, err := f.itemRepo.BatchInsert(newItems)
	if err != nil {
		return 0, fmt.Errorf("failed to store items: %w", err)
	}

	slog.Info("Feed fetched", "feed", config.FeedID, "sources", len(config.URLs), "new", inserted)

	return inserted, nil
}

func (f *Fetcher) fetchSource(ctx context.Context, config *Config, url string) ([]database.Item, error) {
	data, err := f.fetchDocument(ctx, config, url)
	if err != nil {
		return nil, err
	}

	// Parse from raw bytes rather than trusting the response content type;
	// plenty of feeds are served as text/plain or text/html.
	parsed, err := f.parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	var items []database.Item
	seen := make(map[string]bool)

	for _, entry := range parsed.Items {
		if entry == nil || entry.Link == "" {
			continue
		}
		if seen[entry.Link] {
			continue
		}
		seen[entry.Link] = true

		if f.titleExcluded(entry.Title, config.Settings.ExcludeTitles) {
			slog.Debug("Item excluded by title filter", "feed", config.FeedID, "title", entry.Title)
			continue
		}

		exists, err := f.itemRepo.Exists(entry.Link)
		if err != nil {
			return nil, fmt.Errorf("failed to check item existence: %w", err)
		}
		if exists {
			continue
		}

		dateAdded := time.Now().UTC()
		if entry.PublishedParsed != nil {
			dateAdded = entry.PublishedParsed.UTC()
		}

		items = append(items, database.Item{
			URL:       entry.Link,
			FeedID:    config.FeedID,
			Title:     entry.Title,
			DateAdded: dateAdded,
			Status:    database.StatusUnpublished,
		})
	}

	return items, nil
}

func (f *Fetcher) fetchDocument(ctx context.Context, config *Config, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, time.Duration(config.Settings.Timeout)*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

func (f *Fetcher) titleExcluded(title string, blocklist []string) bool {
	if len(blocklist) == 0 {
		return false
	}
	lowered := strings.ToLower(title)
	for _, pattern := range blocklist {
		if pattern == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}
