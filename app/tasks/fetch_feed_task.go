package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/feedpost/feedpost/app/feed"
)

// FetchFeedTask ingests new items for one feed.
type FetchFeedTask struct {
	Task
	FeedConfig *feed.Config
	fetcher    *feed.Fetcher
}

func NewFetchFeedTask(feedID string, feedConfig *feed.Config, fetcher *feed.Fetcher) *FetchFeedTask {
	return &FetchFeedTask{
		Task:       NewTask(TaskTypeFetchFeed, feedID),
		FeedConfig: feedConfig,
		fetcher:    fetcher,
	}
}

func (t *FetchFeedTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.FeedConfig.Settings.Enabled {
		slog.Debug("Feed disabled, skipping fetch", "feed", t.FeedID)
		return nil
	}

	ingested, err := t.fetcher.Run(ctx, t.FeedConfig)
	if err != nil {
		return fmt.Errorf("failed to fetch feed: %w", err)
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"feed", t.FeedID,
		"duration", t.GetDuration(),
		"ingested", ingested)

	return nil
}
