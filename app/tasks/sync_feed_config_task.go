package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/feedpost/feedpost/app/database"
	"github.com/feedpost/feedpost/app/feed"
)

// SyncFeedConfigTask mirrors a YAML feed configuration into the feeds table.
// The pipeline never writes feed records through any other path.
type SyncFeedConfigTask struct {
	Task
	FeedConfig *feed.Config
	feedRepo   database.FeedRepository
}

func NewSyncFeedConfigTask(feedID string, feedConfig *feed.Config, feedRepo database.FeedRepository) *SyncFeedConfigTask {
	return &SyncFeedConfigTask{
		Task:       NewTask(TaskTypeSyncFeedConfig, feedID),
		FeedConfig: feedConfig,
		feedRepo:   feedRepo,
	}
}

func (t *SyncFeedConfigTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	minDate, err := t.FeedConfig.MinDateTime()
	if err != nil {
		return fmt.Errorf("invalid feed configuration: %w", err)
	}

	err = t.feedRepo.UpsertFeed(database.Feed{
		FeedID:   t.FeedConfig.FeedID,
		Name:     t.FeedConfig.Name,
		URLs:     t.FeedConfig.URLs,
		Hashtags: t.FeedConfig.Hashtags,
		MinDate:  minDate,
		Enabled:  t.FeedConfig.Settings.Enabled,
	})
	if err != nil {
		return fmt.Errorf("failed to sync feed config: %w", err)
	}

	slog.Debug("Feed config synced", "feed", t.FeedID)

	return nil
}
