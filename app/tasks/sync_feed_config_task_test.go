package tasks

import (
	"context"
	"testing"

	"github.com/feedpost/feedpost/app/database"
	"github.com/feedpost/feedpost/app/feed"
)

type fakeFeedRepo struct {
	upserted []database.Feed
}

func (r *fakeFeedRepo) GetFeed(feedID string) (*database.Feed, error) { return nil, nil }
func (r *fakeFeedRepo) GetFeedCount() (int, error)                    { return len(r.upserted), nil }

func (r *fakeFeedRepo) UpsertFeed(f database.Feed) error {
	r.upserted = append(r.upserted, f)
	return nil
}

func TestSyncFeedConfigTask_Execute(t *testing.T) {
	config := &feed.Config{
		FeedID:   "aws-blog",
		Name:     "AWS Blog",
		URLs:     []string{"https://aws.amazon.com/blogs/aws/feed/"},
		Hashtags: "#aws",
		MinDate:  "2024-01-01",
	}
	config.Settings.Enabled = true

	repo := &fakeFeedRepo{}
	task := NewSyncFeedConfigTask("aws-blog", config, repo)

	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(repo.upserted) != 1 {
		t.Fatalf("Expected 1 upsert, got %d", len(repo.upserted))
	}

	got := repo.upserted[0]
	if got.FeedID != "aws-blog" || got.Name != "AWS Blog" {
		t.Errorf("Unexpected feed record: %+v", got)
	}
	if got.MinDate == nil {
		t.Error("Expected min date to be carried over")
	}
	if !got.Enabled {
		t.Error("Expected enabled flag to be carried over")
	}
}

func TestSyncFeedConfigTask_InvalidMinDate(t *testing.T) {
	config := &feed.Config{
		FeedID:  "bad",
		Name:    "Bad",
		URLs:    []string{"https://example.com/feed"},
		MinDate: "not-a-date",
	}

	repo := &fakeFeedRepo{}
	task := NewSyncFeedConfigTask("bad", config, repo)

	if err := task.Execute(context.Background()); err == nil {
		t.Error("Expected error for invalid min date")
	}
	if len(repo.upserted) != 0 {
		t.Error("Invalid config must not be synced")
	}
}

func TestSyncFeedConfigTask_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := &fakeFeedRepo{}
	task := NewSyncFeedConfigTask("feed", &feed.Config{FeedID: "feed"}, repo)

	if err := task.Execute(ctx); err == nil {
		t.Error("Expected context cancellation error")
	}
}
