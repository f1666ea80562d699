package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/feedpost/feedpost/app/compose"
	"github.com/feedpost/feedpost/app/database"
	"github.com/feedpost/feedpost/app/extract"
	"github.com/feedpost/feedpost/app/feed"
	"github.com/feedpost/feedpost/app/publish"
)

// PublishFeedTask drives one publish attempt for one feed: select a random
// unpublished item, enrich it and post it to the configured channels. A feed
// with no eligible candidate is skipped quietly; a failed publish leaves the
// item unpublished for re-selection on a later cycle.
type PublishFeedTask struct {
	Task
	FeedConfig *feed.Config
	itemRepo   database.ItemRepository
	extractor  *extract.Extractor
	summarizer *compose.Summarizer
	hashtagGen *compose.HashtagGenerator
	composer   *compose.Composer
	publisher  *publish.Publisher
}

func NewPublishFeedTask(feedID string, feedConfig *feed.Config, itemRepo database.ItemRepository,
	extractor *extract.Extractor, summarizer *compose.Summarizer, hashtagGen *compose.HashtagGenerator,
	composer *compose.Composer, publisher *publish.Publisher) *PublishFeedTask {
	return &PublishFeedTask{
		Task:       NewTask(TaskTypePublishFeed, feedID),
		FeedConfig: feedConfig,
		itemRepo:   itemRepo,
		extractor:  extractor,
		summarizer: summarizer,
		hashtagGen: hashtagGen,
		composer:   composer,
		publisher:  publisher,
	}
}

func (t *PublishFeedTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.FeedConfig.Settings.Enabled {
		slog.Debug("Feed disabled, skipping publish", "feed", t.FeedID)
		return nil
	}

	minDate, err := t.FeedConfig.MinDateTime()
	if err != nil {
		return fmt.Errorf("invalid feed configuration: %w", err)
	}

	item, err := t.itemRepo.SelectRandomUnpublished(t.FeedID, minDate)
	if err != nil {
		return fmt.Errorf("failed to select publish candidate: %w", err)
	}
	if item == nil {
		slog.Debug("No unpublished items, skipping feed", "feed", t.FeedID)
		return nil
	}

	// Enrichment is best-effort all the way down: empty text degrades to
	// an empty summary, which degrades composition to title+hashtags.
	text := t.extractor.Run(ctx, item.URL)
	summary := t.summarizer.Run(ctx, text)

	hashtags := strings.Join(t.hashtagGen.Run(item.Title), " ")
	if hashtags == "" {
		hashtags = t.FeedConfig.Hashtags
	}

	postText := t.composer.Run(item.Title, item.URL, summary, hashtags, t.FeedConfig.Settings.AppendHashtags)

	post := publish.Post{
		Text:  postText,
		Link:  item.URL,
		Title: item.Title,
	}

	published, results := t.publisher.Run(ctx, item, post, t.FeedConfig)

	failures := 0
	for _, result := range results {
		if result.Err != nil {
			failures++
		}
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"feed", t.FeedID,
		"duration", t.GetDuration(),
		"url", item.URL,
		"summary_used", summary != "",
		"published", published,
		"channel_failures", failures)

	return nil
}
