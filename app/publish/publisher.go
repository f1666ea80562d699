package publish

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/feedpost/feedpost/app/database"
	"github.com/feedpost/feedpost/app/feed"
	"github.com/feedpost/feedpost/app/secrets"
)

// Post is one composed piece of content ready for a channel.
type Post struct {
	Text  string
	Link  string
	Title string
}

// Channel is a social platform target.
type Channel interface {
	Name() string
	Post(ctx context.Context, post Post) error
}

// ChannelResult records one channel's publish outcome.
type ChannelResult struct {
	Channel string
	Err     error
}

// Publisher posts composed content to the feed's configured channels,
// isolating per-channel failures, and marks the source item published only
// after the primary channel succeeds.
type Publisher struct {
	itemRepo   database.ItemRepository
	secrets    *secrets.Store
	httpClient *http.Client
	userAgent  string

	// factory builds a channel for a feed; replaced in tests.
	factory func(name, feedID string) (Channel, error)
}

func NewPublisher(itemRepo database.ItemRepository, secretsStore *secrets.Store, httpClient *http.Client, userAgent string) *Publisher {
	p := &Publisher{
		itemRepo:   itemRepo,
		secrets:    secretsStore,
		httpClient: httpClient,
		userAgent:  userAgent,
	}
	p.factory = p.buildChannel
	return p
}

// Run publishes the post for the item. Returns whether the item was marked
// published along with the per-channel results. Secondary failures are logged
// and never block the primary outcome; a primary failure leaves the item
// unpublished and eligible for a later cycle.
func (p *Publisher) Run(ctx context.Context, item *database.Item, post Post, config *feed.Config) (bool, []ChannelResult) {
	var results []ChannelResult

	primaryErr := p.postToChannel(ctx, config.Channels.Primary, config.FeedID, post, &results)

	for _, name := range config.Channels.Secondary {
		if err := p.postToChannel(ctx, name, config.FeedID, post, &results); err != nil {
			slog.Warn("Secondary channel failed", "feed", config.FeedID, "channel", name, "url", item.URL, "error", err)
		}
	}

	if primaryErr != nil {
		slog.Warn("Primary channel failed, item stays unpublished", "feed", config.FeedID,
			"channel", config.Channels.Primary, "url", item.URL, "error", primaryErr)
		return false, results
	}

	marked, err := p.itemRepo.MarkPublished(item.URL)
	if err != nil {
		slog.Error("Failed to mark item published", "feed", config.FeedID, "url", item.URL, "error", err)
		return false, results
	}
	if !marked {
		slog.Warn("Item already published, status unchanged", "feed", config.FeedID, "url", item.URL)
	}

	return true, results
}

func (p *Publisher) postToChannel(ctx context.Context, name, feedID string, post Post, results *[]ChannelResult) error {
	channel, err := p.factory(name, feedID)
	if err != nil {
		*results = append(*results, ChannelResult{Channel: name, Err: err})
		return err
	}

	err = channel.Post(ctx, post)
	*results = append(*results, ChannelResult{Channel: name, Err: err})
	if err == nil {
		slog.Info("Posted to channel", "channel", name, "feed", feedID, "link", post.Link)
	}
	return err
}

func (p *Publisher) buildChannel(name, feedID string) (Channel, error) {
	switch name {
	case "twitter":
		creds, err := p.secrets.Twitter(feedID)
		if err != nil {
			return nil, err
		}
		if creds == nil || !creds.IsValid() {
			return nil, fmt.Errorf("no twitter credentials for feed %s", feedID)
		}
		return NewTwitterChannel(creds), nil

	case "linkedin":
		creds, err := p.secrets.LinkedIn(feedID)
		if err != nil {
			return nil, err
		}
		if creds == nil || !creds.IsValid() {
			return nil, fmt.Errorf("no linkedin credentials for feed %s", feedID)
		}
		return NewLinkedInChannel(creds, p.httpClient, p.userAgent), nil

	default:
		return nil, fmt.Errorf("unknown channel: %s", name)
	}
}
