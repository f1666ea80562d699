package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/dghubble/oauth1"

	"github.com/feedpost/feedpost/app/secrets"
)

const twitterAPIURL = "https://api.twitter.com/2/tweets"

// TwitterChannel posts composed text as a single status-creation call against
// the v2 API, signed with the feed's OAuth1 user-context credentials.
type TwitterChannel struct {
	httpClient *http.Client
	apiURL     string
}

func NewTwitterChannel(creds *secrets.TwitterCredentials) *TwitterChannel {
	config := oauth1.NewConfig(creds.ConsumerKey, creds.ConsumerSecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessSecret)

	return &TwitterChannel{
		httpClient: config.Client(oauth1.NoContext, token),
		apiURL:     twitterAPIURL,
	}
}

func (c *TwitterChannel) Name() string {
	return "twitter"
}

func (c *TwitterChannel) Post(ctx context.Context, post Post) error {
	payload, err := json.Marshal(map[string]string{"text": post.Text})
	if err != nil {
		return fmt.Errorf("failed to encode tweet: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post tweet: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("tweet rejected: %d %s: %s", resp.StatusCode, resp.Status, body)
	}

	return nil
}
