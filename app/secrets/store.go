package secrets

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// globalScope is the pseudo feed id under which shared credentials live.
const globalScope = "global"

// TwitterCredentials is the OAuth1 user-context credential set for the
// microblog channel.
type TwitterCredentials struct {
	ConsumerKey    string `json:"consumer_key"`
	ConsumerSecret string `json:"consumer_secret"`
	AccessToken    string `json:"access_token"`
	AccessSecret   string `json:"access_secret"`
}

func (c *TwitterCredentials) IsValid() bool {
	return c.ConsumerKey != "" && c.ConsumerSecret != "" && c.AccessToken != "" && c.AccessSecret != ""
}

// LinkedInCredentials carries an OAuth bearer token and, optionally, the
// author URN. When the URN is empty it is resolved via the identity endpoint.
type LinkedInCredentials struct {
	AccessToken string `json:"access_token"`
	AuthorURN   string `json:"author_urn"`
}

func (c *LinkedInCredentials) IsValid() bool {
	return c.AccessToken != ""
}

// Store resolves channel credentials from JSON files laid out as
// <dir>/<feed_id>/<channel>.json, with <dir>/global/<channel>.json as the
// shared fallback. Credentials are only ever read, never written.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Twitter returns the microblog credentials for a feed, preferring the
// per-feed file over the global one. Returns nil when neither exists.
func (s *Store) Twitter(feedID string) (*TwitterCredentials, error) {
	var creds TwitterCredentials
	found, err := s.resolve(feedID, "twitter", &creds)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &creds, nil
}

// LinkedIn returns the professional-network credentials, preferring the
// per-feed file over the global one. Returns nil when neither exists.
func (s *Store) LinkedIn(feedID string) (*LinkedInCredentials, error) {
	var creds LinkedInCredentials
	found, err := s.resolve(feedID, "linkedin", &creds)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &creds, nil
}

func (s *Store) resolve(feedID, channel string, out interface{}) (bool, error) {
	paths := []string{
		filepath.Join(s.dir, feedID, channel+".json"),
		filepath.Join(s.dir, globalScope, channel+".json"),
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("failed to read credentials %s: %w", path, err)
		}

		if err := json.Unmarshal(data, out); err != nil {
			return false, fmt.Errorf("failed to parse credentials %s: %w", path, err)
		}
		return true, nil
	}

	return false, nil
}
