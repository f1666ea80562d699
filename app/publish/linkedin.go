package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/feedpost/feedpost/app/secrets"
)

const linkedinAPIURL = "https://api.linkedin.com"

// LinkedInChannel creates an article share through the ugcPosts API. The
// author identity is taken from the credentials or resolved via /v2/me, and a
// preview image derived from the article page's OpenGraph metadata is
// uploaded on a best-effort basis.
type LinkedInChannel struct {
	creds      *secrets.LinkedInCredentials
	httpClient *http.Client
	apiURL     string
	userAgent  string
}

func NewLinkedInChannel(creds *secrets.LinkedInCredentials, httpClient *http.Client, userAgent string) *LinkedInChannel {
	return &LinkedInChannel{
		creds:      creds,
		httpClient: httpClient,
		apiURL:     linkedinAPIURL,
		userAgent:  userAgent,
	}
}

func (c *LinkedInChannel) Name() string {
	return "linkedin"
}

func (c *LinkedInChannel) Post(ctx context.Context, post Post) error {
	author, err := c.resolveAuthor(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve author identity: %w", err)
	}

	// Image failure never blocks the text share.
	asset := ""
	if post.Link != "" {
		asset, err = c.uploadPreviewImage(ctx, author, post.Link)
		if err != nil {
			slog.Warn("Preview image upload failed, posting without media", "url", post.Link, "error", err)
			asset = ""
		}
	}

	media := map[string]interface{}{
		"status":      "READY",
		"description": map[string]string{"text": post.Text},
		"originalUrl": post.Link,
		"title":       map[string]string{"text": post.Title},
	}
	if asset != "" {
		media["media"] = asset
	}

	body := map[string]interface{}{
		"author":         author,
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]interface{}{
			"com.linkedin.ugc.ShareContent": map[string]interface{}{
				"shareCommentary":    map[string]string{"text": post.Text},
				"shareMediaCategory": "ARTICLE",
				"media":              []interface{}{media},
			},
		},
		"visibility": map[string]string{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}

	resp, err := c.call(ctx, "POST", "/v2/ugcPosts", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("share rejected: %d %s: %s", resp.StatusCode, resp.Status, data)
	}

	return nil
}

// resolveAuthor returns the author URN, calling the identity endpoint when
// the credentials do not carry one.
func (c *LinkedInChannel) resolveAuthor(ctx context.Context) (string, error) {
	if c.creds.AuthorURN != "" {
		return c.creds.AuthorURN, nil
	}

	resp, err := c.call(ctx, "GET", "/v2/me", nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("identity lookup failed: %d %s", resp.StatusCode, resp.Status)
	}

	var me struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		return "", fmt.Errorf("failed to decode identity response: %w", err)
	}
	if me.ID == "" {
		return "", fmt.Errorf("identity response carries no id")
	}

	return "urn:li:person:" + me.ID, nil
}

// uploadPreviewImage registers an upload, fetches the article's og:image and
// puts the bytes to the returned upload URL. Returns the asset URN, or empty
// when the page declares no image.
func (c *LinkedInChannel) uploadPreviewImage(ctx context.Context, author, link string) (string, error) {
	imageURL, err := resolvePreviewImage(ctx, c.httpClient, link, c.userAgent)
	if err != nil {
		return "", err
	}
	if imageURL == "" {
		return "", nil
	}

	registerBody := map[string]interface{}{
		"registerUploadRequest": map[string]interface{}{
			"recipes": []string{"urn:li:digitalmediaRecipe:feedshare-image"},
			"owner":   author,
			"serviceRelationships": []interface{}{
				map[string]string{
					"relationshipType": "OWNER",
					"identifier":       "urn:li:userGeneratedContent",
				},
			},
		},
	}

	resp, err := c.call(ctx, "POST", "/v2/assets?action=registerUpload", registerBody)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("upload registration failed: %d %s", resp.StatusCode, resp.Status)
	}

	var registered struct {
		Value struct {
			Asset           string `json:"asset"`
			UploadMechanism struct {
				Request struct {
					UploadURL string `json:"uploadUrl"`
				} `json:"com.linkedin.digitalmedia.uploading.MediaUploadHttpRequest"`
			} `json:"uploadMechanism"`
		} `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&registered); err != nil {
		return "", fmt.Errorf("failed to decode upload registration: %w", err)
	}

	uploadURL := registered.Value.UploadMechanism.Request.UploadURL
	if uploadURL == "" || registered.Value.Asset == "" {
		return "", fmt.Errorf("upload registration response is incomplete")
	}

	image, err := c.fetchImage(ctx, imageURL)
	if err != nil {
		return "", err
	}

	putReq, err := http.NewRequestWithContext(ctx, "PUT", uploadURL, bytes.NewReader(image))
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	putReq.Header.Set("Authorization", "Bearer "+c.creds.AccessToken)

	putResp, err := c.httpClient.Do(putReq)
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	defer putResp.Body.Close()

	if putResp.StatusCode != http.StatusOK && putResp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("image upload failed: %d %s", putResp.StatusCode, putResp.Status)
	}

	return registered.Value.Asset, nil
}

func (c *LinkedInChannel) fetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create image request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image fetch failed: %d %s", resp.StatusCode, resp.Status)
	}

	return io.ReadAll(resp.Body)
}

func (c *LinkedInChannel) call(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.creds.AccessToken)
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")
	req.Header.Set("Cache-Control", "no-cache")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return resp, nil
}
