package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	nurl "net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
)

// browserUserAgents are tried in order; some sites answer differently
// depending on the client they see.
var browserUserAgents = []string{
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64; rv:125.0) Gecko/20100101 Firefox/125.0",
}

// ReadabilityStrategy fetches the page and runs readability's structured
// article extraction. Handles the common case cheaply.
type ReadabilityStrategy struct {
	httpClient *http.Client
	timeout    time.Duration
}

func NewReadabilityStrategy(httpClient *http.Client, timeout time.Duration) *ReadabilityStrategy {
	return &ReadabilityStrategy{
		httpClient: httpClient,
		timeout:    timeout,
	}
}

func (s *ReadabilityStrategy) Name() string {
	return "readability"
}

func (s *ReadabilityStrategy) Attempt(ctx context.Context, url string) (string, error) {
	pageURL, err := nurl.Parse(url)
	if err != nil {
		return "", fmt.Errorf("invalid article URL: %w", err)
	}

	var lastErr error
	for _, userAgent := range browserUserAgents {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		data, err := s.fetch(ctx, url, userAgent)
		if err != nil {
			lastErr = err
			continue
		}

		article, err := readability.FromReader(strings.NewReader(string(data)), pageURL)
		if err != nil {
			lastErr = fmt.Errorf("failed to extract article: %w", err)
			continue
		}

		if article.TextContent != "" {
			return article.TextContent, nil
		}
		lastErr = fmt.Errorf("no article content found")
	}

	return "", lastErr
}

func (s *ReadabilityStrategy) fetch(ctx context.Context, url, userAgent string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
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
