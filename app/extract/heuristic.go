package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/http/cookiejar"
	nurl "net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// headerSet is one fully-realistic browser request profile.
type headerSet struct {
	userAgent      string
	accept         string
	acceptLanguage string
	secChUA        string
	secChUAMobile  string
	secChUAPlat    string
}

var headerSets = []headerSet{
	{
		userAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
		accept:         "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		acceptLanguage: "en-US,en;q=0.9",
		secChUA:        `"Chromium";v="124", "Google Chrome";v="124", "Not-A.Brand";v="99"`,
		secChUAMobile:  "?0",
		secChUAPlat:    `"macOS"`,
	},
	{
		userAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
		accept:         "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		acceptLanguage: "en-US,en;q=0.8",
		secChUA:        `"Chromium";v="123", "Google Chrome";v="123", "Not-A.Brand";v="99"`,
		secChUAMobile:  "?0",
		secChUAPlat:    `"Windows"`,
	},
	{
		userAgent:      "Mozilla/5.0 (X11; Linux x86_64; rv:125.0) Gecko/20100101 Firefox/125.0",
		accept:         "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		acceptLanguage: "en-US,en;q=0.5",
	},
}

// contentSelectors are searched in priority order; the first region with
// enough text wins.
var contentSelectors = []string{
	"article",
	"main",
	"[role='main']",
	".post-content",
	".article-body",
	".entry-content",
	".content",
}

// strippedSelectors are boilerplate regions removed before text extraction.
const strippedSelectors = "script, style, nav, header, footer, aside, iframe, noscript"

// HeuristicStrategy fetches raw HTML through a cookie-keeping session with
// rotated browser headers, optionally pre-visiting the site's homepage to
// establish cookies, and applies content-region heuristics to the markup.
type HeuristicStrategy struct {
	timeout       time.Duration
	visitHomepage bool
	maxDelay      time.Duration
}

func NewHeuristicStrategy(timeout time.Duration, visitHomepage bool) *HeuristicStrategy {
	return &HeuristicStrategy{
		timeout:       timeout,
		visitHomepage: visitHomepage,
		maxDelay:      800 * time.Millisecond,
	}
}

func (s *HeuristicStrategy) Name() string {
	return "heuristic"
}

func (s *HeuristicStrategy) Attempt(ctx context.Context, url string) (string, error) {
	pageURL, err := nurl.Parse(url)
	if err != nil {
		return "", fmt.Errorf("invalid article URL: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return "", fmt.Errorf("failed to create cookie jar: %w", err)
	}
	client := &http.Client{Jar: jar}

	headers := headerSets[rand.Intn(len(headerSets))]

	if s.visitHomepage && pageURL.Host != "" {
		homepage := fmt.Sprintf("%s://%s/", pageURL.Scheme, pageURL.Host)
		if err := s.visit(ctx, client, homepage, headers, ""); err != nil {
			// Cookie warmup is opportunistic; the article fetch decides.
			s.sleep(ctx)
		} else {
			s.sleep(ctx)
		}
	}

	referer := ""
	if pageURL.Host != "" {
		referer = fmt.Sprintf("%s://%s/", pageURL.Scheme, pageURL.Host)
	}

	data, err := s.fetch(ctx, client, url, headers, referer)
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find(strippedSelectors).Remove()

	for _, selector := range contentSelectors {
		region := doc.Find(selector).First()
		if region.Length() == 0 {
			continue
		}
		text := normalizeWhitespace(region.Text())
		if len(text) > minContentLength {
			return text, nil
		}
	}

	// No recognized content region; fall back to whole-body text.
	return doc.Find("body").Text(), nil
}

func (s *HeuristicStrategy) visit(ctx context.Context, client *http.Client, url string, headers headerSet, referer string) error {
	_, err := s.fetch(ctx, client, url, headers, referer)
	return err
}

func (s *HeuristicStrategy) fetch(ctx context.Context, client *http.Client, url string, headers headerSet, referer string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", headers.userAgent)
	req.Header.Set("Accept", headers.accept)
	req.Header.Set("Accept-Language", headers.acceptLanguage)
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	if referer != "" {
		req.Header.Set("Referer", referer)
	}
	if headers.secChUA != "" {
		req.Header.Set("Sec-CH-UA", headers.secChUA)
		req.Header.Set("Sec-CH-UA-Mobile", headers.secChUAMobile)
		req.Header.Set("Sec-CH-UA-Platform", headers.secChUAPlat)
	}

	resp, err := client.Do(req)
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

// sleep inserts a short randomized delay between homepage and article
// requests to look less like a scraper.
func (s *HeuristicStrategy) sleep(ctx context.Context) {
	if s.maxDelay <= 0 {
		return
	}
	delay := time.Duration(rand.Int63n(int64(s.maxDelay)))
	select {
	case <-time.After(delay):
	case <-ctx.Done():
	}
}
