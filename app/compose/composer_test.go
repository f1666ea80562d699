package compose

import (
	"strings"
	"testing"
)

func TestComposer_SummaryMode(t *testing.T) {
	composer := NewComposer()

	summary := "A short look at new serverless features 🚀"
	url := "https://example.com/article"

	text := composer.Run("Some title", url, summary, "#AWS #serverless", false)

	if !strings.Contains(text, summary) {
		t.Errorf("Expected summary in composed text, got: %s", text)
	}
	if !strings.Contains(text, url) {
		t.Errorf("Expected URL in composed text, got: %s", text)
	}
	if strings.Contains(text, "#AWS") {
		t.Errorf("Hashtags must be omitted in summary mode unless opted in, got: %s", text)
	}
}

func TestComposer_SummaryModeAppendHashtags(t *testing.T) {
	composer := NewComposer()

	text := composer.Run("Some title", "https://example.com/a", "A summary", "#AWS", true)

	if !strings.Contains(text, "#AWS") {
		t.Errorf("Expected hashtags appended when feed opts in, got: %s", text)
	}
}

func TestComposer_FallbackMode(t *testing.T) {
	composer := NewComposer()

	title := "New AWS Lambda features announced"
	url := "https://example.com/lambda"

	text := composer.Run(title, url, "", "#AWS #serverless", false)

	if text == "" {
		t.Fatal("Fallback composition must never be empty")
	}
	if !strings.Contains(text, title) {
		t.Errorf("Expected title in fallback text, got: %s", text)
	}
	if !strings.Contains(text, "#AWS #serverless") {
		t.Errorf("Expected hashtags in fallback text, got: %s", text)
	}
	if !strings.Contains(text, url) {
		t.Errorf("Expected URL in fallback text, got: %s", text)
	}
}

func TestComposer_FallbackModeNoHashtags(t *testing.T) {
	composer := NewComposer()

	text := composer.Run("A title without tags", "https://example.com/x", "", "", false)

	if !strings.HasPrefix(text, "A title without tags") {
		t.Errorf("Expected title-only body, got: %s", text)
	}
}

func TestComposer_BudgetInvariant(t *testing.T) {
	composer := NewComposer()

	long := strings.Repeat("word ", 200)

	tests := []struct {
		name     string
		title    string
		summary  string
		hashtags string
		append   bool
	}{
		{"long summary", "t", long, "", false},
		{"long summary with tags", "t", long, "#AWS #Cloud #DevOps", true},
		{"long title fallback", long, "", "#AWS", false},
		{"long everything", long, long, strings.Repeat("#tag ", 40), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := composer.Run(tt.title, "https://example.com/some/long/path/article", tt.summary, strings.TrimSpace(tt.hashtags), tt.append)
			if n := len([]rune(text)); n > PlatformMaxLength {
				t.Errorf("Composed text exceeds platform maximum: %d > %d", n, PlatformMaxLength)
			}
		})
	}
}

func TestComposer_WordBoundaryTruncation(t *testing.T) {
	composer := NewComposer()

	summary := strings.Repeat("alpha beta gamma ", 30)
	text := composer.Run("t", "https://example.com/a", summary, "", false)

	body := strings.TrimSuffix(text, " https://example.com/a")
	if strings.HasSuffix(body, "alph") || strings.HasSuffix(body, "bet") || strings.HasSuffix(body, "gamm") {
		t.Errorf("Truncation split a word: %q", body)
	}
}

func TestComposer_FinalGuardEllipsis(t *testing.T) {
	composer := NewComposer()

	// A URL far beyond any reserve forces the unconditional final check.
	url := "https://example.com/" + strings.Repeat("x", 400)
	text := composer.Run("Title", url, "Short summary", "", false)

	if n := len([]rune(text)); n > PlatformMaxLength {
		t.Errorf("Final guard failed: %d > %d", n, PlatformMaxLength)
	}
	if !strings.HasSuffix(text, ellipsis) {
		t.Errorf("Expected ellipsis marker after hard truncation, got suffix: %q", text[len(text)-8:])
	}
}

func TestTruncateAtWord(t *testing.T) {
	tests := []struct {
		text     string
		budget   int
		expected string
	}{
		{"short", 100, "short"},
		{"alpha beta gamma", 10, "alpha beta"},
		{"alpha beta gamma", 12, "alpha beta"},
		{"alphabetagamma", 5, "alpha"},
		{"", 10, ""},
	}

	for _, tt := range tests {
		if got := truncateAtWord(tt.text, tt.budget); got != tt.expected {
			t.Errorf("truncateAtWord(%q, %d) = %q, expected %q", tt.text, tt.budget, got, tt.expected)
		}
	}
}
