package compose

import (
	"strings"
	"unicode"
)

const (
	// PlatformMaxLength is the hard post-length ceiling of the microblog
	// platform; every composed post must fit it.
	PlatformMaxLength = 280

	// urlReservedLength is the platform's wrapped-link length plus the
	// separating space.
	urlReservedLength = 24

	// mediaReservedLength accounts for an attached preview card.
	mediaReservedLength = 24

	ellipsis = "…"
)

// Composer assembles the final post body under the platform character budget.
// Summary mode carries the AI summary; fallback mode carries title plus
// generated hashtags.
type Composer struct {
	platformMax int
}

func NewComposer() *Composer {
	return &Composer{platformMax: PlatformMaxLength}
}

// Run builds the post text for an item. summary empty means extraction or
// summarization failed and the title+hashtag fallback is used; hashtags is a
// space-separated tag string, possibly empty. The returned text always fits
// the platform maximum.
func (c *Composer) Run(title, url, summary, hashtags string, appendHashtags bool) string {
	var body string

	if summary != "" {
		// The summary is assumed to already carry topical signal;
		// hashtags ride along only when the feed opts in.
		budget := c.bodyBudget("")
		if appendHashtags && hashtags != "" {
			budget = c.bodyBudget(hashtags)
		}

		body = truncateAtWord(summary, budget)
		if appendHashtags && hashtags != "" {
			body = body + "\n" + hashtags
		}
	} else {
		budget := c.bodyBudget(hashtags)
		body = truncateAtWord(title, budget)
		if hashtags != "" {
			body = body + "\n" + hashtags
		}
	}

	text := strings.TrimSpace(body)
	if url != "" {
		text = text + " " + url
	}

	// Last line of defense against budget arithmetic errors; runs
	// regardless of which mode produced the text.
	if runeLen(text) > c.platformMax {
		text = truncateRunes(text, c.platformMax-runeLen(ellipsis)) + ellipsis
	}

	return text
}

func (c *Composer) bodyBudget(hashtags string) int {
	budget := c.platformMax - urlReservedLength - mediaReservedLength
	if hashtags != "" {
		budget -= runeLen(hashtags) + 1 // newline separator
	}
	if budget < 0 {
		budget = 0
	}
	return budget
}

// truncateAtWord cuts text at the last whitespace boundary at or before the
// budget. Falls back to a hard cut when the first word alone overflows.
func truncateAtWord(text string, budget int) string {
	runes := []rune(text)
	if len(runes) <= budget {
		return text
	}
	if budget <= 0 {
		return ""
	}

	// The character right past the cut decides whether the last word
	// inside the budget is complete.
	if unicode.IsSpace(runes[budget]) {
		return strings.TrimSpace(string(runes[:budget]))
	}

	cut := string(runes[:budget])
	if idx := strings.LastIndexAny(cut, " \t\n"); idx > 0 {
		cut = cut[:idx]
	}

	return strings.TrimSpace(cut)
}

func runeLen(s string) int {
	return len([]rune(s))
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n < 0 {
		n = 0
	}
	return string(runes[:n])
}
