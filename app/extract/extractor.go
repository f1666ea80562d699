package extract

import (
	"context"
	"log/slog"
	"strings"
)

// minContentLength is the threshold below which a strategy's output is
// treated as a miss and the next strategy is tried.
const minContentLength = 100

// Strategy is a single way of turning a URL into readable article text.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, url string) (string, error)
}

// Extractor runs an ordered escalation of strategies, stopping at the first
// one that yields enough text. It has no side effects beyond outbound
// requests and logging.
type Extractor struct {
	strategies []Strategy
}

func NewExtractor(strategies ...Strategy) *Extractor {
	return &Extractor{strategies: strategies}
}

// Run returns best-effort article text for the URL, or the empty string when
// every strategy fails. A strategy error never stops evaluation of the next.
func (e *Extractor) Run(ctx context.Context, url string) string {
	for _, strategy := range e.strategies {
		text, err := strategy.Attempt(ctx, url)
		if err != nil {
			slog.Warn("Extraction strategy failed", "strategy", strategy.Name(), "url", url, "error", err)
			continue
		}

		text = normalizeWhitespace(text)
		if len(text) > minContentLength {
			slog.Debug("Content extracted", "strategy", strategy.Name(), "url", url, "length", len(text))
			return text
		}

		slog.Debug("Extraction strategy returned too little text", "strategy", strategy.Name(), "url", url, "length", len(text))
	}

	slog.Warn("All extraction strategies failed", "url", url)
	return ""
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
