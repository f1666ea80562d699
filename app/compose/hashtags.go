package compose

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// fuzzyThreshold is the minimum partial-similarity score (0-100 scale) for a
// dictionary phrase to count as present in a title.
const fuzzyThreshold = 85

type keywordEntry struct {
	phrase string
	tag    string
}

// keywordTable is the curated phrase-to-hashtag dictionary, loaded once at
// startup and never mutated. Order matters only for determinism of iteration.
var keywordTable = []keywordEntry{
	{"API", "#API"},
	{"AWS", "#AWS"},
	{"Amazon Web Services", "#AWS"},
	{"Aurora", "#Aurora"},
	{"Azure", "#Azure"},
	{"Bedrock", "#Bedrock"},
	{"CNCF", "#CNCF"},
	{"ChatGPT", "#ChatGPT"},
	{"Claude", "#Claude"},
	{"CloudWatch", "#CloudWatch"},
	{"EC2", "#EC2"},
	{"Fargate", "#Fargate"},
	{"GCP", "#GCP"},
	{"GPT", "#GPT"},
	{"Gemini", "#Gemini"},
	{"GitHub", "#GitHub"},
	{"Google Cloud Platform", "#GCP"},
	{"Google", "#Google"},
	{"Kubernetes", "#Kubernetes"},
	{"LLM", "#LLM"},
	{"LLMs", "#LLM"},
	{"Linux", "#Linux"},
	{"MCP", "#MCP"},
	{"Microsoft", "#Microsoft"},
	{"OpenAI", "#OpenAI"},
	{"RDS", "#RDS"},
	{"S3", "#S3"},
	{"SQL", "#SQL"},
	{"SageMaker", "#SageMaker"},
	{"Terraform", "#Terraform"},
	{"ai", "#AI"},
	{"algorithm", "#algorithm"},
	{"artificial intelligence", "#AI"},
	{"blockchain", "#blockchain"},
	{"cloud computing", "#CloudComputing"},
	{"cloud", "#Cloud"},
	{"compliance", "#compliance"},
	{"containers", "#containers"},
	{"data", "#data"},
	{"database", "#database"},
	{"devops", "#DevOps"},
	{"innovation", "#innovation"},
	{"k8s", "#Kubernetes"},
	{"large language models", "#LLM"},
	{"leadership", "#leadership"},
	{"machine learning", "#ML"},
	{"malware", "#malware"},
	{"microservices", "#microservices"},
	{"ml", "#ML"},
	{"model context protocol", "#MCP"},
	{"open source", "#OpenSource"},
	{"ransomware", "#ransomware"},
	{"robot", "#robot"},
	{"serverless", "#serverless"},
	{"technology", "#technology"},
}

var punctuation = regexp.MustCompile(`[^\p{L}\p{N}\s]`)

// HashtagGenerator derives topical tags from a title by matching it against
// the keyword dictionary, exact whole-word first and fuzzy partial-similarity
// as fallback. Pure and deterministic for a given dictionary.
type HashtagGenerator struct {
	entries  []keywordEntry
	patterns []*regexp.Regexp
}

func NewHashtagGenerator() *HashtagGenerator {
	g := &HashtagGenerator{entries: keywordTable}
	g.patterns = make([]*regexp.Regexp, len(g.entries))
	for i, entry := range g.entries {
		g.patterns[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(normalizeTitle(entry.phrase)) + `\b`)
	}
	return g
}

// Run returns the matched tags sorted alphabetically; duplicates collapse.
// An empty title yields an empty result.
func (g *HashtagGenerator) Run(title string) []string {
	normalized := normalizeTitle(title)
	if normalized == "" {
		return nil
	}

	matched := make(map[string]bool)

	for i, entry := range g.entries {
		if matched[entry.tag] {
			continue
		}

		if g.patterns[i].MatchString(normalized) {
			matched[entry.tag] = true
			continue
		}

		if fuzzy.PartialRatio(normalizeTitle(entry.phrase), normalized) >= fuzzyThreshold {
			matched[entry.tag] = true
		}
	}

	if len(matched) == 0 {
		return nil
	}

	tags := make([]string, 0, len(matched))
	for tag := range matched {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	return tags
}

// normalizeTitle lowercases, folds diacritics and strips punctuation so
// matching only sees words and whitespace.
func normalizeTitle(title string) string {
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(folder, title)
	if err != nil {
		folded = title
	}

	lowered := strings.ToLower(folded)
	cleaned := punctuation.ReplaceAllString(lowered, "")

	return strings.TrimSpace(cleaned)
}
