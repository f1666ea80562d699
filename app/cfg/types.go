package cfg

type Cfg struct {
	// Storage configuration
	DBPath string

	// Application configuration
	FeedsDir        string
	SecretsDir      string
	Port            string
	WorkerCount     int
	FetchInterval   int // seconds
	PublishInterval int // seconds
	APIAccessKey    string

	// Enrichment configuration
	OpenAIKey     string
	OpenAIModel   string
	SummaryTokens int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string

	// One-shot mode: run a single fetch or publish cycle and exit
	Run string
}
