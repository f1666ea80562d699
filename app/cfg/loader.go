package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./feedpost.db" description:"Path to the sqlite database file"`

	// Application configuration
	FeedsDir        string `long:"feeds-dir" env:"FEEDS_DIR" default:"./feeds" description:"Directory containing feed configuration files"`
	SecretsDir      string `long:"secrets-dir" env:"SECRETS_DIR" default:"./secrets" description:"Directory containing channel credential files"`
	Port            string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	WorkerCount     int    `long:"worker-count" env:"WORKER_COUNT" default:"3" description:"Number of background workers for feed processing"`
	FetchInterval   int    `long:"fetch-interval" env:"FETCH_INTERVAL" default:"86400" description:"Feed fetch cadence in seconds"`
	PublishInterval int    `long:"publish-interval" env:"PUBLISH_INTERVAL" default:"7200" description:"Publish cadence in seconds"`
	APIAccessKey    string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for manual trigger endpoints (optional)"`

	// Enrichment configuration
	OpenAIKey     string `long:"openai-key" env:"OPENAI_KEY" description:"OpenAI API key (summarization disabled when empty)"`
	OpenAIModel   string `long:"openai-model" env:"OPENAI_MODEL" default:"gpt-4o-mini" description:"OpenAI model used for summarization"`
	SummaryTokens int    `long:"summary-tokens" env:"SUMMARY_TOKENS" default:"200" description:"Token ceiling for summarization responses"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36" description:"User agent string for feed requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`

	// One-shot mode
	Run string `long:"run" env:"RUN" choice:"fetch" choice:"publish" description:"Run a single cycle and exit instead of starting the scheduler"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:          raw.DBPath,
		FeedsDir:        raw.FeedsDir,
		SecretsDir:      raw.SecretsDir,
		Port:            raw.Port,
		WorkerCount:     raw.WorkerCount,
		FetchInterval:   raw.FetchInterval,
		PublishInterval: raw.PublishInterval,
		APIAccessKey:    raw.APIAccessKey,
		OpenAIKey:       raw.OpenAIKey,
		OpenAIModel:     raw.OpenAIModel,
		SummaryTokens:   raw.SummaryTokens,
		UserAgent:       raw.UserAgent,
		Timezone:        raw.Timezone,
		Debug:           raw.Debug,
		Version:         GetVersion(),
		Run:             raw.Run,
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// Set installs a configuration directly, bypassing flag parsing. Used by tests.
func Set(c *Cfg) {
	globalCfg = c
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
