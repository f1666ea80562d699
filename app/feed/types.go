package feed

// Configuration types, loaded from per-feed YAML files in the feeds directory.
// The file name (without extension) is the feed identifier.

type Config struct {
	FeedID   string         // Derived from filename (without .yml extension)
	Name     string         `yaml:"name"`
	URLs     []string       `yaml:"urls"`
	Hashtags string         `yaml:"hashtags"`
	MinDate  string         `yaml:"min_date"` // YYYY-MM-DD, optional publish-candidacy floor
	Settings ConfigSettings `yaml:"settings"`
	Channels ConfigChannels `yaml:"channels"`
}

type ConfigSettings struct {
	Enabled        bool     `yaml:"enabled"`
	Timeout        int      `yaml:"timeout"` // seconds, per source URL
	AppendHashtags bool     `yaml:"append_hashtags"`
	ExcludeTitles  []string `yaml:"exclude_titles"`
}

type ConfigChannels struct {
	Primary   string   `yaml:"primary"`
	Secondary []string `yaml:"secondary"`
}
