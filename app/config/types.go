package config

// Sources describes the external source material for a deployment: which
// communities and feeds to pull from, what to suppress, and which seed
// keywords to watch for rising queries.
type Sources struct {
	Reddit struct {
		Subreddits []string `yaml:"subreddits"`
	} `yaml:"reddit"`

	RSS struct {
		Feeds []string `yaml:"feeds"`
	} `yaml:"rss"`

	Denylists struct {
		Emoji []string `yaml:"emoji"`
		Text  []string `yaml:"text"`
	} `yaml:"denylists"`

	Trends struct {
		Seeds []string `yaml:"seeds"`
	} `yaml:"trends"`
}
