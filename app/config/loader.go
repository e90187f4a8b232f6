package config

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader handles loading and validation of the sources file
type Loader struct {
	path string
}

// NewLoader creates a new sources loader
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load reads the YAML sources file. A missing file yields built-in defaults
// so the service comes up without any local configuration.
func (l *Loader) Load() (*Sources, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("Sources file %s not found, using defaults", l.path)
			sources := &Sources{}
			l.setDefaults(sources)
			return sources, nil
		}
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}

	var sources Sources
	if err := yaml.Unmarshal(data, &sources); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	l.setDefaults(&sources)

	if err := l.validate(&sources); err != nil {
		return nil, fmt.Errorf("invalid sources file %s: %w", l.path, err)
	}

	log.Printf("Loaded sources from %s", l.path)
	return &sources, nil
}

// setDefaults applies default values to empty sections
func (l *Loader) setDefaults(sources *Sources) {
	if len(sources.Reddit.Subreddits) == 0 {
		sources.Reddit.Subreddits = []string{"OutOfTheLoop", "teenagers", "memes"}
	}
	if len(sources.Trends.Seeds) == 0 {
		sources.Trends.Seeds = []string{"emoji meaning", "slang meaning"}
	}
}

// validate validates the sources configuration
func (l *Loader) validate(sources *Sources) error {
	for i, sub := range sources.Reddit.Subreddits {
		if sub == "" {
			return fmt.Errorf("empty subreddit at index %d", i)
		}
	}
	for i, feed := range sources.RSS.Feeds {
		if feed == "" {
			return fmt.Errorf("empty RSS feed URL at index %d", i)
		}
	}
	for i, seed := range sources.Trends.Seeds {
		if seed == "" {
			return fmt.Errorf("empty trend seed at index %d", i)
		}
	}
	return nil
}
