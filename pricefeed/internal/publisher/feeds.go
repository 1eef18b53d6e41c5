package publisher

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Feed is a single price to publish.
type Feed struct {
	ID    uint64  `yaml:"id"`
	Name  string  `yaml:"name,omitempty"`
	Price float64 `yaml:"price"`
}

type feedFile struct {
	Feeds []Feed `yaml:"feeds"`
}

// LoadFeeds reads a YAML feed file of the form:
//
//	feeds:
//	  - id: 834
//	    name: SOL/USD
//	    price: 140.25
func LoadFeeds(path string) ([]Feed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed file: %w", err)
	}
	return ParseFeeds(data)
}

func ParseFeeds(data []byte) ([]Feed, error) {
	var file feedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse feed file: %w", err)
	}
	if err := validateFeeds(file.Feeds); err != nil {
		return nil, err
	}
	return file.Feeds, nil
}

func validateFeeds(feeds []Feed) error {
	if len(feeds) == 0 {
		return errors.New("no feeds to publish")
	}
	seen := make(map[uint64]struct{}, len(feeds))
	for _, feed := range feeds {
		if _, ok := seen[feed.ID]; ok {
			return fmt.Errorf("duplicate feed id %d", feed.ID)
		}
		seen[feed.ID] = struct{}{}
		if math.IsNaN(feed.Price) || math.IsInf(feed.Price, 0) {
			return fmt.Errorf("feed %d: price must be finite", feed.ID)
		}
	}
	return nil
}
