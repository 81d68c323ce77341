package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mrwolf/moodlog/internal/narrative"
)

// Content overrides the built-in fallback text shown when the generator has
// nothing usable. Every field is optional.
//
//	narratives:
//	  dashboard:
//	    text:
//	      summary: "Your dashboard..."
//	  monthly:
//	    items:
//	      suggestions: ["Take a walk", "Call a friend"]
//	challenges:
//	  - emoji: "🧘"
//	    title: "Breathe"
//	    description: "Five slow breaths."
//	wisdom: "Slow down."
type Content struct {
	Narratives           map[string]NarrativeContent `yaml:"narratives"`
	Challenges           []narrative.Record          `yaml:"challenges"`
	Playlists            []narrative.Record          `yaml:"playlists"`
	PlaylistDescriptions map[string]string           `yaml:"playlist_descriptions"`
	Wisdom               string                      `yaml:"wisdom"`
}

// NarrativeContent holds fallback text for the sections of one narrative
type NarrativeContent struct {
	Text  map[string]string   `yaml:"text"`
	Items map[string][]string `yaml:"items"`
}

// LoadContent reads a YAML content pack. An empty path yields an empty pack.
func LoadContent(path string) (*Content, error) {
	c := &Content{}
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading content pack: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parsing content pack: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("content pack %s: %w", path, err)
	}
	return c, nil
}

func (c *Content) validate() error {
	for i, r := range c.Challenges {
		if r.Label == "" || r.Title == "" || r.Description == "" {
			return fmt.Errorf("challenge %d needs emoji, title and description", i+1)
		}
	}
	for i, r := range c.Playlists {
		if r.Label == "" || r.Title == "" || r.Description == "" {
			return fmt.Errorf("playlist %d needs emoji, title and description", i+1)
		}
		if len(r.Items) == 0 {
			return fmt.Errorf("playlist %d has no tracks", i+1)
		}
	}
	return nil
}
