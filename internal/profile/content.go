package profile

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Content is the on-disk shape of the portfolio content file.
type Content struct {
	Profile      Profile             `yaml:"profile"`
	Experiences  []experienceContent `yaml:"experience"`
	Projects     []Project           `yaml:"projects"`
	Skills       []Skill             `yaml:"skills"`
	Templates    []Template          `yaml:"templates"`
	Testimonials []Testimonial       `yaml:"testimonials"`
}

type experienceContent struct {
	Experience `yaml:",inline"`
	Steps      []string `yaml:"steps"`
}

var readFileHook = os.ReadFile

func LoadContentFile(path string) (*Content, error) {
	data, err := readFileHook(path)
	if err != nil {
		return nil, fmt.Errorf("error reading content file: %w", err)
	}
	return ParseContent(data)
}

func ParseContent(data []byte) (*Content, error) {
	var c Content
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("error parsing content file: %w", err)
	}
	if c.Profile.Name == "" {
		return nil, fmt.Errorf("content file: profile.name is required")
	}
	return &c, nil
}

func (c *Content) testimonials() []Testimonial {
	out := make([]Testimonial, len(c.Testimonials))
	for i, t := range c.Testimonials {
		t.ID = 0
		t.SortOrder = i
		out[i] = t
	}
	return out
}

func (c *Content) experiences() ([]Experience, error) {
	out := make([]Experience, 0, len(c.Experiences))
	for i, e := range c.Experiences {
		steps, err := json.Marshal(e.Steps)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal experience steps: %w", err)
		}
		exp := e.Experience
		exp.ID = 0
		exp.Steps = steps
		exp.SortOrder = i
		out = append(out, exp)
	}
	return out, nil
}
