// Package seed loads the bundled sample chapters and writes them to a
// study backend.
package seed

import (
	"context"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/mrlokans/pharmastudy/internal/entities"
)

//go:embed sample.yaml
var sampleYAML []byte

type Topic struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type Chapter struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Color       string  `yaml:"color,omitempty"`
	Topics      []Topic `yaml:"topics"`
}

type document struct {
	Chapters []Chapter `yaml:"chapters"`
}

// Parse decodes a sample document.
func Parse(raw []byte) ([]Chapter, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse sample data: %w", err)
	}
	for i, c := range doc.Chapters {
		if c.Name == "" {
			return nil, fmt.Errorf("sample chapter %d has no name", i+1)
		}
	}
	return doc.Chapters, nil
}

// Sample returns the bundled chapters.
func Sample() ([]Chapter, error) {
	return Parse(sampleYAML)
}

// Target is the part of a study backend seeding writes to.
type Target interface {
	ListChapters(ctx context.Context) ([]entities.Chapter, error)
	CreateChapter(ctx context.Context, in entities.NewChapter) (*entities.Chapter, error)
	CreateTopic(ctx context.Context, chapterID string, in entities.NewTopic) (*entities.Topic, error)
}

// Result counts what Apply created.
type Result struct {
	Chapters int
	Topics   int
	Skipped  bool
}

// Apply creates chapters in order, each followed by its topics. Accounts
// that already have chapters are left alone unless force is set.
func Apply(ctx context.Context, target Target, chapters []Chapter, force bool) (Result, error) {
	var result Result

	if !force {
		existing, err := target.ListChapters(ctx)
		if err != nil {
			return result, err
		}
		if len(existing) > 0 {
			result.Skipped = true
			return result, nil
		}
	}

	for _, c := range chapters {
		in := entities.NewChapter{Name: c.Name, Description: c.Description}
		if c.Color != "" {
			color := c.Color
			in.Color = &color
		}
		created, err := target.CreateChapter(ctx, in)
		if err != nil {
			return result, fmt.Errorf("create chapter %q: %w", c.Name, err)
		}
		result.Chapters++

		for _, t := range c.Topics {
			if _, err := target.CreateTopic(ctx, created.ID, entities.NewTopic{Name: t.Name, Description: t.Description}); err != nil {
				return result, fmt.Errorf("create topic %q: %w", t.Name, err)
			}
			result.Topics++
		}
	}
	return result, nil
}
