package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/pharmastudy/internal/entities"
)

func TestSample(t *testing.T) {
	chapters, err := Sample()
	require.NoError(t, err)
	require.Len(t, chapters, 3)

	assert.Equal(t, "Introduction to Pharmacology", chapters[0].Name)
	assert.Equal(t, "Pharmacokinetics", chapters[1].Name)
	assert.Equal(t, "Pharmacodynamics", chapters[2].Name)

	var topics []string
	for _, t := range chapters[1].Topics {
		topics = append(topics, t.Name)
	}
	assert.Equal(t, []string{"Drug Absorption", "Drug Distribution", "Drug Metabolism"}, topics)
	assert.Len(t, chapters[0].Topics, 2)
	assert.Len(t, chapters[2].Topics, 2)
}

func TestParse_RejectsUnnamedChapter(t *testing.T) {
	_, err := Parse([]byte("chapters:\n  - description: nameless\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("chapters: [unclosed"))
	assert.Error(t, err)
}

// memoryTarget records what seeding writes.
type memoryTarget struct {
	chapters []entities.Chapter
	failOn   string
}

func (m *memoryTarget) ListChapters(context.Context) ([]entities.Chapter, error) {
	return m.chapters, nil
}

func (m *memoryTarget) CreateChapter(_ context.Context, in entities.NewChapter) (*entities.Chapter, error) {
	c := entities.Chapter{ID: in.Name, Name: in.Name, Color: in.Color, Order: len(m.chapters) + 1}
	m.chapters = append(m.chapters, c)
	return &c, nil
}

func (m *memoryTarget) CreateTopic(_ context.Context, chapterID string, in entities.NewTopic) (*entities.Topic, error) {
	if in.Name == m.failOn {
		return nil, errors.New("disk full")
	}
	for i := range m.chapters {
		if m.chapters[i].ID == chapterID {
			m.chapters[i].Topics = append(m.chapters[i].Topics, entities.Topic{Name: in.Name})
			return &entities.Topic{Name: in.Name, ChapterID: chapterID}, nil
		}
	}
	return nil, errors.New("chapter not found")
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	chapters, err := Sample()
	require.NoError(t, err)

	target := &memoryTarget{}
	result, err := Apply(ctx, target, chapters, false)
	require.NoError(t, err)
	assert.Equal(t, Result{Chapters: 3, Topics: 7}, result)
	assert.Len(t, target.chapters[1].Topics, 3)

	again, err := Apply(ctx, target, chapters, false)
	require.NoError(t, err)
	assert.True(t, again.Skipped)
	assert.Len(t, target.chapters, 3)

	forced, err := Apply(ctx, target, chapters[:1], true)
	require.NoError(t, err)
	assert.Equal(t, 1, forced.Chapters)
	assert.Len(t, target.chapters, 4)
}

func TestApply_StopsOnError(t *testing.T) {
	chapters, err := Sample()
	require.NoError(t, err)

	target := &memoryTarget{failOn: "Drug Distribution"}
	result, err := Apply(context.Background(), target, chapters, false)
	assert.ErrorContains(t, err, "Drug Distribution")
	assert.Equal(t, 2, result.Chapters)
	assert.Equal(t, 3, result.Topics)
}

func TestApply_PassesColor(t *testing.T) {
	target := &memoryTarget{}
	_, err := Apply(context.Background(), target, []Chapter{{Name: "Toxicology", Color: "#ef4444"}}, false)
	require.NoError(t, err)
	require.NotNil(t, target.chapters[0].Color)
	assert.Equal(t, "#ef4444", *target.chapters[0].Color)
}
