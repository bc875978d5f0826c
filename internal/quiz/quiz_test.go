package quiz

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/pharmastudy/internal/entities"
)

func card(front, back string) *entities.Flashcard {
	return &entities.Flashcard{Front: front, Back: back}
}

func tree() []entities.Chapter {
	return []entities.Chapter{
		{
			ID: "ch-1",
			Topics: []entities.Topic{
				{
					ID: "tp-1",
					Items: []entities.Item{
						{ID: "i1", Name: "Aspirin", Flashcard: card("Q1", "A1")},
						{ID: "i2", Name: "Ibuprofen", Flashcard: card("Q2", "A2")},
					},
				},
			},
		},
		{
			ID: "ch-2",
			Topics: []entities.Topic{
				{
					ID: "tp-2",
					Items: []entities.Item{
						{ID: "i3", Name: "Morphine", Flashcard: card("Q3", "A3")},
						{ID: "i4", Name: "Caffeine", Flashcard: card("Q4", "A4"), Properties: []entities.Property{
							{Key: "Molecular Formula", Value: "C8H10N4O2"},
							{Key: "Half-life", Value: "5 h"},
						}},
						{ID: "i5", Name: "Half card", Flashcard: card("Front only", "")},
					},
				},
			},
		},
	}
}

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}

func find(t *testing.T, questions []entities.QuizQuestion, id string) entities.QuizQuestion {
	t.Helper()
	i := slices.IndexFunc(questions, func(q entities.QuizQuestion) bool { return q.ID == id })
	require.GreaterOrEqual(t, i, 0, "question %s not generated", id)
	return questions[i]
}

func TestGenerate_FlashcardQuestion(t *testing.T) {
	for seed := range uint64(20) {
		questions := Generate(tree(), Filter{}, seeded(seed))

		q := find(t, questions, "q-i1")
		assert.Equal(t, "Q1", q.Question)
		assert.Equal(t, entities.QuestionFlashcard, q.Kind)
		require.Len(t, q.Options, 4)
		assert.Equal(t, 1, countOf(q.Options, "A1"))
		assert.Equal(t, "A1", q.Options[q.CorrectAnswer])

		// Distractors are distinct backs of other items.
		unique := slices.Clone(q.Options)
		slices.Sort(unique)
		assert.Len(t, slices.Compact(unique), 4)
		assert.NotContains(t, q.Options, "")
	}
}

func countOf(options []string, s string) int {
	n := 0
	for _, o := range options {
		if o == s {
			n++
		}
	}
	return n
}

func TestGenerate_PropertyQuestion(t *testing.T) {
	for seed := range uint64(20) {
		questions := Generate(tree(), Filter{}, seeded(seed))

		q := find(t, questions, "q-i4-0-Molecular Formula")
		assert.Equal(t, entities.QuestionProperty, q.Kind)
		assert.Equal(t, "What is the molecular formula of Caffeine?", q.Question)
		assert.ElementsMatch(t, []string{"C8H10N4O2", "Unknown", "Not applicable", "Varies"}, q.Options)
		assert.Equal(t, "C8H10N4O2", q.Options[q.CorrectAnswer])
		assert.Equal(t, "The molecular formula of Caffeine is C8H10N4O2.", q.Explanation)
	}
}

func TestGenerate_RepeatedPropertyKeysGetDistinctIDs(t *testing.T) {
	chapters := []entities.Chapter{{ID: "c", Topics: []entities.Topic{{ID: "t", Items: []entities.Item{
		{ID: "salt", Name: "Morphine", Properties: []entities.Property{
			{Key: "Formula", Value: "C17H19NO3"},
			{Key: "Formula", Value: "C34H40N2O10S"},
		}},
	}}}}}

	questions := Generate(chapters, Filter{}, seeded(3))
	require.Len(t, questions, 2)
	assert.NotEqual(t, questions[0].ID, questions[1].ID)
	find(t, questions, "q-salt-0-Formula")
	find(t, questions, "q-salt-1-Formula")
}

func TestGenerate_SkipsIncompleteCardsAndOtherProperties(t *testing.T) {
	questions := Generate(tree(), Filter{}, seeded(1))

	// Four complete cards plus one formula property.
	assert.Len(t, questions, 5)
	for _, q := range questions {
		assert.NotEqual(t, "i5", q.ItemID)
		assert.NotContains(t, q.ID, "Half-life")
	}
}

func TestGenerate_Filters(t *testing.T) {
	questions := Generate(tree(), Filter{ChapterID: "ch-1"}, seeded(1))
	require.Len(t, questions, 2)
	for _, q := range questions {
		assert.Contains(t, []string{"i1", "i2"}, q.ItemID)
	}

	// Distractors still come from the whole tree.
	q := find(t, questions, "q-i1")
	assert.Len(t, q.Options, 4)

	questions = Generate(tree(), Filter{TopicID: "tp-2"}, seeded(1))
	assert.Len(t, questions, 3)

	assert.Empty(t, Generate(tree(), Filter{ChapterID: "ch-1", TopicID: "tp-2"}, seeded(1)))
	assert.Empty(t, Generate(nil, Filter{}, nil))
}

func TestGenerate_CapsAtMaxQuestions(t *testing.T) {
	var items []entities.Item
	for i := range 15 {
		id := string(rune('a' + i))
		items = append(items, entities.Item{ID: id, Name: id, Flashcard: card("front "+id, "back "+id)})
	}
	chapters := []entities.Chapter{{ID: "c", Topics: []entities.Topic{{ID: "t", Items: items}}}}

	questions := Generate(chapters, Filter{}, nil)
	assert.Len(t, questions, MaxQuestions)
}

func TestGenerate_SingleCardHasNoDistractors(t *testing.T) {
	chapters := []entities.Chapter{{ID: "c", Topics: []entities.Topic{{ID: "t", Items: []entities.Item{
		{ID: "only", Name: "Only", Flashcard: card("Q", "A")},
	}}}}}

	questions := Generate(chapters, Filter{}, seeded(3))
	require.Len(t, questions, 1)
	assert.Equal(t, []string{"A"}, questions[0].Options)
	assert.Equal(t, 0, questions[0].CorrectAnswer)
}

func TestScore(t *testing.T) {
	questions := []entities.QuizQuestion{
		{CorrectAnswer: 2},
		{CorrectAnswer: 0},
		{CorrectAnswer: 1},
	}

	assert.Equal(t, 2, Score(questions, []int{2, 0, 3}))
	assert.Equal(t, 1, Score(questions, []int{2}))
	assert.Equal(t, 0, Score(questions, nil))
}
