// Package quiz builds multiple-choice quizzes from a chapter tree.
package quiz

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/mrlokans/pharmastudy/internal/entities"
)

// MaxQuestions caps a generated quiz.
const MaxQuestions = 10

// maxDistractors is how many other flashcard backs join the correct one.
const maxDistractors = 3

// propertyDistractors are offered against a property value.
var propertyDistractors = []string{"Unknown", "Not applicable", "Varies"}

// quizzable property keys, matched case-insensitively as substrings.
var propertyKeywords = []string{"formula", "mass", "number"}

// Filter restricts the source items. Empty fields match everything.
type Filter struct {
	ChapterID string
	TopicID   string
}

func (f Filter) matches(c entities.Chapter, t entities.Topic) bool {
	if f.ChapterID != "" && c.ID != f.ChapterID {
		return false
	}
	if f.TopicID != "" && t.ID != f.TopicID {
		return false
	}
	return true
}

type shuffler struct {
	rng *rand.Rand
}

// shuffle uses the process-wide source when no rng was supplied.
func (s shuffler) shuffle(n int, swap func(i, j int)) {
	if s.rng == nil {
		rand.Shuffle(n, swap)
		return
	}
	s.rng.Shuffle(n, swap)
}

func hasCard(item entities.Item) bool {
	return item.Flashcard != nil &&
		strings.TrimSpace(item.Flashcard.Front) != "" &&
		strings.TrimSpace(item.Flashcard.Back) != ""
}

func quizzableKey(key string) bool {
	key = strings.ToLower(key)
	for _, kw := range propertyKeywords {
		if strings.Contains(key, kw) {
			return true
		}
	}
	return false
}

// Generate builds up to MaxQuestions questions from the items that pass
// filter. Items with a two-sided flashcard ask for the back, with other
// items' backs as distractors; properties whose key mentions a formula, a
// mass or a number ask for the value. Options are shuffled per question and
// CorrectAnswer indexes the shuffled options.
func Generate(chapters []entities.Chapter, filter Filter, rng *rand.Rand) []entities.QuizQuestion {
	s := shuffler{rng: rng}
	all := entities.AllItems(chapters)

	questions := []entities.QuizQuestion{}
	for _, c := range chapters {
		for _, t := range c.Topics {
			if !filter.matches(c, t) {
				continue
			}
			for _, item := range t.Items {
				if hasCard(item) {
					questions = append(questions, flashcardQuestion(item, all, s))
				}
				for i, p := range item.Properties {
					if quizzableKey(p.Key) && strings.TrimSpace(p.Value) != "" {
						questions = append(questions, propertyQuestion(item, i, p, s))
					}
				}
			}
		}
	}

	s.shuffle(len(questions), func(i, j int) { questions[i], questions[j] = questions[j], questions[i] })
	if len(questions) > MaxQuestions {
		questions = questions[:MaxQuestions]
	}
	return questions
}

func flashcardQuestion(item entities.Item, all []entities.Item, s shuffler) entities.QuizQuestion {
	correct := item.Flashcard.Back

	var pool []string
	seen := map[string]bool{correct: true}
	for _, other := range all {
		if other.ID == item.ID || !hasCard(other) || seen[other.Flashcard.Back] {
			continue
		}
		seen[other.Flashcard.Back] = true
		pool = append(pool, other.Flashcard.Back)
	}
	s.shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if len(pool) > maxDistractors {
		pool = pool[:maxDistractors]
	}

	options, answer := withShuffledAnswer(correct, pool, s)
	return entities.QuizQuestion{
		ID:            "q-" + item.ID,
		Kind:          entities.QuestionFlashcard,
		ItemID:        item.ID,
		Question:      item.Flashcard.Front,
		Options:       options,
		CorrectAnswer: answer,
		Explanation:   "Correct answer: " + correct,
	}
}

// propertyQuestion asks for the value of the property at index pos. Keys may
// repeat within an item, so the position is part of the question id.
func propertyQuestion(item entities.Item, pos int, p entities.Property, s shuffler) entities.QuizQuestion {
	var distractors []string
	for _, d := range propertyDistractors {
		if d != p.Value {
			distractors = append(distractors, d)
		}
	}

	key := strings.ToLower(p.Key)
	options, answer := withShuffledAnswer(p.Value, distractors, s)
	return entities.QuizQuestion{
		ID:            fmt.Sprintf("q-%s-%d-%s", item.ID, pos, p.Key),
		Kind:          entities.QuestionProperty,
		ItemID:        item.ID,
		Question:      fmt.Sprintf("What is the %s of %s?", key, item.Name),
		Options:       options,
		CorrectAnswer: answer,
		Explanation:   fmt.Sprintf("The %s of %s is %s.", key, item.Name, p.Value),
	}
}

// withShuffledAnswer shuffles correct in among distractors and reports
// where it landed.
func withShuffledAnswer(correct string, distractors []string, s shuffler) ([]string, int) {
	options := append([]string{correct}, distractors...)
	answer := 0
	s.shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
		switch answer {
		case i:
			answer = j
		case j:
			answer = i
		}
	})
	return options, answer
}

// Score counts answers matching the correct option. answers[i] answers
// questions[i]; missing answers count as wrong.
func Score(questions []entities.QuizQuestion, answers []int) int {
	score := 0
	for i, q := range questions {
		if i < len(answers) && answers[i] == q.CorrectAnswer {
			score++
		}
	}
	return score
}

// New wraps generated questions into an unanswered quiz.
func New(name string, filter Filter, questions []entities.QuizQuestion, now time.Time) entities.Quiz {
	return entities.Quiz{
		Name:      name,
		ChapterID: filter.ChapterID,
		TopicID:   filter.TopicID,
		Questions: questions,
		CreatedAt: now,
	}
}
