package entities

import "time"

type QuestionKind string

const (
	QuestionFlashcard QuestionKind = "flashcard"
	QuestionProperty  QuestionKind = "property"
)

type QuizQuestion struct {
	ID            string       `json:"id"`
	Kind          QuestionKind `json:"kind"`
	ItemID        string       `json:"itemId"`
	Question      string       `json:"question"`
	Options       []string     `json:"options"`
	CorrectAnswer int          `json:"correctAnswer"`
	Explanation   string       `json:"explanation,omitempty"`
}

// Quiz is a generated question set. Quizzes are kept on-device only.
type Quiz struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	ChapterID string         `json:"chapterId,omitempty"`
	TopicID   string         `json:"topicId,omitempty"`
	Questions []QuizQuestion `json:"questions"`
	Answered  int            `json:"answered"`
	Score     int            `json:"score"`
	CreatedAt time.Time      `json:"createdAt"`
}
