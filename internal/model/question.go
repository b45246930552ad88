package model

import "strings"

// QuestionID is an opaque identifier for a question
type QuestionID string

// MaxHints is the most hints a question may carry
const MaxHints = 3

// Difficulty buckets questions for selection and base scoring
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// BasePoints returns the default score for a question of this difficulty
func (d Difficulty) BasePoints() int {
	switch d {
	case DifficultyMedium:
		return 100
	case DifficultyHard:
		return 200
	default:
		return 50
	}
}

// Valid reports whether d is one of the known difficulty levels
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Question is a riddle-style puzzle authored by admins. The answer is
// authoritative and must never be shown to a player unrevealed.
type Question struct {
	ID         QuestionID `json:"id"`
	Prompt     string     `json:"prompt"`
	Answer     string     `json:"answer"`
	Hints      []string   `json:"hints,omitempty"`
	Difficulty Difficulty `json:"difficulty"`
	Points     int        `json:"points"`
	Active     bool       `json:"active"`
	ImageURL   string     `json:"image_url,omitempty"`
}

// CheckAnswer compares a candidate against the stored answer,
// case-insensitively and ignoring surrounding whitespace
func (q *Question) CheckAnswer(candidate string) bool {
	return strings.EqualFold(strings.TrimSpace(candidate), strings.TrimSpace(q.Answer))
}

// BasePoints returns the question's own point value, falling back to the
// difficulty default when none was set
func (q *Question) BasePoints() int {
	if q.Points > 0 {
		return q.Points
	}
	return q.Difficulty.BasePoints()
}

// Clone returns a deep copy of the question
func (q *Question) Clone() *Question {
	clone := *q
	clone.Hints = append([]string(nil), q.Hints...)
	return &clone
}
