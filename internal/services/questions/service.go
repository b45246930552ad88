package questions

import (
	"context"
	"log/slog"

	"github.com/enigma29/cluehunt/internal/dependencies/random"
	"github.com/enigma29/cluehunt/internal/model"
	"github.com/enigma29/cluehunt/internal/storage"
)

// Board composition: up to 7 easy, 5 medium, and 3 hard questions per game
const (
	maxEasy   = 7
	maxMedium = 5
	maxHard   = 3
)

// interleaveOffset decorrelates the final mixing shuffle from the
// per-difficulty shuffles that share the base seed
const interleaveOffset = 1000

// hintPenalty is the score cost per hint revealed
const hintPenalty = 5

// Service selects question boards and checks answers against the store
type Service struct {
	storage storage.Storage
	random  random.Random
	logger  *slog.Logger
}

// New creates a new questions service
func New(storage storage.Storage, random random.Random, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		random:  random,
		logger:  logger,
	}
}

// SelectQuestions builds the ordered board for a game. With a seed the
// selection is fully deterministic: every client holding the same seed and
// seeing the same active question set derives the identical ordered list,
// which is how teammates end up with the same board without coordinating.
// A nil seed (solo/legacy flow) falls back to a non-reproducible shuffle.
func (s *Service) SelectQuestions(ctx context.Context, seed *int64) ([]*model.Question, error) {
	all, err := s.storage.ListActiveQuestions(ctx)
	if err != nil {
		return nil, err
	}

	var easy, medium, hard []*model.Question
	for _, q := range all {
		switch q.Difficulty {
		case model.DifficultyMedium:
			medium = append(medium, q)
		case model.DifficultyHard:
			hard = append(hard, q)
		default:
			easy = append(easy, q)
		}
	}

	s.shufflePartition(easy, seed)
	s.shufflePartition(medium, seed)
	s.shufflePartition(hard, seed)

	// Shortage in a difficulty bucket just yields a smaller board
	selected := make([]*model.Question, 0, maxEasy+maxMedium+maxHard)
	selected = append(selected, take(easy, maxEasy)...)
	selected = append(selected, take(medium, maxMedium)...)
	selected = append(selected, take(hard, maxHard)...)

	// One more pass to interleave difficulties
	if seed != nil {
		offset := *seed + interleaveOffset
		s.shufflePartition(selected, &offset)
	} else {
		s.shufflePartition(selected, nil)
	}

	return selected, nil
}

func (s *Service) shufflePartition(questions []*model.Question, seed *int64) {
	swap := func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	}
	if seed != nil {
		newSeededRand(*seed).shuffle(len(questions), swap)
	} else {
		s.random.Shuffle(len(questions), swap)
	}
}

func take(questions []*model.Question, n int) []*model.Question {
	if len(questions) < n {
		return questions
	}
	return questions[:n]
}

// CheckAnswer verifies a candidate answer against the authoritative stored
// answer (case-insensitive exact match). The question is returned so the
// caller can compute the award without a second fetch.
func (s *Service) CheckAnswer(ctx context.Context, id model.QuestionID, candidate string) (bool, *model.Question, error) {
	q, err := s.storage.GetQuestion(ctx, id)
	if err != nil {
		return false, nil, err
	}
	return q.CheckAnswer(candidate), q, nil
}

// Hint returns the hint at the given index (0-based, up to MaxHints)
func (s *Service) Hint(ctx context.Context, id model.QuestionID, index int) (string, error) {
	if index < 0 || index >= model.MaxHints {
		return "", model.ErrHintNotAvailable
	}

	q, err := s.storage.GetQuestion(ctx, id)
	if err != nil {
		return "", err
	}
	if index >= len(q.Hints) || q.Hints[index] == "" {
		return "", model.ErrHintNotAvailable
	}
	return q.Hints[index], nil
}

// AwardPoints computes the score for a correct answer: the question's base
// value minus a penalty per hint used, floored at 1 so a correct answer is
// never worth nothing
func AwardPoints(q *model.Question, hintsUsed int) int {
	if hintsUsed < 0 {
		hintsUsed = 0
	}
	points := q.BasePoints() - hintPenalty*hintsUsed
	if points < 1 {
		return 1
	}
	return points
}
