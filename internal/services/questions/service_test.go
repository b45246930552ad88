package questions

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/enigma29/cluehunt/internal/dependencies/mocks"
	"github.com/enigma29/cluehunt/internal/model"
	"github.com/enigma29/cluehunt/internal/storage/memory"
	"github.com/enigma29/cluehunt/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	random  *mocks.MockRandom
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.random = mocks.NewMockRandom()
	s.service = New(s.storage, s.random, testutil.NopLogger())
	s.ctx = context.Background()
}

// seedQuestions stores count active questions per difficulty
func (s *ServiceSuite) seedQuestions(easy, medium, hard int) {
	add := func(d model.Difficulty, n int) {
		for i := 0; i < n; i++ {
			q := &model.Question{
				ID:         model.QuestionID(fmt.Sprintf("%s-%d", d, i)),
				Prompt:     fmt.Sprintf("prompt %s %d", d, i),
				Answer:     "answer",
				Difficulty: d,
				Active:     true,
			}
			s.Require().NoError(s.storage.SaveQuestion(s.ctx, q))
		}
	}
	add(model.DifficultyEasy, easy)
	add(model.DifficultyMedium, medium)
	add(model.DifficultyHard, hard)
}

func ids(questions []*model.Question) []model.QuestionID {
	out := make([]model.QuestionID, len(questions))
	for i, q := range questions {
		out[i] = q.ID
	}
	return out
}

// Selection tests

func (s *ServiceSuite) TestSelectionIsDeterministicPerSeed() {
	s.seedQuestions(10, 8, 5)
	seed := int64(12345)

	first, err := s.service.SelectQuestions(s.ctx, &seed)
	s.Require().NoError(err)
	second, err := s.service.SelectQuestions(s.ctx, &seed)
	s.Require().NoError(err)

	s.Equal(ids(first), ids(second))
	s.Len(first, 15)
}

func (s *ServiceSuite) TestDifferentSeedsProduceDifferentOrderings() {
	s.seedQuestions(10, 8, 5)
	seedA := int64(12345)
	seedB := int64(54321)

	a, err := s.service.SelectQuestions(s.ctx, &seedA)
	s.Require().NoError(err)
	b, err := s.service.SelectQuestions(s.ctx, &seedB)
	s.Require().NoError(err)

	s.NotEqual(ids(a), ids(b))
}

func (s *ServiceSuite) TestSelectionRespectsDifficultyCaps() {
	s.seedQuestions(20, 20, 20)
	seed := int64(99)

	selected, err := s.service.SelectQuestions(s.ctx, &seed)
	s.Require().NoError(err)
	s.Len(selected, 15)

	counts := map[model.Difficulty]int{}
	for _, q := range selected {
		counts[q.Difficulty]++
	}
	s.Equal(7, counts[model.DifficultyEasy])
	s.Equal(5, counts[model.DifficultyMedium])
	s.Equal(3, counts[model.DifficultyHard])
}

func (s *ServiceSuite) TestShortPartitionsDoNotError() {
	s.seedQuestions(2, 1, 0)
	seed := int64(7)

	selected, err := s.service.SelectQuestions(s.ctx, &seed)
	s.Require().NoError(err)
	s.Len(selected, 3)
}

func (s *ServiceSuite) TestNoQuestionsYieldsEmptyBoard() {
	seed := int64(7)
	selected, err := s.service.SelectQuestions(s.ctx, &seed)
	s.Require().NoError(err)
	s.Empty(selected)
}

func (s *ServiceSuite) TestInactiveQuestionsAreExcluded() {
	s.seedQuestions(3, 0, 0)
	s.Require().NoError(s.storage.SaveQuestion(s.ctx, &model.Question{
		ID: "retired", Answer: "x", Difficulty: model.DifficultyEasy, Active: false,
	}))
	seed := int64(7)

	selected, err := s.service.SelectQuestions(s.ctx, &seed)
	s.Require().NoError(err)
	s.Len(selected, 3)
	s.NotContains(ids(selected), model.QuestionID("retired"))
}

func (s *ServiceSuite) TestNilSeedUsesInjectedRandom() {
	s.seedQuestions(3, 2, 1)

	selected, err := s.service.SelectQuestions(s.ctx, nil)
	s.Require().NoError(err)
	s.Len(selected, 6)
	// Three partition shuffles plus the final interleave
	s.Equal(4, s.random.ShuffleCalls)
}

// Answer tests

func (s *ServiceSuite) TestCheckAnswerIsCaseInsensitive() {
	s.Require().NoError(s.storage.SaveQuestion(s.ctx, &model.Question{
		ID: "q1", Answer: "Caesar Cipher", Difficulty: model.DifficultyEasy, Active: true,
	}))

	correct, q, err := s.service.CheckAnswer(s.ctx, "q1", "  caesar cipher ")
	s.Require().NoError(err)
	s.True(correct)
	s.Equal(model.QuestionID("q1"), q.ID)

	correct, _, err = s.service.CheckAnswer(s.ctx, "q1", "vigenere")
	s.Require().NoError(err)
	s.False(correct)
}

func (s *ServiceSuite) TestCheckAnswerUnknownQuestion() {
	_, _, err := s.service.CheckAnswer(s.ctx, "missing", "x")
	s.ErrorIs(err, model.ErrQuestionNotFound)
}

// Hint tests

func (s *ServiceSuite) TestHint() {
	s.Require().NoError(s.storage.SaveQuestion(s.ctx, &model.Question{
		ID: "q1", Answer: "a", Hints: []string{"first", "second"},
		Difficulty: model.DifficultyEasy, Active: true,
	}))

	hint, err := s.service.Hint(s.ctx, "q1", 1)
	s.Require().NoError(err)
	s.Equal("second", hint)

	_, err = s.service.Hint(s.ctx, "q1", 2)
	s.ErrorIs(err, model.ErrHintNotAvailable)

	_, err = s.service.Hint(s.ctx, "q1", -1)
	s.ErrorIs(err, model.ErrHintNotAvailable)

	_, err = s.service.Hint(s.ctx, "q1", model.MaxHints)
	s.ErrorIs(err, model.ErrHintNotAvailable)
}

// Scoring tests

func TestAwardPointsFloor(t *testing.T) {
	difficulties := []model.Difficulty{
		model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard,
	}
	for _, d := range difficulties {
		q := &model.Question{Difficulty: d}
		for hints := 0; hints <= 100; hints++ {
			if got := AwardPoints(q, hints); got < 1 {
				t.Fatalf("difficulty %s with %d hints awarded %d, want >= 1", d, hints, got)
			}
		}
	}
}

func TestAwardPointsPenalty(t *testing.T) {
	q := &model.Question{Difficulty: model.DifficultyMedium}
	if got := AwardPoints(q, 0); got != 100 {
		t.Fatalf("medium with no hints: got %d, want 100", got)
	}
	if got := AwardPoints(q, 2); got != 90 {
		t.Fatalf("medium with two hints: got %d, want 90", got)
	}
	if got := AwardPoints(q, -3); got != 100 {
		t.Fatalf("negative hints must not add points: got %d", got)
	}
}

func TestAwardPointsUsesQuestionOverride(t *testing.T) {
	q := &model.Question{Difficulty: model.DifficultyEasy, Points: 75}
	if got := AwardPoints(q, 1); got != 70 {
		t.Fatalf("override base: got %d, want 70", got)
	}
}

func TestSeededRandIsReproducible(t *testing.T) {
	a := newSeededRand(42)
	b := newSeededRand(42)
	for i := 0; i < 100; i++ {
		if a.intn(1000) != b.intn(1000) {
			t.Fatal("same seed must produce the same sequence")
		}
	}
}
