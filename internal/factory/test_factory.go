package factory

import (
	"context"
	"path/filepath"
	"time"

	"github.com/enigma29/cluehunt/internal/dependencies/mocks"
	"github.com/enigma29/cluehunt/internal/model"
	"github.com/enigma29/cluehunt/internal/session"
	"github.com/enigma29/cluehunt/internal/storage/memory"
	"github.com/enigma29/cluehunt/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// The session descriptor is cached under sessionDir so parallel tests do not
// share login state.
func NewTestApp(sessionDir string) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	sessions := session.NewStore(filepath.Join(sessionDir, "session.json"))

	app := NewWithDependencies(store, sessions, mockClock, mockRandom, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// LoadTestBank seeds an access code and a small question bank covering all
// three difficulties
func (t *TestApp) LoadTestBank(ctx context.Context) error {
	if err := t.Storage.SaveAccessCode(ctx, &model.AccessCode{
		Code:    "ENIGMA29",
		Section: "CS101",
		Active:  true,
	}); err != nil {
		return err
	}

	bank := []*model.Question{
		{ID: "e1", Prompt: "What has keys but no locks?", Answer: "piano", Difficulty: model.DifficultyEasy, Active: true},
		{ID: "e2", Prompt: "What gets wetter as it dries?", Answer: "towel", Difficulty: model.DifficultyEasy, Active: true},
		{ID: "e3", Prompt: "What has a head and a tail but no body?", Answer: "coin", Difficulty: model.DifficultyEasy, Active: true},
		{ID: "m1", Prompt: "The more you take, the more you leave behind.", Answer: "footsteps", Difficulty: model.DifficultyMedium, Active: true,
			Hints: []string{"You make them without thinking", "Look down"}},
		{ID: "m2", Prompt: "What can travel around the world while staying in a corner?", Answer: "stamp", Difficulty: model.DifficultyMedium, Active: true},
		{ID: "h1", Prompt: "I speak without a mouth and hear without ears.", Answer: "echo", Difficulty: model.DifficultyHard, Active: true},
	}
	for _, q := range bank {
		if err := t.Storage.SaveQuestion(ctx, q); err != nil {
			return err
		}
	}
	return nil
}
