package sync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/enigma29/cluehunt/internal/dependencies/mocks"
	"github.com/enigma29/cluehunt/internal/model"
	"github.com/enigma29/cluehunt/internal/services/questions"
	"github.com/enigma29/cluehunt/internal/storage"
	"github.com/enigma29/cluehunt/internal/storage/memory"
	"github.com/enigma29/cluehunt/internal/testutil"
)

// countingStorage wraps a real store and counts the calls the protocols are
// supposed to avoid
type countingStorage struct {
	storage.Storage
	getTeamCalls     int
	getQuestionCalls int
	updateTeamCalls  int
}

func (c *countingStorage) GetTeam(ctx context.Context, id model.TeamID) (*model.Team, error) {
	c.getTeamCalls++
	return c.Storage.GetTeam(ctx, id)
}

func (c *countingStorage) GetQuestion(ctx context.Context, id model.QuestionID) (*model.Question, error) {
	c.getQuestionCalls++
	return c.Storage.GetQuestion(ctx, id)
}

func (c *countingStorage) UpdateTeam(ctx context.Context, id model.TeamID, update model.TeamUpdate) (*model.Team, error) {
	c.updateTeamCalls++
	return c.Storage.UpdateTeam(ctx, id, update)
}

type SynchronizerSuite struct {
	suite.Suite
	mem     *memory.Storage
	store   *countingStorage
	clock   *mocks.MockClock
	qs      *questions.Service
	sync    *Synchronizer
	endedCt int
	ctx     context.Context
}

func TestSynchronizerSuite(t *testing.T) {
	suite.Run(t, new(SynchronizerSuite))
}

func (s *SynchronizerSuite) SetupTest() {
	s.mem = memory.New()
	s.store = &countingStorage{Storage: s.mem}
	s.clock = mocks.NewMockClock(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	s.qs = questions.New(s.store, mocks.NewMockRandom(), testutil.NopLogger())
	s.endedCt = 0
	s.ctx = context.Background()

	s.Require().NoError(s.mem.CreateTeam(s.ctx, &model.Team{
		ID:           "t_1",
		Name:         "Alpha",
		AccessCode:   "ENIGMA29",
		Section:      "CS101",
		Members:      []string{"Bo", "Cy"},
		QuestionSeed: 42,
		StartTime:    s.clock.Now(),
	}))

	s.Require().NoError(s.mem.SaveQuestion(s.ctx, &model.Question{
		ID: "q1", Prompt: "p1", Answer: "Enigma",
		Difficulty: model.DifficultyEasy, Active: true,
	}))
	s.Require().NoError(s.mem.SaveQuestion(s.ctx, &model.Question{
		ID: "q2", Prompt: "p2", Answer: "Turing",
		Difficulty: model.DifficultyHard, Active: true,
	}))

	s.sync = New("t_1", s.store, s.qs, s.clock, Config{
		OnEnded: func() { s.endedCt++ },
	}, testutil.NopLogger())
}

// reconcile advances past the rate-limit gap first so the call is not
// suppressed
func (s *SynchronizerSuite) reconcile() {
	s.clock.Advance(2 * time.Second)
	s.Require().NoError(s.sync.Reconcile(s.ctx))
}

// setRemote applies a partial update directly, standing in for a teammate's
// client writing the shared row
func (s *SynchronizerSuite) setRemote(update model.TeamUpdate) {
	_, err := s.mem.UpdateTeam(s.ctx, "t_1", update)
	s.Require().NoError(err)
}

func (s *SynchronizerSuite) remoteTeam() *model.Team {
	team, err := s.mem.GetTeam(s.ctx, "t_1")
	s.Require().NoError(err)
	return team
}

// Initialization

func (s *SynchronizerSuite) TestFirstReconcileActivatesAndSetsEndTime() {
	s.Equal(StateInitializing, s.sync.CurrentState())

	s.reconcile()

	s.Equal(StateActive, s.sync.CurrentState())

	snap := s.sync.Snapshot()
	s.True(snap.HasEnd)
	s.Equal(s.clock.Now().Add(120*time.Minute), snap.EndTime)

	// The default duration was written back to the shared row
	remote := s.remoteTeam()
	s.Require().NotNil(remote.EndTime)
	s.Equal(snap.EndTime, *remote.EndTime)
}

func (s *SynchronizerSuite) TestReconcileSkipsEndTimeWriteWhenAlreadySet() {
	end := s.clock.Now().Add(45 * time.Minute)
	s.setRemote(model.TeamUpdate{EndTime: &end})

	s.reconcile()

	// Adopted, not overwritten
	s.Equal(0, s.store.updateTeamCalls)
	s.Equal(end, s.sync.Snapshot().EndTime)
}

// Merge semantics

func (s *SynchronizerSuite) TestReconcileMergesTeammateCompletions() {
	s.reconcile()

	points := 50
	completed := []model.QuestionID{"q1"}
	s.setRemote(model.TeamUpdate{Points: &points, CompletedPuzzles: &completed})

	s.reconcile()

	snap := s.sync.Snapshot()
	s.Equal(50, snap.Points)
	s.Equal([]model.QuestionID{"q1"}, snap.Completed)
}

func (s *SynchronizerSuite) TestCompletedSetNeverShrinks() {
	s.reconcile()

	completed := []model.QuestionID{"q1", "q2"}
	s.setRemote(model.TeamUpdate{CompletedPuzzles: &completed})
	s.reconcile()
	s.Len(s.sync.Snapshot().Completed, 2)

	// A remote snapshot missing q2 must not remove it locally
	smaller := []model.QuestionID{"q1"}
	s.setRemote(model.TeamUpdate{CompletedPuzzles: &smaller})
	s.reconcile()
	s.Len(s.sync.Snapshot().Completed, 2)
}

func (s *SynchronizerSuite) TestMergeIsIdempotent() {
	s.reconcile()

	completed := []model.QuestionID{"q1"}
	s.setRemote(model.TeamUpdate{CompletedPuzzles: &completed})

	for i := 0; i < 5; i++ {
		s.reconcile()
	}

	s.Equal([]model.QuestionID{"q1"}, s.sync.Snapshot().Completed)
}

func (s *SynchronizerSuite) TestPointsAreLastReadWins() {
	s.reconcile()

	points := 80
	s.setRemote(model.TeamUpdate{Points: &points})
	s.reconcile()
	s.Equal(80, s.sync.Snapshot().Points)

	// Even a lower remote value is adopted; the row is the source of truth
	lower := 30
	s.setRemote(model.TeamUpdate{Points: &lower})
	s.reconcile()
	s.Equal(30, s.sync.Snapshot().Points)
}

func (s *SynchronizerSuite) TestEndTimeJitterIsIgnored() {
	s.reconcile()
	original := s.sync.Snapshot().EndTime

	jittered := original.Add(300 * time.Millisecond)
	s.setRemote(model.TeamUpdate{EndTime: &jittered})
	s.reconcile()
	s.Equal(original, s.sync.Snapshot().EndTime)

	moved := original.Add(-10 * time.Minute)
	s.setRemote(model.TeamUpdate{EndTime: &moved})
	s.reconcile()
	s.Equal(moved, s.sync.Snapshot().EndTime)
}

func (s *SynchronizerSuite) TestReconcileIsRateLimited() {
	s.reconcile()
	fetches := s.store.getTeamCalls

	// Within the gap: a successful no-op, no store traffic
	s.Require().NoError(s.sync.Reconcile(s.ctx))
	s.Require().NoError(s.sync.Reconcile(s.ctx))
	s.Equal(fetches, s.store.getTeamCalls)

	s.clock.Advance(2 * time.Second)
	s.Require().NoError(s.sync.Reconcile(s.ctx))
	s.Greater(s.store.getTeamCalls, fetches)
}

// Ending

func (s *SynchronizerSuite) TestExpiryTransitionsToEndedExactlyOnce() {
	s.reconcile()

	s.clock.Advance(121 * time.Minute)
	for i := 0; i < 5; i++ {
		s.reconcile()
	}

	s.Equal(StateEnded, s.sync.CurrentState())
	s.Equal(1, s.endedCt)
}

func (s *SynchronizerSuite) TestEndGameEarly() {
	s.reconcile()

	s.Require().NoError(s.sync.EndGameEarly(s.ctx))

	s.Equal(StateEnded, s.sync.CurrentState())
	s.Equal(1, s.endedCt)
	s.Equal(s.clock.Now(), s.sync.Snapshot().EndTime)

	// The moved end time is shared so teammates end too
	remote := s.remoteTeam()
	s.Require().NotNil(remote.EndTime)
	s.Equal(s.clock.Now(), *remote.EndTime)

	// Re-entry is a no-op
	s.Require().NoError(s.sync.EndGameEarly(s.ctx))
	s.Equal(1, s.endedCt)
}

func (s *SynchronizerSuite) TestSubmitAfterEndedFails() {
	s.reconcile()
	s.Require().NoError(s.sync.EndGameEarly(s.ctx))

	_, err := s.sync.SubmitAnswer(s.ctx, "q1", "Enigma", 0)
	s.ErrorIs(err, model.ErrGameEnded)
}

// Answer submission

func (s *SynchronizerSuite) TestSubmitCorrectAnswer() {
	s.reconcile()

	result, err := s.sync.SubmitAnswer(s.ctx, "q1", "enigma", 0)
	s.Require().NoError(err)

	s.Equal(OutcomeCorrect, result.Outcome)
	s.Equal(50, result.Awarded)
	s.Equal(50, result.TotalPoints)

	// Optimistic local update happened without waiting for a poll
	snap := s.sync.Snapshot()
	s.Equal(50, snap.Points)
	s.Equal([]model.QuestionID{"q1"}, snap.Completed)

	// And the shared row carries both fields from the single write
	remote := s.remoteTeam()
	s.Equal(50, remote.Points)
	s.Equal([]model.QuestionID{"q1"}, remote.CompletedPuzzles)
}

func (s *SynchronizerSuite) TestSubmitAppliesHintPenalty() {
	s.reconcile()

	result, err := s.sync.SubmitAnswer(s.ctx, "q2", "Turing", 2)
	s.Require().NoError(err)
	s.Equal(190, result.Awarded)
}

func (s *SynchronizerSuite) TestSubmitIncorrectAnswerMutatesNothing() {
	s.reconcile()

	result, err := s.sync.SubmitAnswer(s.ctx, "q1", "wrong", 0)
	s.Require().NoError(err)
	s.Equal(OutcomeIncorrect, result.Outcome)
	s.Equal(0, result.Awarded)

	s.Equal(0, s.remoteTeam().Points)
	s.Empty(s.sync.Snapshot().Completed)
}

func (s *SynchronizerSuite) TestSubmitUnknownQuestion() {
	s.reconcile()

	_, err := s.sync.SubmitAnswer(s.ctx, "missing", "x", 0)
	s.ErrorIs(err, model.ErrQuestionNotFound)
}

func (s *SynchronizerSuite) TestAlreadySolvedShortCircuitsLocally() {
	s.reconcile()

	_, err := s.sync.SubmitAnswer(s.ctx, "q1", "Enigma", 0)
	s.Require().NoError(err)

	verifications := s.store.getQuestionCalls
	writes := s.store.updateTeamCalls

	result, err := s.sync.SubmitAnswer(s.ctx, "q1", "Enigma", 0)
	s.Require().NoError(err)
	s.Equal(OutcomeAlreadySolved, result.Outcome)
	s.Equal(0, result.Awarded)

	// No verification round-trip and no write happened
	s.Equal(verifications, s.store.getQuestionCalls)
	s.Equal(writes, s.store.updateTeamCalls)
	s.Equal(50, s.remoteTeam().Points)
}

func (s *SynchronizerSuite) TestTeammateWinningRaceAwardsNothing() {
	s.reconcile()

	// A teammate solved q1 after our local check would have passed
	points := 50
	completed := []model.QuestionID{"q1"}
	s.setRemote(model.TeamUpdate{Points: &points, CompletedPuzzles: &completed})

	result, err := s.sync.SubmitAnswer(s.ctx, "q1", "Enigma", 0)
	s.Require().NoError(err)
	s.Equal(OutcomeAlreadySolved, result.Outcome)
	s.Equal(0, result.Awarded)
	s.Equal(50, result.TotalPoints)

	// The teammate's result was merged, not double-counted
	s.Equal(50, s.remoteTeam().Points)
	s.Equal([]model.QuestionID{"q1"}, s.sync.Snapshot().Completed)
}

// Polling loop

func (s *SynchronizerSuite) TestStopIsIdempotent() {
	s.sync.Start(s.ctx)
	s.sync.Stop()
	s.sync.Stop()

	select {
	case <-s.sync.Done():
	case <-time.After(2 * time.Second):
		s.Fail("polling loop did not exit after Stop")
	}
}

func (s *SynchronizerSuite) TestStartRespectsContextCancellation() {
	ctx, cancel := context.WithCancel(s.ctx)
	s.sync.Start(ctx)
	cancel()

	select {
	case <-s.sync.Done():
	case <-time.After(2 * time.Second):
		s.Fail("polling loop did not exit after context cancellation")
	}
}
