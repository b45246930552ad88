package sync

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/enigma29/cluehunt/internal/dependencies/clock"
	"github.com/enigma29/cluehunt/internal/model"
	"github.com/enigma29/cluehunt/internal/services/questions"
	"github.com/enigma29/cluehunt/internal/storage"
)

// State is the session lifecycle phase as seen by one client
type State string

const (
	// StateInitializing means the team row has not been fetched yet
	StateInitializing State = "initializing"
	// StateActive means the row is loaded and the end time is in the future
	StateActive State = "active"
	// StateEnded is terminal: only the leaderboard remains
	StateEnded State = "ended"
)

// Config holds synchronizer tuning knobs
type Config struct {
	// PollInterval is how often the shared team row is re-fetched
	PollInterval time.Duration
	// GameDuration is the default countdown written by the first client to
	// observe a missing end time
	GameDuration time.Duration
	// ReconcileGap bounds how often reconciliation may run no matter how
	// many triggers fire
	ReconcileGap time.Duration
	// EndTimeJitter is the delta below which a differing remote end time is
	// treated as serialization noise and ignored
	EndTimeJitter time.Duration
	// OnEnded is invoked exactly once when the session reaches StateEnded
	OnEnded func()
}

// DefaultConfig returns the standard synchronizer settings
func DefaultConfig() Config {
	return Config{
		PollInterval:  5 * time.Second,
		GameDuration:  120 * time.Minute,
		ReconcileGap:  time.Second,
		EndTimeJitter: time.Second,
	}
}

// Outcome classifies an answer submission
type Outcome string

const (
	OutcomeCorrect   Outcome = "correct"
	OutcomeIncorrect Outcome = "incorrect"
	// OutcomeAlreadySolved is positive feedback, not an error: a teammate
	// got there first
	OutcomeAlreadySolved Outcome = "already_solved"
)

// Result summarizes one answer submission
type Result struct {
	Outcome     Outcome
	Awarded     int
	TotalPoints int
}

// Snapshot is a copy of the local session state for rendering
type Snapshot struct {
	State     State
	Points    int
	Completed []model.QuestionID
	EndTime   time.Time
	HasEnd    bool
}

// Synchronizer keeps one client's view of the shared team row consistent.
// There is no lock in the store and no server between the teammates; the
// only safety comes from the merge rules: the completed set only ever
// grows (union), the remote points total is adopted verbatim, and the end
// time follows the shared row. One synchronizer owns one polling goroutine
// for the life of a session.
type Synchronizer struct {
	storage   storage.Storage
	questions *questions.Service
	clock     clock.Clock
	logger    *slog.Logger
	cfg       Config

	teamID model.TeamID

	mu            sync.Mutex
	state         State
	points        int
	completed     map[model.QuestionID]struct{}
	completedSeq  []model.QuestionID
	endTime       time.Time
	lastReconcile time.Time
	endedOnce     sync.Once

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// New creates a synchronizer for the given team row
func New(teamID model.TeamID, store storage.Storage, qs *questions.Service, clk clock.Clock, cfg Config, logger *slog.Logger) *Synchronizer {
	defaults := DefaultConfig()
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaults.PollInterval
	}
	if cfg.GameDuration <= 0 {
		cfg.GameDuration = defaults.GameDuration
	}
	if cfg.ReconcileGap <= 0 {
		cfg.ReconcileGap = defaults.ReconcileGap
	}
	if cfg.EndTimeJitter <= 0 {
		cfg.EndTimeJitter = defaults.EndTimeJitter
	}

	return &Synchronizer{
		storage:   store,
		questions: qs,
		clock:     clk,
		logger:    logger,
		cfg:       cfg,
		teamID:    teamID,
		state:     StateInitializing,
		completed: make(map[model.QuestionID]struct{}),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start runs the polling loop until the session ends, the context is
// cancelled, or Stop is called. Errors from individual poll cycles are
// logged and swallowed; the next cycle retries.
func (s *Synchronizer) Start(ctx context.Context) {
	go func() {
		defer close(s.doneCh)

		// Prime immediately so the session leaves Initializing without
		// waiting a full interval
		s.reconcileAndLog(ctx)

		ticker := time.NewTicker(s.cfg.PollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopCh:
				return
			case <-ticker.C:
				s.reconcileAndLog(ctx)
				if s.CurrentState() == StateEnded {
					return
				}
			}
		}
	}()
}

func (s *Synchronizer) reconcileAndLog(ctx context.Context) {
	if err := s.Reconcile(ctx); err != nil {
		s.logger.Warn("reconcile failed, will retry next cycle",
			slog.String("team_id", string(s.teamID)),
			slog.String("error", err.Error()))
	}
}

// Stop tears the polling loop down. Safe to call more than once and safe
// to call before Start.
func (s *Synchronizer) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// Done is closed once the polling loop has fully exited
func (s *Synchronizer) Done() <-chan struct{} {
	return s.doneCh
}

// CurrentState returns the session phase
func (s *Synchronizer) CurrentState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns a copy of the local state
func (s *Synchronizer) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		State:     s.state,
		Points:    s.points,
		Completed: append([]model.QuestionID(nil), s.completedSeq...),
		EndTime:   s.endTime,
		HasEnd:    !s.endTime.IsZero(),
	}
}

// Reconcile fetches the shared row and merges it into local state. It is
// rate-limited: calls arriving within ReconcileGap of the previous run are
// successful no-ops, so overlapping triggers cannot thrash the state or
// the store. Once the session has ended it is also a no-op.
func (s *Synchronizer) Reconcile(ctx context.Context) error {
	now := s.clock.Now()

	s.mu.Lock()
	if s.state == StateEnded {
		s.mu.Unlock()
		return nil
	}
	if !s.lastReconcile.IsZero() && now.Sub(s.lastReconcile) < s.cfg.ReconcileGap {
		s.mu.Unlock()
		return nil
	}
	s.lastReconcile = now
	s.mu.Unlock()

	team, err := s.storage.GetTeam(ctx, s.teamID)
	if err != nil {
		return err
	}

	if team.EndTime == nil {
		team, err = s.initializeEndTime(ctx, now)
		if err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateInitializing {
		s.state = StateActive
	}
	s.mergeLocked(team)

	if !s.endTime.IsZero() && !now.Before(s.endTime) {
		s.transitionEndedLocked("time expired")
	}
	return nil
}

// initializeEndTime lazily starts the shared countdown. The first client
// to observe the missing end time writes now + GameDuration; to keep
// clock-skewed clients from fighting over it, the row is re-read
// immediately before writing and the write is skipped if someone else
// already set it.
func (s *Synchronizer) initializeEndTime(ctx context.Context, now time.Time) (*model.Team, error) {
	team, err := s.storage.GetTeam(ctx, s.teamID)
	if err != nil {
		return nil, err
	}
	if team.EndTime != nil {
		return team, nil
	}

	end := now.Add(s.cfg.GameDuration)
	s.logger.Info("setting shared game end time",
		slog.String("team_id", string(s.teamID)),
		slog.Time("end_time", end))

	return s.storage.UpdateTeam(ctx, s.teamID, model.TeamUpdate{EndTime: &end})
}

// mergeLocked folds a fetched row into local state. Union for the
// completed set, last-read-wins for points, jitter-guarded adoption for
// the end time; applying any sequence of snapshots in any order converges.
func (s *Synchronizer) mergeLocked(team *model.Team) {
	for _, id := range team.CompletedPuzzles {
		if _, ok := s.completed[id]; !ok {
			s.completed[id] = struct{}{}
			s.completedSeq = append(s.completedSeq, id)
		}
	}

	s.points = team.Points

	if team.EndTime != nil {
		remote := *team.EndTime
		delta := remote.Sub(s.endTime)
		if delta < 0 {
			delta = -delta
		}
		if s.endTime.IsZero() || delta >= s.cfg.EndTimeJitter {
			s.endTime = remote
		}
	}
}

func (s *Synchronizer) transitionEndedLocked(reason string) {
	if s.state == StateEnded {
		return
	}
	s.state = StateEnded
	s.logger.Info("game ended",
		slog.String("team_id", string(s.teamID)),
		slog.String("reason", reason))
	if s.cfg.OnEnded != nil {
		s.endedOnce.Do(s.cfg.OnEnded)
	}
}

// SubmitAnswer runs the answer protocol for one question:
//
//  1. if the local completed set already has the id, report already-solved
//     without touching the store at all;
//  2. verify the answer against the question store; a miss mutates nothing;
//  3. re-read the shared row; if a teammate completed the id since step 1,
//     report already-solved and award nothing;
//  4. otherwise append the id and add the points in a single partial write,
//     and adopt the result optimistically without waiting for the next poll.
//
// Step 3 and 4 are kept as close together as the store allows; with no
// transaction spanning them, two teammates solving the same question in the
// same instant can still double-credit. That window is documented, not
// detected.
func (s *Synchronizer) SubmitAnswer(ctx context.Context, id model.QuestionID, answer string, hintsUsed int) (Result, error) {
	s.mu.Lock()
	if s.state == StateEnded {
		s.mu.Unlock()
		return Result{}, model.ErrGameEnded
	}
	if _, solved := s.completed[id]; solved {
		points := s.points
		s.mu.Unlock()
		return Result{Outcome: OutcomeAlreadySolved, TotalPoints: points}, nil
	}
	s.mu.Unlock()

	correct, question, err := s.questions.CheckAnswer(ctx, id, answer)
	if err != nil {
		return Result{}, err
	}
	if !correct {
		s.mu.Lock()
		points := s.points
		s.mu.Unlock()
		return Result{Outcome: OutcomeIncorrect, TotalPoints: points}, nil
	}

	awarded := questions.AwardPoints(question, hintsUsed)

	team, err := s.storage.GetTeam(ctx, s.teamID)
	if err != nil {
		return Result{}, err
	}

	if team.HasCompleted(id) {
		// A teammate won the race since the local check; take their result
		// instead of double-counting
		s.mu.Lock()
		s.mergeLocked(team)
		points := s.points
		s.mu.Unlock()
		return Result{Outcome: OutcomeAlreadySolved, TotalPoints: points}, nil
	}

	completed := append(append([]model.QuestionID(nil), team.CompletedPuzzles...), id)
	points := team.Points + awarded

	updated, err := s.storage.UpdateTeam(ctx, s.teamID, model.TeamUpdate{
		Points:           &points,
		CompletedPuzzles: &completed,
	})
	if err != nil {
		return Result{}, err
	}

	s.logger.Info("answer accepted",
		slog.String("team_id", string(s.teamID)),
		slog.String("question_id", string(id)),
		slog.Int("awarded", awarded))

	s.mu.Lock()
	s.mergeLocked(updated)
	total := s.points
	s.mu.Unlock()

	return Result{Outcome: OutcomeCorrect, Awarded: awarded, TotalPoints: total}, nil
}

// EndGameEarly writes the shared end time to now and transitions locally.
// Teammates observe the moved end time on their next poll.
func (s *Synchronizer) EndGameEarly(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateEnded {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	now := s.clock.Now()
	updated, err := s.storage.UpdateTeam(ctx, s.teamID, model.TeamUpdate{EndTime: &now})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.mergeLocked(updated)
	s.endTime = now
	s.transitionEndedLocked("ended early")
	return nil
}
