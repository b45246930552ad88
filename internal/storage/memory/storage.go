package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/enigma29/cluehunt/internal/model"
	"github.com/enigma29/cluehunt/internal/storage"
)

// Storage is an in-memory implementation of the storage interface. Rows are
// deep-copied on the way in and out: clients synchronize through snapshots
// of the shared row, never through aliased pointers, which keeps the
// in-memory store honest about the remote-store behavior it stands in for.
type Storage struct {
	mu sync.RWMutex

	accessCodes map[string]*model.AccessCode
	teams       map[model.TeamID]*model.Team
	teamOrder   []model.TeamID
	questions   map[model.QuestionID]*model.Question
	admins      map[string]*model.AdminUser
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		accessCodes: make(map[string]*model.AccessCode),
		teams:       make(map[model.TeamID]*model.Team),
		questions:   make(map[model.QuestionID]*model.Question),
		admins:      make(map[string]*model.AdminUser),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Access code operations

func (s *Storage) GetAccessCode(ctx context.Context, code string) (*model.AccessCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ac, ok := s.accessCodes[code]
	if !ok {
		return nil, model.ErrInvalidCode
	}
	copied := *ac
	return &copied, nil
}

func (s *Storage) SaveAccessCode(ctx context.Context, ac *model.AccessCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *ac
	s.accessCodes[ac.Code] = &copied
	return nil
}

func (s *Storage) ListAccessCodes(ctx context.Context) ([]*model.AccessCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	codes := make([]*model.AccessCode, 0, len(s.accessCodes))
	for _, ac := range s.accessCodes {
		copied := *ac
		codes = append(codes, &copied)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i].Code < codes[j].Code })
	return codes, nil
}

// Team operations

func (s *Storage) CreateTeam(ctx context.Context, team *model.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams[team.ID] = team.Clone()
	s.teamOrder = append(s.teamOrder, team.ID)
	return nil
}

func (s *Storage) GetTeam(ctx context.Context, id model.TeamID) (*model.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	team, ok := s.teams[id]
	if !ok {
		return nil, model.ErrTeamNotFound
	}
	return team.Clone(), nil
}

func (s *Storage) FindTeam(ctx context.Context, accessCode, teamName string) (*model.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	// Scan in creation order; on duplicates from a join race the most
	// recently created row wins, matching the remote store's query
	for i := len(s.teamOrder) - 1; i >= 0; i-- {
		team := s.teams[s.teamOrder[i]]
		if team.AccessCode == accessCode && strings.EqualFold(team.Name, teamName) {
			return team.Clone(), nil
		}
	}
	return nil, model.ErrTeamNotFound
}

func (s *Storage) FindTeamsByAccessCode(ctx context.Context, accessCode string) ([]*model.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var teams []*model.Team
	for _, id := range s.teamOrder {
		if team := s.teams[id]; team.AccessCode == accessCode {
			teams = append(teams, team.Clone())
		}
	}
	return teams, nil
}

func (s *Storage) UpdateTeam(ctx context.Context, id model.TeamID, update model.TeamUpdate) (*model.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	team, ok := s.teams[id]
	if !ok {
		return nil, model.ErrTeamNotFound
	}
	update.Apply(team)
	return team.Clone(), nil
}

func (s *Storage) ListTeamsBySection(ctx context.Context, section string) ([]*model.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var teams []*model.Team
	for _, id := range s.teamOrder {
		if team := s.teams[id]; team.Section == section {
			teams = append(teams, team.Clone())
		}
	}
	return teams, nil
}

// Question operations

func (s *Storage) GetQuestion(ctx context.Context, id model.QuestionID) (*model.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.questions[id]
	if !ok {
		return nil, model.ErrQuestionNotFound
	}
	return q.Clone(), nil
}

func (s *Storage) ListActiveQuestions(ctx context.Context) ([]*model.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var questions []*model.Question
	for _, q := range s.questions {
		if q.Active {
			questions = append(questions, q.Clone())
		}
	}
	sortQuestions(questions)
	return questions, nil
}

func (s *Storage) ListQuestions(ctx context.Context) ([]*model.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	questions := make([]*model.Question, 0, len(s.questions))
	for _, q := range s.questions {
		questions = append(questions, q.Clone())
	}
	sortQuestions(questions)
	return questions, nil
}

func (s *Storage) SaveQuestion(ctx context.Context, q *model.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions[q.ID] = q.Clone()
	return nil
}

func (s *Storage) DeleteQuestion(ctx context.Context, id model.QuestionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.questions, id)
	return nil
}

// Admin user operations

func (s *Storage) GetAdminUser(ctx context.Context, username string) (*model.AdminUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	admin, ok := s.admins[username]
	if !ok {
		return nil, model.ErrAdminNotFound
	}
	copied := *admin
	return &copied, nil
}

func (s *Storage) SaveAdminUser(ctx context.Context, admin *model.AdminUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *admin
	s.admins[admin.Username] = &copied
	return nil
}

// sortQuestions gives map-backed listings a stable order
func sortQuestions(questions []*model.Question) {
	sort.Slice(questions, func(i, j int) bool { return questions[i].ID < questions[j].ID })
}
