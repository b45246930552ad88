package admin

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/enigma29/cluehunt/internal/dependencies/random"
	"github.com/enigma29/cluehunt/internal/model"
	"github.com/enigma29/cluehunt/internal/storage"
)

const (
	accessCodeLength = 8
	// No lookalike characters so codes survive being read off a projector
	accessCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
)

// Service covers the game-master surface: credentials, the question bank,
// and access-code management
type Service struct {
	storage storage.Storage
	random  random.Random
	logger  *slog.Logger
}

func New(store storage.Storage, rand random.Random, logger *slog.Logger) *Service {
	return &Service{
		storage: store,
		random:  rand,
		logger:  logger,
	}
}

// CreateAdmin stores a new admin user with a bcrypt password hash
func (s *Service) CreateAdmin(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return model.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	s.logger.Info("creating admin user", slog.String("username", username))

	return s.storage.SaveAdminUser(ctx, &model.AdminUser{
		Username:     username,
		PasswordHash: string(hash),
		Active:       true,
	})
}

// ValidateCredentials checks a username and password pair. An unknown user
// and a wrong password are indistinguishable to the caller.
func (s *Service) ValidateCredentials(ctx context.Context, username, password string) error {
	admin, err := s.storage.GetAdminUser(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, model.ErrAdminNotFound) {
			return model.ErrInvalidCredentials
		}
		return err
	}
	if !admin.Active {
		return model.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return model.ErrInvalidCredentials
	}
	return nil
}

// UpsertQuestion validates and stores a question
func (s *Service) UpsertQuestion(ctx context.Context, q *model.Question) error {
	q.Prompt = strings.TrimSpace(q.Prompt)
	q.Answer = strings.TrimSpace(q.Answer)
	if q.ID == "" || q.Prompt == "" || q.Answer == "" {
		return model.ErrInvalidQuestion
	}
	if !q.Difficulty.Valid() {
		return model.ErrInvalidDifficulty
	}
	if len(q.Hints) > model.MaxHints {
		q.Hints = q.Hints[:model.MaxHints]
	}

	s.logger.Info("saving question",
		slog.String("question_id", string(q.ID)),
		slog.String("difficulty", string(q.Difficulty)))

	return s.storage.SaveQuestion(ctx, q)
}

// DeleteQuestion removes a question from the bank
func (s *Service) DeleteQuestion(ctx context.Context, id model.QuestionID) error {
	return s.storage.DeleteQuestion(ctx, id)
}

// ListQuestions returns the whole bank, inactive rows included
func (s *Service) ListQuestions(ctx context.Context) ([]*model.Question, error) {
	return s.storage.ListQuestions(ctx)
}

// CreateAccessCode mints a fresh code for a section. A caller-supplied code
// is honored if it is not already taken; an empty code gets a generated one.
func (s *Service) CreateAccessCode(ctx context.Context, code, section string) (*model.AccessCode, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = s.random.String(accessCodeLength, accessCodeAlphabet)
	}

	_, err := s.storage.GetAccessCode(ctx, code)
	if err == nil {
		return nil, model.ErrAccessCodeExists
	}
	if !errors.Is(err, model.ErrInvalidCode) {
		return nil, err
	}

	ac := &model.AccessCode{
		Code:    code,
		Section: strings.TrimSpace(section),
		Active:  true,
	}
	if err := s.storage.SaveAccessCode(ctx, ac); err != nil {
		return nil, err
	}

	s.logger.Info("created access code",
		slog.String("code", ac.Code),
		slog.String("section", ac.Section))
	return ac, nil
}

// SetAccessCodeActive toggles whether a code admits new sessions. Teams
// already playing under it are unaffected.
func (s *Service) SetAccessCodeActive(ctx context.Context, code string, active bool) error {
	ac, err := s.storage.GetAccessCode(ctx, strings.TrimSpace(code))
	if err != nil {
		return err
	}
	ac.Active = active
	return s.storage.SaveAccessCode(ctx, ac)
}

// ListAccessCodes returns every code, active or not
func (s *Service) ListAccessCodes(ctx context.Context) ([]*model.AccessCode, error) {
	return s.storage.ListAccessCodes(ctx)
}

// SectionTeams returns the live teams of a section for monitoring a
// running session
func (s *Service) SectionTeams(ctx context.Context, section string) ([]*model.Team, error) {
	return s.storage.ListTeamsBySection(ctx, strings.TrimSpace(section))
}
