package storage

import (
	"context"

	"github.com/enigma29/cluehunt/internal/model"
)

// Storage is the contract over the shared remote store. It exposes row-level
// reads and writes only; no multi-row transactions are available to
// application code, so all mutation protocols built on top of it must stay
// safe under read-modify-write races.
type Storage interface {
	// Access code operations
	GetAccessCode(ctx context.Context, code string) (*model.AccessCode, error)
	SaveAccessCode(ctx context.Context, ac *model.AccessCode) error
	ListAccessCodes(ctx context.Context) ([]*model.AccessCode, error)

	// Team operations
	CreateTeam(ctx context.Context, team *model.Team) error
	GetTeam(ctx context.Context, id model.TeamID) (*model.Team, error)
	// FindTeam looks a team up by its (access code, team name) identity
	FindTeam(ctx context.Context, accessCode, teamName string) (*model.Team, error)
	FindTeamsByAccessCode(ctx context.Context, accessCode string) ([]*model.Team, error)
	// UpdateTeam applies a partial update and returns the updated row.
	// Fields not set on the update are preserved, including writes other
	// clients made concurrently.
	UpdateTeam(ctx context.Context, id model.TeamID, update model.TeamUpdate) (*model.Team, error)
	ListTeamsBySection(ctx context.Context, section string) ([]*model.Team, error)

	// Question operations
	GetQuestion(ctx context.Context, id model.QuestionID) (*model.Question, error)
	ListActiveQuestions(ctx context.Context) ([]*model.Question, error)
	ListQuestions(ctx context.Context) ([]*model.Question, error)
	SaveQuestion(ctx context.Context, q *model.Question) error
	DeleteQuestion(ctx context.Context, id model.QuestionID) error

	// Admin user operations
	GetAdminUser(ctx context.Context, username string) (*model.AdminUser, error)
	SaveAdminUser(ctx context.Context, admin *model.AdminUser) error
}
