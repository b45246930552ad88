package access

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/enigma29/cluehunt/internal/dependencies/clock"
	"github.com/enigma29/cluehunt/internal/dependencies/random"
	"github.com/enigma29/cluehunt/internal/model"
	"github.com/enigma29/cluehunt/internal/session"
	"github.com/enigma29/cluehunt/internal/storage"
)

const (
	// teamIDLength is the length of generated team identifiers
	teamIDLength = 12
	// teamIDAlphabet avoids visually confusing characters
	teamIDAlphabet = "abcdefghjkmnpqrstuvwxyz23456789"
)

// Validation is the outcome of checking an access code, including whether a
// team with the requested name already exists so the caller can join it
// instead of creating a duplicate
type Validation struct {
	Section      string
	ExistingTeam *model.Team
}

// Resolver validates access codes and creates or joins team rows. On
// success it caches a session descriptor locally so the client can resume
// without re-entering the code.
type Resolver struct {
	storage  storage.Storage
	sessions *session.Store
	clock    clock.Clock
	random   random.Random
	logger   *slog.Logger
}

// NewResolver creates a new access resolver
func NewResolver(
	storage storage.Storage,
	sessions *session.Store,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Resolver {
	return &Resolver{
		storage:  storage,
		sessions: sessions,
		clock:    clock,
		random:   random,
		logger:   logger,
	}
}

// ValidateAccessCode checks the code against the store (exact match, active
// only). When teamName is non-empty it also looks for an existing team with
// that identity so the caller can take the join path.
func (r *Resolver) ValidateAccessCode(ctx context.Context, code, teamName string) (Validation, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Validation{}, model.ErrInvalidCode
	}

	ac, err := r.storage.GetAccessCode(ctx, code)
	if err != nil {
		return Validation{}, err
	}
	if !ac.Active {
		return Validation{}, model.ErrInvalidCode
	}

	v := Validation{Section: ac.Section}

	if teamName != "" {
		team, err := r.storage.FindTeam(ctx, code, teamName)
		if err == nil {
			v.ExistingTeam = team
		} else if !errors.Is(err, model.ErrTeamNotFound) {
			return Validation{}, err
		}
	}

	return v, nil
}

// RegisterOrJoinTeam creates a team row for (code, teamName), or joins the
// existing one by merging any new member names into it. The upsert is
// best-effort idempotent: two first-joiners racing can still create two
// rows, which the leaderboard's name-level dedup absorbs. On success the
// session descriptor is persisted with members[0] as the local display name.
func (r *Resolver) RegisterOrJoinTeam(ctx context.Context, code, teamName string, members []string) (*model.Team, error) {
	teamName = strings.TrimSpace(teamName)
	if teamName == "" {
		return nil, model.ErrTeamNameRequired
	}

	members = cleanNames(members)
	if len(members) == 0 {
		return nil, model.ErrNoMembers
	}
	if len(members) > model.MaxTeamMembers {
		return nil, model.ErrTooManyMembers
	}

	v, err := r.ValidateAccessCode(ctx, code, teamName)
	if err != nil {
		return nil, err
	}

	var team *model.Team
	if v.ExistingTeam != nil {
		team, err = r.joinTeam(ctx, v.ExistingTeam, members)
	} else {
		team, err = r.createTeam(ctx, code, v.Section, teamName, members)
	}
	if err != nil {
		return nil, err
	}

	descriptor := session.Descriptor{
		TeamID:     team.ID,
		TeamName:   team.Name,
		AccessCode: team.AccessCode,
		Section:    team.Section,
		MemberName: members[0],
	}
	if err := r.sessions.Save(descriptor); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	return team, nil
}

func (r *Resolver) joinTeam(ctx context.Context, team *model.Team, members []string) (*model.Team, error) {
	merged := team.Clone()
	if merged.AddMembers(members) == 0 {
		// Nothing new to write; the row as fetched is the session
		return team, nil
	}
	if len(merged.Members) > model.MaxTeamMembers {
		return nil, model.ErrTooManyMembers
	}

	r.logger.Info("joining existing team",
		slog.String("team_id", string(team.ID)),
		slog.String("team_name", team.Name))

	return r.storage.UpdateTeam(ctx, team.ID, model.TeamUpdate{Members: &merged.Members})
}

func (r *Resolver) createTeam(ctx context.Context, code, section, teamName string, members []string) (*model.Team, error) {
	team := &model.Team{
		ID:           model.TeamID("t_" + r.random.String(teamIDLength, teamIDAlphabet)),
		Name:         teamName,
		AccessCode:   code,
		Section:      section,
		Members:      members,
		QuestionSeed: SeedFromCode(code),
		StartTime:    r.clock.Now(),
	}

	r.logger.Info("registering new team",
		slog.String("team_id", string(team.ID)),
		slog.String("team_name", teamName),
		slog.String("section", section))

	if err := r.storage.CreateTeam(ctx, team); err != nil {
		return nil, err
	}
	return team, nil
}

// ResumeSession recovers the active session from the cached descriptor.
// If the stored team id no longer resolves it falls back to the
// (access code, team name) identity, then to any team under the access
// code, repairing the descriptor along the way. When every rung fails the
// caller must send the user back through the join flow.
func (r *Resolver) ResumeSession(ctx context.Context) (*model.Team, session.Descriptor, error) {
	d, err := r.sessions.Load()
	if err != nil {
		return nil, session.Descriptor{}, err
	}

	team, err := r.storage.GetTeam(ctx, d.TeamID)
	if err == nil {
		return team, d, nil
	}
	if !errors.Is(err, model.ErrTeamNotFound) {
		return nil, session.Descriptor{}, err
	}

	r.logger.Warn("stored team id is stale, re-resolving",
		slog.String("team_id", string(d.TeamID)))

	team, err = r.storage.FindTeam(ctx, d.AccessCode, d.TeamName)
	if errors.Is(err, model.ErrTeamNotFound) {
		team, err = r.lastTeamForCode(ctx, d.AccessCode)
	}
	if err != nil {
		return nil, session.Descriptor{}, err
	}

	d.TeamID = team.ID
	d.TeamName = team.Name
	d.Section = team.Section
	if err := r.sessions.Save(d); err != nil {
		return nil, session.Descriptor{}, fmt.Errorf("repairing session: %w", err)
	}
	return team, d, nil
}

func (r *Resolver) lastTeamForCode(ctx context.Context, code string) (*model.Team, error) {
	teams, err := r.storage.FindTeamsByAccessCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if len(teams) == 0 {
		return nil, model.ErrSessionStale
	}
	return teams[len(teams)-1], nil
}

// Logout discards the cached session descriptor
func (r *Resolver) Logout() error {
	return r.sessions.Clear()
}

// SeedFromCode derives the shared question seed from an access code. Every
// member hashes the same code, so every member gets the same seed without
// any coordination.
func SeedFromCode(code string) int64 {
	var hash int32
	for _, ch := range code {
		hash = hash<<5 - hash + ch
	}
	if hash < 0 {
		hash = -hash
	}
	return int64(hash)
}

func cleanNames(names []string) []string {
	var cleaned []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		duplicate := false
		for _, existing := range cleaned {
			if strings.EqualFold(existing, name) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			cleaned = append(cleaned, name)
		}
	}
	return cleaned
}
