package leaderboard

import (
	"context"
	"log/slog"
	"sort"

	"github.com/enigma29/cluehunt/internal/model"
	"github.com/enigma29/cluehunt/internal/storage"
)

const maxEntries = 10

// Entry is one leaderboard row
type Entry struct {
	TeamName  string   `json:"team_name"`
	Points    int      `json:"points"`
	Members   []string `json:"members"`
	Completed int      `json:"completed"`
}

// Service aggregates team rows into a ranked leaderboard
type Service struct {
	storage storage.Storage
	logger  *slog.Logger
}

func New(store storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: store,
		logger:  logger,
	}
}

// Rank returns the top teams of a section in descending points order.
// Teams sharing a name collapse to the single highest-scoring row, which
// absorbs the duplicate rows a registration race can leave behind. Ties
// keep store order.
func (s *Service) Rank(ctx context.Context, section string) ([]Entry, error) {
	teams, err := s.storage.ListTeamsBySection(ctx, section)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*model.Team)
	order := make([]string, 0, len(teams))
	for _, team := range teams {
		best, seen := byName[team.Name]
		if !seen {
			byName[team.Name] = team
			order = append(order, team.Name)
			continue
		}
		if team.Points > best.Points {
			byName[team.Name] = team
		}
	}

	entries := make([]Entry, 0, len(order))
	for _, name := range order {
		team := byName[name]
		entries = append(entries, Entry{
			TeamName:  team.Name,
			Points:    team.Points,
			Members:   append([]string(nil), team.Members...),
			Completed: len(team.CompletedPuzzles),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Points > entries[j].Points
	})

	if len(entries) > maxEntries {
		entries = entries[:maxEntries]
	}
	return entries, nil
}
