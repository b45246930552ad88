package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/enigma29/cluehunt/internal/model"
	"github.com/enigma29/cluehunt/internal/storage"
)

// updateTeamRetries bounds the optimistic WATCH retry loop in UpdateTeam
const updateTeamRetries = 5

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Access code operations

func (s *Storage) GetAccessCode(ctx context.Context, code string) (*model.AccessCode, error) {
	data, err := s.client.Get(ctx, accessCodeKey(code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrInvalidCode
		}
		return nil, err
	}

	var ac model.AccessCode
	if err := json.Unmarshal(data, &ac); err != nil {
		return nil, err
	}
	return &ac, nil
}

func (s *Storage) SaveAccessCode(ctx context.Context, ac *model.AccessCode) error {
	data, err := json.Marshal(ac)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, accessCodeKey(ac.Code), data, 0)
	pipe.SAdd(ctx, accessCodeIndexKey(), ac.Code)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) ListAccessCodes(ctx context.Context) ([]*model.AccessCode, error) {
	codes, err := s.client.SMembers(ctx, accessCodeIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(codes)

	result := make([]*model.AccessCode, 0, len(codes))
	for _, code := range codes {
		ac, err := s.GetAccessCode(ctx, code)
		if errors.Is(err, model.ErrInvalidCode) {
			continue
		}
		if err != nil {
			return nil, err
		}
		result = append(result, ac)
	}
	return result, nil
}

// Team operations

func (s *Storage) CreateTeam(ctx context.Context, team *model.Team) error {
	data, err := json.Marshal(team)
	if err != nil {
		return err
	}

	// Row plus identity and listing indexes in one round trip. The identity
	// index is last-writer-wins, so after a join race the newest row is the
	// one lookups see.
	pipe := s.client.Pipeline()
	pipe.Set(ctx, teamKey(team.ID), data, 0)
	pipe.Set(ctx, teamIdentityKey(team.AccessCode, team.Name), string(team.ID), 0)
	pipe.RPush(ctx, teamsByCodeKey(team.AccessCode), string(team.ID))
	pipe.RPush(ctx, teamsBySectionKey(team.Section), string(team.ID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetTeam(ctx context.Context, id model.TeamID) (*model.Team, error) {
	data, err := s.client.Get(ctx, teamKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrTeamNotFound
		}
		return nil, err
	}

	var team model.Team
	if err := json.Unmarshal(data, &team); err != nil {
		return nil, err
	}
	return &team, nil
}

func (s *Storage) FindTeam(ctx context.Context, accessCode, teamName string) (*model.Team, error) {
	id, err := s.client.Get(ctx, teamIdentityKey(accessCode, teamName)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrTeamNotFound
		}
		return nil, err
	}
	return s.GetTeam(ctx, model.TeamID(id))
}

func (s *Storage) FindTeamsByAccessCode(ctx context.Context, accessCode string) ([]*model.Team, error) {
	return s.teamsFromList(ctx, teamsByCodeKey(accessCode))
}

func (s *Storage) ListTeamsBySection(ctx context.Context, section string) ([]*model.Team, error) {
	return s.teamsFromList(ctx, teamsBySectionKey(section))
}

func (s *Storage) teamsFromList(ctx context.Context, listKey string) ([]*model.Team, error) {
	ids, err := s.client.LRange(ctx, listKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	teams := make([]*model.Team, 0, len(ids))
	for _, id := range ids {
		team, err := s.GetTeam(ctx, model.TeamID(id))
		if errors.Is(err, model.ErrTeamNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	return teams, nil
}

// UpdateTeam applies a partial update under an optimistic WATCH transaction:
// the row is re-read and rewritten atomically, so fields the caller did not
// set are never clobbered even when another client writes between the read
// and the write. This protects field-level isolation only; the application
// level read-check-write race on completed puzzles documented in the sync
// service is unaffected.
func (s *Storage) UpdateTeam(ctx context.Context, id model.TeamID, update model.TeamUpdate) (*model.Team, error) {
	key := teamKey(id)
	var updated *model.Team

	txn := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return model.ErrTeamNotFound
			}
			return err
		}

		var team model.Team
		if err := json.Unmarshal(data, &team); err != nil {
			return err
		}

		update.Apply(&team)

		out, err := json.Marshal(&team)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, 0)
			return nil
		})
		if err != nil {
			return err
		}

		updated = &team
		return nil
	}

	for i := 0; i < updateTeamRetries; i++ {
		err := s.client.Watch(ctx, txn, key)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, redis.TxFailedErr
}

// Question operations

func (s *Storage) GetQuestion(ctx context.Context, id model.QuestionID) (*model.Question, error) {
	data, err := s.client.Get(ctx, questionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrQuestionNotFound
		}
		return nil, err
	}

	var q model.Question
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

func (s *Storage) ListActiveQuestions(ctx context.Context) ([]*model.Question, error) {
	all, err := s.ListQuestions(ctx)
	if err != nil {
		return nil, err
	}

	active := all[:0]
	for _, q := range all {
		if q.Active {
			active = append(active, q)
		}
	}
	return active, nil
}

func (s *Storage) ListQuestions(ctx context.Context) ([]*model.Question, error) {
	ids, err := s.client.SMembers(ctx, questionIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)

	questions := make([]*model.Question, 0, len(ids))
	for _, id := range ids {
		q, err := s.GetQuestion(ctx, model.QuestionID(id))
		if errors.Is(err, model.ErrQuestionNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func (s *Storage) SaveQuestion(ctx context.Context, q *model.Question) error {
	data, err := json.Marshal(q)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, questionKey(q.ID), data, 0)
	pipe.SAdd(ctx, questionIndexKey(), string(q.ID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) DeleteQuestion(ctx context.Context, id model.QuestionID) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, questionKey(id))
	pipe.SRem(ctx, questionIndexKey(), string(id))
	_, err := pipe.Exec(ctx)
	return err
}

// Admin user operations

func (s *Storage) GetAdminUser(ctx context.Context, username string) (*model.AdminUser, error) {
	data, err := s.client.Get(ctx, adminKey(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAdminNotFound
		}
		return nil, err
	}

	var admin model.AdminUser
	if err := json.Unmarshal(data, &admin); err != nil {
		return nil, err
	}
	return &admin, nil
}

func (s *Storage) SaveAdminUser(ctx context.Context, admin *model.AdminUser) error {
	data, err := json.Marshal(admin)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, adminKey(admin.Username), data, 0).Err()
}
