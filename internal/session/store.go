package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/enigma29/cluehunt/internal/model"
)

// Descriptor is the client-local session record. It is a cache: everything
// in it can be re-derived by querying the store by (access code, team name),
// so losing it costs a lookup, not the team's progress.
type Descriptor struct {
	TeamID     model.TeamID `json:"team_id"`
	TeamName   string       `json:"team_name"`
	AccessCode string       `json:"access_code"`
	Section    string       `json:"section"`
	MemberName string       `json:"member_name"`
}

// Complete reports whether every required field is present. A partial
// descriptor means "not logged in" and forces re-authentication.
func (d Descriptor) Complete() bool {
	return d.TeamID != "" && d.TeamName != "" && d.AccessCode != "" &&
		d.Section != "" && d.MemberName != ""
}

// ErrNoSession is returned when no usable descriptor is stored
var ErrNoSession = errors.New("no session stored")

// Store persists the session descriptor across process restarts
type Store struct {
	path string
}

// NewStore creates a session store writing to the given file path
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultPath returns the session file location under the user's home
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".cluehunt", "session.json")
	}
	return filepath.Join(home, ".cluehunt", "session.json")
}

// Load reads the stored descriptor. A missing file or an incomplete
// descriptor both yield ErrNoSession.
func (s *Store) Load() (Descriptor, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Descriptor{}, ErrNoSession
		}
		return Descriptor{}, err
	}

	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return Descriptor{}, ErrNoSession
	}
	if !d.Complete() {
		return Descriptor{}, ErrNoSession
	}
	return d, nil
}

// Save writes the descriptor, creating the directory if needed
func (s *Store) Save(d Descriptor) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0600)
}

// Clear removes the stored descriptor; clearing an absent session is not an
// error
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
