package model

import (
	"strings"
	"time"
)

// TeamID is an opaque identifier for a team row in the store
type TeamID string

// MaxTeamMembers caps how many names a single team row may carry
const MaxTeamMembers = 8

// Team is the shared mutable aggregate for one team's attempt: one row per
// (access code, team name) pair. Every member's client polls this row and
// merges it into local state; it is never deleted by the game.
type Team struct {
	ID         TeamID    `json:"id"`
	Name       string    `json:"name"`
	AccessCode string    `json:"access_code"`
	Section    string    `json:"section"`
	// Members keeps join order; names are unique case-insensitively
	Members []string `json:"members"`
	// QuestionSeed is assigned once at registration so every member derives
	// the same question ordering
	QuestionSeed int64 `json:"question_seed"`
	Points       int   `json:"points"`
	// CompletedPuzzles has set semantics and only ever grows
	CompletedPuzzles []QuestionID `json:"completed_puzzles"`
	StartTime        time.Time    `json:"start_time"`
	// EndTime is nil until the first client to observe the gap sets it
	EndTime *time.Time `json:"end_time,omitempty"`
}

// HasCompleted reports whether the question is in the completed set
func (t *Team) HasCompleted(id QuestionID) bool {
	for _, qid := range t.CompletedPuzzles {
		if qid == id {
			return true
		}
	}
	return false
}

// HasMember reports whether name is already on the roster (case-insensitive)
func (t *Team) HasMember(name string) bool {
	for _, m := range t.Members {
		if strings.EqualFold(m, name) {
			return true
		}
	}
	return false
}

// AddMembers appends the names not already present, comparing
// case-insensitively, and returns how many were actually added
func (t *Team) AddMembers(names []string) int {
	added := 0
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || t.HasMember(name) {
			continue
		}
		t.Members = append(t.Members, name)
		added++
	}
	return added
}

// Clone returns a deep copy so callers can mutate without aliasing the
// original row
func (t *Team) Clone() *Team {
	clone := *t
	clone.Members = append([]string(nil), t.Members...)
	clone.CompletedPuzzles = append([]QuestionID(nil), t.CompletedPuzzles...)
	if t.EndTime != nil {
		end := *t.EndTime
		clone.EndTime = &end
	}
	return &clone
}

// TeamUpdate is a partial update to a team row. Only non-nil fields are
// applied; fields another client wrote concurrently are left untouched.
type TeamUpdate struct {
	Members          *[]string
	Points           *int
	CompletedPuzzles *[]QuestionID
	EndTime          *time.Time
}

// Apply copies the set fields onto the team
func (u TeamUpdate) Apply(t *Team) {
	if u.Members != nil {
		t.Members = append([]string(nil), *u.Members...)
	}
	if u.Points != nil {
		t.Points = *u.Points
	}
	if u.CompletedPuzzles != nil {
		t.CompletedPuzzles = append([]QuestionID(nil), *u.CompletedPuzzles...)
	}
	if u.EndTime != nil {
		end := *u.EndTime
		t.EndTime = &end
	}
}
