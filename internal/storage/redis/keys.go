package redis

import (
	"fmt"
	"strings"

	"github.com/enigma29/cluehunt/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "cluehunt"

// accessCodeKey returns the Redis key for an AccessCode
func accessCodeKey(code string) string {
	return fmt.Sprintf("%s:access_code:%s", keyPrefix, code)
}

// accessCodeIndexKey returns the Redis key for the SET of all access codes
func accessCodeIndexKey() string {
	return fmt.Sprintf("%s:idx:access_codes", keyPrefix)
}

// teamKey returns the Redis key for a Team row
func teamKey(id model.TeamID) string {
	return fmt.Sprintf("%s:team:%s", keyPrefix, id)
}

// teamIdentityKey returns the Redis key for the (access code, team name) ->
// team id index; the name half is lowercased since team identity is
// case-insensitive on the name
func teamIdentityKey(accessCode, teamName string) string {
	return fmt.Sprintf("%s:idx:team_identity:%s:%s", keyPrefix, accessCode, strings.ToLower(teamName))
}

// teamsByCodeKey returns the Redis key for the LIST of team ids under an
// access code, in creation order
func teamsByCodeKey(accessCode string) string {
	return fmt.Sprintf("%s:idx:teams_by_code:%s", keyPrefix, accessCode)
}

// teamsBySectionKey returns the Redis key for the LIST of team ids in a
// section, in creation order
func teamsBySectionKey(section string) string {
	return fmt.Sprintf("%s:idx:teams_by_section:%s", keyPrefix, section)
}

// questionKey returns the Redis key for a Question
func questionKey(id model.QuestionID) string {
	return fmt.Sprintf("%s:question:%s", keyPrefix, id)
}

// questionIndexKey returns the Redis key for the SET of all question ids
func questionIndexKey() string {
	return fmt.Sprintf("%s:idx:questions", keyPrefix)
}

// adminKey returns the Redis key for an AdminUser
func adminKey(username string) string {
	return fmt.Sprintf("%s:admin:%s", keyPrefix, username)
}
