package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/enigma29/cluehunt/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

// Access code tests

func (s *StorageSuite) TestSaveAndGetAccessCode() {
	ac := &model.AccessCode{Code: "ENIGMA29", Section: "CS101", Active: true}
	s.Require().NoError(s.storage.SaveAccessCode(s.ctx, ac))

	retrieved, err := s.storage.GetAccessCode(s.ctx, "ENIGMA29")
	s.Require().NoError(err)
	s.Equal("CS101", retrieved.Section)
	s.True(retrieved.Active)
}

func (s *StorageSuite) TestGetAccessCodeNotFound() {
	_, err := s.storage.GetAccessCode(s.ctx, "nope")
	s.ErrorIs(err, model.ErrInvalidCode)
}

func (s *StorageSuite) TestAccessCodeIsCaseSensitive() {
	ac := &model.AccessCode{Code: "ENIGMA29", Section: "CS101", Active: true}
	s.Require().NoError(s.storage.SaveAccessCode(s.ctx, ac))

	_, err := s.storage.GetAccessCode(s.ctx, "enigma29")
	s.ErrorIs(err, model.ErrInvalidCode)
}

// Team tests

func (s *StorageSuite) makeTeam(id model.TeamID, name string) *model.Team {
	return &model.Team{
		ID:           id,
		Name:         name,
		AccessCode:   "ENIGMA29",
		Section:      "CS101",
		Members:      []string{"Bo"},
		QuestionSeed: 42,
		StartTime:    time.Now(),
	}
}

func (s *StorageSuite) TestCreateAndGetTeam() {
	team := s.makeTeam("t_1", "Alpha")
	s.Require().NoError(s.storage.CreateTeam(s.ctx, team))

	retrieved, err := s.storage.GetTeam(s.ctx, "t_1")
	s.Require().NoError(err)
	s.Equal("Alpha", retrieved.Name)
	s.Equal(int64(42), retrieved.QuestionSeed)
}

func (s *StorageSuite) TestGetTeamNotFound() {
	_, err := s.storage.GetTeam(s.ctx, "missing")
	s.ErrorIs(err, model.ErrTeamNotFound)
}

func (s *StorageSuite) TestGetTeamReturnsCopy() {
	team := s.makeTeam("t_1", "Alpha")
	s.Require().NoError(s.storage.CreateTeam(s.ctx, team))

	first, err := s.storage.GetTeam(s.ctx, "t_1")
	s.Require().NoError(err)
	first.Members = append(first.Members, "Mallory")
	first.Points = 999

	second, err := s.storage.GetTeam(s.ctx, "t_1")
	s.Require().NoError(err)
	s.Equal([]string{"Bo"}, second.Members)
	s.Equal(0, second.Points)
}

func (s *StorageSuite) TestFindTeamMatchesNameCaseInsensitively() {
	s.Require().NoError(s.storage.CreateTeam(s.ctx, s.makeTeam("t_1", "Alpha")))

	found, err := s.storage.FindTeam(s.ctx, "ENIGMA29", "alpha")
	s.Require().NoError(err)
	s.Equal(model.TeamID("t_1"), found.ID)
}

func (s *StorageSuite) TestFindTeamPrefersMostRecentDuplicate() {
	// Two rows for the same identity can exist after a join race; the
	// lookup returns the newest one
	s.Require().NoError(s.storage.CreateTeam(s.ctx, s.makeTeam("t_1", "Alpha")))
	s.Require().NoError(s.storage.CreateTeam(s.ctx, s.makeTeam("t_2", "Alpha")))

	found, err := s.storage.FindTeam(s.ctx, "ENIGMA29", "Alpha")
	s.Require().NoError(err)
	s.Equal(model.TeamID("t_2"), found.ID)
}

func (s *StorageSuite) TestUpdateTeamAppliesOnlySetFields() {
	team := s.makeTeam("t_1", "Alpha")
	team.Points = 50
	team.CompletedPuzzles = []model.QuestionID{"q1"}
	s.Require().NoError(s.storage.CreateTeam(s.ctx, team))

	points := 150
	updated, err := s.storage.UpdateTeam(s.ctx, "t_1", model.TeamUpdate{Points: &points})
	s.Require().NoError(err)

	s.Equal(150, updated.Points)
	s.Equal([]model.QuestionID{"q1"}, updated.CompletedPuzzles)
	s.Equal([]string{"Bo"}, updated.Members)
}

func (s *StorageSuite) TestUpdateTeamSetsEndTime() {
	s.Require().NoError(s.storage.CreateTeam(s.ctx, s.makeTeam("t_1", "Alpha")))

	end := time.Now().Add(2 * time.Hour)
	updated, err := s.storage.UpdateTeam(s.ctx, "t_1", model.TeamUpdate{EndTime: &end})
	s.Require().NoError(err)
	s.Require().NotNil(updated.EndTime)
	s.WithinDuration(end, *updated.EndTime, time.Second)
}

func (s *StorageSuite) TestUpdateTeamNotFound() {
	points := 10
	_, err := s.storage.UpdateTeam(s.ctx, "missing", model.TeamUpdate{Points: &points})
	s.ErrorIs(err, model.ErrTeamNotFound)
}

func (s *StorageSuite) TestListTeamsBySection() {
	s.Require().NoError(s.storage.CreateTeam(s.ctx, s.makeTeam("t_1", "Alpha")))
	other := s.makeTeam("t_2", "Beta")
	other.Section = "CS202"
	s.Require().NoError(s.storage.CreateTeam(s.ctx, other))

	teams, err := s.storage.ListTeamsBySection(s.ctx, "CS101")
	s.Require().NoError(err)
	s.Len(teams, 1)
	s.Equal("Alpha", teams[0].Name)
}

// Question tests

func (s *StorageSuite) TestListActiveQuestionsFiltersInactive() {
	s.Require().NoError(s.storage.SaveQuestion(s.ctx, &model.Question{
		ID: "q1", Prompt: "p1", Answer: "a", Difficulty: model.DifficultyEasy, Active: true,
	}))
	s.Require().NoError(s.storage.SaveQuestion(s.ctx, &model.Question{
		ID: "q2", Prompt: "p2", Answer: "b", Difficulty: model.DifficultyHard, Active: false,
	}))

	questions, err := s.storage.ListActiveQuestions(s.ctx)
	s.Require().NoError(err)
	s.Len(questions, 1)
	s.Equal(model.QuestionID("q1"), questions[0].ID)

	all, err := s.storage.ListQuestions(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 2)
}

func (s *StorageSuite) TestDeleteQuestion() {
	s.Require().NoError(s.storage.SaveQuestion(s.ctx, &model.Question{
		ID: "q1", Prompt: "p", Answer: "a", Difficulty: model.DifficultyEasy, Active: true,
	}))
	s.Require().NoError(s.storage.DeleteQuestion(s.ctx, "q1"))

	_, err := s.storage.GetQuestion(s.ctx, "q1")
	s.ErrorIs(err, model.ErrQuestionNotFound)
}

// Admin tests

func (s *StorageSuite) TestSaveAndGetAdminUser() {
	admin := &model.AdminUser{Username: "prof", PasswordHash: "hash", Active: true}
	s.Require().NoError(s.storage.SaveAdminUser(s.ctx, admin))

	retrieved, err := s.storage.GetAdminUser(s.ctx, "prof")
	s.Require().NoError(err)
	s.Equal("hash", retrieved.PasswordHash)

	_, err = s.storage.GetAdminUser(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrAdminNotFound)
}
