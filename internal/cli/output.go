package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/enigma29/cluehunt/internal/services/leaderboard"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case SessionView:
		o.printSession(v)
	case BoardView:
		o.printBoard(v)
	case AnswerView:
		o.printAnswer(v)
	case HintView:
		o.printHint(v)
	case LeaderboardView:
		o.printLeaderboard(v)
	case QuestionListView:
		o.printQuestionList(v)
	case AccessCodeListView:
		o.printAccessCodeList(v)
	case TeamListView:
		o.printTeamList(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// SessionView describes the active team session
type SessionView struct {
	TeamID    string   `json:"team_id"`
	TeamName  string   `json:"team_name"`
	Section   string   `json:"section"`
	Members   []string `json:"members"`
	Points    int      `json:"points"`
	Completed int      `json:"completed"`
	Remaining string   `json:"remaining,omitempty"`
}

// BoardQuestion is one question as shown to players; the answer never
// appears here
type BoardQuestion struct {
	Number     int    `json:"number"`
	ID         string `json:"id"`
	Prompt     string `json:"prompt"`
	Difficulty string `json:"difficulty"`
	Points     int    `json:"points"`
	Solved     bool   `json:"solved"`
}

// BoardView is the ordered question board
type BoardView struct {
	Questions []BoardQuestion `json:"questions"`
}

// AnswerView is the result of one submission
type AnswerView struct {
	Outcome     string `json:"outcome"`
	Awarded     int    `json:"awarded"`
	TotalPoints int    `json:"total_points"`
}

// HintView is one revealed hint
type HintView struct {
	QuestionID string `json:"question_id"`
	Index      int    `json:"index"`
	Hint       string `json:"hint"`
}

// LeaderboardView is the ranked top teams of a section
type LeaderboardView struct {
	Section string              `json:"section"`
	Entries []leaderboard.Entry `json:"entries"`
}

// QuestionListView is the full admin view of the question bank
type QuestionListView struct {
	Questions []AdminQuestion `json:"questions"`
}

// AdminQuestion includes the answer; admin eyes only
type AdminQuestion struct {
	ID         string `json:"id"`
	Prompt     string `json:"prompt"`
	Answer     string `json:"answer"`
	Difficulty string `json:"difficulty"`
	Points     int    `json:"points"`
	Hints      int    `json:"hints"`
	Active     bool   `json:"active"`
}

// AccessCodeListView lists access codes
type AccessCodeListView struct {
	Codes []AccessCodeView `json:"codes"`
}

// AccessCodeView is one access code row
type AccessCodeView struct {
	Code    string `json:"code"`
	Section string `json:"section"`
	Active  bool   `json:"active"`
}

// TeamListView is the admin monitoring view of a section's teams
type TeamListView struct {
	Section string     `json:"section"`
	Teams   []TeamView `json:"teams"`
}

// TeamView is one team row for monitoring
type TeamView struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Members   []string `json:"members"`
	Points    int      `json:"points"`
	Completed int      `json:"completed"`
	Ended     bool     `json:"ended"`
}

func (o *Output) printSession(s SessionView) {
	fmt.Printf("Team: %s (%s)\n", s.TeamName, s.TeamID)
	fmt.Printf("Section: %s\n", s.Section)
	fmt.Printf("Members: %s\n", strings.Join(s.Members, ", "))
	fmt.Printf("Points: %d\n", s.Points)
	fmt.Printf("Solved: %d\n", s.Completed)
	if s.Remaining != "" {
		fmt.Printf("Time remaining: %s\n", s.Remaining)
	}
}

func (o *Output) printBoard(b BoardView) {
	if len(b.Questions) == 0 {
		fmt.Println("No questions available")
		return
	}
	for _, q := range b.Questions {
		marker := " "
		if q.Solved {
			marker = "x"
		}
		fmt.Printf("[%s] %2d. (%s, %d pts) %s\n", marker, q.Number, q.Difficulty, q.Points, q.Prompt)
		fmt.Printf("       id: %s\n", q.ID)
	}
}

func (o *Output) printAnswer(a AnswerView) {
	switch a.Outcome {
	case "correct":
		fmt.Printf("Correct! +%d points\n", a.Awarded)
	case "already_solved":
		fmt.Println("Already solved by your team")
	default:
		fmt.Println("Incorrect, try again")
	}
	fmt.Printf("Team total: %d points\n", a.TotalPoints)
}

func (o *Output) printHint(h HintView) {
	fmt.Printf("Hint %d for %s: %s\n", h.Index+1, h.QuestionID, h.Hint)
}

func (o *Output) printLeaderboard(l LeaderboardView) {
	fmt.Printf("Leaderboard for %s:\n", l.Section)
	if len(l.Entries) == 0 {
		fmt.Println("  (no teams yet)")
		return
	}
	for i, e := range l.Entries {
		fmt.Printf("%3d. %-24s %5d pts  (%d solved)\n", i+1, e.TeamName, e.Points, e.Completed)
	}
}

func (o *Output) printQuestionList(v QuestionListView) {
	if len(v.Questions) == 0 {
		fmt.Println("No questions in the bank")
		return
	}
	for _, q := range v.Questions {
		status := "active"
		if !q.Active {
			status = "inactive"
		}
		fmt.Printf("%s [%s, %d pts, %d hints, %s]\n", q.ID, q.Difficulty, q.Points, q.Hints, status)
		fmt.Printf("  Q: %s\n", q.Prompt)
		fmt.Printf("  A: %s\n", q.Answer)
	}
}

func (o *Output) printAccessCodeList(v AccessCodeListView) {
	if len(v.Codes) == 0 {
		fmt.Println("No access codes")
		return
	}
	for _, c := range v.Codes {
		status := "active"
		if !c.Active {
			status = "inactive"
		}
		fmt.Printf("%-12s %-16s %s\n", c.Code, c.Section, status)
	}
}

func (o *Output) printTeamList(v TeamListView) {
	fmt.Printf("Teams in %s:\n", v.Section)
	if len(v.Teams) == 0 {
		fmt.Println("  (none)")
		return
	}
	for _, t := range v.Teams {
		status := "playing"
		if t.Ended {
			status = "ended"
		}
		fmt.Printf("  %-24s %5d pts  %d solved  [%s]  %s\n",
			t.Name, t.Points, t.Completed, status, strings.Join(t.Members, ", "))
	}
}

func formatRemaining(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
