package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/enigma29/cluehunt/internal/model"
	"github.com/enigma29/cluehunt/internal/services/sync"
	"github.com/enigma29/cluehunt/internal/services/timer"
)

func sessionView(team *model.Team, memberName string) SessionView {
	v := SessionView{
		TeamID:    string(team.ID),
		TeamName:  team.Name,
		Section:   team.Section,
		Members:   team.Members,
		Points:    team.Points,
		Completed: len(team.CompletedPuzzles),
	}
	if memberName != "" {
		v.Members = append([]string{memberName + " (you)"}, othersOf(team.Members, memberName)...)
	}
	return v
}

func othersOf(members []string, self string) []string {
	var others []string
	for _, m := range members {
		if m != self {
			others = append(others, m)
		}
	}
	return others
}

func newSynchronizer(teamID model.TeamID, onEnded func()) *sync.Synchronizer {
	return sync.New(teamID, app.Storage, app.QuestionService, app.Clock, sync.Config{
		OnEnded: onEnded,
	}, app.Logger)
}

func newJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <access-code> <team-name> <member>...",
		Short: "Join a game: register a new team or join an existing one",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, teamName, members := args[0], args[1], args[2:]

			team, err := app.AccessResolver.RegisterOrJoinTeam(cmd.Context(), code, teamName, members)
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage(fmt.Sprintf("Joined as %q", team.Name))
			out.Print(sessionView(team, members[0]))
			return nil
		},
	}
}

func newResumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Resume the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			team, d, err := app.AccessResolver.ResumeSession(cmd.Context())
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(sessionView(team, d.MemberName))
			return nil
		},
	}
}

func newBoardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Show your team's question board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			team, _, err := app.AccessResolver.ResumeSession(ctx)
			if err != nil {
				return err
			}

			seed := team.QuestionSeed
			selected, err := app.QuestionService.SelectQuestions(ctx, &seed)
			if err != nil {
				return err
			}

			view := BoardView{}
			for i, q := range selected {
				view.Questions = append(view.Questions, BoardQuestion{
					Number:     i + 1,
					ID:         string(q.ID),
					Prompt:     q.Prompt,
					Difficulty: string(q.Difficulty),
					Points:     q.BasePoints(),
					Solved:     team.HasCompleted(q.ID),
				})
			}

			NewOutput(cfg.Output).Print(view)
			return nil
		},
	}
}

func newAnswerCmd() *cobra.Command {
	var hintsUsed int

	cmd := &cobra.Command{
		Use:   "answer <question-id> <answer>",
		Short: "Submit an answer for your team",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			team, _, err := app.AccessResolver.ResumeSession(ctx)
			if err != nil {
				return err
			}

			syn := newSynchronizer(team.ID, nil)
			if err := syn.Reconcile(ctx); err != nil {
				return err
			}

			result, err := syn.SubmitAnswer(ctx, model.QuestionID(args[0]), args[1], hintsUsed)
			if err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(AnswerView{
				Outcome:     string(result.Outcome),
				Awarded:     result.Awarded,
				TotalPoints: result.TotalPoints,
			})
			return nil
		},
	}

	cmd.Flags().IntVar(&hintsUsed, "hints-used", 0, "Number of hints your team used on this question")

	return cmd
}

func newHintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hint <question-id> <n>",
		Short: "Reveal hint n (1-3) for a question",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var n int
			if _, err := fmt.Sscanf(args[1], "%d", &n); err != nil {
				return fmt.Errorf("hint number must be 1-%d", model.MaxHints)
			}

			hint, err := app.QuestionService.Hint(cmd.Context(), model.QuestionID(args[0]), n-1)
			if err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(HintView{
				QuestionID: args[0],
				Index:      n - 1,
				Hint:       hint,
			})
			return nil
		},
	}
}

func newPlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Watch the live session: countdown, teammate progress, game end",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			team, _, err := app.AccessResolver.ResumeSession(ctx)
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)

			syn := newSynchronizer(team.ID, func() {
				out.PrintMessage("Game over!")
			})
			if err := syn.Reconcile(ctx); err != nil {
				return err
			}

			snap := syn.Snapshot()
			countdown := timer.New(app.Clock, snap.EndTime, nil)

			syn.Start(ctx)
			countdown.Start(ctx)
			defer countdown.Stop()
			defer syn.Stop()

			out.PrintMessage(fmt.Sprintf("Playing as %q. %s remaining.",
				team.Name, formatRemaining(countdown.Remaining())))

			lastPoints := snap.Points
			lastSolved := len(snap.Completed)
			lastLevel := countdown.Level()

			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return nil
				case <-syn.Done():
					final := syn.Snapshot()
					out.PrintMessage(fmt.Sprintf("Final score: %d points, %d solved",
						final.Points, len(final.Completed)))
					return nil
				case <-ticker.C:
					snap := syn.Snapshot()
					countdown.SetEndTime(snap.EndTime)

					if snap.Points != lastPoints || len(snap.Completed) != lastSolved {
						out.PrintMessage(fmt.Sprintf("Team progress: %d points, %d solved",
							snap.Points, len(snap.Completed)))
						lastPoints = snap.Points
						lastSolved = len(snap.Completed)
					}

					if level := countdown.Level(); level != lastLevel {
						switch level {
						case timer.LevelWarning:
							out.PrintMessage(fmt.Sprintf("Under 2 minutes left! %s",
								formatRemaining(countdown.Remaining())))
						case timer.LevelLowTime:
							out.PrintMessage(fmt.Sprintf("Under 5 minutes left. %s",
								formatRemaining(countdown.Remaining())))
						}
						lastLevel = level
					}
				}
			}
		},
	}
}

func newLeaderboardCmd() *cobra.Command {
	var section string

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the top teams of your section",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if section == "" {
				_, d, err := app.AccessResolver.ResumeSession(ctx)
				if err != nil {
					return err
				}
				section = d.Section
			}

			entries, err := app.LeaderboardService.Rank(ctx, section)
			if err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(LeaderboardView{
				Section: section,
				Entries: entries,
			})
			return nil
		},
	}

	cmd.Flags().StringVar(&section, "section", "", "Section to rank (default: your session's section)")

	return cmd
}

func newEndCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "end",
		Short: "End the game early for your whole team",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			team, _, err := app.AccessResolver.ResumeSession(ctx)
			if err != nil {
				return err
			}

			syn := newSynchronizer(team.ID, nil)
			if err := syn.Reconcile(ctx); err != nil {
				return err
			}
			if err := syn.EndGameEarly(ctx); err != nil {
				return err
			}

			snap := syn.Snapshot()
			NewOutput(cfg.Output).PrintMessage(fmt.Sprintf(
				"Game ended for %q: %d points, %d solved", team.Name, snap.Points, len(snap.Completed)))
			return nil
		},
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.AccessResolver.Logout(); err != nil {
				return err
			}
			NewOutput(cfg.Output).PrintMessage("Logged out")
			return nil
		},
	}
}
