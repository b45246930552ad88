package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/enigma29/cluehunt/internal/model"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Game master commands",
	}

	cmd.AddCommand(newAdminRegisterCmd())
	cmd.AddCommand(newAdminLoginCmd())
	cmd.AddCommand(newAdminQuestionCmd())
	cmd.AddCommand(newAdminCodeCmd())
	cmd.AddCommand(newAdminTeamsCmd())

	return cmd
}

func newAdminRegisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register <username> <password>",
		Short: "Create a game master account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.AdminService.CreateAdmin(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			NewOutput(cfg.Output).PrintMessage(fmt.Sprintf("Created admin %q", args[0]))
			return nil
		},
	}
}

func newAdminLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <username> <password>",
		Short: "Check game master credentials",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.AdminService.ValidateCredentials(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			NewOutput(cfg.Output).PrintMessage(fmt.Sprintf("Welcome, %s", args[0]))
			return nil
		},
	}
}

func newAdminQuestionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "question",
		Short: "Manage the question bank",
	}

	cmd.AddCommand(newAdminQuestionAddCmd())
	cmd.AddCommand(newAdminQuestionListCmd())
	cmd.AddCommand(newAdminQuestionRmCmd())

	return cmd
}

func newAdminQuestionAddCmd() *cobra.Command {
	var (
		difficulty string
		points     int
		hints      []string
		imageURL   string
		inactive   bool
	)

	cmd := &cobra.Command{
		Use:   "add <id> <prompt> <answer>",
		Short: "Add or replace a question",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := &model.Question{
				ID:         model.QuestionID(args[0]),
				Prompt:     args[1],
				Answer:     args[2],
				Difficulty: model.Difficulty(difficulty),
				Points:     points,
				Hints:      hints,
				ImageURL:   imageURL,
				Active:     !inactive,
			}
			if err := app.AdminService.UpsertQuestion(cmd.Context(), q); err != nil {
				return err
			}
			NewOutput(cfg.Output).PrintMessage(fmt.Sprintf("Saved question %q", q.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&difficulty, "difficulty", string(model.DifficultyEasy), "Difficulty: easy, medium, hard")
	cmd.Flags().IntVar(&points, "points", 0, "Point override (default: difficulty base value)")
	cmd.Flags().StringArrayVar(&hints, "hint", nil, "Hint text, repeatable up to 3 times")
	cmd.Flags().StringVar(&imageURL, "image", "", "Image URL to show with the prompt")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "Keep the question out of new boards")

	return cmd
}

func newAdminQuestionListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all questions, answers included",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bank, err := app.AdminService.ListQuestions(cmd.Context())
			if err != nil {
				return err
			}

			view := QuestionListView{}
			for _, q := range bank {
				view.Questions = append(view.Questions, AdminQuestion{
					ID:         string(q.ID),
					Prompt:     q.Prompt,
					Answer:     q.Answer,
					Difficulty: string(q.Difficulty),
					Points:     q.BasePoints(),
					Hints:      len(q.Hints),
					Active:     q.Active,
				})
			}

			NewOutput(cfg.Output).Print(view)
			return nil
		},
	}
}

func newAdminQuestionRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.AdminService.DeleteQuestion(cmd.Context(), model.QuestionID(args[0])); err != nil {
				return err
			}
			NewOutput(cfg.Output).PrintMessage(fmt.Sprintf("Deleted question %q", args[0]))
			return nil
		},
	}
}

func newAdminCodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "code",
		Short: "Manage access codes",
	}

	cmd.AddCommand(newAdminCodeCreateCmd())
	cmd.AddCommand(newAdminCodeListCmd())
	cmd.AddCommand(newAdminCodeToggleCmd())

	return cmd
}

func newAdminCodeCreateCmd() *cobra.Command {
	var code string

	cmd := &cobra.Command{
		Use:   "create <section>",
		Short: "Create an access code for a section",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ac, err := app.AdminService.CreateAccessCode(cmd.Context(), code, args[0])
			if err != nil {
				return err
			}
			NewOutput(cfg.Output).PrintMessage(fmt.Sprintf("Access code for %s: %s", ac.Section, ac.Code))
			return nil
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "Use this code instead of a generated one")

	return cmd
}

func newAdminCodeListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List access codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			codes, err := app.AdminService.ListAccessCodes(cmd.Context())
			if err != nil {
				return err
			}

			view := AccessCodeListView{}
			for _, ac := range codes {
				view.Codes = append(view.Codes, AccessCodeView{
					Code:    ac.Code,
					Section: ac.Section,
					Active:  ac.Active,
				})
			}

			NewOutput(cfg.Output).Print(view)
			return nil
		},
	}
}

func newAdminCodeToggleCmd() *cobra.Command {
	var deactivate bool

	cmd := &cobra.Command{
		Use:   "toggle <code>",
		Short: "Activate or deactivate an access code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			active := !deactivate
			if err := app.AdminService.SetAccessCodeActive(cmd.Context(), args[0], active); err != nil {
				return err
			}

			state := "active"
			if !active {
				state = "inactive"
			}
			NewOutput(cfg.Output).PrintMessage(fmt.Sprintf("Access code %s is now %s", args[0], state))
			return nil
		},
	}

	cmd.Flags().BoolVar(&deactivate, "off", false, "Deactivate instead of activate")

	return cmd
}

func newAdminTeamsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "teams <section>",
		Short: "Show the live teams of a section",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			teams, err := app.AdminService.SectionTeams(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			view := TeamListView{Section: args[0]}
			for _, t := range teams {
				ended := t.EndTime != nil && !app.Clock.Now().Before(*t.EndTime)
				view.Teams = append(view.Teams, TeamView{
					ID:        string(t.ID),
					Name:      t.Name,
					Members:   t.Members,
					Points:    t.Points,
					Completed: len(t.CompletedPuzzles),
					Ended:     ended,
				})
			}

			NewOutput(cfg.Output).Print(view)
			return nil
		},
	}
}
