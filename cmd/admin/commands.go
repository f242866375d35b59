package main

import (
	"os"
	"path/filepath"

	"github.com/ArowuTest/orgfees-backend/internal/models"
	"github.com/ArowuTest/orgfees-backend/internal/pkg/logger"
	"github.com/ArowuTest/orgfees-backend/internal/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func seedCommand() *cobra.Command {
	var req models.CreateUserRequest
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the first superadmin account",
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			user, err := a.users.SeedSuperAdmin(cmd.Context(), &req)
			if err != nil {
				return err
			}
			logger.Info().Str("email", user.Email).Str("id", user.ID.Hex()).Msg("Superadmin created")
			return nil
		}),
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "email of the superadmin")
	cmd.Flags().StringVar(&req.FirstName, "first-name", "Super", "first name")
	cmd.Flags().StringVar(&req.LastName, "last-name", "Admin", "last name")
	cmd.Flags().StringVar(&req.Password, "password", "", "initial password (at least 8 characters)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func resetPasswordCommand() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password for an account and revoke its sessions",
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			if err := a.users.ResetPassword(cmd.Context(), email, password); err != nil {
				return err
			}
			logger.Info().Str("email", email).Msg("Password reset")
			return nil
		}),
	}
	cmd.Flags().StringVar(&email, "email", "", "email of the account")
	cmd.Flags().StringVar(&password, "password", "", "new password (at least 8 characters)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func importStudentsCommand() *cobra.Command {
	var term models.SchoolTerm
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "import-students <file.csv|file.xlsx>",
		Short: "Import the students of a term from a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			if term.Semester == 0 {
				term.Semester = a.cfg.Term.Semester
			}
			if term.Year == 0 {
				term.Year = a.cfg.Term.Year
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			rows, err := utils.ReadSpreadsheet(f, filepath.Base(args[0]))
			if err != nil {
				return errors.Wrapf(err, "reading %s", args[0])
			}

			preview, err := a.students.PreviewStudentImport(cmd.Context(), term, rows)
			if err != nil {
				return err
			}
			for _, row := range preview.Rows {
				if len(row.Errors) > 0 {
					logger.Warn().Int("row", row.Row).Strs("errors", row.Errors).Msg("Row will be skipped")
				}
			}
			logger.Info().Int("valid", preview.Valid).Int("invalid", preview.Invalid).Str("term", term.String()).Msg("Preview")
			if dryRun {
				return nil
			}

			result, err := a.students.CommitStudentImport(cmd.Context(), term, preview.Rows)
			if err != nil {
				return err
			}
			logger.Info().Int("inserted", result.Inserted).Int("skipped", result.Skipped).Int("errors", len(result.Errors)).Msg("Import finished")
			return nil
		}),
	}
	cmd.Flags().IntVar(&term.Semester, "sem", 0, "semester (defaults to the configured term)")
	cmd.Flags().IntVar(&term.Year, "year", 0, "school year start (defaults to the configured term)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "only report what would be imported")
	return cmd
}
