package commands

import (
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type dateFlags struct {
	release *string
	due     *string
	lateDue *string
}

func addDateFlags(cmd *cobra.Command) dateFlags {
	return dateFlags{
		release: cmd.Flags().String("release", "", "The release date, read in the configured timezone."),
		due:     cmd.Flags().String("due", "", "The due date, read in the configured timezone."),
		lateDue: cmd.Flags().String("late", "", "The late due date, read in the configured timezone."),
	}
}

var extensionDates dateFlags

func init() {
	extensionDates = addDateFlags(extensionsSetCmd)

	extensionsCmd.AddCommand(extensionsListCmd)
	extensionsCmd.AddCommand(extensionsSetCmd)
	extensionsCmd.AddCommand(extensionsRemoveCmd)
	rootCmd.AddCommand(extensionsCmd)
}

var extensionsCmd = &cobra.Command{
	Use:   "extensions",
	Short: "Manages per-student extensions of an assignment.",
}

var extensionsListCmd = &cobra.Command{
	Use:   "list <course id> <assignment id>",
	Short: "Lists the extensions of an assignment.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := getSession(cmd.Context())
		extensions, err := s.client.ListExtensions(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		if printed, err := printJson(extensions); printed {
			return err
		}

		userIds := make([]string, 0, len(extensions))
		for id := range extensions {
			userIds = append(userIds, id)
		}
		sort.Strings(userIds)

		t := newTable()
		t.AppendHeader(table.Row{"User id", "Student", "Released", "Due", "Late due"})
		for _, id := range userIds {
			e := extensions[id]
			t.AppendRow(table.Row{
				e.UserId,
				e.StudentName,
				orDash(e.ReleaseDate, formatTime),
				orDash(e.DueDate, formatTime),
				orDash(e.LateDueDate, formatTime),
			})
		}
		t.Render()
		return nil
	},
}

var extensionsSetCmd = &cobra.Command{
	Use:   "set <course id> <assignment id> <user id> [--release <date>] [--due <date>] [--late <date>]",
	Short: "Creates or replaces the extension of a student.",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := getSession(cmd.Context())
		dates, err := s.parseDates(*extensionDates.release, *extensionDates.due, *extensionDates.lateDue)
		if err != nil {
			return err
		}
		ok, err := s.client.SetExtension(cmd.Context(), args[0], args[1], args[2], dates)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("gradescope did not accept the extension")
		}
		fmt.Println("extension saved")
		return nil
	},
}

var extensionsRemoveCmd = &cobra.Command{
	Use:   "remove <course id> <assignment id> <user id>",
	Short: "Removes the extension of a student.",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := getSession(cmd.Context())
		return s.client.RemoveExtension(cmd.Context(), args[0], args[1], args[2])
	},
}
