package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(assignmentsCmd)
}

var assignmentsCmd = &cobra.Command{
	Use:   "assignments <course id>",
	Short: "Lists the assignments of a course.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := getSession(cmd.Context())
		assignments, err := s.client.ListAssignments(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if printed, err := printJson(assignments); printed {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"Id", "Name", "Released", "Due", "Late due", "Status", "Grade", "Max"})
		for _, a := range assignments {
			t.AppendRow(table.Row{
				orDash(a.Id, formatString),
				a.Name,
				orDash(a.ReleaseDate, formatTime),
				orDash(a.DueDate, formatTime),
				orDash(a.LateDueDate, formatTime),
				orDash(a.Status, formatString),
				orDash(a.Grade, formatFloat),
				orDash(a.MaxGrade, formatFloat),
			})
		}
		t.Render()
		return nil
	},
}
