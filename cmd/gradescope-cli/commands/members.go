package commands

import (
	"gradescope-scraper/internal/scrapers/gradescope"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	membersName      *string
	membersThreshold *float64
)

func init() {
	membersName = membersCmd.Flags().String("name", "", "Only show members whose name resembles this one, best match first.")
	membersThreshold = membersCmd.Flags().Float64("threshold", 0.8, "The minimum similarity (0 to 1) for --name.")
	rootCmd.AddCommand(membersCmd)
}

var membersCmd = &cobra.Command{
	Use:   "members <course id> [--name <name>]",
	Short: "Lists the roster of a course.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := getSession(cmd.Context())
		members, err := s.client.ListMembers(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if *membersName != "" {
			members = gradescope.RankMembersByName(members, *membersName, *membersThreshold)
		}
		if printed, err := printJson(members); printed {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"Name", "Email", "Role", "Student id", "User id", "Sections", "Submissions"})
		for _, m := range members {
			t.AppendRow(table.Row{
				m.FullName,
				m.Email,
				string(m.Role),
				orDash(m.StudentId, formatString),
				orDash(m.UserId, formatString),
				orDash(m.Sections, formatString),
				m.Submissions,
			})
		}
		t.Render()
		return nil
	},
}
