package commands

import (
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	submissionsEmail    *string
	submissionsStudents *bool
	submissionsPast     *bool
)

func init() {
	submissionsEmail = submissionsCmd.Flags().String("email", "", "Only resolve the submission of the student with this email.")
	submissionsStudents = submissionsCmd.Flags().Bool("students", false, "Group submissions by student.")
	submissionsPast = submissionsCmd.Flags().Bool("past", false, "With --students, include older submissions.")
	submissionsCmd.MarkFlagsMutuallyExclusive("email", "students")
	rootCmd.AddCommand(submissionsCmd)
}

var submissionsCmd = &cobra.Command{
	Use:   "submissions <course id> <assignment id> [--email <email> | --students [--past]]",
	Short: "Lists the file links of the submissions to an assignment.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := getSession(cmd.Context())
		courseId, assignmentId := args[0], args[1]

		switch {
		case *submissionsEmail != "":
			links, err := s.client.FindSubmissionForStudent(cmd.Context(), courseId, assignmentId, *submissionsEmail)
			if err != nil {
				return err
			}
			if printed, err := printJson(links); printed {
				return err
			}
			t := newTable()
			t.AppendHeader(table.Row{"Link"})
			for _, link := range links {
				t.AppendRow(table.Row{link})
			}
			t.Render()
			return nil

		case *submissionsStudents:
			students, err := s.client.ListStudentSubmissions(cmd.Context(), courseId, assignmentId, *submissionsPast)
			if err != nil {
				return err
			}
			if printed, err := printJson(students); printed {
				return err
			}
			t := newTable()
			t.AppendHeader(table.Row{"Student", "Email", "Submission", "Submitted", "Active", "Files"})
			for _, student := range students {
				for _, sub := range student.Submissions {
					t.AppendRow(table.Row{
						student.Name,
						student.Email,
						sub.Id,
						orDash(sub.SubmittedAt, formatTime),
						orDash(sub.Active, func(b bool) string {
							if b {
								return "yes"
							}
							return "no"
						}),
						strings.Join(sub.Links, "\n"),
					})
				}
			}
			t.Render()
			return nil
		}

		links, err := s.client.ListSubmissionLinks(cmd.Context(), courseId, assignmentId)
		if err != nil {
			return err
		}
		if printed, err := printJson(links); printed {
			return err
		}
		ids := make([]string, 0, len(links))
		for id := range links {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		t := newTable()
		t.AppendHeader(table.Row{"Submission", "Files"})
		for _, id := range ids {
			t.AppendRow(table.Row{id, strings.Join(links[id], "\n")})
		}
		t.Render()
		return nil
	},
}
