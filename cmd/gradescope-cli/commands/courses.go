package commands

import (
	"sort"

	"gradescope-scraper/internal/scrapers/gradescope"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(coursesCmd)
}

func sortedCourses(courses map[string]gradescope.Course) []gradescope.Course {
	out := make([]gradescope.Course, 0, len(courses))
	for _, c := range courses {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].ShortName < out[j].ShortName
	})
	return out
}

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "Lists the courses of the account, by role.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := getSession(cmd.Context())
		courses, err := s.client.ListCourses(cmd.Context())
		if err != nil {
			return err
		}
		if printed, err := printJson(courses); printed {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"Role", "Id", "Short name", "Name", "Term", "Assignments", "Grades published"})
		for _, role := range []struct {
			name    string
			courses map[string]gradescope.Course
		}{
			{name: "Instructor", courses: courses.Instructor},
			{name: "Student", courses: courses.Student},
		} {
			for _, c := range sortedCourses(role.courses) {
				t.AppendRow(table.Row{
					role.name,
					c.Id,
					c.ShortName,
					c.FullName,
					c.Term + " " + c.Year,
					orDash(c.Assignments, formatInt),
					orDash(c.GradesPublished, formatInt),
				})
			}
		}
		t.Render()
		return nil
	},
}
