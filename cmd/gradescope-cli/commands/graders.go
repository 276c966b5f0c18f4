package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(gradersCmd)
}

var gradersCmd = &cobra.Command{
	Use:   "graders <course id> <question id>",
	Short: "Lists who graded a question.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := getSession(cmd.Context())
		graders, err := s.client.ListGraders(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		if printed, err := printJson(graders); printed {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"Grader"})
		for _, name := range graders {
			t.AppendRow(table.Row{name})
		}
		t.Render()
		return nil
	},
}
