package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var assignmentDates dateFlags

func init() {
	assignmentDates = addDateFlags(datesCmd)
	rootCmd.AddCommand(datesCmd)
}

var datesCmd = &cobra.Command{
	Use:   "dates <course id> <assignment id> [--release <date>] [--due <date>] [--late <date>]",
	Short: "Sets the dates of an assignment. Dates left out are cleared.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := getSession(cmd.Context())
		dates, err := s.parseDates(*assignmentDates.release, *assignmentDates.due, *assignmentDates.lateDue)
		if err != nil {
			return err
		}
		ok, err := s.client.UpdateAssignmentDates(cmd.Context(), args[0], args[1], dates)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("gradescope did not accept the dates")
		}
		fmt.Println("dates saved")
		return nil
	},
}
