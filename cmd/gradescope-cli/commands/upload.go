package commands

import (
	"errors"
	"fmt"
	"os"

	"gradescope-scraper/internal/scrapers/gradescope"

	"github.com/spf13/cobra"
)

var (
	uploadLeaderboard *string
	uploadOwner       *string
)

func init() {
	uploadLeaderboard = uploadCmd.Flags().String("leaderboard", "", "The name to show on the leaderboard.")
	uploadOwner = uploadCmd.Flags().String("owner", "", "Submit on behalf of this user id (instructors only).")
	rootCmd.AddCommand(uploadCmd)
}

func optionalFlag(cmd *cobra.Command, name string, value *string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return value
}

var uploadCmd = &cobra.Command{
	Use:   "upload <course id> <assignment id> <file>...",
	Short: "Submits files to an assignment and prints the link of the submission.",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := getSession(cmd.Context())

		var files []gradescope.UploadFile
		for _, path := range args[2:] {
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			files = append(files, gradescope.UploadFile{Name: path, Content: f})
		}

		url, err := s.client.UploadAssignment(
			cmd.Context(),
			args[0], args[1],
			files,
			optionalFlag(cmd, "leaderboard", uploadLeaderboard),
			optionalFlag(cmd, "owner", uploadOwner),
		)
		if err != nil {
			return err
		}
		if url == "" {
			return errors.New("gradescope rejected the upload (is the assignment still open?)")
		}
		fmt.Println(url)
		return nil
	},
}
