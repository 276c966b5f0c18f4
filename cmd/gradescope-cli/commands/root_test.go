package commands

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestNeedsSession(t *testing.T) {
	root := &cobra.Command{Use: "gradescope-cli"}
	courses := &cobra.Command{Use: "courses"}
	completion := &cobra.Command{Use: "completion"}
	bash := &cobra.Command{Use: "bash"}
	complete := &cobra.Command{Use: cobra.ShellCompRequestCmd}
	help := &cobra.Command{Use: "help"}
	root.AddCommand(courses, completion, complete, help)
	completion.AddCommand(bash)

	testCases := []struct {
		cmd      *cobra.Command
		expected bool
	}{
		{cmd: courses, expected: true},
		{cmd: completion, expected: false},
		{cmd: bash, expected: false},
		{cmd: complete, expected: false},
		{cmd: help, expected: false},
	}

	for _, test := range testCases {
		t.Run(test.cmd.Name(), func(t *testing.T) {
			require.Equal(t, test.expected, needsSession(test.cmd))
		})
	}
}
