package cmd

import (
	"github.com/spf13/cobra"

	"github.com/voicerec/voicerec/pkg/version"
)

// NewVersionCommand prints the build version.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the voicerec version",
		Run: func(cmd *cobra.Command, args []string) {
			v := version.Version
			if version.Commit != "" {
				v += " (" + version.Commit + ")"
			}
			cmd.Println(v)
		},
	}
}
