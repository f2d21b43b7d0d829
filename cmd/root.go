package cmd

import (
	"context"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/voicerec/voicerec/pkg/environment"
	"github.com/voicerec/voicerec/pkg/logging"
)

// NewRootCommand returns the root command with all subcommands attached.
func NewRootCommand(ctx context.Context, fs afero.Fs, cfgFile string, env *environment.Environment, logger *logging.Logger) *cobra.Command {
	cobra.EnableCommandSorting = false
	rootCmd := &cobra.Command{
		Use:   "voicerec",
		Short: "Voice recording upload service.",
		Long: `Voicerec accepts uploaded audio recordings over HTTP, stores them under the
configured save locations, notifies listeners of every saved recording, and
optionally deletes recordings older than the current day on a daily schedule.`,
	}
	rootCmd.AddCommand(NewServeCommand(ctx, fs, cfgFile, env, logger))
	rootCmd.AddCommand(NewSetupCommand(fs, cfgFile, env, logger))
	rootCmd.AddCommand(NewSweepCommand(fs, cfgFile, logger))
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}
