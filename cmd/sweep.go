package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/voicerec/voicerec/pkg/logging"
	"github.com/voicerec/voicerec/pkg/sweeper"
)

// NewSweepCommand runs one retention sweep for an entry's save location,
// outside the daily schedule.
func NewSweepCommand(fs afero.Fs, cfgFile string, logger *logging.Logger) *cobra.Command {
	var entryID string

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Delete recordings older than today for an entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(fs, cfgFile, logger)
			if err != nil {
				return err
			}

			entry, ok := cfg.Entry(entryID)
			if !ok {
				return fmt.Errorf("no such entry: %q", entryID)
			}

			sweeper.New(fs, nil, logger).Sweep(entry.SavePath)
			return nil
		},
	}

	cmd.Flags().StringVar(&entryID, "entry", "", "entry ID (defaults to the first configured entry)")

	return cmd
}
