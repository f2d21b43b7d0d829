package cmd

import (
	"errors"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/voicerec/voicerec/pkg/config"
	"github.com/voicerec/voicerec/pkg/environment"
	"github.com/voicerec/voicerec/pkg/logging"
)

const (
	defaultEntryName = "voice-recorder"
	defaultSavePath  = "recordings"
)

// NewSetupCommand configures a recorder entry: name, save location and the
// daily auto-delete flag. Interactive unless NON_INTERACTIVE=1, in which
// case the flags are taken as-is.
func NewSetupCommand(fs afero.Fs, cfgFile string, env *environment.Environment, logger *logging.Logger) *cobra.Command {
	var (
		name       string
		savePath   string
		autoDelete bool
	)

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Configure a recorder entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(fs, cfgFile, logger)
			if err != nil {
				return err
			}

			if env.NonInteractive != "1" {
				form := huh.NewForm(huh.NewGroup(
					huh.NewInput().
						Title("Entry name").
						Value(&name),
					huh.NewInput().
						Title("Save path").
						Description("Directory where recordings are stored.").
						Value(&savePath),
					huh.NewConfirm().
						Title("Delete recordings daily?").
						Description("Removes recordings older than the current day every night.").
						Value(&autoDelete),
				))
				if err := form.Run(); err != nil {
					return err
				}
			}

			if name == "" || savePath == "" {
				return errors.New("entry name and save path must not be empty")
			}

			normalized := config.NormalizeSavePath(savePath, cfg.Roots.ConfigDir)
			if err := config.CheckAllowedPath(normalized, cfg.AllowedPaths); err != nil {
				return err
			}

			if err := fs.MkdirAll(normalized, 0o755); err != nil {
				return err
			}

			entry := config.Entry{
				ID:         uuid.New().String(),
				Name:       name,
				SavePath:   normalized,
				AutoDelete: autoDelete,
			}
			if err := cfg.AddEntry(entry); err != nil {
				return err
			}
			if err := cfg.Save(fs, cfgFile); err != nil {
				return err
			}

			logger.Info("entry configured", "entry", entry.ID, "name", name, "save_path", normalized, "auto_delete", autoDelete)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", defaultEntryName, "entry display name")
	cmd.Flags().StringVar(&savePath, "path", defaultSavePath, "save location for recordings")
	cmd.Flags().BoolVar(&autoDelete, "auto-delete", false, "delete recordings older than the current day every night")

	return cmd
}
