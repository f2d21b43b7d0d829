package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/voicerec/voicerec/pkg/bus"
	"github.com/voicerec/voicerec/pkg/config"
	"github.com/voicerec/voicerec/pkg/environment"
	"github.com/voicerec/voicerec/pkg/frontend"
	"github.com/voicerec/voicerec/pkg/logging"
	"github.com/voicerec/voicerec/pkg/recorder"
	"github.com/voicerec/voicerec/pkg/server"
	"github.com/voicerec/voicerec/pkg/urlmap"
	"github.com/voicerec/voicerec/pkg/version"
)

// NewServeCommand runs the recorder HTTP server until interrupted.
func NewServeCommand(ctx context.Context, fs afero.Fs, cfgFile string, env *environment.Environment, logger *logging.Logger) *cobra.Command {
	var headless bool

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the recorder HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(fs, cfgFile, logger)
			if err != nil {
				return err
			}

			// Environment overrides beat the config file for the listener.
			if env.Host != "" {
				cfg.Server.Host = env.Host
			}
			if env.Port != "" {
				cfg.Server.Port = env.Port
			}

			if len(cfg.Entries) == 0 {
				return fmt.Errorf("%w; run `voicerec setup` first", config.ErrNoEntries)
			}

			// Headless runs skip the websocket surface; saved events
			// still reach the log through the LogBus.
			var (
				events bus.Bus = bus.NewLogBus(logger)
				hub    *bus.Hub
			)
			if !headless {
				hub = bus.NewHub(logger)
				defer hub.Close()
				events = hub
			}

			resources := frontend.NewResources(version.CardVersion, logger)

			registry := recorder.NewRegistry(fs, events, urlmap.Roots{
				MediaRoot:   cfg.Roots.MediaRoot,
				MediaAlias:  cfg.Roots.MediaAlias,
				AssetsRoot:  cfg.Roots.AssetsRoot,
				AssetsAlias: cfg.Roots.AssetsAlias,
			}, resources, logger)
			defer registry.CloseAll()

			for _, entry := range cfg.Entries {
				if _, err := registry.Open(entry); err != nil {
					return err
				}
			}

			return server.New(cfg, fs, registry, hub, logger).Run(ctx)
		},
	}
	serveCmd.Flags().BoolVar(&headless, "headless", false, "disable the websocket event feed; saved events are logged only")

	return serveCmd
}
