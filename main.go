package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"

	"github.com/voicerec/voicerec/cmd"
	"github.com/voicerec/voicerec/pkg/environment"
	"github.com/voicerec/voicerec/pkg/logging"
)

func main() {
	fs := afero.NewOsFs()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional .env next to the binary; absence is fine.
	_ = godotenv.Load()

	logging.CreateLogger()
	logger := logging.GetLogger()

	env, err := environment.NewEnvironment(fs, nil)
	if err != nil {
		logger.Error("failed to set up environment", "error", err)
		os.Exit(1)
	}

	cfgFile := env.ResolveConfigFile(fs)
	logger.Debug("using configuration file", "config-file", cfgFile)

	setupSignalHandler(cancel, logger)

	rootCmd := cmd.NewRootCommand(ctx, fs, cfgFile, env, logger)
	if err := rootCmd.Execute(); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// setupSignalHandler cancels the root context on SIGINT/SIGTERM so the
// server and sweep schedules shut down gracefully.
func setupSignalHandler(cancel context.CancelFunc, logger *logging.Logger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		logger.Debug("received shutdown signal", "signal", sig)
		cancel()
	}()
}
