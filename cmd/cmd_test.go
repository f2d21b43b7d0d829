package cmd

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicerec/voicerec/pkg/config"
	"github.com/voicerec/voicerec/pkg/environment"
	"github.com/voicerec/voicerec/pkg/logging"
)

const testConfigFile = "/home/u/.config/voicerec/voicerec.yaml"

func nonInteractiveEnv() *environment.Environment {
	return &environment.Environment{Home: "/home/u", NonInteractive: "1"}
}

func TestLoadConfigGeneratesDefault(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	cfg, err := loadConfig(fs, testConfigFile, logging.NewTestLogger())
	require.NoError(t, err)
	assert.Equal(t, config.CurrentVersion, cfg.Version)
	assert.Empty(t, cfg.Entries)

	exists, err := afero.Exists(fs, testConfigFile)
	require.NoError(t, err)
	assert.True(t, exists, "default configuration must be written on first run")
}

func TestLoadConfigPersistsMigration(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	v1 := "version: 1\nentries:\n  - id: main\n    name: rec\n    save_path: /media/rec\n"
	require.NoError(t, afero.WriteFile(fs, testConfigFile, []byte(v1), 0o644))

	cfg, err := loadConfig(fs, testConfigFile, logging.NewTestLogger())
	require.NoError(t, err)
	assert.Equal(t, config.CurrentVersion, cfg.Version)

	// The upgraded version is written back.
	reloaded, migrated, err := config.Load(fs, testConfigFile)
	require.NoError(t, err)
	assert.False(t, migrated)
	assert.Equal(t, config.CurrentVersion, reloaded.Version)
}

func TestSetupNonInteractive(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	cmd := NewSetupCommand(fs, testConfigFile, nonInteractiveEnv(), logging.NewTestLogger())
	cmd.SetArgs([]string{"--name", "living-room", "--path", "media/clips", "--auto-delete"})
	require.NoError(t, cmd.Execute())

	cfg, _, err := config.Load(fs, testConfigFile)
	require.NoError(t, err)
	require.Len(t, cfg.Entries, 1)

	entry := cfg.Entries[0]
	assert.Equal(t, "living-room", entry.Name)
	assert.Equal(t, "/media/clips", entry.SavePath)
	assert.True(t, entry.AutoDelete)
	assert.NotEmpty(t, entry.ID)

	ok, err := afero.DirExists(fs, "/media/clips")
	require.NoError(t, err)
	assert.True(t, ok, "save location must exist after setup")
}

func TestSetupRejectsDisallowedPath(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	cmd := NewSetupCommand(fs, testConfigFile, nonInteractiveEnv(), logging.NewTestLogger())
	cmd.SetArgs([]string{"--name", "rec", "--path", "/homeassistant/rec"})

	err := cmd.Execute()
	assert.ErrorIs(t, err, config.ErrPathNotAllowed)
}

func TestSetupRejectsDuplicateName(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	logger := logging.NewTestLogger()

	first := NewSetupCommand(fs, testConfigFile, nonInteractiveEnv(), logger)
	first.SetArgs([]string{"--name", "rec", "--path", "media/a"})
	require.NoError(t, first.Execute())

	second := NewSetupCommand(fs, testConfigFile, nonInteractiveEnv(), logger)
	second.SetArgs([]string{"--name", "rec", "--path", "media/b"})
	assert.ErrorIs(t, second.Execute(), config.ErrEntryExists)
}

func TestServeRequiresEntries(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	cmd := NewServeCommand(t.Context(), fs, testConfigFile, nonInteractiveEnv(), logging.NewTestLogger())
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	assert.ErrorIs(t, cmd.Execute(), config.ErrNoEntries)
}

func TestServeHeadless(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	logger := logging.NewTestLogger()

	setup := NewSetupCommand(fs, testConfigFile, nonInteractiveEnv(), logger)
	setup.SetArgs([]string{"--name", "rec", "--path", "media/clips"})
	require.NoError(t, setup.Execute())

	// A canceled context makes serve go straight into graceful shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	env := nonInteractiveEnv()
	env.Host = "127.0.0.1"
	env.Port = "0"

	serve := NewServeCommand(ctx, fs, testConfigFile, env, logger)
	serve.SetArgs([]string{"--headless"})
	require.NoError(t, serve.Execute())
}

func TestSweepCommand(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	logger := logging.NewTestLogger()

	setup := NewSetupCommand(fs, testConfigFile, nonInteractiveEnv(), logger)
	setup.SetArgs([]string{"--name", "rec", "--path", "media/clips"})
	require.NoError(t, setup.Execute())

	stale := "/media/clips/recording_2026-08-28_10:00:00.mp3"
	yesterday := time.Now().AddDate(0, 0, -1)
	require.NoError(t, afero.WriteFile(fs, stale, []byte("old"), 0o644))
	require.NoError(t, fs.Chtimes(stale, yesterday, yesterday))

	sweep := NewSweepCommand(fs, testConfigFile, logger)
	sweep.SetArgs([]string{})
	require.NoError(t, sweep.Execute())

	exists, err := afero.Exists(fs, stale)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSweepCommandUnknownEntry(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	cmd := NewSweepCommand(fs, testConfigFile, logging.NewTestLogger())
	cmd.SetArgs([]string{"--entry", "missing"})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	assert.Error(t, cmd.Execute())
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	cmd := NewVersionCommand()
	cmd.SetOut(&out)
	require.NoError(t, cmd.Execute())
	assert.NotEmpty(t, out.String())
}
