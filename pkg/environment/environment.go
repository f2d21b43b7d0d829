package environment

import (
	"path/filepath"

	env "github.com/Netflix/go-env"
	"github.com/adrg/xdg"
	"github.com/spf13/afero"
)

// ConfigFileName is the name of the voicerec configuration file.
const ConfigFileName = "voicerec.yaml"

// Environment holds environment configurations loaded from the OS or defaults.
type Environment struct {
	Home           string `env:"HOME"`
	Pwd            string `env:"PWD"`
	ConfigFile     string `env:"VOICEREC_CONFIG"`
	Host           string `env:"VOICEREC_HOST"`
	Port           string `env:"VOICEREC_PORT"`
	NonInteractive string `env:"NON_INTERACTIVE,default=0"`
	Extras         env.EnvSet
}

// NewEnvironment loads an Environment from the process environment, unless a
// pre-populated one is passed in (tests do that to avoid touching os.Environ).
func NewEnvironment(fs afero.Fs, environ *Environment) (*Environment, error) {
	if environ != nil {
		return environ, nil
	}

	loaded := &Environment{}
	es, err := env.UnmarshalFromEnviron(loaded)
	if err != nil {
		return nil, err
	}
	loaded.Extras = es

	return loaded, nil
}

// checkConfig reports the config file path inside baseDir when it exists.
func checkConfig(fs afero.Fs, baseDir string) (string, error) {
	configFile := filepath.Join(baseDir, ConfigFileName)
	exists, err := afero.Exists(fs, configFile)
	if err == nil && exists {
		return configFile, nil
	}
	return "", err
}

// ResolveConfigFile locates the configuration file. Explicit VOICEREC_CONFIG
// wins, then a file in the working directory, then the XDG config home.
func (e *Environment) ResolveConfigFile(fs afero.Fs) string {
	if e.ConfigFile != "" {
		return e.ConfigFile
	}

	if e.Pwd != "" {
		if configFile, _ := checkConfig(fs, e.Pwd); configFile != "" {
			return configFile
		}
	}

	return filepath.Join(xdg.ConfigHome, "voicerec", ConfigFileName)
}
