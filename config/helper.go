package config

import (
	"fmt"
	"os"
	"path"

	"github.com/mitchellh/go-homedir"
)

var hpingestHomeDir string

// GetConfigHomeDir returns the full path to the directory that stores all config files.
func GetConfigHomeDir() (string, error) {
	if hpingestHomeDir == "" {
		home, err := homedir.Dir()
		if err != nil {
			return "", fmt.Errorf("unable to find home directory: %v", err)
		}
		hpingestHomeDir = path.Join(home, MainDir)
	}
	return hpingestHomeDir, nil
}

// DefaultPipelinePath returns ~/.hpingest/pipeline.yaml.
func DefaultPipelinePath() (string, error) {
	dir, err := GetConfigHomeDir()
	if err != nil {
		return "", err
	}
	return path.Join(dir, PipelineFileName), nil
}

// makeDir wll make the given directory if it does not already exist.
// If it exist then return nil.
// An error is returned if there is a problem creating the dir.
func makeDir(dir string) error {
	_, err := os.Stat(dir)
	if os.IsNotExist(err) { // if it doesn't exist...
		if err = os.MkdirAll(dir, 0755); err != nil { // if the dir was NOT created...
			return fmt.Errorf("error creating directory %v", dir)
		}
	} else if err != nil { // if there was an error getting status...
		return err
	}
	return nil
}
