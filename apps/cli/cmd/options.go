package cmd

import (
	"io"
	"os"
	"path/filepath"

	"github.com/abdul-hamid-achik/termreport/packages/core/config"
	"github.com/abdul-hamid-achik/termreport/packages/core/reporter"
)

// findConfig returns the first config file present in dir, or "".
func findConfig(dir string) string {
	for _, name := range config.ConfigFilenames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// loadOptions reads the config file named by --config, or the first one
// found in the working directory, and resolves it against the built-in
// names. Callbacks print to out. The returned path is empty when no file
// was found.
func loadOptions(out io.Writer) (*config.Options, string, error) {
	reg := config.NewRegistry()
	reporter.RegisterBuiltins(reg, out)

	path := configFlag
	if path == "" {
		path = findConfig(".")
	}

	cfg := config.DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = config.LoadConfig(path, reg); err != nil {
			return nil, path, err
		}
	}

	opts, err := cfg.Resolve(reg)
	if err != nil {
		return nil, path, err
	}
	return opts, path, nil
}
