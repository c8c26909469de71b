package config

import (
	"errors"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/assetcheck/pkg/service/spreadsheet"
	"github.com/urfave/cli/v3"
)

// Layout holds the CLI flag pointing at an import layout TOML file
type Layout struct {
	path string
}

func (x *Layout) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "layout",
			Usage:       "TOML file describing the import sheet layout (default: header row, columns A-G)",
			Category:    "Import",
			Sources:     cli.EnvVars("ASSETCHECK_LAYOUT"),
			Destination: &x.path,
		},
	}
}

// Configure returns the layout from the file, or the default layout when no
// file is set.
func (x *Layout) Configure() (spreadsheet.Layout, error) {
	if x.path == "" {
		return spreadsheet.DefaultLayout(), nil
	}
	return LoadLayout(x.path)
}

// LoadLayout reads a layout file. Keys missing from the file keep their
// default values.
//
//	sheet = "Assets"
//	header_rows = 2
//	date_format = "2006/01/02"
//
//	[columns]
//	code = "B"
//	name = "C"
func LoadLayout(path string) (spreadsheet.Layout, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return spreadsheet.Layout{}, goerr.Wrap(ErrConfigNotFound, "layout file not found", goerr.V(ConfigPathKey, path))
		}
		return spreadsheet.Layout{}, goerr.Wrap(err, "failed to read layout file", goerr.V(ConfigPathKey, path))
	}

	layout := spreadsheet.DefaultLayout()
	if err := toml.Unmarshal(data, &layout); err != nil {
		return spreadsheet.Layout{}, goerr.Wrap(errors.Join(ErrInvalidConfig, err), "failed to parse layout TOML",
			goerr.V(ConfigPathKey, path))
	}

	if err := layout.Validate(); err != nil {
		return spreadsheet.Layout{}, goerr.Wrap(errors.Join(ErrInvalidConfig, err), "invalid layout",
			goerr.V(ConfigPathKey, path))
	}

	return layout, nil
}
