package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/sankey/pkg/errors"
	"github.com/matzehuels/sankey/pkg/pipeline"
)

// loadConfig reads a TOML or YAML config file into generic key/values. The
// keys are the mapstructure names of [pipeline.Options]:
//
//	width = 1200
//	colormap = "tab10"
//	formats = ["svg", "png"]
func loadConfig(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read config %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read config %s", path)
	}

	m := make(map[string]any)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), &m); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode config %s", path)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode config %s", path)
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "config %s: unsupported extension %q (must be .toml, .yaml or .yml)", path, ext)
	}
	return m, nil
}

// applyConfig overlays the config file at path onto opts. An empty path
// is a no-op.
func applyConfig(path string, opts *pipeline.Options) error {
	if path == "" {
		return nil
	}
	m, err := loadConfig(path)
	if err != nil {
		return err
	}
	return pipeline.DecodeOptions(m, opts)
}
