package pipeline

import (
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/matzehuels/sankey/pkg/errors"
)

// DecodeOptions overlays the values of m onto opts, matching keys against
// the mapstructure tags of [Options]. String values are converted to the
// field types, and a comma-separated string fills Formats. Unknown keys
// are an error.
//
// Config files decoded by TOML or YAML and HTTP query parameters both go
// through DecodeOptions.
func DecodeOptions(m map[string]any, opts *Options) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           opts,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create options decoder")
	}
	if err := dec.Decode(m); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode options")
	}
	if len(opts.Formats) > 0 {
		opts.Formats = SplitFormats(strings.Join(opts.Formats, ","))
	}
	return nil
}
