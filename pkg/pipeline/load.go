package pipeline

import (
	"bytes"
	"os"

	"github.com/matzehuels/sankey/pkg/errors"
	"github.com/matzehuels/sankey/pkg/table"
)

// ReadSource returns the raw table bytes and their format. Inline Source
// wins over Input; without an explicit InputFormat the format is detected
// from the Input extension.
func ReadSource(opts Options) ([]byte, table.Format, error) {
	if len(opts.Source) > 0 {
		format, err := sourceFormat(opts, "")
		return opts.Source, format, err
	}
	if opts.Input == "" {
		return nil, "", errors.New(errors.ErrCodeEmptyInput, "input file or inline source is required")
	}
	format, err := sourceFormat(opts, opts.Input)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(opts.Input)
	if os.IsNotExist(err) {
		return nil, "", errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", opts.Input)
	}
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", opts.Input)
	}
	return data, format, nil
}

func sourceFormat(opts Options, path string) (table.Format, error) {
	switch {
	case opts.InputFormat != "":
		return table.ParseFormat(opts.InputFormat)
	case path != "":
		return table.DetectFormat(path)
	}
	return table.FormatCSV, nil
}

// Decode parses and normalizes raw table bytes.
func Decode(data []byte, format table.Format) (*table.Table, error) {
	return table.Read(bytes.NewReader(data), format)
}
